package hotspot

import (
	"fmt"
	"sort"

	"github.com/uber/h3-go/v4"

	"github.com/richxcame/urban-mobility/internal/sampling"
)

// Cell is an H3 cell with the number of sampled pickups that fall inside it.
type Cell struct {
	H3Index         string  `json:"h3_index"`
	CenterLatitude  float64 `json:"center_latitude"`
	CenterLongitude float64 `json:"center_longitude"`
	Count           int     `json:"count"`
}

// Aggregate groups pickup coordinates into H3 cells at the given resolution
// and returns them ordered by descending count, densest cells first. Ties
// break on the cell index so the order is stable.
func Aggregate(points []sampling.Coordinate, resolution int) ([]Cell, error) {
	counts := make(map[h3.Cell]int)
	for _, p := range points {
		cell, err := h3.LatLngToCell(h3.NewLatLng(p.Latitude, p.Longitude), resolution)
		if err != nil {
			return nil, fmt.Errorf("hotspot: indexing point (%v, %v): %w", p.Latitude, p.Longitude, err)
		}
		counts[cell]++
	}

	cells := make([]Cell, 0, len(counts))
	for cell, count := range counts {
		center, err := cell.LatLng()
		if err != nil {
			return nil, fmt.Errorf("hotspot: resolving center of %s: %w", cell, err)
		}
		cells = append(cells, Cell{
			H3Index:         cell.String(),
			CenterLatitude:  center.Lat,
			CenterLongitude: center.Lng,
			Count:           count,
		})
	}

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Count != cells[j].Count {
			return cells[i].Count > cells[j].Count
		}
		return cells[i].H3Index < cells[j].H3Index
	})
	return cells, nil
}
