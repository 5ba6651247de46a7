package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// BatchSource reads trip records from a raw source in bounded batches.
// An empty batch with a nil error signals that the source is exhausted.
type BatchSource interface {
	// ReadBatch returns up to batchSize parsed records and the number of
	// malformed rows that were dropped while producing them.
	ReadBatch(ctx context.Context, batchSize int) (records []TripRecord, dropped int, err error)
}

// Accepted pickup/dropoff timestamp layouts.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// CSVSource reads trip records from a CSV stream with a header row. Expected
// columns: pickup_datetime, dropoff_datetime, pickup_longitude,
// pickup_latitude, dropoff_longitude, dropoff_latitude, passenger_count.
// Extra columns are ignored.
type CSVSource struct {
	reader  *csv.Reader
	columns map[string]int
	done    bool
}

// NewCSVSource wraps r and reads its header row to resolve column positions.
func NewCSVSource(r io.Reader) (*CSVSource, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	required := []string{
		"pickup_datetime", "dropoff_datetime",
		"pickup_longitude", "pickup_latitude",
		"dropoff_longitude", "dropoff_latitude",
		"passenger_count",
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("csv source is missing required column %q", name)
		}
	}

	return &CSVSource{reader: cr, columns: columns}, nil
}

// ReadBatch reads up to batchSize rows, dropping rows that fail to parse.
func (s *CSVSource) ReadBatch(ctx context.Context, batchSize int) ([]TripRecord, int, error) {
	if s.done {
		return nil, 0, nil
	}

	records := make([]TripRecord, 0, batchSize)
	dropped := 0

	for len(records) < batchSize {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		row, err := s.reader.Read()
		if err == io.EOF {
			s.done = true
			break
		}
		if err != nil {
			// A structurally broken row is dropped like any other
			// malformed record.
			dropped++
			continue
		}

		record, err := s.parseRow(row)
		if err != nil {
			dropped++
			continue
		}
		records = append(records, record)
	}

	return records, dropped, nil
}

func (s *CSVSource) parseRow(row []string) (TripRecord, error) {
	field := func(name string) (string, error) {
		idx := s.columns[name]
		if idx >= len(row) {
			return "", fmt.Errorf("row is missing column %q", name)
		}
		return row[idx], nil
	}

	pickupAt, err := parseTimestampField(field, "pickup_datetime")
	if err != nil {
		return TripRecord{}, err
	}
	dropoffAt, err := parseTimestampField(field, "dropoff_datetime")
	if err != nil {
		return TripRecord{}, err
	}

	coords := make(map[string]float64, 4)
	for _, name := range []string{"pickup_latitude", "pickup_longitude", "dropoff_latitude", "dropoff_longitude"} {
		raw, err := field(name)
		if err != nil {
			return TripRecord{}, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return TripRecord{}, fmt.Errorf("parsing %s: %w", name, err)
		}
		coords[name] = v
	}

	rawCount, err := field("passenger_count")
	if err != nil {
		return TripRecord{}, err
	}
	passengers, err := strconv.Atoi(rawCount)
	if err != nil {
		return TripRecord{}, fmt.Errorf("parsing passenger_count: %w", err)
	}
	if passengers < 0 {
		return TripRecord{}, fmt.Errorf("passenger_count %d is negative", passengers)
	}

	return TripRecord{
		ID:               uuid.New(),
		PickupDatetime:   pickupAt,
		DropoffDatetime:  dropoffAt,
		PickupLatitude:   coords["pickup_latitude"],
		PickupLongitude:  coords["pickup_longitude"],
		DropoffLatitude:  coords["dropoff_latitude"],
		DropoffLongitude: coords["dropoff_longitude"],
		PassengerCount:   passengers,
	}, nil
}

func parseTimestampField(field func(string) (string, error), name string) (time.Time, error) {
	raw, err := field(name)
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing %s: unrecognized timestamp %q", name, raw)
}
