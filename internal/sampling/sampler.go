package sampling

import (
	"math/rand"
)

// HardCap is the absolute upper bound on a sample, regardless of the
// requested size. It keeps rendering cost bounded for any dataset.
const HardCap = 100000

// Coordinate is a single pickup location.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Sampler draws uniform random subsets without replacement. The random
// source is injected so tests and callers can pin a seed.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a sampler seeded with the given value.
func NewSampler(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

// NewSamplerFromRand creates a sampler around an existing random source.
func NewSamplerFromRand(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// Sample returns a uniformly random subset of size min(n, len(population),
// HardCap), without replacement. Requesting more points than exist is not an
// error; the request is clamped to the population. The input is never
// modified.
func (s *Sampler) Sample(population []Coordinate, n int) []Coordinate {
	size := n
	if size > len(population) {
		size = len(population)
	}
	if size > HardCap {
		size = HardCap
	}
	if size <= 0 {
		return []Coordinate{}
	}

	// Partial Fisher-Yates over an index permutation: only the first `size`
	// positions are settled, so large populations stay cheap.
	idx := make([]int, len(population))
	for i := range idx {
		idx[i] = i
	}
	out := make([]Coordinate, size)
	for i := 0; i < size; i++ {
		j := i + s.rng.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = population[idx[i]]
	}
	return out
}
