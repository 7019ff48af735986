package main

import "fmt"

// Weighted pairs a value with its relative weight in a Distribution.
type Weighted[T comparable] struct {
	Value  T
	Weight int
}

// Distribution is a discrete probability table. Sampling picks each value
// with probability weight/total.
type Distribution[T comparable] struct {
	choices []Weighted[T]
	total   int
}

// NewDistribution builds a distribution from its table. The tables are
// static, so a non-positive weight is an implementation error and panics.
func NewDistribution[T comparable](choices ...Weighted[T]) *Distribution[T] {
	if len(choices) == 0 {
		panic("distribution needs at least one choice")
	}
	d := &Distribution[T]{choices: choices}
	for _, c := range choices {
		if c.Weight <= 0 {
			panic(fmt.Sprintf("weight for %v must be positive, got %d", c.Value, c.Weight))
		}
		d.total += c.Weight
	}
	return d
}

func (d *Distribution[T]) Sample(r Rng) T {
	n := r.Intn(d.total)
	for _, c := range d.choices {
		if n < c.Weight {
			return c.Value
		}
		n -= c.Weight
	}
	// unreachable as long as total is the sum of the weights
	return d.choices[len(d.choices)-1].Value
}

// Probability returns the chance that Sample returns v; 0 if v isn't in the table.
func (d *Distribution[T]) Probability(v T) float64 {
	weight := 0
	for _, c := range d.choices {
		if c.Value == v {
			weight += c.Weight
		}
	}
	return float64(weight) / float64(d.total)
}

// Values lists the distinct values in table order.
func (d *Distribution[T]) Values() []T {
	seen := make(map[T]struct{}, len(d.choices))
	values := make([]T, 0, len(d.choices))
	for _, c := range d.choices {
		if _, ok := seen[c.Value]; ok {
			continue
		}
		seen[c.Value] = struct{}{}
		values = append(values, c.Value)
	}
	return values
}

// StatusCodes is the HTTP status mix for simulated requests: 3 in 7 are 200,
// the rest split evenly.
var StatusCodes = NewDistribution(
	Weighted[int]{200, 3},
	Weighted[int]{201, 1},
	Weighted[int]{400, 1},
	Weighted[int]{404, 1},
	Weighted[int]{500, 1},
)

const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// LogLevels is the level mix for generated log lines.
var LogLevels = NewDistribution(
	Weighted[string]{LevelDebug, 1},
	Weighted[string]{LevelInfo, 3},
	Weighted[string]{LevelWarn, 1},
	Weighted[string]{LevelError, 1},
)
