package technology

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Horizon describes the full time horizon and the averaging factor that maps
// it onto performance timesteps.
type Horizon struct {
	Full int
	// Averaged is nr_timesteps_averaged: how many full timesteps one
	// performance timestep stands for.
	Averaged int
}

// NewHorizon builds a horizon from the model's timestaging value; zero means
// no averaging.
func NewHorizon(full, timestaging int) (Horizon, error) {
	if full <= 0 {
		return Horizon{}, fmt.Errorf("horizon needs at least one timestep, got %d", full)
	}
	if timestaging < 0 {
		return Horizon{}, fmt.Errorf("timestaging must be >= 0, got %d", timestaging)
	}
	k := timestaging
	if k == 0 {
		k = 1
	}
	return Horizon{Full: full, Averaged: k}, nil
}

// Performance is the number of performance timesteps.
func (h Horizon) Performance() int {
	return (h.Full + h.Averaged - 1) / h.Averaged
}

// BlockLen is the number of full timesteps performance timestep t stands
// for. Every block holds Averaged steps except the last, which holds the
// remainder when Full is not a multiple of Averaged.
func (h Horizon) BlockLen(t int) int {
	if t == h.Performance()-1 {
		return h.Full - t*h.Averaged
	}
	return h.Averaged
}

// Prev returns the 0-based predecessor of t, wrapping the first timestep
// around to the last.
func (h Horizon) Prev(t int) int {
	n := h.Performance()
	return (t - 1 + n) % n
}

// Stage averages a full-horizon series over consecutive blocks of Averaged
// timesteps. The last block may be shorter.
func (h Horizon) Stage(series []float64) ([]float64, error) {
	if len(series) != h.Full {
		return nil, fmt.Errorf("series has %d values, horizon has %d", len(series), h.Full)
	}
	k := h.Averaged
	out := make([]float64, 0, h.Performance())
	for start := 0; start < len(series); start += k {
		end := min(start+k, len(series))
		out = append(out, floats.Sum(series[start:end])/float64(end-start))
	}
	return out, nil
}
