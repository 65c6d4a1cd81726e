package technology

import "fmt"

// Bounds is a per-timestep (lower, upper) pair, expressed as fractions of the
// installed size. It is immutable once built.
type Bounds struct {
	lower []float64
	upper []float64
}

// NewBounds copies lower and upper.
func NewBounds(lower, upper []float64) (Bounds, error) {
	if len(lower) != len(upper) {
		return Bounds{}, fmt.Errorf("bounds length mismatch: %d lower, %d upper", len(lower), len(upper))
	}
	for t := range lower {
		if lower[t] > upper[t] {
			return Bounds{}, fmt.Errorf("bounds at timestep %d: lower %g > upper %g", t+1, lower[t], upper[t])
		}
	}
	return Bounds{
		lower: append([]float64(nil), lower...),
		upper: append([]float64(nil), upper...),
	}, nil
}

// ConstantBounds repeats (lo, hi) n times.
func ConstantBounds(n int, lo, hi float64) Bounds {
	b := Bounds{lower: make([]float64, n), upper: make([]float64, n)}
	for t := 0; t < n; t++ {
		b.lower[t], b.upper[t] = lo, hi
	}
	return b
}

func (b Bounds) Len() int { return len(b.lower) }

// At returns the bounds at 0-based timestep t.
func (b Bounds) At(t int) (lo, hi float64) { return b.lower[t], b.upper[t] }

func (b Bounds) Lower() []float64 { return append([]float64(nil), b.lower...) }
func (b Bounds) Upper() []float64 { return append([]float64(nil), b.upper...) }

// FlowBounds holds the input and output bounds per carrier.
type FlowBounds struct {
	Input  map[string]Bounds
	Output map[string]Bounds
}
