package technology

import (
	"errors"
	"fmt"

	"energyhub/internal/milp"
)

// Size describes the installed capacity decision.
type Size struct {
	Min   float64
	Max   float64
	IsInt bool
	// Existing units have their size fixed to Initial.
	Existing bool
	Initial  float64
}

// Limits returns the bounds of the size variable.
func (s Size) Limits() (lo, hi float64) {
	if s.Existing {
		return s.Initial, s.Initial
	}
	return s.Min, s.Max
}

// Base is the part of a technology shared by every technology type: its
// carriers, size, horizon, fitted coefficients and flow bounds, plus the
// handles of the variables Declare created.
type Base struct {
	Name             string
	MainInputCarrier string
	InputCarriers    []string
	OutputCarriers   []string
	Size             Size
	Horizon          Horizon
	Coeff            Coefficients
	Bounds           FlowBounds

	SizeVar *milp.Var
	Input   map[string][]*milp.Var
	Output  map[string][]*milp.Var
	// State is the on/off series, declared only for state-coupled ramping.
	State []*milp.Var
}

// Declare creates the size variable and the input and output series. Flow
// bounds are fractions of size and are scaled by the size limits.
func (b *Base) Declare(blk *milp.Block) error {
	if b.SizeVar != nil {
		return errors.New("technology " + b.Name + ": variables already declared")
	}
	n := b.Horizon.Performance()
	lo, hi := b.Size.Limits()
	domain := milp.Continuous
	if b.Size.IsInt {
		domain = milp.Integer
	}

	input, err := declareFlows(blk, "input", b.InputCarriers, b.Bounds.Input, n, lo, hi)
	if err != nil {
		return fmt.Errorf("technology %s: %w", b.Name, err)
	}
	output, err := declareFlows(blk, "output", b.OutputCarriers, b.Bounds.Output, n, lo, hi)
	if err != nil {
		return fmt.Errorf("technology %s: %w", b.Name, err)
	}
	b.SizeVar = blk.NewVar("size", lo, hi, domain)
	b.Input, b.Output = input, output
	return nil
}

func declareFlows(blk *milp.Block, kind string, carriers []string, bounds map[string]Bounds, n int, sizeLo, sizeHi float64) (map[string][]*milp.Var, error) {
	out := make(map[string][]*milp.Var, len(carriers))
	for _, car := range carriers {
		bd, ok := bounds[car]
		if !ok {
			return nil, fmt.Errorf("no %s bounds for carrier %s", kind, car)
		}
		if bd.Len() != n {
			return nil, fmt.Errorf("%s bounds for carrier %s cover %d timesteps, need %d", kind, car, bd.Len(), n)
		}
		out[car] = blk.NewSeries(kind+"_"+car, n, func(t int) (float64, float64) {
			l, h := bd.At(t)
			return l * sizeLo, h * sizeHi
		}, milp.Continuous)
	}
	return out, nil
}

// TotalInput is the sum of all input carriers at 0-based timestep t.
func (b *Base) TotalInput(t int) milp.Expr {
	var e milp.Expr
	for _, car := range b.InputCarriers {
		e = e.Term(1, b.Input[car][t])
	}
	return e
}

// TotalOutput is the sum of all output carriers at 0-based timestep t.
func (b *Base) TotalOutput(t int) milp.Expr {
	var e milp.Expr
	for _, car := range b.OutputCarriers {
		e = e.Term(1, b.Output[car][t])
	}
	return e
}
