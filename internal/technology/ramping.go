package technology

import (
	"errors"

	"energyhub/internal/milp"
)

// RampingRate is the largest change of summed input, or of summed output,
// allowed between consecutive timesteps: ref_size/ramping_time when a
// reference size is set, size/ramping_time otherwise.
func (b *Base) RampingRate() milp.Expr {
	d := b.Coeff.Dynamics
	if d.RefSize != Disabled {
		return milp.C(d.RefSize / d.RampingTime)
	}
	return milp.V(b.SizeVar).Scale(1 / d.RampingTime)
}

type adder func(name string, lhs milp.Expr, sense milp.Sense, rhs milp.Expr)

// DefineRamping emits the ramping formulation selected by the dynamics.
// Nothing is bounded at the first timestep; ramping does not wrap around the
// horizon.
func (b *Base) DefineRamping(blk *milp.Block) (RampingMode, error) {
	mode := b.Coeff.Dynamics.Mode()
	if mode == RampingOff {
		return mode, nil
	}
	if b.SizeVar == nil {
		return mode, errors.New("technology " + b.Name + ": ramping defined before variables were declared")
	}
	n := b.Horizon.Performance()
	rate := b.RampingRate()

	switch mode {
	case RampingContinuous:
		add := func(name string, lhs milp.Expr, s milp.Sense, rhs milp.Expr) { blk.Add(name, lhs, s, rhs) }
		for t := 1; t < n; t++ {
			b.rateBounds(add, func(name string) string { return milp.Index(name, t+1) }, t, rate)
		}
	case RampingStateCoupled:
		b.State = blk.NewSeries("state", n, milp.Constant(0, 1), milp.Binary)
		for t := 1; t < n; t++ {
			step := milp.V(b.State[t]).Minus(milp.V(b.State[t-1]))
			dis := blk.NewDisjunction(milp.Index("ramping_state", t+1), "ramping", "startup", "shutdown")

			ramping := dis.Branch(0)
			ramping.Add("hold", step, milp.EQ, milp.C(0))
			b.rateBounds(ramping.Add, func(name string) string { return name }, t, rate)

			dis.Branch(1).Add("start", step, milp.EQ, milp.C(1))
			dis.Branch(2).Add("stop", step, milp.EQ, milp.C(-1))
		}
	}
	return mode, nil
}

func (b *Base) rateBounds(add adder, name func(string) string, t int, rate milp.Expr) {
	if len(b.InputCarriers) > 0 {
		diff := b.TotalInput(t).Minus(b.TotalInput(t - 1))
		add(name("ramp_up_input"), diff, milp.LE, rate)
		add(name("ramp_down_input"), diff, milp.GE, rate.Scale(-1))
	}
	if len(b.OutputCarriers) > 0 {
		diff := b.TotalOutput(t).Minus(b.TotalOutput(t - 1))
		add(name("ramp_up_output"), diff, milp.LE, rate)
		add(name("ramp_down_output"), diff, milp.GE, rate.Scale(-1))
	}
}
