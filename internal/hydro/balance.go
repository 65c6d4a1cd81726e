package hydro

import (
	"math"

	"energyhub/internal/milp"
)

// declareStorage adds the reservoir level and spilling series. Both are
// non-negative; the level is at most size_max and spilling at most
// spilling_max·size_max, the constraints tighten both to the actual size.
// The level's lower bound is 0, not size_min, so an empty reservoir stays
// feasible.
func (h *Hydro) declareStorage(blk *milp.Block) {
	n := h.Horizon.Performance()
	_, sizeHi := h.Size.Limits()
	h.storageLevel = blk.NewSeries("storage_level_"+h.carrier, n, milp.Constant(0, sizeHi), milp.Continuous)
	h.spilling = blk.NewSeries("spilling", n, milp.Constant(0, h.spillingMax*sizeHi), milp.Continuous)
}

// decay returns the level retained over k full timesteps, (1-λ)^k, and
// the gain applied to the net flow, Σ_{i<k} (1-λ)^i.
func decay(lambda float64, k int) (retain, gain float64) {
	keep := 1 - lambda
	p := 1.0
	for i := 0; i < k; i++ {
		gain += p
		p *= keep
	}
	return math.Pow(keep, float64(k)), gain
}

// defineBalance adds, for every t,
//
//	level[t] = level[prev(t)]·(1-λ)^k + (η_in·input[t] - output[t]/η_out - spilling[t])·Σ(1-λ)^i + inflow[t]
//	level[t] <= size
//
// where prev(1) is the last timestep and k is the number of full timesteps
// in block t, shorter for a trailing partial block.
func (h *Hydro) defineBalance(blk *milp.Block) {
	car := h.carrier
	for t, n := 0, h.Horizon.Performance(); t < n; t++ {
		retain, gain := decay(h.lambda, h.Horizon.BlockLen(t))
		level := h.storageLevel[t]
		prev := h.storageLevel[h.Horizon.Prev(t)]
		net := milp.Expr{}.
			Term(h.etaIn, h.Input[car][t]).
			Term(-1/h.etaOut, h.Output[car][t]).
			Term(-1, h.spilling[t])
		rhs := milp.V(prev).Scale(retain).Plus(net.Scale(gain)).Offset(h.inflow[t])

		blk.Add(milp.Index("balance_"+car, t+1), milp.V(level), milp.EQ, rhs)
		blk.Add(milp.Index("size_limit_"+car, t+1), milp.V(level), milp.LE, milp.V(h.SizeVar))
	}
}

// disablePumping fixes input to zero at every timestep.
func (h *Hydro) disablePumping(blk *milp.Block) {
	car := h.carrier
	for t, n := 0, h.Horizon.Performance(); t < n; t++ {
		blk.Add(milp.Index("no_pumping_"+car, t+1), milp.V(h.Input[car][t]), milp.EQ, milp.C(0))
	}
}
