package hydro

import "energyhub/internal/milp"

// defineExclusivity emits the constraints of the direction policy. The cut
// is present under both restricting policies; ExactDisjunctive adds the
// direction disjunction on top.
func (h *Hydro) defineExclusivity(blk *milp.Block) {
	if h.Direction == Unrestricted {
		return
	}
	car := h.carrier
	n := h.Horizon.Performance()
	for t := 0; t < n; t++ {
		in, out := h.Input[car][t], h.Output[car][t]
		lhs := milp.Expr{}.Term(1/h.dischargeMax, out).Term(1/h.chargeMax, in)
		blk.Add(milp.Index("bidirectional_cut_"+car, t+1), lhs, milp.LE, milp.V(h.SizeVar))
	}
	if h.Direction != ExactDisjunctive {
		return
	}
	h.direction = make([]*milp.Disjunction, n)
	for t := 0; t < n; t++ {
		dis := blk.NewDisjunction(milp.Index("direction", t+1), "input_only", "output_only")
		dis.Branch(0).Add("output_zero", milp.V(h.Output[car][t]), milp.EQ, milp.C(0))
		dis.Branch(1).Add("input_zero", milp.V(h.Input[car][t]), milp.EQ, milp.C(0))
		h.direction[t] = dis
	}
}
