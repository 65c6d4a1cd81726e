package hydro

import "energyhub/internal/technology"

// calculateBounds gives input [0, charge_max] and output [0, discharge_max]
// at every performance timestep, as fractions of size.
func calculateBounds(inputs, outputs []string, n int, chargeMax, dischargeMax float64) technology.FlowBounds {
	fb := technology.FlowBounds{
		Input:  make(map[string]technology.Bounds, len(inputs)),
		Output: make(map[string]technology.Bounds, len(outputs)),
	}
	for _, car := range inputs {
		fb.Input[car] = technology.ConstantBounds(n, 0, chargeMax)
	}
	for _, car := range outputs {
		fb.Output[car] = technology.ConstantBounds(n, 0, dischargeMax)
	}
	return fb
}
