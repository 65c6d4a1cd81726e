package results

import "math"

// Mode is a human-friendly operating mode for a timestep.
// Keep these values stable; they are intended for CSV output.
type Mode string

const (
	ModePumping      Mode = "PUMPING"
	ModeIdle         Mode = "IDLE"
	ModeGenerating   Mode = "GENERATING"
	ModeSimultaneous Mode = "SIMULTANEOUS"
)

// FlowTolerance is the magnitude below which a solved flow counts as zero.
const FlowTolerance = 1e-6

func ModeFromFlows(input, output float64) Mode {
	in := math.Abs(input) > FlowTolerance
	out := math.Abs(output) > FlowTolerance
	switch {
	case in && out:
		return ModeSimultaneous
	case in:
		return ModePumping
	case out:
		return ModeGenerating
	default:
		return ModeIdle
	}
}
