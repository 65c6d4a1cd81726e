package technology

import "fmt"

// Disabled is the sentinel for an unset dynamics parameter.
const Disabled = -1.0

// Dynamics holds the parameters of the ramping formulation.
type Dynamics struct {
	// RampingTime is the number of timesteps needed to ramp from zero to
	// full size. Disabled turns ramping off entirely.
	RampingTime float64
	// RefSize replaces the installed size in the ramping rate when set.
	RefSize float64
	// RampingConstInt couples ramping to an on/off state: the rate bounds are
	// waived on startup and shutdown.
	RampingConstInt bool
}

func DefaultDynamics() Dynamics {
	return Dynamics{RampingTime: Disabled, RefSize: Disabled}
}

// RampingMode is the ramping formulation, resolved once per build.
type RampingMode int

const (
	RampingOff RampingMode = iota
	RampingContinuous
	RampingStateCoupled
)

func (m RampingMode) String() string {
	switch m {
	case RampingOff:
		return "off"
	case RampingContinuous:
		return "continuous"
	case RampingStateCoupled:
		return "state_coupled"
	default:
		return fmt.Sprintf("RampingMode(%d)", int(m))
	}
}

// Mode resolves the ramping formulation.
func (d Dynamics) Mode() RampingMode {
	switch {
	case d.RampingTime == Disabled:
		return RampingOff
	case d.RampingConstInt:
		return RampingStateCoupled
	default:
		return RampingContinuous
	}
}

// Coefficients are the fitted performance parameters of a technology.
// TimeDependentFull holds series over the full horizon, TimeDependent the
// same series over the performance timesteps.
type Coefficients struct {
	TimeIndependent   map[string]float64
	TimeDependentFull map[string][]float64
	TimeDependent     map[string][]float64
	Dynamics          Dynamics
}

func NewCoefficients() Coefficients {
	return Coefficients{
		TimeIndependent:   make(map[string]float64),
		TimeDependentFull: make(map[string][]float64),
		TimeDependent:     make(map[string][]float64),
		Dynamics:          DefaultDynamics(),
	}
}

// Scalar returns a time-independent coefficient.
func (c Coefficients) Scalar(name string) (float64, bool) {
	v, ok := c.TimeIndependent[name]
	return v, ok
}

// Series returns a copy of a time-dependent coefficient over the
// performance timesteps.
func (c Coefficients) Series(name string) ([]float64, bool) {
	s, ok := c.TimeDependent[name]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), s...), true
}
