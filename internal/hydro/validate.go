package hydro

import (
	"energyhub/internal/config"
	"energyhub/internal/technology"

	"gonum.org/v1/gonum/floats"
)

// carrier returns the single carrier a hydro unit pumps and generates.
func carrier(cfg config.TechnologyConfig) (string, error) {
	in, out := cfg.Performance.InputCarrier, cfg.Performance.OutputCarrier
	if len(in) != 1 || len(out) != 1 || in[0] != out[0] {
		return "", technology.Invalid(cfg.Name, "performance.input_carrier",
			"must name exactly one carrier shared with output_carrier, got %v and %v", in, out)
	}
	return in[0], nil
}

// validate rejects parameters that cannot describe a physical unit, before
// any variable is declared.
func (h *Hydro) validate() error {
	name := h.Name()
	switch {
	case h.etaIn <= 0 || h.etaIn > 1:
		return technology.Invalid(name, ParamEtaIn, "must be in (0, 1], got %g", h.etaIn)
	case h.etaOut <= 0 || h.etaOut > 1:
		return technology.Invalid(name, ParamEtaOut, "must be in (0, 1], got %g", h.etaOut)
	case h.lambda < 0 || h.lambda >= 1:
		return technology.Invalid(name, ParamLambda, "must be in [0, 1), got %g", h.lambda)
	case h.chargeMax < 0:
		return technology.Invalid(name, ParamChargeMax, "must be >= 0, got %g", h.chargeMax)
	case h.dischargeMax < 0:
		return technology.Invalid(name, ParamDischargeMax, "must be >= 0, got %g", h.dischargeMax)
	case h.spillingMax < 0:
		return technology.Invalid(name, ParamSpillingMax, "must be >= 0, got %g", h.spillingMax)
	}

	if h.Direction != Unrestricted {
		// the cut divides by both maxima
		if h.chargeMax == 0 {
			return technology.Invalid(name, ParamChargeMax, "must be > 0 when allow_only_one_direction is set")
		}
		if h.dischargeMax == 0 {
			return technology.Invalid(name, ParamDischargeMax, "must be > 0 when allow_only_one_direction is set")
		}
	}

	d := h.Coeff.Dynamics
	if d.RampingTime != technology.Disabled && d.RampingTime <= 0 {
		return technology.Invalid(name, "dynamics.ramping_time", "must be > 0 or -1 to disable, got %g", d.RampingTime)
	}
	if d.RefSize != technology.Disabled && d.RefSize <= 0 {
		return technology.Invalid(name, "dynamics.ref_size", "must be > 0 or -1 to disable, got %g", d.RefSize)
	}

	n := h.Horizon.Performance()
	if len(h.inflow) != n {
		return technology.Invalid(name, SeriesInflow, "has %d values, horizon has %d", len(h.inflow), n)
	}
	if h.Options.MaximumDischargeTimeDiscrete {
		if len(h.maxDischarge) != n {
			return technology.Invalid(name, SeriesMaximumDischarge, "has %d values, horizon has %d", len(h.maxDischarge), n)
		}
		if floats.Min(h.maxDischarge) < 0 {
			return technology.Invalid(name, SeriesMaximumDischarge, "must be >= 0, minimum is %g", floats.Min(h.maxDischarge))
		}
	}
	return nil
}
