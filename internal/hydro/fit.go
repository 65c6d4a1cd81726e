package hydro

import (
	"energyhub/internal/climate"
	"energyhub/internal/config"
	"energyhub/internal/technology"
)

// Performance parameter names.
const (
	ParamEtaIn        = "eta_in"
	ParamEtaOut       = "eta_out"
	ParamLambda       = "lambda"
	ParamChargeMax    = "charge_max"
	ParamDischargeMax = "discharge_max"
	ParamSpillingMax  = "spilling_max"
)

// Time-dependent coefficient names.
const (
	SeriesInflow           = "hydro_inflow"
	SeriesMaximumDischarge = "hydro_maximum_discharge"
)

var requiredParams = []string{ParamEtaIn, ParamEtaOut, ParamLambda, ParamChargeMax, ParamDischargeMax, ParamSpillingMax}

// InflowColumn is the climate column holding the natural inflow of a
// technology. Values may be negative (net outflow).
func InflowColumn(name string) string { return name + "_inflow" }

// MaximumDischargeColumn is the climate column bounding output per timestep.
func MaximumDischargeColumn(name string) string { return name + "_maximum_discharge" }

// fit copies performance parameters into the time-independent coefficients
// and pulls the inflow and maximum discharge series out of the climate table.
// The full-horizon series are staged onto the performance timesteps.
func fit(cfg config.TechnologyConfig, opts Options, table *climate.Table, mc config.ModelConfig) (technology.Coefficients, technology.Horizon, error) {
	coeff := technology.NewCoefficients()
	for k, v := range cfg.Performance.Parameters {
		coeff.TimeIndependent[k] = v
	}
	for _, p := range requiredParams {
		if _, ok := coeff.TimeIndependent[p]; !ok {
			return coeff, technology.Horizon{}, technology.Invalid(cfg.Name, "performance.parameters."+p, "is required")
		}
	}
	coeff.Dynamics = cfg.Dynamics.ToDynamics()

	if table == nil {
		return coeff, technology.Horizon{}, technology.Missing(cfg.Name, InflowColumn(cfg.Name))
	}
	inflow, ok := table.Column(InflowColumn(cfg.Name))
	if !ok {
		return coeff, technology.Horizon{}, technology.Missing(cfg.Name, InflowColumn(cfg.Name))
	}
	coeff.TimeDependentFull[SeriesInflow] = inflow

	if opts.MaximumDischargeTimeDiscrete {
		md, ok := table.Column(MaximumDischargeColumn(cfg.Name))
		if !ok {
			return coeff, technology.Horizon{}, technology.Missing(cfg.Name, MaximumDischargeColumn(cfg.Name))
		}
		coeff.TimeDependentFull[SeriesMaximumDischarge] = md
	}

	horizon, err := technology.NewHorizon(len(inflow), mc.TimeStaging)
	if err != nil {
		return coeff, technology.Horizon{}, technology.Invalid(cfg.Name, "horizon", "%v", err)
	}
	for name, full := range coeff.TimeDependentFull {
		staged, err := horizon.Stage(full)
		if err != nil {
			return coeff, technology.Horizon{}, technology.Invalid(cfg.Name, name, "%v", err)
		}
		coeff.TimeDependent[name] = staged
	}
	return coeff, horizon, nil
}
