// Package hydro implements an open-loop pumped hydro storage unit with
// natural inflow.
//
// The unit pumps (input) and generates (output) on a single carrier. Its
// reservoir level follows a cyclic balance over the performance timesteps:
// the first timestep continues from the last. Excess water can be spilled.
package hydro

import (
	"errors"
	"fmt"

	"energyhub/internal/climate"
	"energyhub/internal/config"
	"energyhub/internal/milp"
	"energyhub/internal/technology"

	"go.uber.org/zap"
)

// TecType is the tec_type of technology data handled by this package.
const TecType = "hydro_open"

// Hydro is one hydro storage unit at one node. It is built into exactly one
// block and is not safe for concurrent use.
type Hydro struct {
	technology.Base

	Options   Options
	Direction DirectionPolicy
	// EmissionsBasedOn names the flow emissions are accounted on.
	EmissionsBasedOn string

	carrier      string
	etaIn        float64
	etaOut       float64
	lambda       float64
	chargeMax    float64
	dischargeMax float64
	spillingMax  float64
	inflow       []float64
	maxDischarge []float64

	storageLevel []*milp.Var
	spilling     []*milp.Var
	direction    []*milp.Disjunction
}

// New fits a hydro unit to its technology data and climate table. It fails
// with technology.ErrMissingInputData when a required climate series is
// absent and with technology.ErrInfeasibleConfiguration when the data cannot
// describe a physical unit.
func New(cfg config.TechnologyConfig, table *climate.Table, mc config.ModelConfig) (*Hydro, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.TecType != "" && cfg.TecType != TecType {
		return nil, technology.Invalid(cfg.Name, "tec_type", "is %q, expected %q", cfg.TecType, TecType)
	}
	car, err := carrier(cfg)
	if err != nil {
		return nil, err
	}
	opts, _, err := DecodeOptions(cfg.Options)
	if err != nil {
		return nil, technology.Invalid(cfg.Name, "options", "%v", err)
	}

	coeff, horizon, err := fit(cfg, opts, table, mc)
	if err != nil {
		return nil, err
	}

	ti := coeff.TimeIndependent
	h := &Hydro{
		Base: technology.Base{
			Name:             cfg.Name,
			MainInputCarrier: cfg.Performance.MainInputCarrier,
			InputCarriers:    []string{car},
			OutputCarriers:   []string{car},
			Size:             cfg.ToSize(),
			Horizon:          horizon,
			Coeff:            coeff,
		},
		Options:          opts,
		Direction:        opts.Direction(),
		EmissionsBasedOn: "input",
		carrier:          car,
		etaIn:            ti[ParamEtaIn],
		etaOut:           ti[ParamEtaOut],
		lambda:           ti[ParamLambda],
		chargeMax:        ti[ParamChargeMax],
		dischargeMax:     ti[ParamDischargeMax],
		spillingMax:      ti[ParamSpillingMax],
		inflow:           coeff.TimeDependent[SeriesInflow],
		maxDischarge:     coeff.TimeDependent[SeriesMaximumDischarge],
	}
	if h.MainInputCarrier == "" {
		h.MainInputCarrier = car
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	h.Bounds = calculateBounds(h.InputCarriers, h.OutputCarriers, horizon.Performance(), h.chargeMax, h.dischargeMax)
	return h, nil
}

func (h *Hydro) Name() string { return h.Base.Name }

// Carrier is the carrier pumped and generated.
func (h *Hydro) Carrier() string { return h.carrier }

// Build declares the unit's variables and constraints in blk. blk should be
// a fresh block owned by the caller; on error it must be discarded.
func (h *Hydro) Build(blk *milp.Block, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if h.SizeVar != nil {
		return errors.New("technology " + h.Name() + ": already built")
	}
	if err := h.Declare(blk); err != nil {
		return err
	}

	h.declareStorage(blk)
	h.defineBalance(blk)
	if !h.Options.CanPump {
		if h.chargeMax > 0 {
			log.Warn("pumping disabled, charge_max is ignored",
				zap.String("technology", h.Name()),
				zap.Float64("charge_max", h.chargeMax),
			)
		}
		h.disablePumping(blk)
	}
	h.defineExclusivity(blk)
	h.defineFlowLimits(blk)

	mode, err := h.DefineRamping(blk)
	if err != nil {
		return fmt.Errorf("define ramping: %w", err)
	}

	st := blk.Stats()
	log.Debug("built hydro storage",
		zap.String("technology", h.Name()),
		zap.String("carrier", h.carrier),
		zap.Int("timesteps", h.Horizon.Performance()),
		zap.Int("averaged", h.Horizon.Averaged),
		zap.Stringer("direction", h.Direction),
		zap.Stringer("ramping", mode),
		zap.Int("vars", st.Variables),
		zap.Int("constraints", st.Constraints),
		zap.Int("disjunctions", st.Disjunctions),
	)
	return nil
}

// defineFlowLimits bounds charging and discharging by size, output by the
// maximum discharge series and spilling by spilling_max·size.
func (h *Hydro) defineFlowLimits(blk *milp.Block) {
	car := h.carrier
	size := milp.V(h.SizeVar)
	for t, n := 0, h.Horizon.Performance(); t < n; t++ {
		in, out := h.Input[car][t], h.Output[car][t]
		blk.Add(milp.Index("max_charge_"+car, t+1), milp.V(in), milp.LE, size.Scale(h.chargeMax))
		blk.Add(milp.Index("max_discharge_"+car, t+1), milp.V(out), milp.LE, size.Scale(h.dischargeMax))
		if h.Options.MaximumDischargeTimeDiscrete {
			blk.Add(milp.Index("max_discharge_series_"+car, t+1), milp.V(out), milp.LE, milp.C(h.maxDischarge[t]))
		}
		blk.Add(milp.Index("max_spilling", t+1), milp.V(h.spilling[t]), milp.LE, size.Scale(h.spillingMax))
	}
}
