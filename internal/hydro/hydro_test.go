package hydro

import (
	"errors"
	"strings"
	"testing"

	"energyhub/internal/climate"
	"energyhub/internal/config"
	"energyhub/internal/milp"
	"energyhub/internal/technology"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

const name = "Hydro_Open"

const car = "electricity"

// baseConfig is Scenario A: a fixed 100-unit reservoir, lossless, pumping
// and generating up to half the size, no exclusivity.
func baseConfig() config.TechnologyConfig {
	return config.TechnologyConfig{
		Name:        name,
		TecType:     TecType,
		SizeMax:     100,
		Existing:    true,
		SizeInitial: 100,
		Performance: config.PerformanceConfig{
			MainInputCarrier: car,
			InputCarrier:     []string{car},
			OutputCarrier:    []string{car},
			Parameters: map[string]float64{
				ParamEtaIn:        1,
				ParamEtaOut:       1,
				ParamLambda:       0,
				ParamChargeMax:    0.5,
				ParamDischargeMax: 0.5,
				ParamSpillingMax:  1,
			},
		},
		Options: map[string]any{
			"can_pump":                        1,
			"allow_only_one_direction":        0,
			"maximum_discharge_time_discrete": 0,
		},
	}
}

func withOptions(cfg config.TechnologyConfig, opts map[string]any) config.TechnologyConfig {
	merged := make(map[string]any, len(cfg.Options)+len(opts))
	for k, v := range cfg.Options {
		merged[k] = v
	}
	for k, v := range opts {
		merged[k] = v
	}
	cfg.Options = merged
	return cfg
}

func withParam(cfg config.TechnologyConfig, key string, v float64) config.TechnologyConfig {
	params := make(map[string]float64, len(cfg.Performance.Parameters))
	for k, x := range cfg.Performance.Parameters {
		params[k] = x
	}
	params[key] = v
	cfg.Performance.Parameters = params
	return cfg
}

func inflowTable(t *testing.T, inflow ...float64) *climate.Table {
	t.Helper()
	tab, err := climate.NewTable(map[string][]float64{InflowColumn(name): inflow})
	require.NoError(t, err)
	return tab
}

type fixture struct {
	h   *Hydro
	blk *milp.Block
	m   *milp.Model
}

func build(t *testing.T, cfg config.TechnologyConfig, tab *climate.Table, mc config.ModelConfig) fixture {
	t.Helper()
	h, err := New(cfg, tab, mc)
	require.NoError(t, err)
	blk := milp.NewBlock("NO1." + name)
	require.NoError(t, h.Build(blk, zaptest.NewLogger(t)))
	m := milp.NewModel()
	require.NoError(t, m.Attach(blk))
	return fixture{h: h, blk: blk, m: m}
}

func (f fixture) lower(t *testing.T, tr milp.Transformation) *milp.Lowered {
	t.Helper()
	l, err := milp.Lower(f.m, milp.LowerOptions{Transformation: tr})
	require.NoError(t, err)
	return l
}

// operating point; nil series are zero
type state struct {
	size                  float64
	in, out, spill, level []float64
	direction             []float64
}

func (f fixture) point(l *milp.Lowered, s state) []float64 {
	vals := map[*milp.Var]float64{f.h.SizeVar: s.size}
	set := func(vars []*milp.Var, xs []float64) {
		for t, x := range xs {
			vals[vars[t]] = x
		}
	}
	set(f.h.Input[car], s.in)
	set(f.h.Output[car], s.out)
	set(f.h.Spilling(), s.spill)
	set(f.h.StorageLevel(), s.level)
	for t, x := range s.direction {
		vals[f.h.DirectionDisjunctions()[t].Binaries[0]] = x
	}
	return l.Point(vals)
}

func constraintNames(blk *milp.Block) []string {
	var out []string
	for _, c := range blk.Constraints() {
		out = append(out, c.Name)
	}
	return out
}

func TestFitCopiesCoefficients(t *testing.T) {
	h, err := New(baseConfig(), inflowTable(t, 1, 2, 3), config.ModelConfig{})
	require.NoError(t, err)

	assert.Equal(t, name, h.Name())
	assert.Equal(t, car, h.Carrier())
	assert.Equal(t, car, h.MainInputCarrier)
	assert.Equal(t, "input", h.EmissionsBasedOn)
	assert.Equal(t, Unrestricted, h.Direction)

	v, ok := h.Coeff.Scalar(ParamChargeMax)
	require.True(t, ok)
	assert.Equal(t, 0.5, v)
	inflow, ok := h.Coeff.Series(SeriesInflow)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, inflow)
	_, ok = h.Coeff.Series(SeriesMaximumDischarge)
	assert.False(t, ok)

	lo, hi := h.Bounds.Output[car].At(2)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.5, hi)
	assert.Equal(t, 3, h.Bounds.Input[car].Len())
}

// Scenario A: every corner of [0,50]x[0,50] is reachable at a timestep,
// nothing beyond it is.
func TestScenarioAFullBox(t *testing.T) {
	f := build(t, baseConfig(), inflowTable(t, 0, 0), config.ModelConfig{})
	l := f.lower(t, milp.BigM)

	assert.Empty(t, l.Violations(f.point(l, state{size: 100}), 1e-9), "all-zero flows")

	for _, a := range []float64{0, 50} {
		for _, b := range []float64{0, 50} {
			x := f.point(l, state{
				size:  100,
				in:    []float64{a, b},
				out:   []float64{b, a},
				level: []float64{50 + a - b, 50},
			})
			assert.Empty(t, l.Violations(x, 1e-9), "input %v output %v", a, b)
		}
	}

	x := f.point(l, state{size: 100, in: []float64{51, 0}, out: []float64{0, 51}, level: []float64{100, 49}})
	assert.NotEmpty(t, l.Violations(x, 1e-9))
	x = f.point(l, state{size: 100, in: []float64{0, 51}, out: []float64{51, 0}, level: []float64{0, 51}})
	assert.NotEmpty(t, l.Violations(x, 1e-9))

	for _, n := range constraintNames(f.blk) {
		assert.NotContains(t, n, "bidirectional_cut")
	}
	assert.Empty(t, f.blk.Disjunctions())
}

// Scenario B: input is forced to zero whatever charge_max says.
func TestScenarioBNoPumping(t *testing.T) {
	cfg := withOptions(baseConfig(), map[string]any{"can_pump": false})
	f := build(t, cfg, inflowTable(t, 0, 0, 0), config.ModelConfig{})

	for step := 1; step <= 3; step++ {
		c, ok := f.blk.Constraint(milp.Index("no_pumping_"+car, step))
		require.True(t, ok, "timestep %d", step)
		assert.Equal(t, milp.EQ, c.Sense)
		assert.Equal(t, 0.0, c.RHS)
		assert.Equal(t, 1.0, c.Expr.Coef(f.h.Input[car][step-1]))
	}

	l := f.lower(t, milp.BigM)
	x := f.point(l, state{size: 100, in: []float64{10, 0, 0}, spill: []float64{10, 0, 0}})
	v := l.Violations(x, 1e-9)
	require.Len(t, v, 1)
	assert.Contains(t, v[0], "no_pumping_electricity(1)")
}

// Scenario C: a missing inflow column names the technology and the column.
func TestScenarioCMissingInflow(t *testing.T) {
	tab, err := climate.NewTable(map[string][]float64{"Other_inflow": {1, 2}})
	require.NoError(t, err)

	_, err = New(baseConfig(), tab, config.ModelConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, technology.ErrMissingInputData))
	var missing *technology.MissingInputDataError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, name, missing.Technology)
	assert.Equal(t, "Hydro_Open_inflow", missing.Column)

	_, err = New(baseConfig(), nil, config.ModelConfig{})
	assert.ErrorIs(t, err, technology.ErrMissingInputData)
}

func TestMissingMaximumDischarge(t *testing.T) {
	cfg := withOptions(baseConfig(), map[string]any{"maximum_discharge_time_discrete": true})
	_, err := New(cfg, inflowTable(t, 0, 0), config.ModelConfig{})
	var missing *technology.MissingInputDataError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Hydro_Open_maximum_discharge", missing.Column)

	// the default also requires the series
	cfg.Options = nil
	_, err = New(cfg, inflowTable(t, 0, 0), config.ModelConfig{})
	assert.ErrorIs(t, err, technology.ErrMissingInputData)
}

func TestMaximumDischargeSeries(t *testing.T) {
	cfg := withOptions(baseConfig(), map[string]any{"maximum_discharge_time_discrete": 1})
	tab, err := climate.NewTable(map[string][]float64{
		InflowColumn(name):           {0, 0, 0},
		MaximumDischargeColumn(name): {10, 0, 30},
	})
	require.NoError(t, err)
	f := build(t, cfg, tab, config.ModelConfig{})

	for step, want := range []float64{10, 0, 30} {
		c, ok := f.blk.Constraint(milp.Index("max_discharge_series_"+car, step+1))
		require.True(t, ok)
		assert.Equal(t, want, c.RHS)
		assert.Equal(t, milp.LE, c.Sense)
	}
}

// Scenario D: the disabled sentinel emits no ramping rows at all.
func TestScenarioDRampingDisabled(t *testing.T) {
	cfg := baseConfig()
	off := technology.Disabled
	cfg.Dynamics.RampingTime = &off
	f := build(t, cfg, inflowTable(t, 0, 0, 0, 0), config.ModelConfig{})
	for _, n := range constraintNames(f.blk) {
		assert.NotContains(t, n, "ramp_")
	}
	assert.Empty(t, f.blk.Disjunctions())
	assert.Nil(t, f.h.State)
}

func TestContinuousRampingSkipsFirstTimestep(t *testing.T) {
	cfg := baseConfig()
	rt := 4.0
	cfg.Dynamics.RampingTime = &rt
	f := build(t, cfg, inflowTable(t, 0, 0, 0, 0), config.ModelConfig{})

	_, ok := f.blk.Constraint("ramp_up_output(1)")
	assert.False(t, ok)
	for step := 2; step <= 4; step++ {
		for _, n := range []string{"ramp_up_input", "ramp_down_input", "ramp_up_output", "ramp_down_output"} {
			_, ok := f.blk.Constraint(milp.Index(n, step))
			assert.True(t, ok, "%s(%d)", n, step)
		}
	}

	// size 100 over ramping_time 4 allows steps of 25; the drop from the
	// last timestep back to the first is not limited
	l := f.lower(t, milp.BigM)
	flows := []float64{0, 25, 50, 50}
	x := f.point(l, state{size: 100, in: flows, out: flows})
	assert.Empty(t, l.Violations(x, 1e-9))

	flows = []float64{0, 50, 50, 50}
	x = f.point(l, state{size: 100, in: flows, out: flows})
	v := strings.Join(l.Violations(x, 1e-9), "\n")
	assert.Contains(t, v, "ramp_up_input(2)")
	assert.Contains(t, v, "ramp_up_output(2)")
}

func TestStateCoupledRamping(t *testing.T) {
	cfg := baseConfig()
	rt := 4.0
	cfg.Dynamics = config.DynamicsConfig{RampingTime: &rt, RampingConstInt: true}
	f := build(t, cfg, inflowTable(t, 0, 0, 0), config.ModelConfig{})

	require.Len(t, f.h.State, 3)
	dis := f.blk.Disjunctions()
	require.Len(t, dis, 2)
	assert.Equal(t, "NO1.Hydro_Open.ramping_state(2)", dis[0].Name)
	assert.Len(t, dis[0].Binaries, 3)

	for _, tr := range []milp.Transformation{milp.BigM, milp.Hull} {
		l := f.lower(t, tr)
		_, ok := l.Row("NO1.Hydro_Open.ramping_state(3).exactly_one")
		assert.True(t, ok, tr.String())
	}
}

// With zero flows and zero inflow, only a level that survives one decay
// around the horizon is feasible: L = L·(1-λ)^k.
func TestBalanceIsCyclic(t *testing.T) {
	t.Run("lossless keeps any level", func(t *testing.T) {
		f := build(t, baseConfig(), inflowTable(t, 0, 0, 0, 0), config.ModelConfig{})
		l := f.lower(t, milp.BigM)
		x := f.point(l, state{size: 100, level: []float64{70, 70, 70, 70}})
		assert.Empty(t, l.Violations(x, 1e-9))
	})

	t.Run("self discharge drains to zero", func(t *testing.T) {
		cfg := withParam(baseConfig(), ParamLambda, 0.1)
		f := build(t, cfg, inflowTable(t, 0, 0, 0, 0), config.ModelConfig{})

		first, ok := f.blk.Constraint("balance_electricity(1)")
		require.True(t, ok)
		levels := f.h.StorageLevel()
		assert.Equal(t, 1.0, first.Expr.Coef(levels[0]))
		assert.InDelta(t, -0.9, first.Expr.Coef(levels[3]), 1e-12)
		assert.Equal(t, 0.0, first.Expr.Coef(levels[1]))

		l := f.lower(t, milp.BigM)
		assert.Empty(t, l.Violations(f.point(l, state{size: 100}), 1e-9))
		x := f.point(l, state{size: 100, level: []float64{70, 70, 70, 70}})
		assert.NotEmpty(t, l.Violations(x, 1e-9))
	})

	t.Run("decaying cycle closes with inflow", func(t *testing.T) {
		// level 10 decays to 9; an inflow of 1 refills it every step
		cfg := withParam(baseConfig(), ParamLambda, 0.1)
		f := build(t, cfg, inflowTable(t, 1, 1, 1), config.ModelConfig{})
		l := f.lower(t, milp.BigM)
		x := f.point(l, state{size: 100, level: []float64{10, 10, 10}})
		assert.Empty(t, l.Violations(x, 1e-9))
	})
}

func TestTimeStagingAveragesAndDecays(t *testing.T) {
	cfg := withParam(withParam(baseConfig(), ParamLambda, 0.1), ParamEtaIn, 0.9)
	f := build(t, cfg, inflowTable(t, 1, 3, 5, 7), config.ModelConfig{TimeStaging: 2})

	assert.Equal(t, 2, f.h.Horizon.Performance())
	require.Len(t, f.h.StorageLevel(), 2)
	staged, _ := f.h.Coeff.Series(SeriesInflow)
	assert.Equal(t, []float64{2, 6}, staged)

	c, ok := f.blk.Constraint("balance_electricity(1)")
	require.True(t, ok)
	levels := f.h.StorageLevel()
	// (1-λ)^2 on the previous level, (1 + (1-λ)) on the net flow
	assert.InDelta(t, -0.81, c.Expr.Coef(levels[1]), 1e-12)
	assert.InDelta(t, -0.9*1.9, c.Expr.Coef(f.h.Input[car][0]), 1e-12)
	assert.InDelta(t, 1.9, c.Expr.Coef(f.h.Output[car][0]), 1e-12)
	assert.InDelta(t, 1.9, c.Expr.Coef(f.h.Spilling()[0]), 1e-12)
	assert.Equal(t, 2.0, c.RHS)
}

func TestTimeStagingPartialBlock(t *testing.T) {
	cfg := withParam(baseConfig(), ParamLambda, 0.5)
	f := build(t, cfg, inflowTable(t, 1, 1, 1, 1, 8), config.ModelConfig{TimeStaging: 2})

	require.Equal(t, 3, f.h.Horizon.Performance())
	staged, _ := f.h.Coeff.Series(SeriesInflow)
	assert.Equal(t, []float64{1, 1, 8}, staged)
	levels := f.h.StorageLevel()

	// balance(1) and balance(2) span two full steps
	c, ok := f.blk.Constraint("balance_electricity(1)")
	require.True(t, ok)
	assert.InDelta(t, -0.25, c.Expr.Coef(levels[2]), 1e-12)
	assert.InDelta(t, 1.5, c.Expr.Coef(f.h.Spilling()[0]), 1e-12)

	// the trailing block holds a single step
	c, ok = f.blk.Constraint("balance_electricity(3)")
	require.True(t, ok)
	assert.InDelta(t, -0.5, c.Expr.Coef(levels[1]), 1e-12)
	assert.InDelta(t, -1, c.Expr.Coef(f.h.Input[car][2]), 1e-12)
	assert.InDelta(t, 1, c.Expr.Coef(f.h.Spilling()[2]), 1e-12)
	assert.Equal(t, 8.0, c.RHS)
}

func TestStorageLevelStartsAtZero(t *testing.T) {
	cfg := baseConfig()
	cfg.Existing = false
	cfg.SizeMin = 40
	f := build(t, cfg, inflowTable(t, 0, 0), config.ModelConfig{})

	assert.Equal(t, 40.0, f.h.SizeVar.Lower())
	for _, v := range f.h.StorageLevel() {
		assert.Equal(t, 0.0, v.Lower())
		assert.Equal(t, 100.0, v.Upper())
	}
	l := f.lower(t, milp.BigM)
	assert.Empty(t, l.Violations(f.point(l, state{size: 40}), 1e-9))
}

func TestPumpingDisabledWarnsOnChargeBound(t *testing.T) {
	cfg := withOptions(baseConfig(), map[string]any{"can_pump": 0})
	h, err := New(cfg, inflowTable(t, 0, 0), config.ModelConfig{})
	require.NoError(t, err)
	core, logs := observer.New(zapcore.WarnLevel)
	require.NoError(t, h.Build(milp.NewBlock("NO1."+name), zap.New(core)))

	entries := logs.FilterMessage("pumping disabled, charge_max is ignored").All()
	require.Len(t, entries, 1)
	assert.Equal(t, 0.5, entries[0].ContextMap()["charge_max"])

	cfg = withParam(cfg, ParamChargeMax, 0)
	h, err = New(cfg, inflowTable(t, 0, 0), config.ModelConfig{})
	require.NoError(t, err)
	core, logs = observer.New(zapcore.WarnLevel)
	require.NoError(t, h.Build(milp.NewBlock("NO1."+name), zap.New(core)))
	assert.Zero(t, logs.Len())
}

func TestFlowLimitsFollowSize(t *testing.T) {
	cfg := baseConfig()
	cfg.Existing = false
	f := build(t, cfg, inflowTable(t, 0, 0), config.ModelConfig{})
	assert.Equal(t, 0.0, f.h.SizeVar.Lower())
	assert.Equal(t, 100.0, f.h.SizeVar.Upper())

	l := f.lower(t, milp.BigM)
	// pumping 30 into a 40-unit plant exceeds 0.5·40
	x := f.point(l, state{size: 40, in: []float64{30, 0}, spill: []float64{30, 0}})
	v := l.Violations(x, 1e-9)
	require.NotEmpty(t, v)
	assert.Contains(t, strings.Join(v, "\n"), "max_charge_electricity(1)")

	// storage level may not exceed the built size
	x = f.point(l, state{size: 20, level: []float64{30, 30}})
	assert.Contains(t, strings.Join(l.Violations(x, 1e-9), "\n"), "size_limit_electricity(1)")
}

func TestSpillingFollowsSize(t *testing.T) {
	cfg := withParam(baseConfig(), ParamSpillingMax, 0.1)
	cfg.Existing = false
	f := build(t, cfg, inflowTable(t, 0, 0), config.ModelConfig{})
	l := f.lower(t, milp.BigM)

	x := f.point(l, state{size: 10, in: []float64{1, 0}, spill: []float64{1, 0}})
	assert.Empty(t, l.Violations(x, 1e-9))

	x = f.point(l, state{size: 10, in: []float64{5, 0}, spill: []float64{5, 0}})
	v := l.Violations(x, 1e-9)
	require.Len(t, v, 1)
	assert.Contains(t, v[0], "max_spilling(1)")
}

func TestRelaxedCutAllowsSimultaneousFlows(t *testing.T) {
	cfg := withOptions(baseConfig(), map[string]any{"allow_only_one_direction": 1, "bidirectional_precise": 0})
	f := build(t, cfg, inflowTable(t, 0, 0), config.ModelConfig{})
	assert.Equal(t, RelaxedCut, f.h.Direction)
	assert.Empty(t, f.blk.Disjunctions())

	c, ok := f.blk.Constraint("bidirectional_cut_electricity(1)")
	require.True(t, ok)
	assert.Equal(t, 2.0, c.Expr.Coef(f.h.Input[car][0]))
	assert.Equal(t, 2.0, c.Expr.Coef(f.h.Output[car][0]))
	assert.Equal(t, -1.0, c.Expr.Coef(f.h.SizeVar))

	l := f.lower(t, milp.BigM)
	// simultaneous 20/20 fits the weighted sum: 40 + 40 <= 100
	both := f.point(l, state{size: 100, in: []float64{20, 0}, out: []float64{20, 0}})
	assert.Empty(t, l.Violations(both, 1e-9))
	// 30/30 does not: 60 + 60 > 100
	tooMuch := f.point(l, state{size: 100, in: []float64{30, 0}, out: []float64{30, 0}})
	assert.Contains(t, strings.Join(l.Violations(tooMuch, 1e-9), "\n"), "bidirectional_cut_electricity(1)")
}

func TestExactDisjunctionExcludesSimultaneousFlows(t *testing.T) {
	cfg := withOptions(baseConfig(), map[string]any{"allow_only_one_direction": 1, "bidirectional_precise": 1})
	f := build(t, cfg, inflowTable(t, 0, 0), config.ModelConfig{})
	assert.Equal(t, ExactDisjunctive, f.h.Direction)

	// the cut stays in place under the exact policy
	_, ok := f.blk.Constraint("bidirectional_cut_electricity(1)")
	assert.True(t, ok)

	dis := f.h.DirectionDisjunctions()
	require.Len(t, dis, 2)
	require.Len(t, dis[0].Binaries, 1)
	assert.Equal(t, "NO1.Hydro_Open.direction(1)", dis[0].Binaries[0].Name())

	l := f.lower(t, milp.BigM)
	for _, d := range []float64{0, 1} {
		x := f.point(l, state{size: 100, in: []float64{20, 0}, out: []float64{20, 0}, direction: []float64{d, 0}})
		assert.NotEmpty(t, l.Violations(x, 1e-9), "direction %v", d)
	}

	pumping := f.point(l, state{size: 100, in: []float64{20, 0}, spill: []float64{20, 0}, direction: []float64{0, 0}})
	assert.Empty(t, l.Violations(pumping, 1e-9))
	generating := f.point(l, state{size: 100, out: []float64{20, 0}, in: []float64{0, 20}, level: []float64{30, 50}, direction: []float64{1, 0}})
	assert.Empty(t, l.Violations(generating, 1e-9))

	// both flows have finite bounds, so the hull reformulation applies too
	hull := f.lower(t, milp.Hull)
	assert.Greater(t, len(hull.Vars), len(l.Vars))
}

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	negative := -1.0
	zero := 0.0
	tests := []struct {
		name  string
		cfg   func() config.TechnologyConfig
		field string
	}{
		{"eta_in zero", func() config.TechnologyConfig { return withParam(baseConfig(), ParamEtaIn, 0) }, ParamEtaIn},
		{"eta_out above one", func() config.TechnologyConfig { return withParam(baseConfig(), ParamEtaOut, 1.2) }, ParamEtaOut},
		{"lambda one", func() config.TechnologyConfig { return withParam(baseConfig(), ParamLambda, 1) }, ParamLambda},
		{"negative charge", func() config.TechnologyConfig { return withParam(baseConfig(), ParamChargeMax, -0.1) }, ParamChargeMax},
		{"negative spilling", func() config.TechnologyConfig { return withParam(baseConfig(), ParamSpillingMax, -1) }, ParamSpillingMax},
		{"cut needs charge_max", func() config.TechnologyConfig {
			return withParam(withOptions(baseConfig(), map[string]any{"allow_only_one_direction": 1}), ParamChargeMax, 0)
		}, ParamChargeMax},
		{"cut needs discharge_max", func() config.TechnologyConfig {
			return withParam(withOptions(baseConfig(), map[string]any{"allow_only_one_direction": 1}), ParamDischargeMax, 0)
		}, ParamDischargeMax},
		{"ramping time zero", func() config.TechnologyConfig {
			c := baseConfig()
			c.Dynamics.RampingTime = &zero
			return c
		}, "dynamics.ramping_time"},
		{"ref size negative", func() config.TechnologyConfig {
			c := baseConfig()
			rt, ref := 2.0, -5.0
			c.Dynamics.RampingTime, c.Dynamics.RefSize = &rt, &ref
			return c
		}, "dynamics.ref_size"},
		{"two carriers", func() config.TechnologyConfig {
			c := baseConfig()
			c.Performance.OutputCarrier = []string{car, "heat"}
			return c
		}, "performance.input_carrier"},
		{"wrong type", func() config.TechnologyConfig {
			c := baseConfig()
			c.TecType = "battery"
			return c
		}, "tec_type"},
		{"missing parameter", func() config.TechnologyConfig {
			c := baseConfig()
			c.Performance.Parameters = map[string]float64{ParamEtaIn: 1}
			return c
		}, "performance.parameters.eta_out"},
		{"bad option", func() config.TechnologyConfig {
			return withOptions(baseConfig(), map[string]any{"can_pump": map[string]int{"x": 1}})
		}, "options"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg(), inflowTable(t, 0, 0), config.ModelConfig{})
			require.Error(t, err)
			assert.ErrorIs(t, err, technology.ErrInfeasibleConfiguration)
			var ce *technology.ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
			assert.Equal(t, name, ce.Technology)
		})
	}

	t.Run("negative maximum discharge", func(t *testing.T) {
		cfg := withOptions(baseConfig(), map[string]any{"maximum_discharge_time_discrete": 1})
		tab, err := climate.NewTable(map[string][]float64{
			InflowColumn(name):           {0, 0},
			MaximumDischargeColumn(name): {5, negative},
		})
		require.NoError(t, err)
		_, err = New(cfg, tab, config.ModelConfig{})
		assert.ErrorIs(t, err, technology.ErrInfeasibleConfiguration)
	})
}

// can_pump=false with a nonzero charge_max is valid: pumping is simply
// disabled.
func TestNoPumpingWithChargeMaxIsValid(t *testing.T) {
	cfg := withOptions(withParam(baseConfig(), ParamChargeMax, 0.8), map[string]any{"can_pump": 0})
	_, err := New(cfg, inflowTable(t, 0, 0), config.ModelConfig{})
	assert.NoError(t, err)
}

func TestBuildTwiceFails(t *testing.T) {
	f := build(t, baseConfig(), inflowTable(t, 0), config.ModelConfig{})
	assert.Error(t, f.h.Build(milp.NewBlock("again"), nil))
}

func TestOperation(t *testing.T) {
	f := build(t, baseConfig(), inflowTable(t, 0, 0), config.ModelConfig{})

	_, err := f.h.Operation()
	assert.Error(t, err)

	values := map[string]float64{"NO1.Hydro_Open.size": 100}
	for i, v := range f.h.StorageLevel() {
		values[v.Name()] = float64(10 * (i + 1))
	}
	for i, v := range f.h.Spilling() {
		values[v.Name()] = float64(i)
	}
	for i, v := range f.h.Input[car] {
		values[v.Name()] = float64(i + 5)
	}
	for _, v := range f.h.Output[car] {
		values[v.Name()] = 1
	}
	f.m.ApplySolution(values)

	op, err := f.h.Operation()
	require.NoError(t, err)
	assert.Equal(t, 100.0, op.Size)
	assert.Equal(t, []float64{10, 20}, op.StorageLevel)
	assert.Equal(t, []float64{0, 1}, op.Spilling)
	assert.Equal(t, []float64{5, 6}, op.Input)

	series := op.Series()
	assert.Equal(t, []float64{10, 20}, series["storage_level_electricity"])
	assert.Equal(t, []float64{0, 1}, series["spilling"])
	assert.Equal(t, []float64{1, 1}, series["output_electricity"])
	assert.Len(t, series, 4)
}
