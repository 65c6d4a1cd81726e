package hydro

import (
	"fmt"

	"energyhub/internal/milp"
)

// Operation is the solved operation of one unit, one value per performance
// timestep.
type Operation struct {
	Technology   string
	Carrier      string
	Size         float64
	Input        []float64
	Output       []float64
	Spilling     []float64
	StorageLevel []float64
}

// Series returns the named result series: spilling, storage_level_<carrier>
// and the input_<carrier> and output_<carrier> flows.
func (op *Operation) Series() map[string][]float64 {
	return map[string][]float64{
		"spilling":                    op.Spilling,
		"storage_level_" + op.Carrier: op.StorageLevel,
		"input_" + op.Carrier:         op.Input,
		"output_" + op.Carrier:        op.Output,
	}
}

// StorageLevel returns the declared reservoir level series.
func (h *Hydro) StorageLevel() []*milp.Var { return append([]*milp.Var(nil), h.storageLevel...) }

// Spilling returns the declared spilling series.
func (h *Hydro) Spilling() []*milp.Var { return append([]*milp.Var(nil), h.spilling...) }

// DirectionDisjunctions returns the per-timestep direction disjunctions,
// empty unless the direction policy is ExactDisjunctive.
func (h *Hydro) DirectionDisjunctions() []*milp.Disjunction {
	return append([]*milp.Disjunction(nil), h.direction...)
}

// Operation reads the solved values back. It fails if the unit was never
// built or a variable has no value.
func (h *Hydro) Operation() (*Operation, error) {
	if h.SizeVar == nil {
		return nil, fmt.Errorf("technology %s: not built", h.Name())
	}
	size, ok := h.SizeVar.Value()
	if !ok {
		return nil, fmt.Errorf("technology %s: size has no solved value", h.Name())
	}
	op := &Operation{Technology: h.Name(), Carrier: h.carrier, Size: size}
	var err error
	if op.Input, err = values(h.Input[h.carrier]); err != nil {
		return nil, fmt.Errorf("technology %s: %w", h.Name(), err)
	}
	if op.Output, err = values(h.Output[h.carrier]); err != nil {
		return nil, fmt.Errorf("technology %s: %w", h.Name(), err)
	}
	if op.Spilling, err = values(h.spilling); err != nil {
		return nil, fmt.Errorf("technology %s: %w", h.Name(), err)
	}
	if op.StorageLevel, err = values(h.storageLevel); err != nil {
		return nil, fmt.Errorf("technology %s: %w", h.Name(), err)
	}
	return op, nil
}

func values(vars []*milp.Var) ([]float64, error) {
	out := make([]float64, len(vars))
	for t, v := range vars {
		x, ok := v.Value()
		if !ok {
			return nil, fmt.Errorf("variable %s has no solved value", v.Name())
		}
		out[t] = x
	}
	return out, nil
}
