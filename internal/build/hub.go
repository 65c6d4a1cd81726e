package build

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"energyhub/internal/climate"
	"energyhub/internal/config"
	"energyhub/internal/hydro"
	"energyhub/internal/milp"

	"go.uber.org/zap"
)

// Request describes one technology placed at one or more nodes.
type Request struct {
	Nodes      []string
	Technology config.TechnologyConfig
	Climate    *climate.Table
	Model      config.ModelConfig
}

// Placed is a hydro unit at a node.
type Placed struct {
	Node  string
	Hydro *hydro.Hydro
}

// NodeOperation is the solved operation of the unit at Node.
type NodeOperation struct {
	Node      string
	Operation *hydro.Operation
}

// Hub is an assembled model: its units, the model they were built into and
// its lowered form. Solutions are applied under a lock since they write into
// the model's variables.
type Hub struct {
	Model   *milp.Model
	Lowered *milp.Lowered
	Units   []Placed
	Result  *Result
	Options milp.LowerOptions

	mu sync.Mutex
}

// Assemble constructs one unit per node, builds them into a fresh model and
// lowers it.
func (e *Engine) Assemble(ctx context.Context, req Request) (*Hub, error) {
	nodes := req.Nodes
	if len(nodes) == 0 {
		return nil, errors.New("at least one node is required")
	}
	mc := req.Model.WithDefaults()
	if err := mc.Validate(); err != nil {
		return nil, err
	}
	opts, err := mc.LowerOptions()
	if err != nil {
		return nil, err
	}

	units := make([]Placed, len(nodes))
	jobs := make([]Job, len(nodes))
	for i, node := range nodes {
		h, err := hydro.New(req.Technology, req.Climate, mc)
		if err != nil {
			return nil, err
		}
		units[i] = Placed{Node: node, Hydro: h}
		jobs[i] = Job{Node: node, Unit: h}
	}

	m := milp.NewModel()
	res, err := e.Run(ctx, m, jobs)
	if err != nil {
		return nil, err
	}
	l, err := milp.Lower(m, opts)
	if err != nil {
		return nil, fmt.Errorf("lower model: %w", err)
	}
	e.log.Info("model lowered",
		zap.String("transformation", opts.Transformation.String()),
		zap.Int("columns", len(l.Vars)),
		zap.Int("rows", len(l.Rows)),
	)
	return &Hub{Model: m, Lowered: l, Units: units, Result: res, Options: opts}, nil
}

// Report is the outcome of applying one solution.
type Report struct {
	Matched    int
	Violations []string
	Operations []NodeOperation
}

// Apply replaces the model's solution with values and reads every unit's
// operation back. Violations lists where values break the lowered model
// beyond tol.
func (h *Hub) Apply(values map[string]float64, tol float64) (*Report, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Model.ClearSolution()
	rep := &Report{Matched: h.Model.ApplySolution(values)}
	if rep.Matched == 0 {
		return nil, errors.New("solution matches no model variable")
	}
	rep.Violations = h.Lowered.Violations(h.Lowered.PointFromSolution(values), tol)
	for _, u := range h.Units {
		op, err := u.Hydro.Operation()
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", u.Node, err)
		}
		rep.Operations = append(rep.Operations, NodeOperation{Node: u.Node, Operation: op})
	}
	return rep, nil
}
