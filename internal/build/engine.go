// Package build assembles technology units into one shared model.
package build

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"

	"energyhub/internal/milp"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Unit is a technology that can declare itself into a block.
type Unit interface {
	Name() string
	Build(blk *milp.Block, log *zap.Logger) error
}

// Job places one unit at one node.
type Job struct {
	Node string
	Unit Unit
}

// Prefix is the namespace of the job's block: <node>.<technology>.
func (j Job) Prefix() string { return j.Node + "." + j.Unit.Name() }

type UnitStats struct {
	Node       string     `json:"node"`
	Technology string     `json:"technology"`
	Stats      milp.Stats `json:"stats"`
}

type Result struct {
	Units []UnitStats `json:"units"`
	Model milp.Stats  `json:"model"`
}

type Engine struct {
	log     *zap.Logger
	workers int
}

// New returns an engine building at most workers units at a time; workers
// <= 0 means GOMAXPROCS.
func New(log *zap.Logger, workers int) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{log: log, workers: workers}
}

// checkJobs requires every prefix to be unique in m after LP sanitizing.
// A unit pointer may appear at one node only.
func checkJobs(m *milp.Model, jobs []Job) error {
	prefixes := make(map[string]string, len(jobs))
	for _, b := range m.Blocks() {
		prefixes[milp.LPName(b.Prefix())] = b.Prefix()
	}
	owners := make(map[uintptr]string, len(jobs))
	for _, j := range jobs {
		if j.Unit == nil {
			return fmt.Errorf("node %s: unit is nil", j.Node)
		}
		p := j.Prefix()
		if other, dup := prefixes[milp.LPName(p)]; dup {
			if _, attached := m.Block(other); attached {
				return fmt.Errorf("%w: %s clashes with %s already in model", milp.ErrDuplicateBlock, p, other)
			}
			return fmt.Errorf("%w: %s clashes with %s", milp.ErrDuplicateBlock, p, other)
		}
		prefixes[milp.LPName(p)] = p
		if v := reflect.ValueOf(j.Unit); v.Kind() == reflect.Pointer {
			if node, dup := owners[v.Pointer()]; dup {
				return fmt.Errorf("unit %s placed at both %s and %s", j.Unit.Name(), node, j.Node)
			}
			owners[v.Pointer()] = j.Node
		}
	}
	return nil
}

// Run builds every job into its own detached block, concurrently. Blocks
// are attached to m only when all jobs succeeded, so a failing unit leaves
// m untouched.
func (e *Engine) Run(ctx context.Context, m *milp.Model, jobs []Job) (*Result, error) {
	if m == nil {
		return nil, errors.New("model is nil")
	}
	if len(jobs) == 0 {
		return nil, errors.New("no technologies to build")
	}
	if err := checkJobs(m, jobs); err != nil {
		return nil, err
	}

	blocks := make([]*milp.Block, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			blk := milp.NewBlock(j.Prefix())
			log := e.log.With(zap.String("node", j.Node), zap.String("technology", j.Unit.Name()))
			if err := j.Unit.Build(blk, log); err != nil {
				return fmt.Errorf("build %s: %w", j.Prefix(), err)
			}
			blocks[i] = blk
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.log.Warn("model build failed", zap.Error(err))
		return nil, err
	}

	res := &Result{Units: make([]UnitStats, len(jobs))}
	for i, j := range jobs {
		if err := m.Attach(blocks[i]); err != nil {
			return nil, err
		}
		st := blocks[i].Stats()
		res.Units[i] = UnitStats{Node: j.Node, Technology: j.Unit.Name(), Stats: st}
		e.log.Info("technology built",
			zap.String("node", j.Node),
			zap.String("technology", j.Unit.Name()),
			zap.Int("vars", st.Variables),
			zap.Int("constraints", st.Constraints),
			zap.Int("disjunctions", st.Disjunctions),
		)
	}
	res.Model = m.Stats()
	return res, nil
}
