package milp

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateBlock is returned by Attach when a block prefix is already taken.
var ErrDuplicateBlock = errors.New("milp: duplicate block prefix")

// Model is the shared build context that technologies attach their blocks to.
// Attach is safe for concurrent use; blocks must not be modified after they
// have been attached.
type Model struct {
	mu        sync.Mutex
	blocks    map[string]*Block
	objective Expr
}

func NewModel() *Model {
	return &Model{blocks: make(map[string]*Block)}
}

// Attach adds a fully built block to the model. Prefixes must also stay
// distinct after LPName sanitizing.
func (m *Model) Attach(b *Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blocks[b.prefix]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateBlock, b.prefix)
	}
	lp := LPName(b.prefix)
	for p := range m.blocks {
		if LPName(p) == lp {
			return fmt.Errorf("%w: %q and %q are both written as %q", ErrDuplicateBlock, p, b.prefix, lp)
		}
	}
	m.blocks[b.prefix] = b
	return nil
}

// Blocks returns the attached blocks ordered by prefix.
func (m *Model) Blocks() []*Block {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Block, 0, len(m.blocks))
	for _, b := range m.blocks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].prefix < out[j].prefix })
	return out
}

// Block returns the attached block with the given prefix.
func (m *Model) Block(prefix string) (*Block, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blocks[prefix]
	return b, ok
}

// SetObjective sets the expression to minimize. The constant part is ignored
// when the model is written out.
func (m *Model) SetObjective(e Expr) {
	m.mu.Lock()
	m.objective = e
	m.mu.Unlock()
}

func (m *Model) Objective() Expr {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objective
}

func (m *Model) Stats() Stats {
	var s Stats
	for _, b := range m.Blocks() {
		s = s.add(b.Stats())
	}
	return s
}

// Lookup finds a variable by its fully qualified name.
func (m *Model) Lookup(name string) (*Var, bool) {
	for _, b := range m.Blocks() {
		if v, ok := b.byName[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// ApplySolution copies solved values into the model's variables. Values are
// matched by qualified name, then by the sanitized name used in LP files.
// Names that match no variable (auxiliary columns of a lowered model, for
// instance) are ignored. It returns how many variables received a value.
func (m *Model) ApplySolution(values map[string]float64) int {
	n := 0
	for _, b := range m.Blocks() {
		for _, v := range b.vars {
			x, ok := values[v.name]
			if !ok {
				x, ok = values[LPName(v.name)]
			}
			if ok {
				v.SetValue(x)
				n++
			}
		}
	}
	return n
}

// ClearSolution drops every applied value.
func (m *Model) ClearSolution() {
	for _, b := range m.Blocks() {
		for _, v := range b.vars {
			v.ClearValue()
		}
	}
}
