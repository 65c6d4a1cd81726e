package milp

import (
	"fmt"
	"math"
)

// Block is the namespace one technology builds into. Every variable,
// constraint and disjunction it declares is prefixed with the block prefix,
// which keeps names unique when many blocks share one Model.
//
// A Block is owned by a single builder and is not safe for concurrent use.
type Block struct {
	prefix       string
	vars         []*Var
	byName       map[string]*Var
	constraints  []Constraint
	disjunctions []*Disjunction
}

// NewBlock returns an empty, detached block. Attach it to a Model once it has
// been built successfully.
func NewBlock(prefix string) *Block {
	return &Block{prefix: prefix, byName: make(map[string]*Var)}
}

func (b *Block) Prefix() string { return b.prefix }

func (b *Block) qualify(name string) string {
	if b.prefix == "" {
		return name
	}
	return b.prefix + "." + name
}

// NewVar declares a variable. Binary variables are clamped to [0, 1].
// Declaring the same name twice is a programming error and panics.
func (b *Block) NewVar(name string, lower, upper float64, domain Domain) *Var {
	full := b.qualify(name)
	if _, ok := b.byName[full]; ok {
		panic(fmt.Sprintf("milp: duplicate variable %q", full))
	}
	if domain == Binary {
		lower = math.Max(lower, 0)
		upper = math.Min(upper, 1)
	}
	v := &Var{name: full, lower: lower, upper: upper, domain: domain}
	b.vars = append(b.vars, v)
	b.byName[full] = v
	return v
}

// NewSeries declares one variable per timestep named name(1)..name(n).
// bounds receives the 0-based timestep.
func (b *Block) NewSeries(name string, n int, bounds func(t int) (lower, upper float64), domain Domain) []*Var {
	out := make([]*Var, n)
	for t := 0; t < n; t++ {
		lo, hi := bounds(t)
		out[t] = b.NewVar(Index(name, t+1), lo, hi, domain)
	}
	return out
}

// Constant returns a bounds function usable with NewSeries.
func Constant(lower, upper float64) func(int) (float64, float64) {
	return func(int) (float64, float64) { return lower, upper }
}

// Var looks up a variable by its unqualified name.
func (b *Block) Var(name string) (*Var, bool) {
	v, ok := b.byName[b.qualify(name)]
	return v, ok
}

// Add appends the constraint lhs sense rhs.
func (b *Block) Add(name string, lhs Expr, sense Sense, rhs Expr) Constraint {
	c := NewConstraint(b.qualify(name), lhs, sense, rhs)
	b.constraints = append(b.constraints, c)
	return c
}

// NewDisjunction declares an exactly-one disjunction over the named branches
// together with the binaries that indicate them.
func (b *Block) NewDisjunction(name string, branches ...string) *Disjunction {
	if len(branches) < 2 {
		panic(fmt.Sprintf("milp: disjunction %q needs at least two branches", name))
	}
	d := &Disjunction{Name: b.qualify(name)}
	if len(branches) == 2 {
		y := b.NewVar(name, 0, 1, Binary)
		d.Binaries = []*Var{y}
		d.Disjuncts = []*Disjunct{
			{Name: d.Name + "." + branches[0], Indicator: C(1).Term(-1, y)},
			{Name: d.Name + "." + branches[1], Indicator: V(y)},
		}
	} else {
		for _, br := range branches {
			y := b.NewVar(name+"."+br, 0, 1, Binary)
			d.Binaries = append(d.Binaries, y)
			d.Disjuncts = append(d.Disjuncts, &Disjunct{Name: d.Name + "." + br, Indicator: V(y)})
		}
	}
	b.disjunctions = append(b.disjunctions, d)
	return d
}

func (b *Block) Vars() []*Var { return append([]*Var(nil), b.vars...) }
func (b *Block) Constraints() []Constraint { return append([]Constraint(nil), b.constraints...) }
func (b *Block) Disjunctions() []*Disjunction { return append([]*Disjunction(nil), b.disjunctions...) }

// Constraint finds a constraint by its unqualified name.
func (b *Block) Constraint(name string) (Constraint, bool) {
	full := b.qualify(name)
	for _, c := range b.constraints {
		if c.Name == full {
			return c, true
		}
	}
	return Constraint{}, false
}

// Stats counts what the block declares.
func (b *Block) Stats() Stats {
	s := Stats{
		Variables:    len(b.vars),
		Constraints:  len(b.constraints),
		Disjunctions: len(b.disjunctions),
	}
	for _, v := range b.vars {
		switch v.domain {
		case Binary:
			s.Binaries++
		case Integer:
			s.Integers++
		}
	}
	for _, d := range b.disjunctions {
		s.Disjuncts += len(d.Disjuncts)
		for _, dj := range d.Disjuncts {
			s.DisjunctConstraints += len(dj.Constraints)
		}
	}
	return s
}

// Stats summarizes the size of a block or model.
type Stats struct {
	Variables           int `json:"variables"`
	Binaries            int `json:"binaries"`
	Integers            int `json:"integers"`
	Constraints         int `json:"constraints"`
	Disjunctions        int `json:"disjunctions"`
	Disjuncts           int `json:"disjuncts"`
	DisjunctConstraints int `json:"disjunct_constraints"`
}

func (s Stats) add(o Stats) Stats {
	return Stats{
		Variables:           s.Variables + o.Variables,
		Binaries:            s.Binaries + o.Binaries,
		Integers:            s.Integers + o.Integers,
		Constraints:         s.Constraints + o.Constraints,
		Disjunctions:        s.Disjunctions + o.Disjunctions,
		Disjuncts:           s.Disjuncts + o.Disjuncts,
		DisjunctConstraints: s.DisjunctConstraints + o.DisjunctConstraints,
	}
}
