package milp

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Transformation selects how disjunctions are reformulated into plain MILP rows.
type Transformation int

const (
	BigM Transformation = iota
	Hull
)

func (t Transformation) String() string {
	switch t {
	case BigM:
		return "big_m"
	case Hull:
		return "hull"
	default:
		return fmt.Sprintf("Transformation(%d)", int(t))
	}
}

// ParseTransformation accepts "big_m" (also "bigm", "big-m") and "hull".
// An empty string selects BigM.
func ParseTransformation(s string) (Transformation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "big_m", "bigm", "big-m":
		return BigM, nil
	case "hull", "convex_hull":
		return Hull, nil
	default:
		return 0, fmt.Errorf("unknown disjunction transformation %q", s)
	}
}

// DefaultBigM is used when a row's big-M cannot be derived from bounds.
const DefaultBigM = 1e6

type LowerOptions struct {
	Transformation Transformation
	// BigM is the fallback constant for rows whose activity is unbounded.
	// Zero means DefaultBigM; a negative value disables the fallback.
	BigM float64
}

// Row is one lowered linear constraint in sparse form.
type Row struct {
	Name  string
	Cols  []int
	Coefs []float64
	Sense Sense
	RHS   float64
}

// Lowered is a flat MILP: columns, rows and an objective. Hull lowering adds
// auxiliary columns that have no counterpart in the Model.
type Lowered struct {
	Vars      []*Var
	Rows      []Row
	Objective Row

	index map[*Var]int
}

var errEmptyRow = errors.New("constraint has no variables")

// Lower flattens a model, reformulating every disjunction.
func Lower(m *Model, opts LowerOptions) (*Lowered, error) {
	if opts.BigM == 0 {
		opts.BigM = DefaultBigM
	}
	l := &Lowered{index: make(map[*Var]int)}
	blocks := m.Blocks()
	for _, b := range blocks {
		for _, v := range b.vars {
			l.addVar(v)
		}
	}
	for _, b := range blocks {
		for _, c := range b.constraints {
			if err := l.addConstraint(c); err != nil {
				return nil, err
			}
		}
	}
	for _, b := range blocks {
		for _, d := range b.disjunctions {
			var err error
			switch opts.Transformation {
			case BigM:
				err = l.bigM(d, opts.BigM)
			case Hull:
				err = l.hull(d)
			default:
				err = fmt.Errorf("unknown transformation %v", opts.Transformation)
			}
			if err != nil {
				return nil, fmt.Errorf("lower disjunction %s: %w", d.Name, err)
			}
		}
	}
	obj, err := l.compile("obj", m.Objective(), LE, 0)
	if err != nil && !errors.Is(err, errEmptyRow) {
		return nil, err
	}
	l.Objective = obj
	return l, nil
}

func (l *Lowered) addVar(v *Var) int {
	if i, ok := l.index[v]; ok {
		return i
	}
	i := len(l.Vars)
	l.Vars = append(l.Vars, v)
	l.index[v] = i
	return i
}

// Index returns the column of v.
func (l *Lowered) Index(v *Var) (int, bool) {
	i, ok := l.index[v]
	return i, ok
}

// compile turns expr sense rhs into a sparse row, merging duplicate columns
// and dropping zero coefficients.
func (l *Lowered) compile(name string, e Expr, s Sense, rhs float64) (Row, error) {
	coef := make(map[int]float64, len(e.Terms))
	for _, t := range e.Terms {
		i, ok := l.index[t.Var]
		if !ok {
			return Row{}, fmt.Errorf("constraint %s references undeclared variable %s", name, t.Var.name)
		}
		coef[i] += t.Coef
	}
	r := Row{Name: name, Sense: s, RHS: rhs - e.Const}
	for i, c := range coef {
		if c != 0 {
			r.Cols = append(r.Cols, i)
		}
	}
	sort.Ints(r.Cols)
	r.Coefs = make([]float64, len(r.Cols))
	for k, i := range r.Cols {
		r.Coefs[k] = coef[i]
	}
	if len(r.Cols) == 0 {
		return r, errEmptyRow
	}
	return r, nil
}

func (l *Lowered) addRow(name string, e Expr, s Sense, rhs float64) error {
	r, err := l.compile(name, e, s, rhs)
	if errors.Is(err, errEmptyRow) {
		if satisfied(0, s, r.RHS, 1e-9) {
			return nil
		}
		return fmt.Errorf("constraint %s is infeasible: 0 %s %s", name, s, formatFloat(r.RHS))
	}
	if err != nil {
		return err
	}
	l.Rows = append(l.Rows, r)
	return nil
}

func (l *Lowered) addConstraint(c Constraint) error {
	return l.addRow(c.Name, c.Expr, c.Sense, c.RHS)
}

// bigM relaxes each disjunct row by M·(1-y), with M taken from the bounds of
// the row's variables where they are finite. Rows that the bounds already
// imply are dropped.
func (l *Lowered) bigM(d *Disjunction, fallback float64) error {
	for _, dj := range d.Disjuncts {
		for _, c := range dj.Constraints {
			for _, part := range splitEquality(c) {
				if err := l.bigMRow(part, dj.Indicator, fallback); err != nil {
					return err
				}
			}
		}
	}
	return l.exactlyOne(d)
}

func (l *Lowered) bigMRow(c Constraint, y Expr, fallback float64) error {
	lo, hi := activityRange(c.Expr)
	rhs := c.RHS
	var m float64
	switch c.Sense {
	case LE:
		if hi <= rhs {
			return nil
		}
		m = hi - rhs
	case GE:
		if lo >= rhs {
			return nil
		}
		m = rhs - lo
	}
	if math.IsInf(m, 0) || math.IsNaN(m) {
		if fallback <= 0 {
			return fmt.Errorf("row %s has unbounded activity and no big-M fallback", c.Name)
		}
		m = fallback
	}
	switch c.Sense {
	case LE:
		// e <= rhs + M(1-y)
		return l.addRow(c.Name, c.Expr.Plus(y.Scale(m)), LE, rhs+m)
	default:
		// e >= rhs - M(1-y)
		return l.addRow(c.Name, c.Expr.Minus(y.Scale(m)), GE, rhs-m)
	}
}

func splitEquality(c Constraint) []Constraint {
	if c.Sense != EQ {
		return []Constraint{c}
	}
	le, ge := c, c
	le.Name, le.Sense = c.Name+".le", LE
	ge.Name, ge.Sense = c.Name+".ge", GE
	return []Constraint{le, ge}
}

func (l *Lowered) exactlyOne(d *Disjunction) error {
	if !d.needsExactlyOne() {
		return nil
	}
	var e Expr
	for _, y := range d.Binaries {
		e = e.Term(1, y)
	}
	return l.addRow(d.Name+".exactly_one", e, EQ, 1)
}

// hull applies the convex-hull reformulation: every variable v that appears in
// the disjunction is split into one copy per disjunct, v = Σ v_i, each copy
// is confined to [lb·y_i, ub·y_i], and each disjunct row is stated over its
// own copies with its right-hand side scaled by y_i.
func (l *Lowered) hull(d *Disjunction) error {
	var vars []*Var
	seen := make(map[*Var]struct{})
	for _, dj := range d.Disjuncts {
		for _, c := range dj.Constraints {
			for _, v := range c.Expr.Vars() {
				if _, ok := seen[v]; ok {
					continue
				}
				if math.IsInf(v.lower, 0) || math.IsInf(v.upper, 0) {
					return fmt.Errorf("hull reformulation needs finite bounds on %s", v.name)
				}
				seen[v] = struct{}{}
				vars = append(vars, v)
			}
		}
	}

	copies := make([]map[*Var]*Var, len(d.Disjuncts))
	for i, dj := range d.Disjuncts {
		copies[i] = make(map[*Var]*Var, len(vars))
		for _, v := range vars {
			aux := &Var{
				name:   v.name + "#" + dj.Name,
				lower:  math.Min(0, v.lower),
				upper:  math.Max(0, v.upper),
				domain: Continuous,
			}
			l.addVar(aux)
			copies[i][v] = aux

			if err := l.addRow(aux.name+".ub", V(aux).Minus(dj.Indicator.Scale(v.upper)), LE, 0); err != nil {
				return err
			}
			if err := l.addRow(aux.name+".lb", V(aux).Minus(dj.Indicator.Scale(v.lower)), GE, 0); err != nil {
				return err
			}
		}
	}

	for _, v := range vars {
		link := V(v)
		for i := range d.Disjuncts {
			link = link.Term(-1, copies[i][v])
		}
		if err := l.addRow(v.name+"#"+d.Name+".link", link, EQ, 0); err != nil {
			return err
		}
	}

	for i, dj := range d.Disjuncts {
		for _, c := range dj.Constraints {
			var e Expr
			for _, t := range c.Expr.Terms {
				e = e.Term(t.Coef, copies[i][t.Var])
			}
			e = e.Minus(dj.Indicator.Scale(c.RHS - c.Expr.Const))
			if err := l.addRow(c.Name, e, c.Sense, 0); err != nil {
				return err
			}
		}
	}
	return l.exactlyOne(d)
}

// Point builds a column vector from per-variable values; unassigned columns
// are zero.
func (l *Lowered) Point(values map[*Var]float64) []float64 {
	x := make([]float64, len(l.Vars))
	for v, val := range values {
		if i, ok := l.index[v]; ok {
			x[i] = val
		}
	}
	return x
}

// Activity evaluates the left-hand side of row r at x.
func (l *Lowered) Activity(r Row, x []float64) float64 {
	vals := make([]float64, len(r.Cols))
	for k, i := range r.Cols {
		vals[k] = x[i]
	}
	return floats.Dot(r.Coefs, vals)
}

// Violations lists every bound, integrality or row violated by x beyond tol.
// An empty result means x is a feasible point of the lowered model.
func (l *Lowered) Violations(x []float64, tol float64) []string {
	var out []string
	for i, v := range l.Vars {
		xi := x[i]
		if xi < v.lower-tol || xi > v.upper+tol {
			out = append(out, fmt.Sprintf("bound %s: %s not in [%s, %s]", v.name, formatFloat(xi), formatFloat(v.lower), formatFloat(v.upper)))
		}
		if v.domain != Continuous && math.Abs(xi-math.Round(xi)) > tol {
			out = append(out, fmt.Sprintf("integrality %s: %s", v.name, formatFloat(xi)))
		}
	}
	for _, r := range l.Rows {
		a := l.Activity(r, x)
		if !satisfied(a, r.Sense, r.RHS, tol) {
			out = append(out, fmt.Sprintf("row %s: %s %s %s", r.Name, formatFloat(a), r.Sense, formatFloat(r.RHS)))
		}
	}
	return out
}

// Row returns the lowered row with the given name.
func (l *Lowered) Row(name string) (Row, bool) {
	for _, r := range l.Rows {
		if r.Name == name {
			return r, true
		}
	}
	return Row{}, false
}
