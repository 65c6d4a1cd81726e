package milp

import (
	"fmt"
	"strconv"
	"strings"
)

// Term is a single coef·var product.
type Term struct {
	Coef float64
	Var  *Var
}

// Expr is an affine expression Σ coef·var + Const. Expressions are values:
// every method returns a new expression and never aliases the receiver's terms.
type Expr struct {
	Terms []Term
	Const float64
}

// V returns the expression 1·v.
func V(v *Var) Expr {
	return Expr{Terms: []Term{{Coef: 1, Var: v}}}
}

// C returns the constant expression c.
func C(c float64) Expr {
	return Expr{Const: c}
}

// Sum adds up any number of expressions.
func Sum(es ...Expr) Expr {
	n := 0
	for _, e := range es {
		n += len(e.Terms)
	}
	out := Expr{Terms: make([]Term, 0, n)}
	for _, e := range es {
		out.Terms = append(out.Terms, e.Terms...)
		out.Const += e.Const
	}
	return out
}

func (e Expr) clone(extra int) Expr {
	terms := make([]Term, len(e.Terms), len(e.Terms)+extra)
	copy(terms, e.Terms)
	return Expr{Terms: terms, Const: e.Const}
}

// Term returns e + coef·v.
func (e Expr) Term(coef float64, v *Var) Expr {
	out := e.clone(1)
	out.Terms = append(out.Terms, Term{Coef: coef, Var: v})
	return out
}

// Plus returns e + o.
func (e Expr) Plus(o Expr) Expr {
	return Sum(e, o)
}

// Minus returns e - o.
func (e Expr) Minus(o Expr) Expr {
	return Sum(e, o.Scale(-1))
}

// Scale returns k·e.
func (e Expr) Scale(k float64) Expr {
	out := e.clone(0)
	for i := range out.Terms {
		out.Terms[i].Coef *= k
	}
	out.Const *= k
	return out
}

// Offset returns e + c.
func (e Expr) Offset(c float64) Expr {
	out := e.clone(0)
	out.Const += c
	return out
}

// Coef returns the summed coefficient of v in e.
func (e Expr) Coef(v *Var) float64 {
	var c float64
	for _, t := range e.Terms {
		if t.Var == v {
			c += t.Coef
		}
	}
	return c
}

// Vars lists the distinct variables of e in order of first appearance.
func (e Expr) Vars() []*Var {
	seen := make(map[*Var]struct{}, len(e.Terms))
	out := make([]*Var, 0, len(e.Terms))
	for _, t := range e.Terms {
		if _, ok := seen[t.Var]; ok {
			continue
		}
		seen[t.Var] = struct{}{}
		out = append(out, t.Var)
	}
	return out
}

// Eval evaluates e with variable values supplied by x.
func (e Expr) Eval(x func(*Var) float64) float64 {
	s := e.Const
	for _, t := range e.Terms {
		s += t.Coef * x(t.Var)
	}
	return s
}

// Value evaluates e at the solved variable values.
func (e Expr) Value() (float64, error) {
	for _, t := range e.Terms {
		if !t.Var.solved {
			return 0, fmt.Errorf("variable %s has no solved value", t.Var.name)
		}
	}
	return e.Eval(func(v *Var) float64 { return v.value }), nil
}

func (e Expr) String() string {
	var sb strings.Builder
	for i, t := range e.Terms {
		switch {
		case i == 0 && t.Coef < 0:
			sb.WriteString("-")
		case i > 0 && t.Coef < 0:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		c := t.Coef
		if c < 0 {
			c = -c
		}
		if c != 1 {
			sb.WriteString(formatFloat(c))
			sb.WriteString(" ")
		}
		sb.WriteString(t.Var.name)
	}
	if e.Const != 0 || len(e.Terms) == 0 {
		if len(e.Terms) > 0 {
			if e.Const < 0 {
				sb.WriteString(" - ")
				sb.WriteString(formatFloat(-e.Const))
				return sb.String()
			}
			sb.WriteString(" + ")
		}
		sb.WriteString(formatFloat(e.Const))
	}
	return sb.String()
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
