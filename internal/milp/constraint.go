package milp

import (
	"fmt"
	"math"
)

// Sense is the relation of a linear constraint.
type Sense int

const (
	LE Sense = iota
	GE
	EQ
)

func (s Sense) String() string {
	switch s {
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "="
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

// Constraint is the linear relation Expr Sense RHS. Constructors move every
// constant to RHS, so Expr.Const is zero for constraints built with
// NewConstraint.
type Constraint struct {
	Name  string
	Expr  Expr
	Sense Sense
	RHS   float64
}

// NewConstraint builds lhs sense rhs in normalized form.
func NewConstraint(name string, lhs Expr, sense Sense, rhs Expr) Constraint {
	d := lhs.Minus(rhs)
	rhsConst := -d.Const
	d.Const = 0
	return Constraint{Name: name, Expr: d, Sense: sense, RHS: rhsConst}
}

// Satisfied reports whether the constraint holds within tol for the values
// supplied by x.
func (c Constraint) Satisfied(x func(*Var) float64, tol float64) bool {
	return satisfied(c.Expr.Eval(x), c.Sense, c.RHS, tol)
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s: %s %s %s", c.Name, c.Expr, c.Sense, formatFloat(c.RHS))
}

func satisfied(activity float64, s Sense, rhs, tol float64) bool {
	switch s {
	case LE:
		return activity <= rhs+tol
	case GE:
		return activity >= rhs-tol
	default:
		return math.Abs(activity-rhs) <= tol
	}
}

// activityRange returns the smallest and largest value e can take within the
// bounds of its variables. Either end may be infinite.
func activityRange(e Expr) (lo, hi float64) {
	lo, hi = e.Const, e.Const
	for _, t := range e.Terms {
		switch {
		case t.Coef > 0:
			lo += t.Coef * t.Var.lower
			hi += t.Coef * t.Var.upper
		case t.Coef < 0:
			lo += t.Coef * t.Var.upper
			hi += t.Coef * t.Var.lower
		}
	}
	return lo, hi
}
