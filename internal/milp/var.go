package milp

import "fmt"

// Domain is the integrality class of a variable.
type Domain int

const (
	Continuous Domain = iota
	Integer
	Binary
)

func (d Domain) String() string {
	switch d {
	case Continuous:
		return "continuous"
	case Integer:
		return "integer"
	case Binary:
		return "binary"
	default:
		return fmt.Sprintf("Domain(%d)", int(d))
	}
}

// Var is a decision variable. Its name is fully qualified by the block that
// declared it. Value is only meaningful after a solution has been applied.
type Var struct {
	name   string
	lower  float64
	upper  float64
	domain Domain

	value  float64
	solved bool
}

func (v *Var) Name() string { return v.name }
func (v *Var) Lower() float64 { return v.lower }
func (v *Var) Upper() float64 { return v.upper }
func (v *Var) Domain() Domain { return v.domain }
func (v *Var) Fixed() bool { return v.lower == v.upper }
func (v *Var) String() string { return v.name }
func (v *Var) Solved() bool { return v.solved }
func (v *Var) SetValue(x float64) { v.value, v.solved = x, true }

// Value returns the solved value; ok is false until SetValue was called.
func (v *Var) Value() (x float64, ok bool) {
	return v.value, v.solved
}

// ClearValue drops a previously applied value.
func (v *Var) ClearValue() { v.value, v.solved = 0, false }

// Index formats the name of the t-th member of an indexed family, where t is
// the 1-based timestep.
func Index(name string, t int) string {
	return fmt.Sprintf("%s(%d)", name, t)
}
