package milp

// Disjunct is one branch of a Disjunction. Its constraints must hold when the
// indicator evaluates to 1 and are relaxed when it evaluates to 0.
type Disjunct struct {
	Name        string
	Indicator   Expr
	Constraints []Constraint
}

// Add appends lhs sense rhs to the branch.
func (d *Disjunct) Add(name string, lhs Expr, sense Sense, rhs Expr) {
	d.Constraints = append(d.Constraints, NewConstraint(d.Name+"."+name, lhs, sense, rhs))
}

// Disjunction requires exactly one of its disjuncts to hold.
//
// A two-branch disjunction owns a single binary d; the branches are indicated
// by 1-d and d. Wider disjunctions own one binary per branch and an
// exactly-one row is emitted when the disjunction is lowered.
type Disjunction struct {
	Name      string
	Disjuncts []*Disjunct
	Binaries  []*Var
}

// Branch returns the i-th disjunct.
func (d *Disjunction) Branch(i int) *Disjunct {
	return d.Disjuncts[i]
}

func (d *Disjunction) needsExactlyOne() bool {
	return len(d.Binaries) > 1
}

// Active returns the index of the branch whose indicator is 1 at the values
// supplied by x, or -1 if none is.
func (d *Disjunction) Active(x func(*Var) float64) int {
	for i, dj := range d.Disjuncts {
		if dj.Indicator.Eval(x) > 0.5 {
			return i
		}
	}
	return -1
}
