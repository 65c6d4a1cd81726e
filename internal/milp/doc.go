// Package milp is the shared model context that technologies build into.
//
// Technologies declare variables, linear constraints and disjunctions inside
// a Block. Blocks are built detached and attached to a Model in one step, so
// a failed build leaves nothing behind. Lower turns the disjunctions into
// plain MILP rows (big-M or convex hull) and WriteLP hands the result to an
// external solver. ReadSolution and Model.ApplySolution bring solved values
// back into the variables.
package milp
