// Package penalty holds the soft inequality penalties used by trajectory
// cost edges.
//
// Each penalty maps a measured quantity and a bound to a non-negative cost
// that is zero on the feasible side and grows on the infeasible side. The
// functions are pure and finite for finite inputs so they can sit inside
// residual computations that a least-squares solver differentiates
// numerically.
package penalty
