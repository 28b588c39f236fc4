// Package graph is the minimal factor-graph layer that trajectory cost
// edges plug into.
//
// It defines the capability interfaces an optimization variable (Vertex)
// and a cost function (Edge) must satisfy, a generic BinaryEdge that
// concrete edges embed, and a Graph container with a reference
// Levenberg–Marquardt Optimizer. Jacobians are computed numerically with
// gonum's finite-difference package, so edges only implement ComputeError.
//
// Edges signal programming errors and non-finite residuals by panicking
// with *ContractViolation. Graph recovers those panics at the evaluation
// boundary and turns them into errors that abort the current solve; all
// other panics propagate unchanged.
package graph
