// Package obstacle owns the read-only view of tracked obstacles that the
// trajectory optimizer consumes during one planning cycle.
//
// Responsibilities: the Obstacle capability interface, immutable Snapshot
// values (centroid + centroid velocity), the constant-velocity motion
// model, and Set, which admits tracker output for a cycle after rejecting
// non-finite states and clamping implausible speeds.
//
// Dependency rule: this package must not depend on the optimizer graph.
// Cost edges borrow *Snapshot references from a Set and must not outlive
// the planning cycle that produced them.
package obstacle
