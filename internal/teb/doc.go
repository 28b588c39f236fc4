// Package teb holds the timed-elastic-band optimization variables and the
// cost edges that relate them to the environment.
//
// A band is a sequence of VertexPose values separated by VertexTimeDiff
// intervals. EdgeDynamicObstacle penalizes poses that come closer than a
// configured margin to an obstacle whose position is extrapolated with a
// constant-velocity model to the time the robot is expected to reach the
// pose. That time is estimated once when the edge is built (see
// EstimateElapsedTime) and is not re-derived from the live time-interval
// vertex during optimization.
//
// Edges borrow their obstacle from an obstacle.Set and their Config from the
// planner; both must outlive the graph the edge is added to.
package teb
