package teb

import (
	"math"

	"github.com/banshee-data/timed-elastic-band/internal/graph"
	"github.com/banshee-data/timed-elastic-band/internal/obstacle"
	"github.com/banshee-data/timed-elastic-band/internal/penalty"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

const edgeDynamicObstacleName = "EdgeDynamicObstacle"

// EdgeDynamicObstacle keeps a pose away from a moving obstacle.
//
// Vertex 0 is the pose, vertex 1 the time interval that follows it, and the
// measurement is a borrowed obstacle. The residual is
//
//	penalty.BoundFromBelow(dist, MinObstacleDist, PenaltyEpsilon)
//
// where dist is measured against the obstacle extrapolated by the elapsed
// time given at construction. The time-interval vertex is bound for graph
// connectivity but is not read: its Jacobian block is zero.
type EdgeDynamicObstacle struct {
	graph.BinaryEdge[*VertexPose, *VertexTimeDiff, obstacle.Obstacle]
	vertIdx int
	t       float64
	cfg     *Config
}

// NewEdgeDynamicObstacle returns an edge for the pose at vertIdx that is
// expected to be reached t seconds from now.
func NewEdgeDynamicObstacle(vertIdx int, t float64) *EdgeDynamicObstacle {
	return &EdgeDynamicObstacle{
		BinaryEdge: graph.NewBinaryEdge[*VertexPose, *VertexTimeDiff, obstacle.Obstacle](1),
		vertIdx:    vertIdx,
		t:          t,
	}
}

// NewEdgeDynamicObstacleDefault returns an edge with index 0 and zero
// elapsed time.
func NewEdgeDynamicObstacleDefault() *EdgeDynamicObstacle {
	return NewEdgeDynamicObstacle(0, 0)
}

func (e *EdgeDynamicObstacle) Name() string { return edgeDynamicObstacleName }

// SetObstacle binds the obstacle. The edge keeps the reference and never
// mutates it.
func (e *EdgeDynamicObstacle) SetObstacle(o obstacle.Obstacle) { e.SetMeasurement(o) }

func (e *EdgeDynamicObstacle) Obstacle() obstacle.Obstacle { return e.Measurement() }
func (e *EdgeDynamicObstacle) SetVertexIdx(vertIdx int)    { e.vertIdx = vertIdx }
func (e *EdgeDynamicObstacle) VertexIdx() int              { return e.vertIdx }
func (e *EdgeDynamicObstacle) ElapsedTime() float64        { return e.t }

// SetConfig binds the shared edge configuration and sets the information
// matrix to WeightDynamicObstacle·I. A weight <= 0 selects the identity.
// A nil cfg leaves the information matrix untouched.
func (e *EdgeDynamicObstacle) SetConfig(cfg *Config) {
	e.cfg = cfg
	if cfg == nil {
		return
	}
	weight := cfg.WeightDynamicObstacle
	if weight <= 0 {
		weight = 1
	}
	e.SetInformationWeight(weight)
}

// ComputeError implements graph.Edge. It panics with
// *graph.ContractViolation when the config, obstacle or pose is missing,
// the distance mode is unknown, or the residual is not finite.
func (e *EdgeDynamicObstacle) ComputeError() {
	graph.Assertf(e.cfg != nil, edgeDynamicObstacleName,
		"config not set: call SetConfig before optimizing (vertex %d)", e.vertIdx)
	obs := e.Measurement()
	graph.Assertf(!isNilObstacle(obs), edgeDynamicObstacleName,
		"obstacle not set: call SetObstacle before optimizing (vertex %d)", e.vertIdx)

	pose := e.Vertex0()
	graph.Assertf(pose != nil, edgeDynamicObstacleName, "pose vertex not bound (vertex %d)", e.vertIdx)

	var dist float64
	switch e.cfg.DistanceMode {
	case DistancePredictedPosition, "":
		dist = predictedDistance(pose.Position(), e.t, obs)
	case DistanceSpaceTime:
		dist = spaceTimeDistance(pose.Position(), e.t, obs)
	default:
		graph.Assertf(false, edgeDynamicObstacleName,
			"unknown distance mode %q (vertex %d)", e.cfg.DistanceMode, e.vertIdx)
	}

	residual := penalty.BoundFromBelow(dist, e.cfg.MinObstacleDist, e.cfg.PenaltyEpsilon)
	e.Error()[0] = residual

	graph.Assertf(!math.IsNaN(residual) && !math.IsInf(residual, 0), edgeDynamicObstacleName,
		"vertex %d, obstacle %s: residual %v is not finite (dist=%v, t=%v)",
		e.vertIdx, obstacle.Describe(obs), residual, dist, e.t)
}

// predictedDistance is the planar distance between the pose and the
// obstacle centroid extrapolated by t.
func predictedDistance(pos r2.Point, t float64, obs obstacle.Obstacle) float64 {
	predicted := obstacle.PredictPosition(obs.Centroid(), obs.CentroidVelocity(), t)
	return predicted.Sub(pos).Norm()
}

// spaceTimeDistance is the distance in x-y-t from (pos, t) to the line the
// obstacle sweeps: through (centroid, 0) with direction (velocity, 1).
//
// Positions are scaled into [-1, 1] and the direction by its largest
// component before the cross product, so finite inputs of any magnitude
// give a finite or +Inf distance, never NaN.
func spaceTimeDistance(pos r2.Point, t float64, obs obstacle.Obstacle) float64 {
	c, v := obs.Centroid(), obs.CentroidVelocity()
	point := r3.Vector{X: pos.X, Y: pos.Y, Z: t}
	origin := r3.Vector{X: c.X, Y: c.Y, Z: 0}
	dir := r3.Vector{X: v.X, Y: v.Y, Z: 1}

	scale := math.Max(1, math.Max(maxAbs(point), maxAbs(origin)))
	offset := shrink(point, scale).Sub(shrink(origin, scale))
	// The Z component of dir is 1, so its largest component is >= 1.
	dir = shrink(dir, maxAbs(dir))

	return offset.Cross(dir).Norm() / dir.Norm() * scale
}

func maxAbs(v r3.Vector) float64 {
	a := v.Abs()
	return math.Max(a.X, math.Max(a.Y, a.Z))
}

func shrink(v r3.Vector, by float64) r3.Vector {
	return r3.Vector{X: v.X / by, Y: v.Y / by, Z: v.Z / by}
}

func isNilObstacle(o obstacle.Obstacle) bool {
	if o == nil {
		return true
	}
	s, ok := o.(*obstacle.Snapshot)
	return ok && s == nil
}
