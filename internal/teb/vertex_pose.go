package teb

import (
	"fmt"

	"github.com/banshee-data/timed-elastic-band/internal/graph"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"
)

// VertexPose is a planar robot pose: position in metres and heading in
// radians, normalized to (-π, π].
type VertexPose struct {
	graph.BaseVertex
	position r2.Point
	theta    float64
}

// NewVertexPose returns a pose vertex registered under id.
func NewVertexPose(id int, position r2.Point, theta float64) *VertexPose {
	v := &VertexPose{position: position, theta: normalizeAngle(theta)}
	v.SetID(id)
	return v
}

// Position returns the pose position.
func (v *VertexPose) Position() r2.Point { return v.position }

// Theta returns the heading.
func (v *VertexPose) Theta() float64 { return v.theta }

// SetPose overwrites the estimate.
func (v *VertexPose) SetPose(position r2.Point, theta float64) {
	v.position = position
	v.theta = normalizeAngle(theta)
}

// Dimension implements graph.Vertex: x, y, theta.
func (v *VertexPose) Dimension() int { return 3 }

func (v *VertexPose) EstimateData(dst []float64) {
	dst[0], dst[1], dst[2] = v.position.X, v.position.Y, v.theta
}

func (v *VertexPose) SetEstimateData(src []float64) {
	v.SetPose(r2.Point{X: src[0], Y: src[1]}, src[2])
}

func (v *VertexPose) Oplus(delta []float64) {
	v.SetPose(v.position.Add(r2.Point{X: delta[0], Y: delta[1]}), v.theta+delta[2])
}

func (v *VertexPose) String() string {
	return fmt.Sprintf("pose %d (%.3f, %.3f, %.3f)", v.ID(), v.position.X, v.position.Y, v.theta)
}

func normalizeAngle(theta float64) float64 {
	return float64(s1.Angle(theta).Normalized())
}
