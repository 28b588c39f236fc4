package teb

import (
	"testing"

	"github.com/banshee-data/timed-elastic-band/internal/graph"
	"github.com/banshee-data/timed-elastic-band/internal/obstacle"
	"github.com/banshee-data/timed-elastic-band/internal/penalty"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// distanceGradient returns the distance used by mode and its gradient with
// respect to the pose position.
func distanceGradient(mode string, pos r2.Point, t float64, obs obstacle.Obstacle) (float64, r2.Point) {
	c, v := obs.Centroid(), obs.CentroidVelocity()
	if mode == DistanceSpaceTime {
		// Component of (point - origin) orthogonal to the swept line.
		q := r3.Vector{X: pos.X - c.X, Y: pos.Y - c.Y, Z: t}
		d := r3.Vector{X: v.X, Y: v.Y, Z: 1}
		w := q.Sub(d.Mul(q.Dot(d) / d.Dot(d)))
		dist := w.Norm()
		return dist, r2.Point{X: w.X / dist, Y: w.Y / dist}
	}
	diff := pos.Sub(obstacle.PredictPosition(c, v, t))
	dist := diff.Norm()
	return dist, diff.Mul(1 / dist)
}

func TestEdgeDynamicObstacle_JacobianDependsOnlyOnPosition(t *testing.T) {
	obs := obstacle.NewSnapshot(r2.Point{}, r2.Point{X: 1})
	pose := r2.Point{X: 1.5, Y: 0.2}
	const elapsed = 1.0

	tests := []struct {
		name string
		cfg  *Config
	}{
		// dist = 0.539, inside the soft zone.
		{name: "predicted soft zone", cfg: &Config{MinObstacleDist: 0.5, PenaltyEpsilon: 0.1, DistanceMode: DistancePredictedPosition}},
		{name: "predicted below bound", cfg: &Config{MinObstacleDist: 1, PenaltyEpsilon: 0.1, DistanceMode: DistancePredictedPosition}},
		// dist = 0.406, inside the soft zone.
		{name: "spacetime soft zone", cfg: &Config{MinObstacleDist: 0.4, PenaltyEpsilon: 0.1, DistanceMode: DistanceSpaceTime}},
		{name: "spacetime below bound", cfg: &Config{MinObstacleDist: 1, PenaltyEpsilon: 0.1, DistanceMode: DistanceSpaceTime}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, vp, vt := newBoundEdge(5, elapsed, pose, obs, tt.cfg)

			blocks, err := graph.Linearize(e, 1e-7)
			require.NoError(t, err)
			require.Len(t, blocks, 2)

			dist, grad := distanceGradient(tt.cfg.DistanceMode, pose, elapsed, obs)
			slope := penalty.BoundFromBelowDerivative(dist, tt.cfg.MinObstacleDist, tt.cfg.PenaltyEpsilon)
			require.NotZero(t, slope)

			jp := blocks[0]
			rows, cols := jp.Dims()
			require.Equal(t, 1, rows)
			require.Equal(t, 3, cols)
			assert.InDelta(t, slope*grad.X, jp.At(0, 0), 1e-6)
			assert.InDelta(t, slope*grad.Y, jp.At(0, 1), 1e-6)
			assert.InDelta(t, 0, jp.At(0, 2), 1e-9, "heading does not enter the residual")

			jt := blocks[1]
			require.NotNil(t, jt)
			assert.Equal(t, 0.0, jt.At(0, 0), "time-diff vertex is not read")

			// The estimates describe the linearization point again.
			assert.Equal(t, pose, vp.Position())
			assert.Equal(t, 0.3, vt.Dt())
		})
	}
}
