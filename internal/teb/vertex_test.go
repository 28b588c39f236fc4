package teb

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
)

func TestVertexPose_NormalizesHeading(t *testing.T) {
	tests := []struct {
		theta float64
		want  float64
	}{
		{theta: 0, want: 0},
		{theta: math.Pi, want: math.Pi},
		{theta: -math.Pi, want: math.Pi},
		{theta: 3 * math.Pi / 2, want: -math.Pi / 2},
		{theta: -0.25, want: -0.25},
	}
	for _, tt := range tests {
		v := NewVertexPose(0, r2.Point{}, tt.theta)
		assert.InDelta(t, tt.want, v.Theta(), 1e-12, "theta=%v", tt.theta)
	}
}

func TestVertexPose_EstimateRoundTripAndOplus(t *testing.T) {
	v := NewVertexPose(3, r2.Point{X: 1, Y: 2}, 0.5)
	assert.Equal(t, 3, v.Dimension())

	est := make([]float64, 3)
	v.EstimateData(est)
	assert.Equal(t, []float64{1, 2, 0.5}, est)

	v.Oplus([]float64{0.5, -1, math.Pi})
	assert.Equal(t, r2.Point{X: 1.5, Y: 1}, v.Position())
	assert.InDelta(t, 0.5-math.Pi, v.Theta(), 1e-12)

	v.SetEstimateData(est)
	assert.Equal(t, r2.Point{X: 1, Y: 2}, v.Position())
	assert.Equal(t, 0.5, v.Theta())
	assert.Contains(t, v.String(), "pose 3")
}

func TestVertexTimeDiff(t *testing.T) {
	v := NewVertexTimeDiff(7, 0.3)
	assert.Equal(t, 7, v.ID())
	assert.Equal(t, 1, v.Dimension())

	v.Oplus([]float64{0.05})
	assert.InDelta(t, 0.35, v.Dt(), 1e-12)

	est := make([]float64, 1)
	v.EstimateData(est)
	assert.InDelta(t, 0.35, est[0], 1e-12)

	v.SetEstimateData([]float64{1})
	assert.Equal(t, 1.0, v.Dt())

	v.SetFixed(true)
	assert.True(t, v.Fixed())
}
