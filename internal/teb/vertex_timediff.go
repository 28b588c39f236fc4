package teb

import "github.com/banshee-data/timed-elastic-band/internal/graph"

// VertexTimeDiff is the time interval in seconds between two consecutive
// poses of the band.
type VertexTimeDiff struct {
	graph.BaseVertex
	dt float64
}

// NewVertexTimeDiff returns a time-interval vertex registered under id.
func NewVertexTimeDiff(id int, dt float64) *VertexTimeDiff {
	v := &VertexTimeDiff{dt: dt}
	v.SetID(id)
	return v
}

func (v *VertexTimeDiff) Dt() float64                   { return v.dt }
func (v *VertexTimeDiff) SetDt(dt float64)              { v.dt = dt }
func (v *VertexTimeDiff) Dimension() int                { return 1 }
func (v *VertexTimeDiff) EstimateData(dst []float64)    { dst[0] = v.dt }
func (v *VertexTimeDiff) SetEstimateData(src []float64) { v.dt = src[0] }
func (v *VertexTimeDiff) Oplus(delta []float64)         { v.dt += delta[0] }
