package graph

// Vertex is an optimization variable owned by a Graph.
//
// Only the solver mutates a vertex (SetEstimateData, Oplus); edges read it.
type Vertex interface {
	ID() int
	SetID(id int)
	// Dimension is the number of parameters in the minimal representation.
	Dimension() int
	// Fixed vertices are excluded from the update step.
	Fixed() bool
	SetFixed(fixed bool)
	// EstimateData writes the current estimate into dst (len Dimension).
	EstimateData(dst []float64)
	// SetEstimateData overwrites the estimate from src (len Dimension).
	SetEstimateData(src []float64)
	// Oplus applies an increment of length Dimension.
	Oplus(delta []float64)
}

// BaseVertex implements the identity and fixed-flag bookkeeping of Vertex.
type BaseVertex struct {
	id    int
	fixed bool
}

func (v *BaseVertex) ID() int             { return v.id }
func (v *BaseVertex) SetID(id int)        { v.id = id }
func (v *BaseVertex) Fixed() bool         { return v.fixed }
func (v *BaseVertex) SetFixed(fixed bool) { v.fixed = fixed }
