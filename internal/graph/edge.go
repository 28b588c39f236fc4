package graph

import "gonum.org/v1/gonum/mat"

// Edge is a cost function over a small set of vertices.
type Edge interface {
	// Name identifies the edge type in diagnostics and metrics.
	Name() string
	// Vertices returns the bound vertices in slot order.
	Vertices() []Vertex
	// Dimension is the length of the residual vector.
	Dimension() int
	// ComputeError refreshes the residual from the current vertex
	// estimates. It panics with *ContractViolation on misuse or when the
	// residual is not finite.
	ComputeError()
	// Error returns the residual buffer filled by the last ComputeError.
	Error() []float64
	// Information returns the weighting matrix Ω (Dimension × Dimension).
	Information() *mat.SymDense
}

// BaseEdge owns the residual buffer and information matrix of an edge.
type BaseEdge struct {
	err         []float64
	information *mat.SymDense
}

// NewBaseEdge returns a BaseEdge with a zeroed residual of length dim and
// an identity information matrix.
func NewBaseEdge(dim int) BaseEdge {
	info := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		info.SetSym(i, i, 1)
	}
	return BaseEdge{err: make([]float64, dim), information: info}
}

func (e *BaseEdge) Dimension() int             { return len(e.err) }
func (e *BaseEdge) Error() []float64           { return e.err }
func (e *BaseEdge) Information() *mat.SymDense { return e.information }

// SetInformation replaces Ω. info must be Dimension × Dimension.
func (e *BaseEdge) SetInformation(info *mat.SymDense) {
	e.information = info
}

// SetInformationWeight sets Ω to weight·I.
func (e *BaseEdge) SetInformationWeight(weight float64) {
	dim := len(e.err)
	info := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		info.SetSym(i, i, weight)
	}
	e.information = info
}

// BinaryEdge is the generic base for edges that relate exactly two
// vertices. V0 and V1 are the concrete vertex types and M is the
// measurement type, typically a borrowed reference to external data.
//
// Concrete edges embed BinaryEdge and implement Name and ComputeError.
type BinaryEdge[V0, V1 Vertex, M any] struct {
	BaseEdge
	v0          V0
	v1          V1
	bound       [2]bool
	measurement M
}

// NewBinaryEdge returns a BinaryEdge with a residual of length dim.
func NewBinaryEdge[V0, V1 Vertex, M any](dim int) BinaryEdge[V0, V1, M] {
	return BinaryEdge[V0, V1, M]{BaseEdge: NewBaseEdge(dim)}
}

// SetVertices binds both vertex slots.
func (e *BinaryEdge[V0, V1, M]) SetVertices(v0 V0, v1 V1) {
	e.SetVertex0(v0)
	e.SetVertex1(v1)
}

func (e *BinaryEdge[V0, V1, M]) SetVertex0(v V0) { e.v0 = v; e.bound[0] = true }
func (e *BinaryEdge[V0, V1, M]) SetVertex1(v V1) { e.v1 = v; e.bound[1] = true }
func (e *BinaryEdge[V0, V1, M]) Vertex0() V0     { return e.v0 }
func (e *BinaryEdge[V0, V1, M]) Vertex1() V1     { return e.v1 }

// Vertices returns the bound vertices. Unbound slots are reported as nil.
func (e *BinaryEdge[V0, V1, M]) Vertices() []Vertex {
	out := make([]Vertex, 2)
	if e.bound[0] {
		out[0] = e.v0
	}
	if e.bound[1] {
		out[1] = e.v1
	}
	return out
}

func (e *BinaryEdge[V0, V1, M]) Measurement() M     { return e.measurement }
func (e *BinaryEdge[V0, V1, M]) SetMeasurement(m M) { e.measurement = m }
