package graph

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDuplicateVertex is returned when a vertex id is already registered.
	ErrDuplicateVertex = errors.New("duplicate vertex id")
	// ErrUnboundVertex is returned when an edge slot has no vertex.
	ErrUnboundVertex = errors.New("edge has an unbound vertex slot")
	// ErrUnknownVertex is returned when an edge references a vertex that
	// is not part of the graph.
	ErrUnknownVertex = errors.New("edge references a vertex outside the graph")
	// ErrNonFiniteResidual is returned when an edge produced NaN or ±Inf
	// without raising a ContractViolation itself.
	ErrNonFiniteResidual = errors.New("non-finite residual")
)

// Graph holds the vertices and edges of one optimization problem.
//
// A Graph is built once per planning cycle and discarded afterwards. It is
// not safe for concurrent mutation; ComputeActiveErrors evaluates edges in
// parallel but never mutates vertices.
type Graph struct {
	vertices map[int]Vertex
	edges    []Edge
	workers  int
}

// New returns an empty Graph. workers bounds parallel edge evaluation;
// values <= 0 select runtime.GOMAXPROCS(0).
func New(workers int) *Graph {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Graph{vertices: make(map[int]Vertex), workers: workers}
}

// AddVertex registers v under v.ID().
func (g *Graph) AddVertex(v Vertex) error {
	if _, ok := g.vertices[v.ID()]; ok {
		return fmt.Errorf("vertex %d: %w", v.ID(), ErrDuplicateVertex)
	}
	g.vertices[v.ID()] = v
	return nil
}

// AddEdge registers e after checking that every slot is bound to a vertex
// already in the graph.
func (g *Graph) AddEdge(e Edge) error {
	for slot, v := range e.Vertices() {
		if isNilVertex(v) {
			return fmt.Errorf("%s slot %d: %w", e.Name(), slot, ErrUnboundVertex)
		}
		if registered, ok := g.vertices[v.ID()]; !ok || registered != v {
			return fmt.Errorf("%s slot %d (vertex %d): %w", e.Name(), slot, v.ID(), ErrUnknownVertex)
		}
	}
	g.edges = append(g.edges, e)
	return nil
}

// Vertex returns the vertex registered under id.
func (g *Graph) Vertex(id int) (Vertex, bool) {
	v, ok := g.vertices[id]
	return v, ok
}

// Vertices returns all vertices ordered by id.
func (g *Graph) Vertices() []Vertex {
	out := make([]Vertex, 0, len(g.vertices))
	for _, v := range g.vertices {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Edges returns the registered edges in insertion order.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// ComputeActiveErrors evaluates every edge. Edges are independent, so they
// are evaluated concurrently; the first ContractViolation or non-finite
// residual aborts the pass and is returned.
func (g *Graph) ComputeActiveErrors(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for _, e := range g.edges {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return evaluateEdge(e)
		})
	}
	return eg.Wait()
}

// Chi2 returns Σ eᵀ Ω e over all edges using the residuals from the last
// evaluation pass.
func (g *Graph) Chi2() float64 {
	var chi2 float64
	for _, e := range g.edges {
		chi2 += weightedSquaredNorm(e.Error(), e.Information())
	}
	return chi2
}

// evaluateEdge runs ComputeError and converts contract violations into
// errors.
func evaluateEdge(e Edge) (err error) {
	defer recoverViolation(&err)
	e.ComputeError()
	for i, v := range e.Error() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s residual[%d]=%v: %w", e.Name(), i, v, ErrNonFiniteResidual)
		}
	}
	return nil
}

func weightedSquaredNorm(r []float64, info *mat.SymDense) float64 {
	rv := mat.NewVecDense(len(r), r)
	return mat.Inner(rv, info, rv)
}

func isNilVertex(v Vertex) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
