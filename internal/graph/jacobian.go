package graph

import (
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// DefaultStep is the central-difference step used when Options.Step is zero.
const DefaultStep = 1e-6

// Linearize returns the Jacobian of e's residual with respect to each of
// its vertices, in slot order. Blocks for fixed vertices are nil.
//
// Vertices are perturbed in place and restored before returning, so
// Linearize must not run concurrently with any other evaluation that
// touches the same vertices. On return the residual buffer again holds the
// value at the linearization point.
func Linearize(e Edge, step float64) (blocks []*mat.Dense, err error) {
	if step <= 0 {
		step = DefaultStep
	}
	vertices := e.Vertices()
	blocks = make([]*mat.Dense, len(vertices))
	settings := &fd.JacobianSettings{Formula: fd.Central, Step: step}

	for i, v := range vertices {
		if v.Fixed() {
			continue
		}
		x0 := make([]float64, v.Dimension())
		v.EstimateData(x0)

		var evalErr error
		f := func(y, x []float64) {
			if evalErr != nil {
				return
			}
			v.SetEstimateData(x)
			if err := evaluateEdge(e); err != nil {
				evalErr = err
				return
			}
			copy(y, e.Error())
		}

		jac := mat.NewDense(e.Dimension(), v.Dimension(), nil)
		fd.Jacobian(jac, f, x0, settings)
		v.SetEstimateData(x0)
		if evalErr != nil {
			return nil, evalErr
		}
		blocks[i] = jac
	}

	if err := evaluateEdge(e); err != nil {
		return nil, err
	}
	return blocks, nil
}
