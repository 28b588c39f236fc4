package graph

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/timed-elastic-band/internal/config"
	"github.com/banshee-data/timed-elastic-band/internal/timeutil"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrSingularSystem is returned when the damped normal equations cannot be
// factorized even at the largest damping the optimizer tries.
var ErrSingularSystem = errors.New("normal equations are not positive definite")

const (
	minLambda = 1e-12
	maxLambda = 1e12
)

// MetricsRecorder receives solver telemetry. Implementations must be safe
// to call from the optimizer's goroutine; the optimizer never calls them
// concurrently.
type MetricsRecorder interface {
	AddEdgeEvaluations(n int)
	IncContractViolations(edge string)
	ObserveSolve(iterations int, chi2 float64, elapsed time.Duration)
}

// Options controls the Levenberg–Marquardt loop.
type Options struct {
	Iterations    int     // maximum outer iterations
	InitialLambda float64 // initial damping
	Tolerance     float64 // stop when the chi² improvement falls below this
	Step          float64 // central-difference step for Jacobians
	MaxTrials     int     // damping increases tried per iteration
}

// DefaultOptions returns the solver defaults.
func DefaultOptions() Options {
	return OptionsFromPlanner(config.EmptyPlannerConfig())
}

// OptionsFromPlanner builds Options from a loaded PlannerConfig.
func OptionsFromPlanner(cfg *config.PlannerConfig) Options {
	return Options{
		Iterations:    cfg.GetNoInnerIterations(),
		InitialLambda: cfg.GetInitialLambda(),
		Tolerance:     cfg.GetSolverTolerance(),
		Step:          cfg.GetSolverStep(),
		MaxTrials:     10,
	}
}

// Result summarizes one Optimize call.
type Result struct {
	Iterations  int // accepted iterations
	InitialChi2 float64
	FinalChi2   float64
	Converged   bool
	Duration    time.Duration
}

// Optimizer runs Levenberg–Marquardt over a Graph.
type Optimizer struct {
	graph   *Graph
	opts    Options
	logger  *zap.Logger
	clock   timeutil.Clock
	metrics MetricsRecorder
}

// NewOptimizer returns an Optimizer for g. A nil logger disables logging.
func NewOptimizer(g *Graph, opts Options, logger *zap.Logger) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxTrials <= 0 {
		opts.MaxTrials = 10
	}
	if opts.InitialLambda <= 0 {
		opts.InitialLambda = 1e-3
	}
	return &Optimizer{
		graph:  g,
		opts:   opts,
		logger: logger,
		clock:  timeutil.RealClock{},
	}
}

// SetClock replaces the clock used to time solves.
func (o *Optimizer) SetClock(c timeutil.Clock) { o.clock = c }

// SetMetrics installs a telemetry sink. nil disables metrics.
func (o *Optimizer) SetMetrics(m MetricsRecorder) { o.metrics = m }

// Optimize refines every non-fixed vertex in place.
//
// A ContractViolation raised by any edge aborts the run and is returned
// (errors.As with *ContractViolation); vertices are left at the last
// accepted estimate. Cancellation of ctx is honoured between iterations.
// ErrSingularSystem is returned when no damping tried in an iteration
// yields a factorizable system.
func (o *Optimizer) Optimize(ctx context.Context) (Result, error) {
	start := o.clock.Now()
	var res Result

	if err := o.computeErrors(ctx); err != nil {
		o.finish(&res, start)
		return res, fmt.Errorf("initial evaluation: %w", err)
	}
	chi2 := o.graph.Chi2()
	res.InitialChi2 = chi2
	res.FinalChi2 = chi2

	free, offsets, n := o.freeVertices()
	if n == 0 || chi2 == 0 {
		res.Converged = true
		o.finish(&res, start)
		return res, nil
	}

	lambda := o.opts.InitialLambda
	for iter := 0; iter < o.opts.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			o.finish(&res, start)
			return res, err
		}

		hessian, gradient, err := o.buildSystem(offsets, n)
		if err != nil {
			o.finish(&res, start)
			return res, fmt.Errorf("iteration %d: %w", iter, err)
		}

		accepted, factorized := false, false
		improvement, stepNorm := 0.0, 0.0
		for trial := 0; trial < o.opts.MaxTrials && lambda <= maxLambda; trial++ {
			delta, err := solveDamped(hessian, gradient, lambda)
			if err != nil {
				lambda *= 10
				continue
			}
			factorized = true

			backup := backupEstimates(free)
			applyIncrement(free, offsets, delta)
			if err := o.computeErrors(ctx); err != nil {
				restoreEstimates(free, backup)
				o.finish(&res, start)
				return res, fmt.Errorf("iteration %d: %w", iter, err)
			}

			newChi2 := o.graph.Chi2()
			if newChi2 < chi2 {
				improvement = chi2 - newChi2
				stepNorm = floats.Norm(delta, 2)
				chi2 = newChi2
				lambda = math.Max(lambda/10, minLambda)
				accepted = true
				break
			}

			restoreEstimates(free, backup)
			lambda *= 10
		}

		if !factorized {
			res.FinalChi2 = chi2
			o.finish(&res, start)
			return res, fmt.Errorf("iteration %d: lambda up to %g: %w", iter, lambda/10, ErrSingularSystem)
		}
		if !accepted {
			// Residual buffers must describe the restored estimates.
			if err := o.computeErrors(ctx); err != nil {
				o.finish(&res, start)
				return res, fmt.Errorf("iteration %d: %w", iter, err)
			}
			res.Converged = true
			break
		}

		res.Iterations = iter + 1
		res.FinalChi2 = chi2
		o.logger.Debug("optimizer iteration",
			zap.Int("iteration", iter),
			zap.Float64("chi2", chi2),
			zap.Float64("step_norm", stepNorm),
			zap.Float64("lambda", lambda))

		if chi2 == 0 || improvement < o.opts.Tolerance {
			res.Converged = true
			break
		}
	}

	res.FinalChi2 = chi2
	o.finish(&res, start)
	return res, nil
}

func (o *Optimizer) finish(res *Result, start time.Time) {
	res.Duration = o.clock.Since(start)
	o.logger.Info("optimization finished",
		zap.Int("iterations", res.Iterations),
		zap.Float64("initial_chi2", res.InitialChi2),
		zap.Float64("final_chi2", res.FinalChi2),
		zap.Bool("converged", res.Converged),
		zap.Duration("duration", res.Duration))
	if o.metrics != nil {
		o.metrics.ObserveSolve(res.Iterations, res.FinalChi2, res.Duration)
	}
}

// computeErrors evaluates all edges and reports violations to metrics and
// the log.
func (o *Optimizer) computeErrors(ctx context.Context) error {
	err := o.graph.ComputeActiveErrors(ctx)
	if o.metrics != nil {
		o.metrics.AddEdgeEvaluations(len(o.graph.Edges()))
	}
	if err != nil {
		o.reportViolation(err)
	}
	return err
}

func (o *Optimizer) reportViolation(err error) {
	var cv *ContractViolation
	if !errors.As(err, &cv) {
		return
	}
	o.logger.Error("edge contract violation", zap.String("edge", cv.Edge), zap.Error(cv))
	if o.metrics != nil {
		o.metrics.IncContractViolations(cv.Edge)
	}
}

// freeVertices returns the non-fixed vertices ordered by id, their offsets
// in the stacked parameter vector, and the total parameter count.
func (o *Optimizer) freeVertices() ([]Vertex, map[int]int, int) {
	var free []Vertex
	offsets := make(map[int]int)
	n := 0
	for _, v := range o.graph.Vertices() {
		if v.Fixed() {
			continue
		}
		free = append(free, v)
		offsets[v.ID()] = n
		n += v.Dimension()
	}
	return free, offsets, n
}

// buildSystem linearizes every edge and accumulates H = Σ JᵀΩJ and
// b = -Σ JᵀΩr.
func (o *Optimizer) buildSystem(offsets map[int]int, n int) (*mat.Dense, *mat.VecDense, error) {
	hessian := mat.NewDense(n, n, nil)
	gradient := mat.NewVecDense(n, nil)

	for _, e := range o.graph.Edges() {
		blocks, err := Linearize(e, o.opts.Step)
		if o.metrics != nil {
			o.metrics.AddEdgeEvaluations(1)
		}
		if err != nil {
			o.reportViolation(err)
			return nil, nil, err
		}

		omega := e.Information()
		residual := mat.NewVecDense(e.Dimension(), append([]float64(nil), e.Error()...))
		var weighted mat.VecDense
		weighted.MulVec(omega, residual)

		vertices := e.Vertices()
		weightedJac := make([]*mat.Dense, len(blocks))
		for j, jac := range blocks {
			if jac == nil {
				continue
			}
			var wj mat.Dense
			wj.Mul(omega, jac)
			weightedJac[j] = &wj
		}

		for i, ji := range blocks {
			if ji == nil {
				continue
			}
			oi := offsets[vertices[i].ID()]
			di := vertices[i].Dimension()

			var g mat.VecDense
			g.MulVec(ji.T(), &weighted)
			sub := gradient.SliceVec(oi, oi+di).(*mat.VecDense)
			sub.SubVec(sub, &g)

			for j, wj := range weightedJac {
				if wj == nil {
					continue
				}
				oj := offsets[vertices[j].ID()]
				dj := vertices[j].Dimension()

				var blk mat.Dense
				blk.Mul(ji.T(), wj)
				view := hessian.Slice(oi, oi+di, oj, oj+dj).(*mat.Dense)
				view.Add(view, &blk)
			}
		}
	}
	return hessian, gradient, nil
}

// solveDamped solves (H + λI) δ = b with a Cholesky factorization.
func solveDamped(hessian *mat.Dense, gradient *mat.VecDense, lambda float64) ([]float64, error) {
	n, _ := hessian.Dims()
	damped := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			// Symmetrize to absorb round-off from the block products.
			damped.SetSym(i, j, 0.5*(hessian.At(i, j)+hessian.At(j, i)))
		}
		damped.SetSym(i, i, damped.At(i, i)+lambda)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(damped); !ok {
		return nil, ErrSingularSystem
	}
	var delta mat.VecDense
	if err := chol.SolveVecTo(&delta, gradient); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularSystem, err)
	}
	return delta.RawVector().Data, nil
}

func backupEstimates(vertices []Vertex) [][]float64 {
	backup := make([][]float64, len(vertices))
	for i, v := range vertices {
		backup[i] = make([]float64, v.Dimension())
		v.EstimateData(backup[i])
	}
	return backup
}

func restoreEstimates(vertices []Vertex, backup [][]float64) {
	for i, v := range vertices {
		v.SetEstimateData(backup[i])
	}
}

func applyIncrement(vertices []Vertex, offsets map[int]int, delta []float64) {
	for _, v := range vertices {
		off := offsets[v.ID()]
		v.Oplus(delta[off : off+v.Dimension()])
	}
}
