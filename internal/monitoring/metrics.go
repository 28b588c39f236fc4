package monitoring

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SolverCollector bundles Prometheus metrics for trajectory optimization
// runs. It satisfies graph.MetricsRecorder. A nil *SolverCollector is a
// valid no-op recorder.
type SolverCollector struct {
	EdgeEvaluations    prometheus.Counter
	ContractViolations *prometheus.CounterVec
	SolveIterations    prometheus.Histogram
	SolveDurations     prometheus.Histogram
	FinalChi2          prometheus.Gauge
}

// NewSolverCollector registers solver metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSolverCollector(reg prometheus.Registerer) (*SolverCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	evaluations, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "teb_edge_evaluations_total",
		Help: "Total number of edge residual evaluations across all solves.",
	}), "teb_edge_evaluations_total")
	if err != nil {
		return nil, err
	}

	violations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "teb_contract_violations_total",
		Help: "Edge evaluations aborted by a contract violation, labeled by edge type.",
	}, []string{"edge"}), "teb_contract_violations_total")
	if err != nil {
		return nil, err
	}

	iterations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "teb_solve_iterations",
		Help:    "Accepted Levenberg-Marquardt iterations per solve.",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21, 34, 55, 100},
	}), "teb_solve_iterations")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "teb_solve_duration_seconds",
		Help:    "Wall time per solve in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}), "teb_solve_duration_seconds")
	if err != nil {
		return nil, err
	}

	chi2, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "teb_final_chi2",
		Help: "Weighted squared residual at the end of the most recent solve.",
	}), "teb_final_chi2")
	if err != nil {
		return nil, err
	}

	return &SolverCollector{
		EdgeEvaluations:    evaluations,
		ContractViolations: violations,
		SolveIterations:    iterations,
		SolveDurations:     durations,
		FinalChi2:          chi2,
	}, nil
}

// AddEdgeEvaluations counts n residual evaluations.
func (c *SolverCollector) AddEdgeEvaluations(n int) {
	if c == nil || c.EdgeEvaluations == nil {
		return
	}
	c.EdgeEvaluations.Add(float64(n))
}

// IncContractViolations counts one aborted evaluation for edge.
func (c *SolverCollector) IncContractViolations(edge string) {
	if c == nil || c.ContractViolations == nil {
		return
	}
	c.ContractViolations.WithLabelValues(edge).Inc()
}

// ObserveSolve records the outcome of one solve.
func (c *SolverCollector) ObserveSolve(iterations int, chi2 float64, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.SolveIterations != nil {
		c.SolveIterations.Observe(float64(iterations))
	}
	if c.SolveDurations != nil {
		c.SolveDurations.Observe(elapsed.Seconds())
	}
	if c.FinalChi2 != nil {
		c.FinalChi2.Set(chi2)
	}
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
