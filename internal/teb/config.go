package teb

import "github.com/banshee-data/timed-elastic-band/internal/config"

// Distance modes for EdgeDynamicObstacle.
const (
	DistancePredictedPosition = config.DistancePredictedPosition
	DistanceSpaceTime         = config.DistanceSpaceTime
)

// Config is the subset of planner parameters read by the obstacle edges.
// Edges hold a pointer to it, so a single Config is shared by every edge of
// a graph and must not change while the graph is being optimized.
type Config struct {
	MinObstacleDist       float64 // metres, > 0
	PenaltyEpsilon        float64 // metres, >= 0
	DistanceMode          string
	WeightDynamicObstacle float64
}

// ConfigFromPlanner extracts the edge parameters from a PlannerConfig,
// applying defaults for unset fields.
func ConfigFromPlanner(cfg *config.PlannerConfig) *Config {
	return &Config{
		MinObstacleDist:       cfg.GetMinObstacleDist(),
		PenaltyEpsilon:        cfg.GetPenaltyEpsilon(),
		DistanceMode:          cfg.GetObstacleDistanceMode(),
		WeightDynamicObstacle: cfg.GetWeightDynamicObstacle(),
	}
}
