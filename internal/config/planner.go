package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// DefaultConfigPath is the path to the canonical planner defaults file.
const DefaultConfigPath = "config/planner.defaults.json"

// EnvPrefix prefixes environment overrides, e.g. TEB_MIN_OBSTACLE_DIST.
const EnvPrefix = "TEB"

// Obstacle distance modes.
const (
	// DistancePredictedPosition measures the distance between the pose and
	// the obstacle centroid extrapolated to the pose's elapsed time.
	DistancePredictedPosition = "predicted_position"
	// DistanceSpaceTime measures the distance in (x, y, t) between the pose
	// and the obstacle's constant-velocity trajectory line.
	DistanceSpaceTime = "spacetime"
)

// PlannerConfig holds the tunable parameters of the obstacle cost edges
// and the reference solver. Fields are pointers so partial files are
// valid; the Get* methods supply defaults for anything left unset.
type PlannerConfig struct {
	// Obstacle params
	MinObstacleDist       *float64 `json:"min_obstacle_dist,omitempty" mapstructure:"min_obstacle_dist"`
	PenaltyEpsilon        *float64 `json:"penalty_epsilon,omitempty" mapstructure:"penalty_epsilon"`
	ObstacleDistanceMode  *string  `json:"obstacle_distance_mode,omitempty" mapstructure:"obstacle_distance_mode"`
	WeightDynamicObstacle *float64 `json:"weight_dynamic_obstacle,omitempty" mapstructure:"weight_dynamic_obstacle"`
	MaxObstacleSpeed      *float64 `json:"max_obstacle_speed,omitempty" mapstructure:"max_obstacle_speed"`

	// Trajectory params
	DtRef *float64 `json:"dt_ref,omitempty" mapstructure:"dt_ref"`

	// Solver params
	NoInnerIterations *int     `json:"no_inner_iterations,omitempty" mapstructure:"no_inner_iterations"`
	InitialLambda     *float64 `json:"initial_lambda,omitempty" mapstructure:"initial_lambda"`
	SolverTolerance   *float64 `json:"solver_tolerance,omitempty" mapstructure:"solver_tolerance"`
	SolverStep        *float64 `json:"solver_step,omitempty" mapstructure:"solver_step"`
	SolverWorkers     *int     `json:"solver_workers,omitempty" mapstructure:"solver_workers"`
}

// plannerKeys lists every key so environment overrides apply even when the
// file omits them.
var plannerKeys = []string{
	"min_obstacle_dist",
	"penalty_epsilon",
	"obstacle_distance_mode",
	"weight_dynamic_obstacle",
	"max_obstacle_speed",
	"dt_ref",
	"no_inner_iterations",
	"initial_lambda",
	"solver_tolerance",
	"solver_step",
	"solver_workers",
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyPlannerConfig returns a PlannerConfig with all fields set to nil.
func EmptyPlannerConfig() *PlannerConfig {
	return &PlannerConfig{}
}

// DefaultPlannerConfig returns a PlannerConfig with every field populated
// from the built-in defaults.
func DefaultPlannerConfig() *PlannerConfig {
	empty := EmptyPlannerConfig()
	return &PlannerConfig{
		MinObstacleDist:       ptrFloat64(empty.GetMinObstacleDist()),
		PenaltyEpsilon:        ptrFloat64(empty.GetPenaltyEpsilon()),
		ObstacleDistanceMode:  ptrString(empty.GetObstacleDistanceMode()),
		WeightDynamicObstacle: ptrFloat64(empty.GetWeightDynamicObstacle()),
		MaxObstacleSpeed:      ptrFloat64(empty.GetMaxObstacleSpeed()),
		DtRef:                 ptrFloat64(empty.GetDtRef()),
		NoInnerIterations:     ptrInt(empty.GetNoInnerIterations()),
		InitialLambda:         ptrFloat64(empty.GetInitialLambda()),
		SolverTolerance:       ptrFloat64(empty.GetSolverTolerance()),
		SolverStep:            ptrFloat64(empty.GetSolverStep()),
		SolverWorkers:         ptrInt(empty.GetSolverWorkers()),
	}
}

// LoadPlannerConfig loads a PlannerConfig from a JSON or YAML file.
// Environment variables named TEB_<KEY> override file values. Fields
// omitted from both retain their defaults, so partial configs are safe.
func LoadPlannerConfig(path string) (*PlannerConfig, error) {
	cleanPath := filepath.Clean(path)
	switch ext := filepath.Ext(cleanPath); ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	v := viper.New()
	v.SetConfigFile(cleanPath)
	v.SetEnvPrefix(EnvPrefix)
	for _, key := range plannerKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPlannerConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent
// directories. Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *PlannerConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // deeper packages
		"../../../../" + DefaultConfigPath, // even deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadPlannerConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid. All problems
// are reported, not just the first.
func (c *PlannerConfig) Validate() error {
	var errs error

	if c.MinObstacleDist != nil && !(*c.MinObstacleDist > 0) {
		errs = multierr.Append(errs, fmt.Errorf("min_obstacle_dist must be positive, got %f", *c.MinObstacleDist))
	}
	if c.PenaltyEpsilon != nil && !(*c.PenaltyEpsilon >= 0) {
		errs = multierr.Append(errs, fmt.Errorf("penalty_epsilon must be non-negative, got %f", *c.PenaltyEpsilon))
	}
	if c.ObstacleDistanceMode != nil {
		switch *c.ObstacleDistanceMode {
		case DistancePredictedPosition, DistanceSpaceTime:
		default:
			errs = multierr.Append(errs, fmt.Errorf("obstacle_distance_mode must be %q or %q, got %q",
				DistancePredictedPosition, DistanceSpaceTime, *c.ObstacleDistanceMode))
		}
	}
	if c.WeightDynamicObstacle != nil && !(*c.WeightDynamicObstacle >= 0) {
		errs = multierr.Append(errs, fmt.Errorf("weight_dynamic_obstacle must be non-negative, got %f", *c.WeightDynamicObstacle))
	}
	if c.MaxObstacleSpeed != nil && !(*c.MaxObstacleSpeed >= 0) {
		errs = multierr.Append(errs, fmt.Errorf("max_obstacle_speed must be non-negative, got %f", *c.MaxObstacleSpeed))
	}
	if c.DtRef != nil && !(*c.DtRef > 0) {
		errs = multierr.Append(errs, fmt.Errorf("dt_ref must be positive, got %f", *c.DtRef))
	}
	if c.NoInnerIterations != nil && *c.NoInnerIterations <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("no_inner_iterations must be positive, got %d", *c.NoInnerIterations))
	}
	if c.InitialLambda != nil && !(*c.InitialLambda > 0) {
		errs = multierr.Append(errs, fmt.Errorf("initial_lambda must be positive, got %g", *c.InitialLambda))
	}
	if c.SolverTolerance != nil && !(*c.SolverTolerance >= 0) {
		errs = multierr.Append(errs, fmt.Errorf("solver_tolerance must be non-negative, got %g", *c.SolverTolerance))
	}
	if c.SolverStep != nil && !(*c.SolverStep > 0) {
		errs = multierr.Append(errs, fmt.Errorf("solver_step must be positive, got %g", *c.SolverStep))
	}
	if c.SolverWorkers != nil && *c.SolverWorkers < 0 {
		errs = multierr.Append(errs, fmt.Errorf("solver_workers must be non-negative, got %d", *c.SolverWorkers))
	}

	return errs
}

// GetMinObstacleDist returns the min_obstacle_dist value or the default.
func (c *PlannerConfig) GetMinObstacleDist() float64 {
	if c.MinObstacleDist == nil {
		return 0.5
	}
	return *c.MinObstacleDist
}

// GetPenaltyEpsilon returns the penalty_epsilon value or the default.
func (c *PlannerConfig) GetPenaltyEpsilon() float64 {
	if c.PenaltyEpsilon == nil {
		return 0.1
	}
	return *c.PenaltyEpsilon
}

// GetObstacleDistanceMode returns the obstacle_distance_mode value or the default.
func (c *PlannerConfig) GetObstacleDistanceMode() string {
	if c.ObstacleDistanceMode == nil || *c.ObstacleDistanceMode == "" {
		return DistancePredictedPosition
	}
	return *c.ObstacleDistanceMode
}

// GetWeightDynamicObstacle returns the weight_dynamic_obstacle value or the default.
func (c *PlannerConfig) GetWeightDynamicObstacle() float64 {
	if c.WeightDynamicObstacle == nil {
		return 50
	}
	return *c.WeightDynamicObstacle
}

// GetMaxObstacleSpeed returns the max_obstacle_speed value or the default.
func (c *PlannerConfig) GetMaxObstacleSpeed() float64 {
	if c.MaxObstacleSpeed == nil {
		return 30 // m/s, ~108 km/h
	}
	return *c.MaxObstacleSpeed
}

// GetDtRef returns the dt_ref value or the default.
func (c *PlannerConfig) GetDtRef() float64 {
	if c.DtRef == nil {
		return 0.3
	}
	return *c.DtRef
}

// GetNoInnerIterations returns the no_inner_iterations value or the default.
func (c *PlannerConfig) GetNoInnerIterations() int {
	if c.NoInnerIterations == nil {
		return 5
	}
	return *c.NoInnerIterations
}

// GetInitialLambda returns the initial_lambda value or the default.
func (c *PlannerConfig) GetInitialLambda() float64 {
	if c.InitialLambda == nil {
		return 1e-3
	}
	return *c.InitialLambda
}

// GetSolverTolerance returns the solver_tolerance value or the default.
func (c *PlannerConfig) GetSolverTolerance() float64 {
	if c.SolverTolerance == nil {
		return 1e-9
	}
	return *c.SolverTolerance
}

// GetSolverStep returns the solver_step value or the default.
func (c *PlannerConfig) GetSolverStep() float64 {
	if c.SolverStep == nil {
		return 1e-6
	}
	return *c.SolverStep
}

// GetSolverWorkers returns the solver_workers value or the default.
// Zero means one worker per available CPU.
func (c *PlannerConfig) GetSolverWorkers() int {
	if c.SolverWorkers == nil {
		return 0
	}
	return *c.SolverWorkers
}
