package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"
)

func TestDefaultPlannerConfig(t *testing.T) {
	cfg := DefaultPlannerConfig()

	if cfg.MinObstacleDist == nil || *cfg.MinObstacleDist != 0.5 {
		t.Errorf("Expected MinObstacleDist 0.5, got %v", cfg.MinObstacleDist)
	}
	if cfg.PenaltyEpsilon == nil || *cfg.PenaltyEpsilon != 0.1 {
		t.Errorf("Expected PenaltyEpsilon 0.1, got %v", cfg.PenaltyEpsilon)
	}
	if cfg.ObstacleDistanceMode == nil || *cfg.ObstacleDistanceMode != DistancePredictedPosition {
		t.Errorf("Expected ObstacleDistanceMode %q, got %v", DistancePredictedPosition, cfg.ObstacleDistanceMode)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultPlannerConfig() does not validate: %v", err)
	}
}

func TestMustLoadDefaultConfig_MatchesBuiltInDefaults(t *testing.T) {
	got := MustLoadDefaultConfig()
	want := DefaultPlannerConfig()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("defaults file differs from built-in defaults (-want +got):\n%s", diff)
	}
}

func TestLoadPlannerConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "planner.json")

	testJSON := `{
  "min_obstacle_dist": 1.0,
  "penalty_epsilon": 0.05,
  "obstacle_distance_mode": "spacetime",
  "no_inner_iterations": 8
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadPlannerConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if got := cfg.GetMinObstacleDist(); got != 1.0 {
		t.Errorf("GetMinObstacleDist() = %f, want 1.0", got)
	}
	if got := cfg.GetPenaltyEpsilon(); got != 0.05 {
		t.Errorf("GetPenaltyEpsilon() = %f, want 0.05", got)
	}
	if got := cfg.GetObstacleDistanceMode(); got != DistanceSpaceTime {
		t.Errorf("GetObstacleDistanceMode() = %q, want %q", got, DistanceSpaceTime)
	}
	if got := cfg.GetNoInnerIterations(); got != 8 {
		t.Errorf("GetNoInnerIterations() = %d, want 8", got)
	}

	// Omitted fields fall back to defaults.
	if cfg.DtRef != nil {
		t.Errorf("Expected DtRef to be unset, got %v", *cfg.DtRef)
	}
	if got := cfg.GetDtRef(); got != 0.3 {
		t.Errorf("GetDtRef() = %f, want 0.3", got)
	}
	if got := cfg.GetWeightDynamicObstacle(); got != 50 {
		t.Errorf("GetWeightDynamicObstacle() = %f, want 50", got)
	}
}

func TestLoadPlannerConfig_YAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "planner.yaml")
	testYAML := "min_obstacle_dist: 0.8\nsolver_workers: 2\n"
	if err := os.WriteFile(configPath, []byte(testYAML), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadPlannerConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if got := cfg.GetMinObstacleDist(); got != 0.8 {
		t.Errorf("GetMinObstacleDist() = %f, want 0.8", got)
	}
	if got := cfg.GetSolverWorkers(); got != 2 {
		t.Errorf("GetSolverWorkers() = %d, want 2", got)
	}
}

func TestLoadPlannerConfig_EnvOverride(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "planner.json")
	if err := os.WriteFile(configPath, []byte(`{"min_obstacle_dist": 1.0}`), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	t.Setenv("TEB_MIN_OBSTACLE_DIST", "2.5")
	t.Setenv("TEB_PENALTY_EPSILON", "0.2")

	cfg, err := LoadPlannerConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if got := cfg.GetMinObstacleDist(); got != 2.5 {
		t.Errorf("GetMinObstacleDist() = %f, want 2.5 from environment", got)
	}
	if got := cfg.GetPenaltyEpsilon(); got != 0.2 {
		t.Errorf("GetPenaltyEpsilon() = %f, want 0.2 from environment", got)
	}
}

func TestLoadPlannerConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("wrong extension", func(t *testing.T) {
		path := filepath.Join(tmpDir, "planner.txt")
		if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadPlannerConfig(path); err == nil {
			t.Error("expected error for .txt extension")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadPlannerConfig(filepath.Join(tmpDir, "missing.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(tmpDir, "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadPlannerConfig(path); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})

	t.Run("too large", func(t *testing.T) {
		path := filepath.Join(tmpDir, "huge.json")
		big := `{"pad": "` + strings.Repeat("x", 1024*1024) + `"}`
		if err := os.WriteFile(path, []byte(big), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadPlannerConfig(path)
		if err == nil || !strings.Contains(err.Error(), "too large") {
			t.Errorf("expected too large error, got %v", err)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(tmpDir, "invalid.json")
		if err := os.WriteFile(path, []byte(`{"min_obstacle_dist": -1}`), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadPlannerConfig(path)
		if err == nil || !strings.Contains(err.Error(), "min_obstacle_dist") {
			t.Errorf("expected min_obstacle_dist validation error, got %v", err)
		}
	})
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := &PlannerConfig{
		MinObstacleDist:      ptrFloat64(0),
		PenaltyEpsilon:       ptrFloat64(-0.1),
		ObstacleDistanceMode: ptrString("nearest"),
		DtRef:                ptrFloat64(0),
		NoInnerIterations:    ptrInt(0),
		SolverWorkers:        ptrInt(-1),
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := len(multierr.Errors(err)); got != 6 {
		t.Errorf("Validate() reported %d problems, want 6: %v", got, err)
	}
}

func TestValidate_EmptyConfigIsValid(t *testing.T) {
	if err := EmptyPlannerConfig().Validate(); err != nil {
		t.Errorf("EmptyPlannerConfig().Validate() = %v, want nil", err)
	}
}

func TestValidate_ZeroEpsilonAllowed(t *testing.T) {
	cfg := &PlannerConfig{PenaltyEpsilon: ptrFloat64(0)}
	if err := cfg.Validate(); err != nil {
		t.Errorf("penalty_epsilon=0 should be valid, got %v", err)
	}
}
