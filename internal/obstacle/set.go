package obstacle

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/banshee-data/timed-elastic-band/internal/config"
	"github.com/banshee-data/timed-elastic-band/internal/monitoring"
	"github.com/golang/geo/r2"
	"github.com/google/uuid"
)

// ErrNonFiniteState is returned by Set.Add for tracks whose position or
// velocity contains NaN or ±Inf.
var ErrNonFiniteState = errors.New("obstacle state is not finite")

// Track is the tracker output admitted into a planning cycle.
type Track struct {
	TrackID string // optional; parsed as a UUID when possible
	X, Y    float64
	VX, VY  float64
}

// SetConfig holds the admission limits for a Set.
type SetConfig struct {
	// MaxSpeed caps the velocity magnitude (m/s). Zero disables clamping.
	MaxSpeed float64
}

// Set owns the obstacle snapshots of one planning cycle.
//
// Snapshots handed out by Add and Snapshots stay valid until Reset is
// called. Reset must not run while edges referencing the snapshots are
// being evaluated.
type Set struct {
	mu        sync.RWMutex
	cfg       SetConfig
	snapshots []*Snapshot
}

// SetConfigFromPlanner reads the admission limits from a PlannerConfig.
func SetConfigFromPlanner(cfg *config.PlannerConfig) SetConfig {
	return SetConfig{MaxSpeed: cfg.GetMaxObstacleSpeed()}
}

// NewSet returns an empty Set.
func NewSet(cfg SetConfig) *Set {
	return &Set{cfg: cfg}
}

// Add validates a track and stores it as a snapshot. Rejected tracks and
// clamped velocities are reported through monitoring.Logf.
func (s *Set) Add(track Track) (*Snapshot, error) {
	if !isFiniteTrack(track) {
		monitoring.Logf("obstacle: rejected track %q: non-finite state pos=(%v, %v) vel=(%v, %v)",
			track.TrackID, track.X, track.Y, track.VX, track.VY)
		return nil, fmt.Errorf("track %q: %w", track.TrackID, ErrNonFiniteState)
	}

	vx, vy := s.clampVelocity(track.VX, track.VY)
	if vx != track.VX || vy != track.VY {
		monitoring.Logf("obstacle: track %q speed %.3f m/s clamped to %.3f m/s",
			track.TrackID, math.Hypot(track.VX, track.VY), s.cfg.MaxSpeed)
	}
	centroid := r2.Point{X: track.X, Y: track.Y}
	velocity := r2.Point{X: vx, Y: vy}

	var snap *Snapshot
	if id, err := uuid.Parse(track.TrackID); err == nil {
		snap = NewSnapshotWithID(id, centroid, velocity)
	} else {
		snap = NewSnapshot(centroid, velocity)
	}

	s.mu.Lock()
	s.snapshots = append(s.snapshots, snap)
	s.mu.Unlock()
	return snap, nil
}

// Snapshots returns the snapshots admitted so far in insertion order.
func (s *Set) Snapshots() []*Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Snapshot, len(s.snapshots))
	copy(out, s.snapshots)
	return out
}

// Len returns the number of admitted snapshots.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// Reset drops all snapshots at the end of a planning cycle.
func (s *Set) Reset() {
	s.mu.Lock()
	s.snapshots = nil
	s.mu.Unlock()
}

// clampVelocity scales the velocity proportionally so its magnitude does
// not exceed MaxSpeed.
func (s *Set) clampVelocity(vx, vy float64) (float64, float64) {
	if s.cfg.MaxSpeed <= 0 {
		return vx, vy
	}
	speed := math.Hypot(vx, vy)
	if speed > s.cfg.MaxSpeed {
		scale := s.cfg.MaxSpeed / speed
		return vx * scale, vy * scale
	}
	return vx, vy
}

func isFiniteTrack(track Track) bool {
	for _, v := range [...]float64{track.X, track.Y, track.VX, track.VY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
