package obstacle

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"
)

// Obstacle is the view of a tracked object that cost edges read.
type Obstacle interface {
	// Centroid returns the last known centroid in the planning frame (metres).
	Centroid() r2.Point
	// CentroidVelocity returns the centroid velocity estimate (m/s).
	CentroidVelocity() r2.Point
}

// Snapshot is an immutable obstacle state captured for one planning cycle.
type Snapshot struct {
	id       uuid.UUID
	centroid r2.Point
	velocity r2.Point
}

// NewSnapshot returns a snapshot with a freshly generated identity.
func NewSnapshot(centroid, velocity r2.Point) *Snapshot {
	return &Snapshot{id: uuid.New(), centroid: centroid, velocity: velocity}
}

// NewSnapshotWithID returns a snapshot that keeps the tracker's identity.
func NewSnapshotWithID(id uuid.UUID, centroid, velocity r2.Point) *Snapshot {
	return &Snapshot{id: id, centroid: centroid, velocity: velocity}
}

// ID returns the snapshot identity.
func (s *Snapshot) ID() uuid.UUID { return s.id }

// Centroid implements Obstacle.
func (s *Snapshot) Centroid() r2.Point { return s.centroid }

// CentroidVelocity implements Obstacle.
func (s *Snapshot) CentroidVelocity() r2.Point { return s.velocity }

// Static reports whether the snapshot has zero velocity, in which case
// predictions do not depend on time.
func (s *Snapshot) Static() bool {
	return s.velocity.X == 0 && s.velocity.Y == 0
}

// PredictCentroid returns the centroid extrapolated by elapsed seconds.
func (s *Snapshot) PredictCentroid(elapsed float64) r2.Point {
	return PredictPosition(s.centroid, s.velocity, elapsed)
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("obstacle %s at (%.3f, %.3f) v=(%.3f, %.3f)",
		s.id, s.centroid.X, s.centroid.Y, s.velocity.X, s.velocity.Y)
}

// Describe returns a short identifier for diagnostics. Snapshots report
// their UUID; other Obstacle implementations fall back to %v.
func Describe(o Obstacle) string {
	if o == nil {
		return "<nil>"
	}
	if s, ok := o.(*Snapshot); ok {
		if s == nil {
			return "<nil>"
		}
		return s.id.String()
	}
	return fmt.Sprintf("%v", o)
}
