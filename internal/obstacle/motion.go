package obstacle

import "github.com/golang/geo/r2"

// PredictPosition extrapolates a centroid under constant velocity:
// centroid + velocity*elapsed.
//
// No clamping is applied and negative elapsed times extrapolate backwards.
// The prediction error grows linearly with elapsed, so it is only as good
// as the velocity estimate it is given.
func PredictPosition(centroid, velocity r2.Point, elapsed float64) r2.Point {
	return centroid.Add(velocity.Mul(elapsed))
}
