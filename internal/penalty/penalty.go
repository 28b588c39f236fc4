package penalty

import "math"

// BoundFromBelow penalizes value for falling below lowerBound.
//
// The cost is zero once value >= lowerBound+epsilon. Below that threshold
// the violation d = lowerBound + epsilon - value is penalized quadratically
// inside a soft zone of width epsilon and linearly beyond it:
//
//	0 < d <= epsilon:  d² / (2·epsilon)
//	d > epsilon:       d - epsilon/2
//
// Both pieces meet with matching value and slope at d = epsilon and at
// d = 0, so the cost is C¹ for any epsilon > 0. With epsilon <= 0 the soft
// zone vanishes and the cost is the hinge max(0, lowerBound - value).
//
// A NaN value propagates to the result. Callers that require a finite
// residual must check for it. A violation too large to represent
// saturates at math.MaxFloat64 instead of overflowing to +Inf.
func BoundFromBelow(value, lowerBound, epsilon float64) float64 {
	if epsilon <= 0 {
		if value >= lowerBound {
			return 0
		}
		return saturate(lowerBound - value)
	}

	// An overflowing threshold compares as +Inf, which is still correct
	// for finite values.
	if value >= lowerBound+epsilon {
		return 0
	}
	if value >= lowerBound {
		d := epsilon - (value - lowerBound)
		return d * (d / epsilon) / 2
	}
	return saturate(lowerBound - value + epsilon/2)
}

// BoundFromBelowDerivative returns d BoundFromBelow / d value.
//
// The derivative lies in [-1, 0]. For epsilon <= 0 the hinge has no
// derivative at value == lowerBound; the right-hand limit (0) is returned.
func BoundFromBelowDerivative(value, lowerBound, epsilon float64) float64 {
	if epsilon <= 0 {
		if value >= lowerBound {
			return 0
		}
		return -1
	}

	if value >= lowerBound+epsilon {
		return 0
	}
	if value >= lowerBound {
		return -(epsilon - (value - lowerBound)) / epsilon
	}
	return -1
}

func saturate(cost float64) float64 {
	return math.Min(cost, math.MaxFloat64)
}
