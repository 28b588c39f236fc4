package teb

import "gonum.org/v1/gonum/floats"

// EstimateElapsedTime approximates the time until the pose at vertIdx is
// reached as vertIdx·dtRef. The band does not have a uniform interval during
// optimization, so this is an estimate fixed at edge construction.
func EstimateElapsedTime(vertIdx int, dtRef float64) float64 {
	return float64(vertIdx) * dtRef
}

// CumulativeElapsedTimes returns, for a band with the given intervals, the
// time at which each pose is reached. The result has len(timeDiffs)+1
// entries and starts at 0.
func CumulativeElapsedTimes(timeDiffs []float64) []float64 {
	out := make([]float64, len(timeDiffs)+1)
	if len(timeDiffs) > 0 {
		floats.CumSum(out[1:], timeDiffs)
	}
	return out
}
