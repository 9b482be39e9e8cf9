package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ZVal returns the two-tailed Z-value associated with a specific confidence interval.
// The interval is a number from 0 to 100 percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	area := (1 + (confidenceInterval / 100)) / 2
	return dist.Quantile(area)
}

// ProportionZ is how many standard errors an observed rate over n trials
// lies from the expected probability p. It is zero when p is 0 or 1 and the
// observation agrees.
func ProportionZ(observed, p float64, n int) float64 {
	if n == 0 {
		return 0
	}
	se := math.Sqrt(p * (1 - p) / float64(n))
	if se == 0 {
		if observed == p {
			return 0
		}
		return math.Inf(1)
	}
	return (observed - p) / se
}
