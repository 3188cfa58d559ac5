package stats

import "math"

// TStatistic returns r*sqrt((n-2)/(1-r^2)). It is infinite or NaN when r^2 == 1.
func TStatistic(r float64, n int) float64 {
	return r * math.Sqrt(float64(n-2)/(1-r*r))
}

// PValue approximates the two-tailed significance of a Pearson correlation
// with the closed form 2*(1 - min(1, exp(-0.717t - 0.416t^2))).
//
// This is an approximation, not a Student-t integral. Note that
// t = 0 gives p = 0, and any negative t above roughly -1.72 also gives p = 0.
// The result may be NaN for |r| == 1; use Significant to test it.
func PValue(r float64, n int) float64 {
	t := TStatistic(r, n)
	return 2 * (1 - math.Min(1, math.Exp(-0.717*t-0.416*t*t)))
}

// Significant reports whether p is a finite value below alpha.
func Significant(p, alpha float64) bool {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return false
	}
	return p < alpha
}
