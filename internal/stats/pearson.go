// Package stats holds the two statistical primitives behind correlation
// analysis: the Pearson coefficient and its approximate two-tailed p-value.
package stats

import "math"

// Correlation returns the Pearson correlation coefficient of x and y.
//
// All divisions use n = len(x). Sums and sums of squares run over each
// sequence in full, while the cross-product sum pairs elements positionally
// and stops at the shorter sequence. A sequence with zero variance yields 0.
// A negative variance product, which misaligned lengths can produce, yields NaN.
func Correlation(x, y []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	var sum1, sum2, sumSq1, sumSq2, pSum float64
	for _, v := range x {
		sum1 += v
		sumSq1 += v * v
	}
	for _, v := range y {
		sum2 += v
		sumSq2 += v * v
	}
	for i := 0; i < n && i < len(y); i++ {
		pSum += x[i] * y[i]
	}

	fn := float64(n)
	num := pSum - (sum1 * sum2 / fn)
	v1 := variance(sumSq1, sum1, fn)
	v2 := variance(sumSq2, sum2, fn)
	if v1 == 0 || v2 == 0 {
		return 0
	}
	return num / math.Sqrt(v1*v2)
}

// variance returns sumSq - sum²/n, snapping rounding noise around zero to 0.
func variance(sumSq, sum, n float64) float64 {
	v := sumSq - sum*sum/n
	if math.Abs(v) <= 1e-12*math.Max(1, sumSq) {
		return 0
	}
	return v
}
