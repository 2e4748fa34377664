package analysis

import "math"

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Volatility is the root-mean-square of successive differences of a
// chronological series. Fewer than two values give 0.
func Volatility(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	var sumSq float64
	for i := 1; i < len(series); i++ {
		d := series[i] - series[i-1]
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(series)-1))
}

// Pearson returns the correlation coefficient of paired series. A zero
// denominator or fewer than two pairs gives 0.
func Pearson(xs, ys []float64) float64 {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := 0; i < n; i++ {
		x, y := xs[i], ys[i]
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
		sumY2 += y * y
	}

	fn := float64(n)
	num := fn*sumXY - sumX*sumY
	den := math.Sqrt((fn*sumX2 - sumX*sumX) * (fn*sumY2 - sumY*sumY))
	if den == 0 || math.IsNaN(den) {
		return 0
	}

	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
