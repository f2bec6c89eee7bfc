package utils

import (
	"math"
)

const bytesPerMB = 1024 * 1024

func roundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// SizeStatsMB returns the average and sample standard deviation of file sizes,
// in megabytes rounded to four places. Fewer than two sizes give a zero
// deviation.
func SizeStatsMB(sizes []int64) (float64, float64) {
	n := len(sizes)
	if n == 0 {
		return 0.0, 0.0
	}

	sum := 0.0
	for _, s := range sizes {
		sum += float64(s) / bytesPerMB
	}
	average := sum / float64(n)

	if n < 2 {
		return roundFloat(average, 4), 0.0
	}

	varianceSum := 0.0
	for _, s := range sizes {
		varianceSum += math.Pow(float64(s)/bytesPerMB-average, 2)
	}
	stdDev := math.Sqrt(varianceSum / float64(n-1))

	return roundFloat(average, 4), roundFloat(stdDev, 4)
}
