package anomaly

import (
	"math"
	"sort"

	"github.com/Veraticus/cardscan/internal/common"
	"gonum.org/v1/gonum/stat"
)

func sortedCopy(xs []float64) []float64 {
	s := make([]float64, len(xs))
	copy(s, xs)
	sort.Float64s(s)
	return s
}

func percentile(sorted []float64, p float64) float64 {
	return common.PercentileSorted(sorted, p)
}

// sampleMeanStd returns the mean and the n-1 standard deviation.
func sampleMeanStd(xs []float64) (float64, float64) {
	if len(xs) < 2 {
		if len(xs) == 1 {
			return xs[0], math.NaN()
		}
		return math.NaN(), math.NaN()
	}
	return stat.MeanStdDev(xs, nil)
}

// populationMeanStd returns the mean and the n standard deviation.
func populationMeanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return math.NaN(), math.NaN()
	}
	return stat.PopMeanStdDev(xs, nil)
}
