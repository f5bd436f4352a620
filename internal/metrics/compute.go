package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MinutesBinWidth is the width of the predicted-minutes bins used for
// calibration error.
const MinutesBinWidth = 15.0

// minutesBins is the number of calibration bins. The last bin collects
// everything at or above 90 predicted minutes.
const minutesBins = 7

// computeMAE calculates mean absolute error. Slices must have equal length.
func computeMAE(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// computeRMSE calculates root mean squared error.
func computeRMSE(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	sumSq := 0.0
	for i := range actual {
		d := actual[i] - predicted[i]
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(actual)))
}

// computeSpearman returns the Spearman rank correlation using average ranks
// for ties. Returns nil when fewer than 2 values or either side has zero variance.
func computeSpearman(actual, predicted []float64) *float64 {
	if len(actual) < 2 {
		return nil
	}
	ra := averageRanks(actual)
	rp := averageRanks(predicted)
	if stat.Variance(ra, nil) == 0 || stat.Variance(rp, nil) == 0 {
		return nil
	}
	rho := stat.Correlation(ra, rp, nil)
	if math.IsNaN(rho) {
		return nil
	}
	return &rho
}

// averageRanks returns 1-based ranks; tied values share the mean of their positions.
func averageRanks(xs []float64) []float64 {
	n := len(xs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// computeCalibration bins rows by predicted minutes and returns the
// row-weighted mean absolute gap between mean predicted and mean actual
// minutes per bin.
func computeCalibration(actual, predicted []float64) float64 {
	n := len(actual)
	if n == 0 {
		return 0
	}

	var (
		count   [minutesBins]int
		sumPred [minutesBins]float64
		sumAct  [minutesBins]float64
	)
	for i := range actual {
		b := minutesBin(predicted[i])
		count[b]++
		sumPred[b] += predicted[i]
		sumAct[b] += actual[i]
	}

	ece := 0.0
	for b := 0; b < minutesBins; b++ {
		if count[b] == 0 {
			continue
		}
		c := float64(count[b])
		ece += c / float64(n) * math.Abs(sumPred[b]/c-sumAct[b]/c)
	}
	return ece
}

func minutesBin(predicted float64) int {
	if predicted <= 0 {
		return 0
	}
	b := int(predicted / MinutesBinWidth)
	if b >= minutesBins {
		return minutesBins - 1
	}
	return b
}
