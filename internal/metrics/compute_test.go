package metrics

import (
	"math"
	"testing"
)

func TestComputeMAEAndRMSE(t *testing.T) {
	actual := []float64{2, 4, 6}
	predicted := []float64{3, 4, 3}

	if got := computeMAE(actual, predicted); math.Abs(got-4.0/3.0) > 1e-9 {
		t.Errorf("expected MAE 1.333, got %f", got)
	}
	if got := computeRMSE(actual, predicted); math.Abs(got-math.Sqrt(10.0/3.0)) > 1e-9 {
		t.Errorf("expected RMSE 1.826, got %f", got)
	}
	if got := computeMAE(nil, nil); got != 0 {
		t.Errorf("expected MAE 0 for empty input, got %f", got)
	}
}

func TestComputeSpearman_Monotonic(t *testing.T) {
	actual := []float64{1, 2, 3, 4}

	rho := computeSpearman(actual, []float64{10, 20, 30, 40})
	if rho == nil || math.Abs(*rho-1) > 1e-9 {
		t.Errorf("expected rho 1, got %v", rho)
	}

	// Non-linear but monotonic is still perfect rank agreement.
	rho = computeSpearman(actual, []float64{1, 8, 27, 64})
	if rho == nil || math.Abs(*rho-1) > 1e-9 {
		t.Errorf("expected rho 1, got %v", rho)
	}

	rho = computeSpearman(actual, []float64{4, 3, 2, 1})
	if rho == nil || math.Abs(*rho+1) > 1e-9 {
		t.Errorf("expected rho -1, got %v", rho)
	}
}

func TestComputeSpearman_Undefined(t *testing.T) {
	if rho := computeSpearman([]float64{1}, []float64{2}); rho != nil {
		t.Errorf("expected nil for n < 2, got %f", *rho)
	}
	if rho := computeSpearman([]float64{1, 2, 3}, []float64{5, 5, 5}); rho != nil {
		t.Errorf("expected nil for constant predictions, got %f", *rho)
	}
	if rho := computeSpearman([]float64{0, 0, 0}, []float64{1, 2, 3}); rho != nil {
		t.Errorf("expected nil for constant actuals, got %f", *rho)
	}
}

func TestAverageRanks_Ties(t *testing.T) {
	got := averageRanks([]float64{10, 20, 20, 30})
	want := []float64{1, 2.5, 2.5, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rank %d: expected %v, got %v", i, want, got)
		}
	}

	got = averageRanks([]float64{3, 1, 3, 3})
	want = []float64{3, 1, 3, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rank %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestComputeCalibration(t *testing.T) {
	predicted := []float64{0, 10, 90, 95}
	actual := []float64{0, 20, 90, 45}

	// bin [0,15): mean pred 5, mean actual 10 -> 5 * 0.5
	// bin [90,inf): mean pred 92.5, mean actual 67.5 -> 25 * 0.5
	if got := computeCalibration(actual, predicted); math.Abs(got-15) > 1e-9 {
		t.Errorf("expected calibration 15, got %f", got)
	}

	if got := computeCalibration([]float64{30, 60}, []float64{30, 60}); got != 0 {
		t.Errorf("expected perfect calibration 0, got %f", got)
	}
}

func TestMinutesBin(t *testing.T) {
	tests := []struct {
		predicted float64
		want      int
	}{
		{-3, 0},
		{0, 0},
		{14.9, 0},
		{15, 1},
		{60, 4},
		{89.9, 5},
		{90, 6},
		{180, 6},
	}
	for _, tt := range tests {
		if got := minutesBin(tt.predicted); got != tt.want {
			t.Errorf("minutesBin(%v) = %d, want %d", tt.predicted, got, tt.want)
		}
	}
}
