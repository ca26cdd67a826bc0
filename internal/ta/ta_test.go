package ta

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	got := Mean([]float64{1, 2, 3, 4})
	if got != 2.5 {
		t.Errorf("Expected mean 2.5, got %f", got)
	}
	if !math.IsNaN(Mean(nil)) {
		t.Error("Expected NaN for empty input")
	}
}

func TestSMA(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6}
	got := SMA(vals, 3)
	if got != 5 {
		t.Errorf("Expected SMA(3) of last values to be 5, got %f", got)
	}
	if !math.IsNaN(SMA(vals, 10)) {
		t.Error("Expected NaN when window exceeds data")
	}
	if !math.IsNaN(SMA(vals, 0)) {
		t.Error("Expected NaN for zero window")
	}
}

func TestStdDev(t *testing.T) {
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8)
	if math.Abs(got-2) > 1e-9 {
		t.Errorf("Expected population stddev 2, got %f", got)
	}
	if StdDev([]float64{3, 3, 3}, 3) != 0 {
		t.Error("Expected zero stddev for constant values")
	}
	if !math.IsNaN(StdDev([]float64{1}, 5)) {
		t.Error("Expected NaN when window exceeds data")
	}
}

func TestHighLow(t *testing.T) {
	hi, lo := HighLow([]float64{3, 9, 1, 5})
	if hi != 9 || lo != 1 {
		t.Errorf("Expected hi 9 lo 1, got hi %f lo %f", hi, lo)
	}
	hi, lo = HighLow(nil)
	if !math.IsNaN(hi) || !math.IsNaN(lo) {
		t.Error("Expected NaN pair for empty input")
	}
}

func TestRangeATR(t *testing.T) {
	vals := []float64{100, 102, 101, 104}
	got := RangeATR(vals, 3)
	// |102-100| + |101-102| + |104-101| = 6, over period 3
	if math.Abs(got-2) > 1e-9 {
		t.Errorf("Expected ATR 2, got %f", got)
	}
	if !math.IsNaN(RangeATR(vals, 4)) {
		t.Error("Expected NaN when period+1 exceeds data")
	}
}
