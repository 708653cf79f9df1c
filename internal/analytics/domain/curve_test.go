package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewRateCurveValidation(t *testing.T) {
	curveDate := date(2023, time.January, 1)

	if _, err := NewRateCurve(curveDate, []float64{1, 2}, []float64{0.05}, 2); !errors.Is(err, ErrInvalidCurve) {
		t.Errorf("length mismatch: err = %v, want ErrInvalidCurve", err)
	}
	if _, err := NewRateCurve(curveDate, []float64{1}, []float64{0.05}, 2); !errors.Is(err, ErrInvalidCurve) {
		t.Errorf("single point: err = %v, want ErrInvalidCurve", err)
	}
	if _, err := NewRateCurve(curveDate, []float64{0, 1}, []float64{0.04, 0.05}, 2); !errors.Is(err, ErrInvalidCurve) {
		t.Errorf("non-positive tenor: err = %v, want ErrInvalidCurve", err)
	}
}

func TestNewRateCurveSortsByTenor(t *testing.T) {
	curve, err := NewRateCurve(date(2023, time.January, 1),
		[]float64{5, 1, 10}, []float64{0.05, 0.03, 0.06}, 2)
	if err != nil {
		t.Fatalf("NewRateCurve failed: %v", err)
	}
	wantTenors := []float64{1, 5, 10}
	wantRates := []float64{0.03, 0.05, 0.06}
	for i := range wantTenors {
		if curve.Tenors[i] != wantTenors[i] || curve.Rates[i] != wantRates[i] {
			t.Fatalf("sorted curve = %v/%v, want %v/%v", curve.Tenors, curve.Rates, wantTenors, wantRates)
		}
	}
}

func TestRateInterpolationAndClamping(t *testing.T) {
	curve, err := NewRateCurve(date(2023, time.January, 1),
		[]float64{1, 2, 5}, []float64{0.03, 0.04, 0.05}, 2)
	if err != nil {
		t.Fatalf("NewRateCurve failed: %v", err)
	}

	cases := []struct {
		tenor float64
		want  float64
	}{
		{0.5, 0.03}, // 低于首点夹取
		{1, 0.03},
		{1.5, 0.035}, // 线性插值中点
		{2, 0.04},
		{3.5, 0.045},
		{5, 0.05},
		{10, 0.05}, // 高于末点夹取
	}
	for _, tc := range cases {
		got, err := curve.Rate(tc.tenor)
		if err != nil {
			t.Errorf("Rate(%v) failed: %v", tc.tenor, err)
			continue
		}
		if !approx(got, tc.want, 1e-12) {
			t.Errorf("Rate(%v) = %v, want %v", tc.tenor, got, tc.want)
		}
	}
}

func TestDiscountFactor(t *testing.T) {
	curve := flatCurve(t, 0.05)
	valuation := date(2023, time.January, 1)

	// 非正时间不贴现
	df, err := curve.DiscountFactor(valuation, valuation)
	if err != nil || df != 1.0 {
		t.Errorf("DF(t=0) = %v, %v, want 1.0", df, err)
	}

	// 一年期半年复利：(1 + 0.05/2)^(-2)
	oneYear := date(2024, time.January, 1)
	df, err = curve.DiscountFactor(valuation, oneYear)
	if err != nil {
		t.Fatalf("DiscountFactor failed: %v", err)
	}
	want := math.Pow(1.025, -2)
	if !approx(df, want, 1e-10) {
		t.Errorf("DF(1y) = %v, want %v", df, want)
	}
}

func TestWithRatesDoesNotMutateOriginal(t *testing.T) {
	curve := flatCurve(t, 0.05)
	shifted := make([]float64, len(curve.Rates))
	for i, r := range curve.Rates {
		shifted[i] = r + 0.01
	}

	newCurve, err := curve.WithRates(shifted)
	if err != nil {
		t.Fatalf("WithRates failed: %v", err)
	}
	if newCurve.Rates[0] != 0.06 {
		t.Errorf("shifted rate = %v, want 0.06", newCurve.Rates[0])
	}
	if curve.Rates[0] != 0.05 {
		t.Errorf("original curve mutated: rate = %v", curve.Rates[0])
	}
}
