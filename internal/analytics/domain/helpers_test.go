package domain

import (
	"math"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// 平坦 5% 曲线，覆盖 0.25 到 30 年
func flatCurve(t *testing.T, rate float64) *RateCurve {
	t.Helper()
	tenors := []float64{0.25, 0.5, 1, 2, 3, 5, 7, 10, 20, 30}
	rates := make([]float64, len(tenors))
	for i := range rates {
		rates[i] = rate
	}
	curve, err := NewRateCurve(date(2023, time.January, 1), tenors, rates, 2)
	if err != nil {
		t.Fatalf("NewRateCurve failed: %v", err)
	}
	return curve
}

// 面值 1000、票面 5%、半年付息的两年期固定利率债
func sampleFixedBond(t *testing.T) *Bond {
	t.Helper()
	b, err := NewFixedRateBond("FIX-001", "2Y 5% semiannual",
		date(2023, time.January, 1), date(2025, time.January, 1), 1000, 0.05, 2)
	if err != nil {
		t.Fatalf("NewFixedRateBond failed: %v", err)
	}
	return b
}

func sampleZeroBond(t *testing.T) *Bond {
	t.Helper()
	b, err := NewZeroCouponBond("ZERO-001", "2Y zero",
		date(2023, time.January, 1), date(2025, time.January, 1), 1000, 0.05)
	if err != nil {
		t.Fatalf("NewZeroCouponBond failed: %v", err)
	}
	return b
}
