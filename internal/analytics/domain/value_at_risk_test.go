package domain

import (
	"math"
	"testing"
)

// 确定性的正弦扰动收益率序列，幅度约 ±10bp
func syntheticYields(n int) []float64 {
	yields := make([]float64, n)
	for i := range yields {
		yields[i] = 0.05 + 0.001*math.Sin(float64(i))
	}
	return yields
}

func TestHistoricalVaRPositive(t *testing.T) {
	e := NewVaREngine(NewValuer(1e-8, 100), 2000, 42)
	b := sampleFixedBond(t)
	curve := flatCurve(t, 0.05)

	v, err := e.HistoricalVaR(b, b.IssueDate, curve, syntheticYields(250), 0.95, 1, nil)
	if err != nil {
		t.Fatalf("HistoricalVaR failed: %v", err)
	}
	if v <= 0 {
		t.Errorf("historical VaR = %v, want positive", v)
	}
}

func TestHistoricalVaRHorizonScaling(t *testing.T) {
	e := NewVaREngine(NewValuer(1e-8, 100), 2000, 42)
	b := sampleFixedBond(t)
	curve := flatCurve(t, 0.05)
	yields := syntheticYields(250)

	oneDay, err := e.HistoricalVaR(b, b.IssueDate, curve, yields, 0.95, 1, nil)
	if err != nil {
		t.Fatalf("HistoricalVaR failed: %v", err)
	}
	tenDay, err := e.HistoricalVaR(b, b.IssueDate, curve, yields, 0.95, 10, nil)
	if err != nil {
		t.Fatalf("HistoricalVaR failed: %v", err)
	}
	if !approx(tenDay, oneDay*math.Sqrt(10), 1e-9) {
		t.Errorf("10d VaR = %v, want 1d VaR %v scaled by sqrt(10)", tenDay, oneDay)
	}
}

func TestMonteCarloVaRDeterministic(t *testing.T) {
	e := NewVaREngine(NewValuer(1e-8, 100), 2000, 42)
	b := sampleFixedBond(t)
	curve := flatCurve(t, 0.05)

	first, err := e.MonteCarloVaR(b, b.IssueDate, curve, 0, 0.01, 0.95, 1, nil)
	if err != nil {
		t.Fatalf("MonteCarloVaR failed: %v", err)
	}
	second, err := e.MonteCarloVaR(b, b.IssueDate, curve, 0, 0.01, 0.95, 1, nil)
	if err != nil {
		t.Fatalf("MonteCarloVaR failed: %v", err)
	}
	if first != second {
		t.Errorf("seeded runs differ: %v vs %v", first, second)
	}
	if first <= 0 {
		t.Errorf("monte carlo VaR = %v, want positive", first)
	}
}

func TestVaRConfidenceOrdering(t *testing.T) {
	e := NewVaREngine(NewValuer(1e-8, 100), 2000, 42)
	b := sampleFixedBond(t)
	curve := flatCurve(t, 0.05)

	var95, err := e.MonteCarloVaR(b, b.IssueDate, curve, 0, 0.01, 0.95, 1, nil)
	if err != nil {
		t.Fatalf("MonteCarloVaR failed: %v", err)
	}
	var99, err := e.MonteCarloVaR(b, b.IssueDate, curve, 0, 0.01, 0.99, 1, nil)
	if err != nil {
		t.Fatalf("MonteCarloVaR failed: %v", err)
	}
	if var99 < var95 {
		t.Errorf("99%% VaR %v should not be below 95%% VaR %v", var99, var95)
	}
}

func TestParametricVaR(t *testing.T) {
	e := NewVaREngine(NewValuer(1e-8, 100), 2000, 42)
	b := sampleFixedBond(t)
	curve := flatCurve(t, 0.05)

	oneDay, err := e.ParametricVaR(b, b.IssueDate, curve, 0.01, 0.95, 1, nil)
	if err != nil {
		t.Fatalf("ParametricVaR failed: %v", err)
	}
	if oneDay <= 0 {
		t.Errorf("parametric VaR = %v, want positive", oneDay)
	}

	tenDay, err := e.ParametricVaR(b, b.IssueDate, curve, 0.01, 0.95, 10, nil)
	if err != nil {
		t.Fatalf("ParametricVaR failed: %v", err)
	}
	if !approx(tenDay, oneDay*math.Sqrt(10), 1e-9) {
		t.Errorf("10d parametric VaR = %v, want %v scaled by sqrt(10)", tenDay, oneDay)
	}
}

func TestHistoricalAndMonteCarloComparable(t *testing.T) {
	e := NewVaREngine(NewValuer(1e-8, 100), 2000, 42)
	b := sampleFixedBond(t)
	curve := flatCurve(t, 0.05)

	// 历史序列日变动幅度与年化波动率 1% 的日波动率同量级
	dailyMove := 0.01 / math.Sqrt(252)
	yields := make([]float64, 250)
	yields[0] = 0.05
	for i := 1; i < len(yields); i++ {
		if i%2 == 0 {
			yields[i] = yields[i-1] + dailyMove
		} else {
			yields[i] = yields[i-1] - dailyMove
		}
	}

	hist, err := e.HistoricalVaR(b, b.IssueDate, curve, yields, 0.95, 1, nil)
	if err != nil {
		t.Fatalf("HistoricalVaR failed: %v", err)
	}
	mc, err := e.MonteCarloVaR(b, b.IssueDate, curve, 0, 0.01, 0.95, 1, nil)
	if err != nil {
		t.Fatalf("MonteCarloVaR failed: %v", err)
	}

	ratio := hist / mc
	if ratio < 0.1 || ratio > 10 {
		t.Errorf("historical %v and monte carlo %v differ by more than an order of magnitude", hist, mc)
	}
}

func TestExpectedShortfallDominatesVaR(t *testing.T) {
	e := NewVaREngine(NewValuer(1e-8, 100), 2000, 42)
	b := sampleFixedBond(t)
	curve := flatCurve(t, 0.05)

	mcVaR, err := e.MonteCarloVaR(b, b.IssueDate, curve, 0, 0.01, 0.95, 1, nil)
	if err != nil {
		t.Fatalf("MonteCarloVaR failed: %v", err)
	}
	es, err := e.ExpectedShortfall(b, b.IssueDate, curve, 0.01, 0.95, 1, nil)
	if err != nil {
		t.Fatalf("ExpectedShortfall failed: %v", err)
	}
	if es < mcVaR {
		t.Errorf("expected shortfall %v should not be below VaR %v", es, mcVaR)
	}
}
