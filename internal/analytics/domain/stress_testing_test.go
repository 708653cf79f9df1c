package domain

import (
	"errors"
	"testing"
)

func TestStandardScenariosRegistered(t *testing.T) {
	e := NewStressTestEngine(NewValuer(1e-8, 100))
	names := e.Scenarios()

	want := map[string]bool{
		"parallel_up_50bp":      false,
		"parallel_up_100bp":     false,
		"parallel_up_200bp":     false,
		"parallel_down_50bp":    false,
		"parallel_down_100bp":   false,
		"steepening_50bp":       false,
		"flattening_50bp":       false,
		"financial_crisis_2008": false,
		"taper_tantrum_2013":    false,
	}
	for _, name := range names {
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("standard scenario %q not registered", name)
		}
	}
}

func TestParallelShiftDirection(t *testing.T) {
	e := NewStressTestEngine(NewValuer(1e-8, 100))
	b := sampleFixedBond(t)
	curve := flatCurve(t, 0.05)

	up, err := e.RunScenario(b, b.IssueDate, curve, "parallel_up_100bp", nil)
	if err != nil {
		t.Fatalf("RunScenario failed: %v", err)
	}
	if up.PercentageChange >= 0 {
		t.Errorf("+100bp: change = %v%%, want negative", up.PercentageChange)
	}
	if up.StressedPrice >= up.BasePrice {
		t.Errorf("+100bp: stressed %v should be below base %v", up.StressedPrice, up.BasePrice)
	}

	down, err := e.RunScenario(b, b.IssueDate, curve, "parallel_down_100bp", nil)
	if err != nil {
		t.Fatalf("RunScenario failed: %v", err)
	}
	if down.PercentageChange <= 0 {
		t.Errorf("-100bp: change = %v%%, want positive", down.PercentageChange)
	}
}

func TestUnknownScenario(t *testing.T) {
	e := NewStressTestEngine(NewValuer(1e-8, 100))
	b := sampleFixedBond(t)

	_, err := e.RunScenario(b, b.IssueDate, flatCurve(t, 0.05), "black_monday_1987", nil)
	if !errors.Is(err, ErrScenarioNotFound) {
		t.Errorf("err = %v, want ErrScenarioNotFound", err)
	}
}

func TestCustomScenario(t *testing.T) {
	e := NewStressTestEngine(NewValuer(1e-8, 100))
	b := sampleFixedBond(t)
	curve := flatCurve(t, 0.05)

	e.AddScenario("inversion", func(rates []float64) []float64 {
		result := make([]float64, len(rates))
		for i, r := range rates {
			result[i] = r + 0.02 - 0.001*float64(i)
		}
		return result
	})

	res, err := e.RunScenario(b, b.IssueDate, curve, "inversion", nil)
	if err != nil {
		t.Fatalf("RunScenario failed: %v", err)
	}
	if res.Scenario != "inversion" {
		t.Errorf("scenario name = %q", res.Scenario)
	}
}

func TestRunAllScenarios(t *testing.T) {
	e := NewStressTestEngine(NewValuer(1e-8, 100))
	b := sampleFixedBond(t)
	curve := flatCurve(t, 0.05)

	results, err := e.RunAllScenarios(b, b.IssueDate, curve, nil)
	if err != nil {
		t.Fatalf("RunAllScenarios failed: %v", err)
	}
	if len(results) != len(e.Scenarios()) {
		t.Errorf("got %d results, want %d", len(results), len(e.Scenarios()))
	}
	for name, res := range results {
		if res.BasePrice <= 0 {
			t.Errorf("%s: base price = %v, want positive", name, res.BasePrice)
		}
	}
}

func TestRunMultiBondKeys(t *testing.T) {
	e := NewStressTestEngine(NewValuer(1e-8, 100))
	curve := flatCurve(t, 0.05)

	named := sampleFixedBond(t)
	anonymous := sampleZeroBond(t)
	anonymous.ContractID = ""

	results, err := e.RunMultiBond([]*Bond{named, anonymous}, named.IssueDate, curve, "parallel_up_50bp", nil)
	if err != nil {
		t.Fatalf("RunMultiBond failed: %v", err)
	}
	if _, ok := results["FIX-001"]; !ok {
		t.Error("named bond should be keyed by contract id")
	}
	if _, ok := results["bond_1"]; !ok {
		t.Error("anonymous bond should fall back to a positional key")
	}
}
