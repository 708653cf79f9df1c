package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/wyfcoding/fixedincome/internal/analytics/domain"
)

type capturedEvents struct {
	mu       sync.Mutex
	analyzed []domain.BondAnalyzedEvent
	stressed []domain.StressTestCompletedEvent
	vars     []domain.VaRCalculatedEvent
}

func (c *capturedEvents) PublishBondAnalyzed(e domain.BondAnalyzedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.analyzed = append(c.analyzed, e)
	return nil
}

func (c *capturedEvents) PublishStressTestCompleted(e domain.StressTestCompletedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stressed = append(c.stressed, e)
	return nil
}

func (c *capturedEvents) PublishVaRCalculated(e domain.VaRCalculatedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vars = append(c.vars, e)
	return nil
}

func newTestService(publisher domain.EventPublisher) *AnalyticsService {
	opts := Options{
		SolverTolerance:     1e-8,
		SolverMaxIterations: 100,
		VaRSimulations:      2000,
		VaRSeed:             42,
		PortfolioWorkers:    4,
	}
	return NewAnalyticsService(opts, nil, nil, nil, nil, nil, nil, publisher, nil)
}

func sampleBondRequest() BondRequest {
	return BondRequest{
		ContractID:       "FIX-001",
		SecurityDesc:     "2Y 5% semiannual",
		BondType:         "fixed",
		IssueDate:        "01/01/2023",
		MaturityDate:     "01/01/2025",
		ParValue:         1000,
		PaymentFrequency: 2,
		CouponRate:       0.05,
	}
}

func sampleCurveRequest() *CurveRequest {
	return &CurveRequest{
		CurveDate:            "01/01/2023",
		Tenors:               []float64{0.25, 0.5, 1, 2, 3, 5, 10},
		Rates:                []float64{0.05, 0.05, 0.05, 0.05, 0.05, 0.05, 0.05},
		CompoundingFrequency: 2,
	}
}

func TestAnalyzeBond(t *testing.T) {
	events := &capturedEvents{}
	svc := newTestService(events)

	dto, err := svc.AnalyzeBond(context.Background(), AnalyzeBondRequest{
		Bond:          sampleBondRequest(),
		Curve:         sampleCurveRequest(),
		ValuationDate: "01/01/2023",
	})
	if err != nil {
		t.Fatalf("AnalyzeBond failed: %v", err)
	}

	if dto.ContractID != "FIX-001" || dto.BondType != "fixed" {
		t.Errorf("dto identity = %s/%s", dto.ContractID, dto.BondType)
	}
	if !strings.HasPrefix(dto.CleanPrice, "99") && !strings.HasPrefix(dto.CleanPrice, "100") {
		t.Errorf("par bond clean price = %s, want near 100", dto.CleanPrice)
	}
	if dto.ValuationDate != "2023-01-01" {
		t.Errorf("valuation date = %s", dto.ValuationDate)
	}
	if len(events.analyzed) != 1 {
		t.Fatalf("got %d analyzed events, want 1", len(events.analyzed))
	}
	if events.analyzed[0].ContractID != "FIX-001" {
		t.Errorf("event contract = %s", events.analyzed[0].ContractID)
	}
}

func TestAnalyzeBondWithoutCurve(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.AnalyzeBond(context.Background(), AnalyzeBondRequest{
		Bond:          sampleBondRequest(),
		ValuationDate: "01/01/2023",
	})
	if !errors.Is(err, ErrNoCurve) {
		t.Errorf("err = %v, want ErrNoCurve", err)
	}
}

func TestAnalyzePortfolioSkipsBrokenBonds(t *testing.T) {
	svc := newTestService(nil)

	broken := sampleBondRequest()
	broken.ContractID = "BAD-001"
	broken.MaturityDate = "01/01/2020" // 早于发行日

	dto, err := svc.AnalyzePortfolio(context.Background(), PortfolioAnalyzeRequest{
		Bonds:         []BondRequest{sampleBondRequest(), broken},
		Curve:         sampleCurveRequest(),
		ValuationDate: "01/01/2023",
	})
	if err != nil {
		t.Fatalf("AnalyzePortfolio failed: %v", err)
	}
	if len(dto.Results) != 1 {
		t.Errorf("got %d results, want 1", len(dto.Results))
	}
	if _, ok := dto.Results["FIX-001"]; !ok {
		t.Error("healthy bond missing from results")
	}
	if _, ok := dto.Errors["BAD-001"]; !ok {
		t.Errorf("broken bond missing from errors: %v", dto.Errors)
	}
}

func TestCashFlowSchedule(t *testing.T) {
	svc := newTestService(nil)

	all, err := svc.CashFlowSchedule(context.Background(), AnalyzeBondRequest{Bond: sampleBondRequest()})
	if err != nil {
		t.Fatalf("CashFlowSchedule failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("got %d flows, want 4", len(all))
	}
	if all[len(all)-1].Amount != 1025 {
		t.Errorf("final flow = %v, want 1025", all[len(all)-1].Amount)
	}

	remaining, err := svc.CashFlowSchedule(context.Background(), AnalyzeBondRequest{
		Bond:          sampleBondRequest(),
		ValuationDate: "01/01/2024",
	})
	if err != nil {
		t.Fatalf("CashFlowSchedule failed: %v", err)
	}
	if len(remaining) != 2 {
		t.Errorf("got %d remaining flows, want 2", len(remaining))
	}
}

func TestStressTestAllScenarios(t *testing.T) {
	events := &capturedEvents{}
	svc := newTestService(events)

	results, err := svc.StressTest(context.Background(), StressTestRequest{
		Bond:          sampleBondRequest(),
		Curve:         sampleCurveRequest(),
		ValuationDate: "01/01/2023",
	})
	if err != nil {
		t.Fatalf("StressTest failed: %v", err)
	}
	if len(results) != len(svc.Scenarios()) {
		t.Errorf("got %d results, want %d", len(results), len(svc.Scenarios()))
	}

	if len(events.stressed) != 1 {
		t.Fatalf("got %d stress events, want 1", len(events.stressed))
	}
	event := events.stressed[0]
	if event.WorstScenario == "" || event.WorstChange >= 0 {
		t.Errorf("worst scenario = %q change %v, want a negative shock", event.WorstScenario, event.WorstChange)
	}
}

func TestStressTestSingleScenario(t *testing.T) {
	svc := newTestService(nil)

	results, err := svc.StressTest(context.Background(), StressTestRequest{
		Bond:          sampleBondRequest(),
		Curve:         sampleCurveRequest(),
		ValuationDate: "01/01/2023",
		Scenario:      "parallel_up_100bp",
	})
	if err != nil {
		t.Fatalf("StressTest failed: %v", err)
	}
	if len(results) != 1 || results[0].Scenario != "parallel_up_100bp" {
		t.Fatalf("results = %+v", results)
	}
	if results[0].PercentageChange >= 0 {
		t.Errorf("+100bp change = %v, want negative", results[0].PercentageChange)
	}
}

func TestComputeVaRMethods(t *testing.T) {
	events := &capturedEvents{}
	svc := newTestService(events)

	base := VaRRequest{
		Bond:            sampleBondRequest(),
		Curve:           sampleCurveRequest(),
		ValuationDate:   "01/01/2023",
		Confidence:      0.95,
		HorizonDays:     1,
		YieldVolatility: 0.01,
	}

	mc := base
	mc.Method = "montecarlo"
	mcResult, err := svc.ComputeVaR(context.Background(), mc)
	if err != nil {
		t.Fatalf("montecarlo failed: %v", err)
	}
	if mcResult.Value <= 0 {
		t.Errorf("montecarlo VaR = %v, want positive", mcResult.Value)
	}
	if mcResult.ExpectedShortfall < mcResult.Value {
		t.Errorf("ES %v below VaR %v", mcResult.ExpectedShortfall, mcResult.Value)
	}

	p := base
	p.Method = "parametric"
	if _, err := svc.ComputeVaR(context.Background(), p); err != nil {
		t.Errorf("parametric failed: %v", err)
	}

	h := base
	h.Method = "historical"
	h.HistoricalYields = []float64{0.050, 0.051, 0.049, 0.052, 0.050}
	if _, err := svc.ComputeVaR(context.Background(), h); err != nil {
		t.Errorf("historical failed: %v", err)
	}

	bad := base
	bad.Method = "quantum"
	if _, err := svc.ComputeVaR(context.Background(), bad); !errors.Is(err, ErrUnknownVaRMethod) {
		t.Errorf("err = %v, want ErrUnknownVaRMethod", err)
	}

	if len(events.vars) != 3 {
		t.Errorf("got %d VaR events, want 3", len(events.vars))
	}
}

func TestKeyRateDurations(t *testing.T) {
	svc := newTestService(nil)

	krd, err := svc.KeyRateDurations(context.Background(), KeyRateRequest{
		Bond:          sampleBondRequest(),
		Curve:         sampleCurveRequest(),
		ValuationDate: "01/01/2023",
		KeyTenors:     []float64{1, 2, 4},
	})
	if err != nil {
		t.Fatalf("KeyRateDurations failed: %v", err)
	}
	if len(krd) != 2 {
		t.Errorf("got %d key rates, want 2 (tenor 4 is not a node)", len(krd))
	}
}
