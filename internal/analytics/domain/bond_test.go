package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseBondType(t *testing.T) {
	for _, s := range []string{"fixed", "floating", "zero"} {
		if _, err := ParseBondType(s); err != nil {
			t.Errorf("ParseBondType(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseBondType("convertible"); !errors.Is(err, ErrUnknownBondType) {
		t.Errorf("err = %v, want ErrUnknownBondType", err)
	}
}

func TestBondValidation(t *testing.T) {
	issue := date(2023, time.January, 1)
	maturity := date(2025, time.January, 1)

	if _, err := NewFixedRateBond("X", "", maturity, issue, 1000, 0.05, 2); !errors.Is(err, ErrInvalidBond) {
		t.Errorf("inverted dates: err = %v, want ErrInvalidBond", err)
	}
	if _, err := NewFixedRateBond("X", "", issue, maturity, 0, 0.05, 2); !errors.Is(err, ErrInvalidBond) {
		t.Errorf("zero par: err = %v, want ErrInvalidBond", err)
	}
	if _, err := NewFixedRateBond("X", "", issue, maturity, 1000, 0.05, 5); !errors.Is(err, ErrInvalidBond) {
		t.Errorf("frequency 5: err = %v, want ErrInvalidBond", err)
	}
	if _, err := NewFixedRateBond("X", "", issue, maturity, 1000, 0.05, 0); !errors.Is(err, ErrInvalidBond) {
		t.Errorf("frequency 0: err = %v, want ErrInvalidBond", err)
	}
}

func TestFixedBondCashFlowSchedule(t *testing.T) {
	b := sampleFixedBond(t)
	flows := b.CashFlows(nil)

	wantDates := []time.Time{
		date(2023, time.July, 1),
		date(2024, time.January, 1),
		date(2024, time.July, 1),
		date(2025, time.January, 1),
	}
	if len(flows) != len(wantDates) {
		t.Fatalf("got %d flows, want %d", len(flows), len(wantDates))
	}
	for i, cf := range flows {
		if !cf.PaymentDate.Equal(wantDates[i]) {
			t.Errorf("flow %d date = %v, want %v", i, cf.PaymentDate, wantDates[i])
		}
	}

	// 每期票息 1000 * 5% / 2 = 25，到期一笔并入本金
	for i := 0; i < len(flows)-1; i++ {
		if !approx(flows[i].Amount, 25, 1e-9) {
			t.Errorf("coupon %d = %v, want 25", i, flows[i].Amount)
		}
	}
	if !approx(flows[len(flows)-1].Amount, 1025, 1e-9) {
		t.Errorf("final flow = %v, want 1025", flows[len(flows)-1].Amount)
	}
}

func TestMonthEndScheduleClamps(t *testing.T) {
	b, err := NewFixedRateBond("FIX-EOM", "",
		date(2023, time.August, 31), date(2024, time.August, 31), 1000, 0.04, 2)
	if err != nil {
		t.Fatalf("NewFixedRateBond failed: %v", err)
	}
	flows := b.CashFlows(nil)
	// 票息日截断后不再与到期日重合，本金单独成笔
	if len(flows) != 3 {
		t.Fatalf("got %d flows, want 3", len(flows))
	}
	// 8/31 + 6 个月截断到 2/29（2024 为闰年）
	if want := date(2024, time.February, 29); !flows[0].PaymentDate.Equal(want) {
		t.Errorf("first coupon = %v, want %v", flows[0].PaymentDate, want)
	}
	if want := date(2024, time.August, 29); !flows[1].PaymentDate.Equal(want) {
		t.Errorf("second coupon = %v, want %v", flows[1].PaymentDate, want)
	}
	last := flows[2]
	if !last.PaymentDate.Equal(b.MaturityDate) || !approx(last.Amount, 1000, 1e-9) {
		t.Errorf("principal flow = %+v, want bare par at maturity", last)
	}
}

func TestZeroCouponSingleFlow(t *testing.T) {
	b := sampleZeroBond(t)
	flows := b.CashFlows(nil)
	if len(flows) != 1 {
		t.Fatalf("got %d flows, want 1", len(flows))
	}
	if !flows[0].PaymentDate.Equal(b.MaturityDate) || flows[0].Amount != 1000 {
		t.Errorf("flow = %+v, want par at maturity", flows[0])
	}
}

func TestFloatingBondUsesForwardRates(t *testing.T) {
	b, err := NewFloatingRateBond("FLT-001", "",
		date(2023, time.January, 1), date(2024, time.January, 1), 1000, 0.002, "SOFR", 2)
	if err != nil {
		t.Fatalf("NewFloatingRateBond failed: %v", err)
	}

	fwd := ForwardRates{
		date(2023, time.July, 1): 0.048,
	}
	flows := b.CashFlows(fwd)
	if len(flows) != 2 {
		t.Fatalf("got %d flows, want 2", len(flows))
	}
	// 远期表中有值：(0.002 + 0.048)/2 * 1000 = 25
	if !approx(flows[0].Amount, 25, 1e-9) {
		t.Errorf("first coupon = %v, want 25", flows[0].Amount)
	}
	// 远期表缺失：仅利差 0.002/2 * 1000 = 1，加上本金
	if !approx(flows[1].Amount, 1001, 1e-9) {
		t.Errorf("final flow = %v, want 1001", flows[1].Amount)
	}
}

func TestRemainingCashFlowsStrictlyAfter(t *testing.T) {
	b := sampleFixedBond(t)

	// 估值日恰为付息日：当日票息不计入
	remaining := b.RemainingCashFlows(date(2024, time.January, 1), nil)
	if len(remaining) != 2 {
		t.Fatalf("got %d remaining flows, want 2", len(remaining))
	}
	if !remaining[0].PaymentDate.Equal(date(2024, time.July, 1)) {
		t.Errorf("first remaining = %v, want 2024-07-01", remaining[0].PaymentDate)
	}

	if got := b.RemainingCashFlows(date(2026, time.January, 1), nil); len(got) != 0 {
		t.Errorf("past maturity: got %d flows, want 0", len(got))
	}

	// 零息债在到期日当天估值：唯一现金流已不满足严格晚于
	z := sampleZeroBond(t)
	if got := z.RemainingCashFlows(z.MaturityDate, nil); len(got) != 0 {
		t.Errorf("zero at maturity: got %d flows, want 0", len(got))
	}
}
