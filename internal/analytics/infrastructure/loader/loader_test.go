package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/wyfcoding/fixedincome/internal/analytics/application"
)

func newLoader() *FileLoader {
	svc := application.NewAnalyticsService(application.Options{
		SolverTolerance:     1e-8,
		SolverMaxIterations: 100,
	}, nil, nil, nil, nil, nil, nil, nil, nil)
	return NewFileLoader(svc)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCurveCSV(t *testing.T) {
	path := writeFile(t, "curve.csv", `Date,Tenor,Rate
01/01/2023,0.25,0.045
01/01/2023,1,0.048
01/01/2023,5,0.052
01/02/2023,0.25,0.046
01/02/2023,1,0.049
`)

	loaded, err := newLoader().LoadCurveCSV(context.Background(), path, 2)
	if err != nil {
		t.Fatalf("LoadCurveCSV failed: %v", err)
	}
	if loaded != 2 {
		t.Errorf("loaded %d curves, want 2", loaded)
	}
}

func TestLoadCurveCSVAlternativeHeaders(t *testing.T) {
	path := writeFile(t, "curve.csv", `Curve Date,Term,Yield
01/01/2023,1,0.05
01/01/2023,5,0.055
`)

	loaded, err := newLoader().LoadCurveCSV(context.Background(), path, 2)
	if err != nil {
		t.Fatalf("LoadCurveCSV failed: %v", err)
	}
	if loaded != 1 {
		t.Errorf("loaded %d curves, want 1", loaded)
	}
}

func TestLoadCurveCSVMissingColumns(t *testing.T) {
	path := writeFile(t, "curve.csv", `Foo,Bar
1,2
`)
	if _, err := newLoader().LoadCurveCSV(context.Background(), path, 2); err == nil {
		t.Error("expected error for missing columns")
	}
}

func TestLoadBondsCSV(t *testing.T) {
	path := writeFile(t, "bonds.csv", `ContractID,SecurityDesc,BondType,IssueDate,MaturityDate,ParValue,CouponRate,PaymentFrequency
FIX-001,2Y 5% bond,fixed,01/01/2023,01/01/2025,1000,0.05,2
ZERO-001,S 0 strip,,01/01/2023,01/01/2025,1000,,
BAD-001,broken,fixed,01/01/2025,01/01/2023,1000,0.05,2
`)

	loaded, err := newLoader().LoadBondsCSV(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadBondsCSV failed: %v", err)
	}
	// 坏行被跳过；零息债类型按描述推断
	if loaded != 2 {
		t.Errorf("loaded %d bonds, want 2", loaded)
	}
}

func TestLoadBondsJSON(t *testing.T) {
	path := writeFile(t, "bonds.json", `[
  {"contract_id":"FIX-001","bond_type":"fixed","issue_date":"01/01/2023","maturity_date":"01/01/2025","par_value":1000,"coupon_rate":0.05,"payment_frequency":2},
  {"contract_id":"FLT-001","bond_type":"floating","issue_date":"01/01/2023","maturity_date":"01/01/2026","spread":0.002,"reference_rate":"SOFR"}
]`)

	loaded, err := newLoader().LoadBondsJSON(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadBondsJSON failed: %v", err)
	}
	if loaded != 2 {
		t.Errorf("loaded %d bonds, want 2", loaded)
	}
}
