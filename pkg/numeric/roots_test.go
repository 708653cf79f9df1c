package numeric

import (
	"errors"
	"math"
	"testing"
)

func TestNewtonRaphsonSqrtTwo(t *testing.T) {
	f := func(x float64) float64 { return x*x - 2 }
	fPrime := func(x float64) float64 { return 2 * x }

	res, err := NewtonRaphson(f, fPrime, 1.0, 1e-10, 100)
	if err != nil {
		t.Fatalf("NewtonRaphson failed: %v", err)
	}
	if math.Abs(res.Root-math.Sqrt2) > 1e-8 {
		t.Errorf("root = %v, want %v", res.Root, math.Sqrt2)
	}
}

func TestNewtonRaphsonStationaryPoint(t *testing.T) {
	f := func(x float64) float64 { return x*x + 1 }
	fPrime := func(x float64) float64 { return 2 * x }

	_, err := NewtonRaphson(f, fPrime, 0.0, 1e-10, 100)
	if !errors.Is(err, ErrDerivativeTooSmall) {
		t.Errorf("err = %v, want ErrDerivativeTooSmall", err)
	}
}

func TestNewtonRaphsonExhaustsIterations(t *testing.T) {
	f := func(x float64) float64 { return x*x - 2 }
	fPrime := func(x float64) float64 { return 2 * x }

	_, err := NewtonRaphson(f, fPrime, 1000.0, 1e-14, 2)
	if !errors.Is(err, ErrNotConverged) {
		t.Errorf("err = %v, want ErrNotConverged", err)
	}
}

func TestBisectionFindsRoot(t *testing.T) {
	f := func(x float64) float64 { return x*x*x - x - 2 }

	res, err := Bisection(f, 1.0, 2.0, 1e-10, 200)
	if err != nil {
		t.Fatalf("Bisection failed: %v", err)
	}
	if math.Abs(f(res.Root)) > 1e-8 {
		t.Errorf("f(root) = %v, want ~0", f(res.Root))
	}
}

func TestBisectionInvalidBracket(t *testing.T) {
	f := func(x float64) float64 { return x*x + 1 }

	_, err := Bisection(f, -1.0, 1.0, 1e-10, 100)
	if !errors.Is(err, ErrInvalidBracket) {
		t.Errorf("err = %v, want ErrInvalidBracket", err)
	}
}

func TestBisectionReturnsMidpointOnExhaustion(t *testing.T) {
	f := func(x float64) float64 { return x - 0.3 }

	res, err := Bisection(f, 0.0, 1.0, 1e-12, 3)
	if err != nil {
		t.Fatalf("Bisection failed: %v", err)
	}
	if math.Abs(res.Root-0.3) > 0.2 {
		t.Errorf("root = %v, too far from 0.3 after 3 halvings", res.Root)
	}
}
