// Package numeric 提供标量方程求根算法（Newton-Raphson 与二分法）
package numeric

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDerivativeTooSmall 导数过小，可能位于驻点
	ErrDerivativeTooSmall = errors.New("derivative too small, possible stationary point")
	// ErrNotConverged 迭代耗尽仍未收敛
	ErrNotConverged = errors.New("root finding did not converge")
	// ErrInvalidBracket 区间端点函数值同号，无法二分
	ErrInvalidBracket = errors.New("function must have opposite signs at interval endpoints")
)

// Func 标量函数 f(x)
type Func func(x float64) float64

// Result 求根结果
type Result struct {
	Root       float64
	Iterations int
}

// minDerivative Newton 迭代允许的最小导数绝对值
const minDerivative = 1e-10

// NewtonRaphson 牛顿迭代法求 f(x)=0 的根
// 收敛判据：|f(x)| < tol 或步长 |Δx| < tol
func NewtonRaphson(f, fPrime Func, x0, tol float64, maxIter int) (Result, error) {
	x := x0
	for i := 0; i < maxIter; i++ {
		fx := f(x)
		if math.Abs(fx) < tol {
			return Result{Root: x, Iterations: i}, nil
		}

		dfx := fPrime(x)
		if math.Abs(dfx) < minDerivative {
			return Result{}, fmt.Errorf("newton-raphson at x=%g: %w", x, ErrDerivativeTooSmall)
		}

		xNew := x - fx/dfx
		if math.Abs(xNew-x) < tol {
			return Result{Root: xNew, Iterations: i}, nil
		}
		x = xNew
	}
	return Result{}, fmt.Errorf("newton-raphson after %d iterations: %w", maxIter, ErrNotConverged)
}

// Bisection 二分法求 f(x)=0 的根，要求 f(a) 与 f(b) 异号
// 收敛判据：区间宽度 < tol 或 |f(mid)| < tol
func Bisection(f Func, a, b, tol float64, maxIter int) (Result, error) {
	fa := f(a)
	if fa*f(b) > 0 {
		return Result{}, fmt.Errorf("bisection over [%g, %g]: %w", a, b, ErrInvalidBracket)
	}

	iterations := 0
	for (b-a) > tol && iterations < maxIter {
		c := (a + b) / 2
		fc := f(c)

		if math.Abs(fc) < tol {
			return Result{Root: c, Iterations: iterations}, nil
		}
		if fa*fc < 0 {
			b = c
		} else {
			a = c
			fa = fc
		}
		iterations++
	}
	return Result{Root: (a + b) / 2, Iterations: iterations}, nil
}
