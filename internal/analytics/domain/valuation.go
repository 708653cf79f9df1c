package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/wyfcoding/fixedincome/pkg/numeric"
)

// 收益率空间统一采用连续复利贴现 exp(-y·t)，
// 与下方久期/凸性公式保持一致；曲线空间的贴现见 RateCurve.DiscountFactor
const (
	// 二分法回退的收益率搜索区间 [0%, 20%]
	bisectionYieldLow  = 0.0
	bisectionYieldHigh = 0.20
	// DV01 的一侧差分步长：1bp
	basisPointShift = 0.0001
)

// Valuer 估值引擎
// 无共享可变状态，可在多只债券间并发复用
type Valuer struct {
	tolerance     float64
	maxIterations int
}

// NewValuer 创建估值引擎，容差与迭代上限来自显式配置
func NewValuer(tolerance float64, maxIterations int) *Valuer {
	if tolerance <= 0 {
		tolerance = 1e-8
	}
	if maxIterations <= 0 {
		maxIterations = 100
	}
	return &Valuer{tolerance: tolerance, maxIterations: maxIterations}
}

// Price 计算净价（剩余现金流现值之和，占面值的百分比）
func (v *Valuer) Price(b *Bond, valuationDate time.Time, curve *RateCurve, fwd ForwardRates) (float64, error) {
	pv := 0.0
	for _, cf := range b.RemainingCashFlows(valuationDate, fwd) {
		cfPV, err := cf.PresentValue(valuationDate, curve)
		if err != nil {
			return 0, err
		}
		pv += cfPV
	}
	return pv / b.ParValue * 100, nil
}

// YieldSolution 收益率求解结果
type YieldSolution struct {
	Yield        float64
	Iterations   int
	UsedFallback bool
}

// SolveYield 反解到期收益率
// 零息债走封闭解；付息债先用票面利率作初值做牛顿迭代，
// 任何失败回退到 [0%, 20%] 区间二分法，二分法夹逼条件也不满足则为终态错误
func (v *Valuer) SolveYield(b *Bond, valuationDate time.Time, marketPrice float64, fwd ForwardRates) (YieldSolution, error) {
	if b.Type == BondTypeZero {
		return YieldSolution{Yield: zeroCouponYield(b, valuationDate, marketPrice)}, nil
	}

	priceDecimal := marketPrice / 100.0
	targetPrice := priceDecimal * b.ParValue
	flows := b.RemainingCashFlows(valuationDate, fwd)

	f := func(y float64) float64 {
		pv := 0.0
		for _, cf := range flows {
			t := YearFraction(valuationDate, cf.PaymentDate)
			pv += cf.Amount * math.Exp(-y*t)
		}
		return pv - targetPrice
	}
	fPrime := func(y float64) float64 {
		dpv := 0.0
		for _, cf := range flows {
			t := YearFraction(valuationDate, cf.PaymentDate)
			dpv -= cf.Amount * t * math.Exp(-y*t)
		}
		return dpv
	}

	if res, err := numeric.NewtonRaphson(f, fPrime, b.initialYieldGuess(), v.tolerance, v.maxIterations); err == nil {
		return YieldSolution{Yield: res.Root, Iterations: res.Iterations}, nil
	}

	res, err := numeric.Bisection(f, bisectionYieldLow, bisectionYieldHigh, v.tolerance, v.maxIterations)
	if err != nil {
		return YieldSolution{}, fmt.Errorf("%w: %v", ErrYieldNotFound, err)
	}
	return YieldSolution{Yield: res.Root, Iterations: res.Iterations, UsedFallback: true}, nil
}

// YieldToMaturity 反解到期收益率，只返回收益率
func (v *Valuer) YieldToMaturity(b *Bond, valuationDate time.Time, marketPrice float64, fwd ForwardRates) (float64, error) {
	s, err := v.SolveYield(b, valuationDate, marketPrice, fwd)
	if err != nil {
		return 0, err
	}
	return s.Yield, nil
}

// zeroCouponYield 零息债收益率封闭解：(面值/价格)^(1/t) - 1
func zeroCouponYield(b *Bond, valuationDate time.Time, marketPrice float64) float64 {
	priceDecimal := marketPrice / 100.0
	years := YearFraction(valuationDate, b.MaturityDate)
	if years <= 0 || priceDecimal <= 0 {
		return 0
	}
	return math.Pow(b.ParValue/(priceDecimal*b.ParValue), 1/years) - 1
}

// Duration 麦考利久期：现值加权的平均到款时间
// 剩余现金流现值为零时返回 0（退化情形）
func (v *Valuer) Duration(b *Bond, valuationDate time.Time, yield float64, fwd ForwardRates) float64 {
	weightedSum := 0.0
	priceSum := 0.0
	for _, cf := range b.RemainingCashFlows(valuationDate, fwd) {
		t := YearFraction(valuationDate, cf.PaymentDate)
		pv := cf.Amount * math.Exp(-yield*t)
		weightedSum += t * pv
		priceSum += pv
	}
	if priceSum == 0 {
		return 0
	}
	return weightedSum / priceSum
}

// ModifiedDuration 修正久期
// 连续复利下与麦考利久期相等，无需再除以 (1+y/m)
func (v *Valuer) ModifiedDuration(b *Bond, valuationDate time.Time, yield float64, fwd ForwardRates) float64 {
	return v.Duration(b, valuationDate, yield, fwd)
}

// Convexity 凸性：Σ t²·PV / Σ PV
func (v *Valuer) Convexity(b *Bond, valuationDate time.Time, yield float64, fwd ForwardRates) float64 {
	weightedSum := 0.0
	priceSum := 0.0
	for _, cf := range b.RemainingCashFlows(valuationDate, fwd) {
		t := YearFraction(valuationDate, cf.PaymentDate)
		pv := cf.Amount * math.Exp(-yield*t)
		weightedSum += t * t * pv
		priceSum += pv
	}
	if priceSum == 0 {
		return 0
	}
	return weightedSum / priceSum
}

// DV01 1bp 收益率上移对应的价格变动（货币单位），一侧差分，恒为非负
func (v *Valuer) DV01(b *Bond, valuationDate time.Time, yield float64, fwd ForwardRates) float64 {
	base := v.PriceFromYield(b, valuationDate, yield, fwd) * b.ParValue / 100.0
	up := v.PriceFromYield(b, valuationDate, yield+basisPointShift, fwd) * b.ParValue / 100.0
	return math.Abs(base - up)
}

// PriceFromYield 给定收益率下的净价（占面值百分比），连续复利贴现
func (v *Valuer) PriceFromYield(b *Bond, valuationDate time.Time, yield float64, fwd ForwardRates) float64 {
	pv := 0.0
	for _, cf := range b.RemainingCashFlows(valuationDate, fwd) {
		t := YearFraction(valuationDate, cf.PaymentDate)
		pv += cf.Amount * math.Exp(-yield*t)
	}
	return pv / b.ParValue * 100
}
