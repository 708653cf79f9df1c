package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// DefaultCompoundingFrequency 默认半年复利
const DefaultCompoundingFrequency = 2

// RateCurve 利率期限结构
// 构造完成后不可变；冲击后的曲线是新实例，绝不原地修改
type RateCurve struct {
	CurveDate            time.Time
	Tenors               []float64
	Rates                []float64
	CompoundingFrequency int
}

// NewRateCurve 构造利率曲线并校验形状
// 按期限升序稳定排序，重复期限保留不去重
func NewRateCurve(curveDate time.Time, tenors, rates []float64, compoundingFrequency int) (*RateCurve, error) {
	if len(tenors) != len(rates) {
		return nil, fmt.Errorf("%w: %d tenors vs %d rates", ErrInvalidCurve, len(tenors), len(rates))
	}
	if len(tenors) < 2 {
		return nil, fmt.Errorf("%w: at least two points are needed for interpolation", ErrInvalidCurve)
	}
	for _, t := range tenors {
		if t <= 0 {
			return nil, fmt.Errorf("%w: tenor %g must be positive", ErrInvalidCurve, t)
		}
	}
	if compoundingFrequency <= 0 {
		compoundingFrequency = DefaultCompoundingFrequency
	}

	type point struct{ tenor, rate float64 }
	points := make([]point, len(tenors))
	for i := range tenors {
		points[i] = point{tenors[i], rates[i]}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].tenor < points[j].tenor })

	sortedTenors := make([]float64, len(points))
	sortedRates := make([]float64, len(points))
	for i, p := range points {
		sortedTenors[i] = p.tenor
		sortedRates[i] = p.rate
	}

	return &RateCurve{
		CurveDate:            curveDate,
		Tenors:               sortedTenors,
		Rates:                sortedRates,
		CompoundingFrequency: compoundingFrequency,
	}, nil
}

// Rate 返回给定期限的插值利率
// 低于首点或高于末点时夹取到端点利率，不做外推
func (c *RateCurve) Rate(tenor float64) (float64, error) {
	if tenor <= c.Tenors[0] {
		return c.Rates[0], nil
	}
	if tenor >= c.Tenors[len(c.Tenors)-1] {
		return c.Rates[len(c.Rates)-1], nil
	}

	for i := 0; i < len(c.Tenors)-1; i++ {
		t0, t1 := c.Tenors[i], c.Tenors[i+1]
		if t0 <= tenor && tenor <= t1 {
			if t1 == t0 {
				return c.Rates[i], nil
			}
			r0, r1 := c.Rates[i], c.Rates[i+1]
			return r0 + (r1-r0)*(tenor-t0)/(t1-t0), nil
		}
	}
	return 0, fmt.Errorf("%w: tenor %g", ErrInterpolation, tenor)
}

// DiscountFactor 计算从估值日到未来日期的贴现因子
// 年化时间采用 Actual/365；非正时间不贴现，返回 1.0
// 离散复利：DF = (1 + r/m)^(-m·t)
func (c *RateCurve) DiscountFactor(valuationDate, futureDate time.Time) (float64, error) {
	t := YearFraction(valuationDate, futureDate)
	if t <= 0 {
		return 1.0, nil
	}

	rate, err := c.Rate(t)
	if err != nil {
		return 0, err
	}

	m := float64(c.CompoundingFrequency)
	return math.Pow(1.0+rate/m, -m*t), nil
}

// WithRates 复制一条新曲线，替换利率序列（期限与复利频率不变）
// 压力测试与关键利率久期用它生成冲击曲线
func (c *RateCurve) WithRates(rates []float64) (*RateCurve, error) {
	tenors := make([]float64, len(c.Tenors))
	copy(tenors, c.Tenors)
	return NewRateCurve(c.CurveDate, tenors, rates, c.CompoundingFrequency)
}
