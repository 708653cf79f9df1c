package domain

import (
	"time"
)

// RiskReport 利率风险指标报告（指标名 -> 数值）
type RiskReport map[string]float64

// keyRateTenorTolerance 关键利率期限与曲线节点的匹配容差
const keyRateTenorTolerance = 1e-6

// RiskCalculator 风险指标计算器
type RiskCalculator struct {
	valuer *Valuer
}

// NewRiskCalculator 创建风险指标计算器
func NewRiskCalculator(valuer *Valuer) *RiskCalculator {
	return &RiskCalculator{valuer: valuer}
}

// InterestRateRisk 汇总利率风险指标
// price_100bp 是 100bp 上移的二阶价格冲击估计：
// -MD·0.01·100 + 0.5·Cx·0.01²·100
func (r *RiskCalculator) InterestRateRisk(b *Bond, valuationDate time.Time, yield float64, fwd ForwardRates) RiskReport {
	duration := r.valuer.Duration(b, valuationDate, yield, fwd)
	modifiedDuration := r.valuer.ModifiedDuration(b, valuationDate, yield, fwd)
	convexity := r.valuer.Convexity(b, valuationDate, yield, fwd)
	dv01 := r.valuer.DV01(b, valuationDate, yield, fwd)

	price100bp := -modifiedDuration*0.01*100 + 0.5*convexity*0.01*0.01*100

	return RiskReport{
		"duration":          duration,
		"modified_duration": modifiedDuration,
		"convexity":         convexity,
		"dv01":              dv01,
		"price_100bp":       price100bp,
	}
}

// PriceSensitivity 小幅收益率偏移下的价格变动百分比
func (r *RiskCalculator) PriceSensitivity(b *Bond, valuationDate time.Time, yield, yieldShift float64, fwd ForwardRates) (float64, error) {
	base := r.valuer.PriceFromYield(b, valuationDate, yield, fwd)
	if base == 0 {
		return 0, ErrDegeneratePrice
	}
	shifted := r.valuer.PriceFromYield(b, valuationDate, yield+yieldShift, fwd)
	return (shifted - base) / base * 100, nil
}

// SpreadRisk 信用利差久期，简化实现下近似等于修正久期
func (r *RiskCalculator) SpreadRisk(b *Bond, valuationDate time.Time, yield float64, fwd ForwardRates) float64 {
	return r.valuer.ModifiedDuration(b, valuationDate, yield, fwd)
}

// KeyRateDurations 关键利率久期
// 对每个关键期限：在曲线节点中按 1e-6 容差找到匹配点，单点上移 shift，
// 用冲击后的新曲线重新定价，KRD = -(P_shift - P_base)/(shift·P_base)。
// 未匹配到节点的期限不出现在结果中（关键利率久期只在曲线节点上有定义）
func (r *RiskCalculator) KeyRateDurations(b *Bond, valuationDate time.Time, curve *RateCurve,
	keyTenors []float64, shift float64, fwd ForwardRates) (map[float64]float64, error) {

	if shift == 0 {
		shift = basisPointShift
	}

	basePrice, err := r.valuer.Price(b, valuationDate, curve, fwd)
	if err != nil {
		return nil, err
	}
	if basePrice == 0 {
		return nil, ErrDegeneratePrice
	}

	krd := make(map[float64]float64)
	for _, tenor := range keyTenors {
		index := -1
		for i, t := range curve.Tenors {
			if abs(t-tenor) < keyRateTenorTolerance {
				index = i
				break
			}
		}
		if index < 0 {
			continue
		}

		shiftedRates := make([]float64, len(curve.Rates))
		copy(shiftedRates, curve.Rates)
		shiftedRates[index] += shift

		shiftedCurve, err := curve.WithRates(shiftedRates)
		if err != nil {
			return nil, err
		}
		shiftedPrice, err := r.valuer.Price(b, valuationDate, shiftedCurve, fwd)
		if err != nil {
			return nil, err
		}

		krd[tenor] = -(shiftedPrice - basePrice) / (shift * basePrice)
	}
	return krd, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
