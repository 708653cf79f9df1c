package domain

import (
	"math"
	"math/rand/v2"
	"sort"
	"time"
)

// tradingDaysPerYear 年化交易日数
const tradingDaysPerYear = 252.0

// VaREngine 在险价值引擎
// 四种估计量共享同一模式：扰动收益率 -> 重定价 -> 收集价格变动百分比 -> 取尾部
type VaREngine struct {
	valuer      *Valuer
	simulations int
	seed        uint64
}

// NewVaREngine 创建 VaR 引擎
// seed 固定使模拟可复现；simulations 为蒙特卡洛路径数
func NewVaREngine(valuer *Valuer, simulations int, seed int64) *VaREngine {
	if simulations <= 0 {
		simulations = 10000
	}
	return &VaREngine{valuer: valuer, simulations: simulations, seed: uint64(seed)}
}

// currentState 计算当前收益率与收益率空间下的当前价格
func (e *VaREngine) currentState(b *Bond, valuationDate time.Time, curve *RateCurve, fwd ForwardRates) (yield, price float64, err error) {
	curvePrice, err := e.valuer.Price(b, valuationDate, curve, fwd)
	if err != nil {
		return 0, 0, err
	}
	sol, err := e.valuer.SolveYield(b, valuationDate, curvePrice, fwd)
	if err != nil {
		return 0, 0, err
	}
	price = e.valuer.PriceFromYield(b, valuationDate, sol.Yield, fwd)
	if price == 0 {
		return 0, 0, ErrDegeneratePrice
	}
	return sol.Yield, price, nil
}

// HistoricalVaR 历史模拟法
// 对历史收益率序列的逐日变化逐一重定价，排序后按 ⌊N·(1-置信度)⌋ 取尾部分位，
// 乘以 √持有期 进行时间缩放，结果为组合价值的百分比
func (e *VaREngine) HistoricalVaR(b *Bond, valuationDate time.Time, curve *RateCurve,
	historicalYields []float64, confidence float64, horizonDays int, fwd ForwardRates) (float64, error) {

	currentYield, currentPrice, err := e.currentState(b, valuationDate, curve, fwd)
	if err != nil {
		return 0, err
	}

	priceChanges := make([]float64, 0, len(historicalYields))
	for i := 1; i < len(historicalYields); i++ {
		delta := historicalYields[i] - historicalYields[i-1]
		newPrice := e.valuer.PriceFromYield(b, valuationDate, currentYield+delta, fwd)
		priceChanges = append(priceChanges, (newPrice-currentPrice)/currentPrice)
	}
	sort.Float64s(priceChanges)

	varIndex := int(float64(len(priceChanges)) * (1 - confidence))
	if varIndex >= len(priceChanges) {
		varIndex = len(priceChanges) - 1
	}
	scaling := math.Sqrt(float64(horizonDays))
	return math.Abs(priceChanges[varIndex]*scaling) * 100, nil
}

// ParametricVaR 参数法：修正久期 × 日波动率 × √持有期 × z 分位
// 日波动率 = 年化波动率/√252
func (e *VaREngine) ParametricVaR(b *Bond, valuationDate time.Time, curve *RateCurve,
	yieldVolatility, confidence float64, horizonDays int, fwd ForwardRates) (float64, error) {

	currentYield, _, err := e.currentState(b, valuationDate, curve, fwd)
	if err != nil {
		return 0, err
	}
	modifiedDuration := e.valuer.ModifiedDuration(b, valuationDate, currentYield, fwd)

	dailyVolatility := yieldVolatility / math.Sqrt(tradingDaysPerYear)
	horizonVolatility := dailyVolatility * math.Sqrt(float64(horizonDays))
	z := math.Abs(normalQuantile(1 - confidence))

	return modifiedDuration * horizonVolatility * z * 100, nil
}

// MonteCarloVaR 蒙特卡洛法
// 以持有期缩放后的均值/波动率抽取正态收益率变化，固定种子保证可复现
func (e *VaREngine) MonteCarloVaR(b *Bond, valuationDate time.Time, curve *RateCurve,
	yieldMean, yieldVolatility, confidence float64, horizonDays int, fwd ForwardRates) (float64, error) {

	priceChanges, err := e.simulate(b, valuationDate, curve, yieldMean, yieldVolatility, horizonDays, fwd)
	if err != nil {
		return 0, err
	}

	varIndex := int(float64(len(priceChanges)) * (1 - confidence))
	if varIndex >= len(priceChanges) {
		varIndex = len(priceChanges) - 1
	}
	return math.Abs(priceChanges[varIndex]) * 100, nil
}

// ExpectedShortfall 预期损失：VaR 尾部以内全部损失的均值
func (e *VaREngine) ExpectedShortfall(b *Bond, valuationDate time.Time, curve *RateCurve,
	yieldVolatility, confidence float64, horizonDays int, fwd ForwardRates) (float64, error) {

	priceChanges, err := e.simulate(b, valuationDate, curve, 0, yieldVolatility, horizonDays, fwd)
	if err != nil {
		return 0, err
	}

	varIndex := int(float64(len(priceChanges)) * (1 - confidence))
	if varIndex <= 0 {
		varIndex = 1
	}
	sum := 0.0
	for _, change := range priceChanges[:varIndex] {
		sum += change
	}
	return math.Abs(sum/float64(varIndex)) * 100, nil
}

// simulate 抽样重定价，返回升序排列的价格变动百分比序列
func (e *VaREngine) simulate(b *Bond, valuationDate time.Time, curve *RateCurve,
	yieldMean, yieldVolatility float64, horizonDays int, fwd ForwardRates) ([]float64, error) {

	currentYield, currentPrice, err := e.currentState(b, valuationDate, curve, fwd)
	if err != nil {
		return nil, err
	}

	horizonMean := yieldMean * float64(horizonDays) / tradingDaysPerYear
	horizonVolatility := yieldVolatility * math.Sqrt(float64(horizonDays)/tradingDaysPerYear)

	rng := rand.New(rand.NewPCG(e.seed, 0))
	priceChanges := make([]float64, e.simulations)
	for i := 0; i < e.simulations; i++ {
		delta := horizonMean + horizonVolatility*rng.NormFloat64()
		newPrice := e.valuer.PriceFromYield(b, valuationDate, currentYield+delta, fwd)
		priceChanges[i] = (newPrice - currentPrice) / currentPrice
	}
	sort.Float64s(priceChanges)
	return priceChanges, nil
}

// normalQuantile 标准正态分布分位函数，基于误差函数的反函数
func normalQuantile(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}
