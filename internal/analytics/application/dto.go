package application

// BondRequest 债券条款 DTO
// forward_rates 键为支付日（与 issue_date 同格式），仅浮息债使用
type BondRequest struct {
	ContractID       string             `json:"contract_id"`
	SecurityDesc     string             `json:"security_desc"`
	BondType         string             `json:"bond_type"`
	IssueDate        string             `json:"issue_date"`
	MaturityDate     string             `json:"maturity_date"`
	ParValue         float64            `json:"par_value"`
	PaymentFrequency int                `json:"payment_frequency"`
	CouponRate       float64            `json:"coupon_rate"`
	Spread           float64            `json:"spread"`
	ReferenceRate    string             `json:"reference_rate"`
	DiscountRate     float64            `json:"discount_rate"`
	ForwardRates     map[string]float64 `json:"forward_rates,omitempty"`
}

// CurveRequest 利率曲线 DTO
type CurveRequest struct {
	CurveDate            string    `json:"curve_date"`
	Tenors               []float64 `json:"tenors"`
	Rates                []float64 `json:"rates"`
	CompoundingFrequency int       `json:"compounding_frequency"`
}

// AnalyzeBondRequest 单债分析请求
// 曲线缺省时使用仓储中最新一条；market_price 缺省时用曲线定价结果反解收益率
type AnalyzeBondRequest struct {
	Bond          BondRequest   `json:"bond"`
	Curve         *CurveRequest `json:"curve,omitempty"`
	ValuationDate string        `json:"valuation_date"`
	MarketPrice   *float64      `json:"market_price,omitempty"`
}

// AnalysisDTO 单债分析结果
// 价格与风险指标按入库口径以字符串表示
type AnalysisDTO struct {
	ContractID       string `json:"contract_id"`
	SecurityDesc     string `json:"security_desc"`
	BondType         string `json:"bond_type"`
	ValuationDate    string `json:"valuation_date"`
	CleanPrice       string `json:"clean_price"`
	YieldToMaturity  string `json:"yield_to_maturity"`
	Duration         string `json:"duration"`
	ModifiedDuration string `json:"modified_duration"`
	Convexity        string `json:"convexity"`
	DV01             string `json:"dv01"`
	Price100Bp       string `json:"price_100bp"`
	SolverIterations int    `json:"solver_iterations"`
	UsedFallback     bool   `json:"used_fallback"`
}

// CashFlowDTO 单笔现金流
type CashFlowDTO struct {
	PaymentDate string  `json:"payment_date"`
	Amount      float64 `json:"amount"`
}

// PortfolioAnalyzeRequest 组合分析请求
type PortfolioAnalyzeRequest struct {
	Bonds         []BondRequest `json:"bonds"`
	Curve         *CurveRequest `json:"curve,omitempty"`
	ValuationDate string        `json:"valuation_date"`
}

// PortfolioAnalysisDTO 组合分析结果
// 单券失败不阻断整体，失败原因按合约号归集在 errors
type PortfolioAnalysisDTO struct {
	Results map[string]*AnalysisDTO `json:"results"`
	Errors  map[string]string       `json:"errors,omitempty"`
}

// StressTestRequest 压力测试请求，scenario 为空时运行全部场景
type StressTestRequest struct {
	Bond          BondRequest   `json:"bond"`
	Curve         *CurveRequest `json:"curve,omitempty"`
	ValuationDate string        `json:"valuation_date"`
	Scenario      string        `json:"scenario,omitempty"`
}

// StressResultDTO 单场景压力测试结果
type StressResultDTO struct {
	Scenario         string  `json:"scenario"`
	BasePrice        float64 `json:"base_price"`
	StressedPrice    float64 `json:"stressed_price"`
	PriceChange      float64 `json:"price_change"`
	PercentageChange float64 `json:"percentage_change"`
}

// VaRRequest 在险价值请求
// method 取 historical/parametric/montecarlo
type VaRRequest struct {
	Bond             BondRequest   `json:"bond"`
	Curve            *CurveRequest `json:"curve,omitempty"`
	ValuationDate    string        `json:"valuation_date"`
	Method           string        `json:"method"`
	Confidence       float64       `json:"confidence"`
	HorizonDays      int           `json:"horizon_days"`
	HistoricalYields []float64     `json:"historical_yields,omitempty"`
	YieldMean        float64       `json:"yield_mean"`
	YieldVolatility  float64       `json:"yield_volatility"`
}

// VaRResultDTO 在险价值结果，数值为组合价值的百分比
type VaRResultDTO struct {
	ContractID        string  `json:"contract_id"`
	Method            string  `json:"method"`
	Confidence        float64 `json:"confidence"`
	HorizonDays       int     `json:"horizon_days"`
	Value             float64 `json:"value"`
	ExpectedShortfall float64 `json:"expected_shortfall,omitempty"`
}

// KeyRateRequest 关键利率久期请求
type KeyRateRequest struct {
	Bond          BondRequest   `json:"bond"`
	Curve         *CurveRequest `json:"curve,omitempty"`
	ValuationDate string        `json:"valuation_date"`
	KeyTenors     []float64     `json:"key_tenors"`
	Shift         float64       `json:"shift"`
}
