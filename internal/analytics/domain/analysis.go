// 包 固定收益分析服务的领域模型、估值引擎、风险指标、仓储接口
package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AnalysisResult 债券分析结果实体
// 领域计算使用 float64，入库口径统一转为 decimal
type AnalysisResult struct {
	gorm.Model
	ContractID       string          `gorm:"column:contract_id;type:varchar(64);index;not null" json:"contract_id"`
	SecurityDesc     string          `gorm:"column:security_desc;type:varchar(255)" json:"security_desc"`
	BondType         string          `gorm:"column:bond_type;type:varchar(20);not null" json:"bond_type"`
	ValuationDate    time.Time       `gorm:"column:valuation_date;type:date;index;not null" json:"valuation_date"`
	CleanPrice       decimal.Decimal `gorm:"column:clean_price;type:decimal(20,8);not null" json:"clean_price"`
	YieldToMaturity  decimal.Decimal `gorm:"column:yield_to_maturity;type:decimal(20,10);not null" json:"yield_to_maturity"`
	Duration         decimal.Decimal `gorm:"column:duration;type:decimal(20,8);not null" json:"duration"`
	ModifiedDuration decimal.Decimal `gorm:"column:modified_duration;type:decimal(20,8);not null" json:"modified_duration"`
	Convexity        decimal.Decimal `gorm:"column:convexity;type:decimal(20,8);not null" json:"convexity"`
	DV01             decimal.Decimal `gorm:"column:dv01;type:decimal(20,8);not null" json:"dv01"`
	SolverIterations int             `gorm:"column:solver_iterations;type:int;not null" json:"solver_iterations"`
	UsedFallback     bool            `gorm:"column:used_fallback;type:boolean;not null" json:"used_fallback"`
}

// TableName 指定表名
func (AnalysisResult) TableName() string {
	return "bond_analysis_results"
}

// StressRecord 压力测试结果实体
type StressRecord struct {
	gorm.Model
	ContractID       string          `gorm:"column:contract_id;type:varchar(64);index;not null" json:"contract_id"`
	ValuationDate    time.Time       `gorm:"column:valuation_date;type:date;index;not null" json:"valuation_date"`
	Scenario         string          `gorm:"column:scenario;type:varchar(64);not null" json:"scenario"`
	BasePrice        decimal.Decimal `gorm:"column:base_price;type:decimal(20,8);not null" json:"base_price"`
	StressedPrice    decimal.Decimal `gorm:"column:stressed_price;type:decimal(20,8);not null" json:"stressed_price"`
	PriceChange      decimal.Decimal `gorm:"column:price_change;type:decimal(20,8);not null" json:"price_change"`
	PercentageChange decimal.Decimal `gorm:"column:percentage_change;type:decimal(20,8);not null" json:"percentage_change"`
}

// TableName 指定表名
func (StressRecord) TableName() string {
	return "stress_test_results"
}

// VaRRecord 在险价值结果实体
type VaRRecord struct {
	gorm.Model
	ContractID    string          `gorm:"column:contract_id;type:varchar(64);index;not null" json:"contract_id"`
	ValuationDate time.Time       `gorm:"column:valuation_date;type:date;index;not null" json:"valuation_date"`
	Method        string          `gorm:"column:method;type:varchar(20);not null" json:"method"`
	Confidence    decimal.Decimal `gorm:"column:confidence;type:decimal(5,4);not null" json:"confidence"`
	HorizonDays   int             `gorm:"column:horizon_days;type:int;not null" json:"horizon_days"`
	Value         decimal.Decimal `gorm:"column:value;type:decimal(20,8);not null" json:"value"`
}

// TableName 指定表名
func (VaRRecord) TableName() string {
	return "var_results"
}
