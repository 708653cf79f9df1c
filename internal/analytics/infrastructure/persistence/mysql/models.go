package mysql

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wyfcoding/fixedincome/internal/analytics/domain"
)

// BondModel 债券条款持久化模型
type BondModel struct {
	gorm.Model
	ContractID       string          `gorm:"column:contract_id;type:varchar(64);uniqueIndex;not null"`
	SecurityDesc     string          `gorm:"column:security_desc;type:varchar(255)"`
	BondType         string          `gorm:"column:bond_type;type:varchar(20);not null"`
	IssueDate        time.Time       `gorm:"column:issue_date;type:date;not null"`
	MaturityDate     time.Time       `gorm:"column:maturity_date;type:date;not null"`
	ParValue         decimal.Decimal `gorm:"column:par_value;type:decimal(20,4);not null"`
	PaymentFrequency int             `gorm:"column:payment_frequency;type:int;not null"`
	CouponRate       decimal.Decimal `gorm:"column:coupon_rate;type:decimal(12,8)"`
	Spread           decimal.Decimal `gorm:"column:spread;type:decimal(12,8)"`
	ReferenceRate    string          `gorm:"column:reference_rate;type:varchar(32)"`
	DiscountRate     decimal.Decimal `gorm:"column:discount_rate;type:decimal(12,8)"`
}

// TableName 指定表名
func (BondModel) TableName() string {
	return "bonds"
}

func toBondModel(b *domain.Bond) *BondModel {
	return &BondModel{
		ContractID:       b.ContractID,
		SecurityDesc:     b.SecurityDesc,
		BondType:         string(b.Type),
		IssueDate:        b.IssueDate,
		MaturityDate:     b.MaturityDate,
		ParValue:         decimal.NewFromFloat(b.ParValue),
		PaymentFrequency: b.PaymentFrequency,
		CouponRate:       decimal.NewFromFloat(b.CouponRate),
		Spread:           decimal.NewFromFloat(b.Spread),
		ReferenceRate:    b.ReferenceRate,
		DiscountRate:     decimal.NewFromFloat(b.DiscountRate),
	}
}

func toDomainBond(m *BondModel) (*domain.Bond, error) {
	bondType, err := domain.ParseBondType(m.BondType)
	if err != nil {
		return nil, err
	}
	switch bondType {
	case domain.BondTypeFloating:
		return domain.NewFloatingRateBond(m.ContractID, m.SecurityDesc,
			m.IssueDate, m.MaturityDate, m.ParValue.InexactFloat64(),
			m.Spread.InexactFloat64(), m.ReferenceRate, m.PaymentFrequency)
	case domain.BondTypeZero:
		return domain.NewZeroCouponBond(m.ContractID, m.SecurityDesc,
			m.IssueDate, m.MaturityDate, m.ParValue.InexactFloat64(),
			m.DiscountRate.InexactFloat64())
	default:
		return domain.NewFixedRateBond(m.ContractID, m.SecurityDesc,
			m.IssueDate, m.MaturityDate, m.ParValue.InexactFloat64(),
			m.CouponRate.InexactFloat64(), m.PaymentFrequency)
	}
}

// CurveModel 利率曲线持久化模型
// 期限与利率序列按 JSON 存入 points 列，读取时重建并复用构造校验
type CurveModel struct {
	gorm.Model
	CurveDate            time.Time `gorm:"column:curve_date;type:date;uniqueIndex;not null"`
	Points               string    `gorm:"column:points;type:text;not null"`
	CompoundingFrequency int       `gorm:"column:compounding_frequency;type:int;not null"`
}

// TableName 指定表名
func (CurveModel) TableName() string {
	return "rate_curves"
}

type curvePoints struct {
	Tenors []float64 `json:"tenors"`
	Rates  []float64 `json:"rates"`
}

func toCurveModel(c *domain.RateCurve) (*CurveModel, error) {
	points, err := json.Marshal(curvePoints{Tenors: c.Tenors, Rates: c.Rates})
	if err != nil {
		return nil, err
	}
	return &CurveModel{
		CurveDate:            c.CurveDate,
		Points:               string(points),
		CompoundingFrequency: c.CompoundingFrequency,
	}, nil
}

func toDomainCurve(m *CurveModel) (*domain.RateCurve, error) {
	var points curvePoints
	if err := json.Unmarshal([]byte(m.Points), &points); err != nil {
		return nil, err
	}
	return domain.NewRateCurve(m.CurveDate, points.Tenors, points.Rates, m.CompoundingFrequency)
}
