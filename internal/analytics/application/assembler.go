package application

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/fixedincome/internal/analytics/domain"
)

// toDomainBond 把请求 DTO 装配为领域对象，按类型标签分发构造器
func toDomainBond(req BondRequest) (*domain.Bond, domain.ForwardRates, error) {
	bondType, err := domain.ParseBondType(req.BondType)
	if err != nil {
		return nil, nil, err
	}

	issue, err := domain.ParseDate(req.IssueDate)
	if err != nil {
		return nil, nil, fmt.Errorf("issue_date: %w", err)
	}
	maturity, err := domain.ParseDate(req.MaturityDate)
	if err != nil {
		return nil, nil, fmt.Errorf("maturity_date: %w", err)
	}

	var bond *domain.Bond
	switch bondType {
	case domain.BondTypeFixed:
		bond, err = domain.NewFixedRateBond(req.ContractID, req.SecurityDesc,
			issue, maturity, req.ParValue, req.CouponRate, req.PaymentFrequency)
	case domain.BondTypeFloating:
		bond, err = domain.NewFloatingRateBond(req.ContractID, req.SecurityDesc,
			issue, maturity, req.ParValue, req.Spread, req.ReferenceRate, req.PaymentFrequency)
	case domain.BondTypeZero:
		bond, err = domain.NewZeroCouponBond(req.ContractID, req.SecurityDesc,
			issue, maturity, req.ParValue, req.DiscountRate)
	}
	if err != nil {
		return nil, nil, err
	}

	var fwd domain.ForwardRates
	if len(req.ForwardRates) > 0 {
		fwd = make(domain.ForwardRates, len(req.ForwardRates))
		for dateStr, rate := range req.ForwardRates {
			d, err := domain.ParseDate(dateStr)
			if err != nil {
				return nil, nil, fmt.Errorf("forward_rates: %w", err)
			}
			fwd[d] = rate
		}
	}
	return bond, fwd, nil
}

// toDomainCurve 把曲线 DTO 装配为领域对象
func toDomainCurve(req CurveRequest) (*domain.RateCurve, error) {
	curveDate, err := domain.ParseDate(req.CurveDate)
	if err != nil {
		return nil, fmt.Errorf("curve_date: %w", err)
	}
	return domain.NewRateCurve(curveDate, req.Tenors, req.Rates, req.CompoundingFrequency)
}

// toAnalysisDTO 把持久化实体转换为响应 DTO
// price_100bp 由久期与凸性重算，不单独落库
func toAnalysisDTO(r *domain.AnalysisResult) *AnalysisDTO {
	md := r.ModifiedDuration.InexactFloat64()
	cx := r.Convexity.InexactFloat64()
	price100bp := -md*0.01*100 + 0.5*cx*0.01*0.01*100

	return &AnalysisDTO{
		ContractID:       r.ContractID,
		SecurityDesc:     r.SecurityDesc,
		BondType:         r.BondType,
		ValuationDate:    r.ValuationDate.Format("2006-01-02"),
		CleanPrice:       r.CleanPrice.String(),
		YieldToMaturity:  r.YieldToMaturity.String(),
		Duration:         r.Duration.String(),
		ModifiedDuration: r.ModifiedDuration.String(),
		Convexity:        r.Convexity.String(),
		DV01:             r.DV01.String(),
		Price100Bp:       dec(price100bp).String(),
		SolverIterations: r.SolverIterations,
		UsedFallback:     r.UsedFallback,
	}
}

// dec 统一入库精度，8 位小数
func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(8)
}
