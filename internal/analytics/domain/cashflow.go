package domain

import "time"

// CashFlow 单笔现金流
type CashFlow struct {
	PaymentDate time.Time `json:"payment_date"`
	Amount      float64   `json:"amount"`
}

// PresentValue 计算现金流在估值日的现值
// 支付日不晚于估值日的现金流不计入，返回 0
func (cf CashFlow) PresentValue(valuationDate time.Time, curve *RateCurve) (float64, error) {
	if !cf.PaymentDate.After(valuationDate) {
		return 0, nil
	}
	df, err := curve.DiscountFactor(valuationDate, cf.PaymentDate)
	if err != nil {
		return 0, err
	}
	return cf.Amount * df, nil
}
