package domain

import (
	"fmt"
	"time"
)

// BondType 债券类型标签
type BondType string

const (
	BondTypeFixed    BondType = "fixed"    // 固定利率债
	BondTypeFloating BondType = "floating" // 浮动利率债
	BondTypeZero     BondType = "zero"     // 零息债
)

// ParseBondType 解析来自加载器的类型标签
func ParseBondType(s string) (BondType, error) {
	switch BondType(s) {
	case BondTypeFixed, BondTypeFloating, BondTypeZero:
		return BondType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBondType, s)
}

// ForwardRates 浮息债的远期利率表（支付日 -> 远期利率）
// 由调用方持有并传入定价调用，债券本身不保存任何可变状态
type ForwardRates map[time.Time]float64

// Bond 债券合约条款
// 按类型标签区分变体；构造完成后不可变
type Bond struct {
	Type         BondType `json:"bond_type"`
	ContractID   string   `json:"contract_id"`
	SecurityDesc string   `json:"security_desc"`

	IssueDate    time.Time `json:"issue_date"`
	MaturityDate time.Time `json:"maturity_date"`
	ParValue     float64   `json:"par_value"`
	// 每年付息次数；零息债为 0
	PaymentFrequency int `json:"payment_frequency"`

	// 固定利率债：年化票面利率
	CouponRate float64 `json:"coupon_rate,omitempty"`
	// 浮动利率债：基准利率之上的利差与基准名称
	Spread        float64 `json:"spread,omitempty"`
	ReferenceRate string  `json:"reference_rate,omitempty"`
	// 零息债：参考贴现率，仅作信息记录，定价只依赖传入曲线
	DiscountRate float64 `json:"discount_rate,omitempty"`
}

// NewFixedRateBond 构造固定利率债
func NewFixedRateBond(contractID, securityDesc string, issueDate, maturityDate time.Time,
	parValue, couponRate float64, paymentFrequency int) (*Bond, error) {
	b := &Bond{
		Type:             BondTypeFixed,
		ContractID:       contractID,
		SecurityDesc:     securityDesc,
		IssueDate:        issueDate,
		MaturityDate:     maturityDate,
		ParValue:         parValue,
		CouponRate:       couponRate,
		PaymentFrequency: paymentFrequency,
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// NewFloatingRateBond 构造浮动利率债
func NewFloatingRateBond(contractID, securityDesc string, issueDate, maturityDate time.Time,
	parValue, spread float64, referenceRate string, paymentFrequency int) (*Bond, error) {
	b := &Bond{
		Type:             BondTypeFloating,
		ContractID:       contractID,
		SecurityDesc:     securityDesc,
		IssueDate:        issueDate,
		MaturityDate:     maturityDate,
		ParValue:         parValue,
		Spread:           spread,
		ReferenceRate:    referenceRate,
		PaymentFrequency: paymentFrequency,
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// NewZeroCouponBond 构造零息债
func NewZeroCouponBond(contractID, securityDesc string, issueDate, maturityDate time.Time,
	parValue, discountRate float64) (*Bond, error) {
	b := &Bond{
		Type:         BondTypeZero,
		ContractID:   contractID,
		SecurityDesc: securityDesc,
		IssueDate:    issueDate,
		MaturityDate: maturityDate,
		ParValue:     parValue,
		DiscountRate: discountRate,
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bond) validate() error {
	if !b.IssueDate.Before(b.MaturityDate) {
		return fmt.Errorf("%w: issue date %s must precede maturity %s",
			ErrInvalidBond, b.IssueDate.Format("2006-01-02"), b.MaturityDate.Format("2006-01-02"))
	}
	if b.ParValue <= 0 {
		return fmt.Errorf("%w: par value %g must be positive", ErrInvalidBond, b.ParValue)
	}
	if b.Type == BondTypeZero {
		return nil
	}
	if b.PaymentFrequency <= 0 || 12%b.PaymentFrequency != 0 {
		return fmt.Errorf("%w: payment frequency %d must divide 12 months",
			ErrInvalidBond, b.PaymentFrequency)
	}
	return nil
}

// couponRateAt 返回某支付日的票面利率
// 固定利率债为票面利率；浮息债为利差加远期表中的远期利率，表中缺失时只用利差
func (b *Bond) couponRateAt(date time.Time, fwd ForwardRates) float64 {
	switch b.Type {
	case BondTypeFloating:
		if rate, ok := fwd[date]; ok {
			return b.Spread + rate
		}
		return b.Spread
	default:
		return b.CouponRate
	}
}

// CashFlows 生成从发行到到期的全部现金流
// 零息债只有到期日的单笔本金；付息债从发行日滚动付息间隔生成票息，
// 到期日已有票息时将本金并入该笔，否则追加一笔本金现金流
func (b *Bond) CashFlows(fwd ForwardRates) []CashFlow {
	if b.Type == BondTypeZero {
		return []CashFlow{{PaymentDate: b.MaturityDate, Amount: b.ParValue}}
	}

	intervalMonths := 12 / b.PaymentFrequency

	firstCoupon := b.IssueDate
	for !firstCoupon.After(b.IssueDate) {
		firstCoupon = AddMonths(firstCoupon, intervalMonths)
	}

	var flows []CashFlow
	for date := firstCoupon; !date.After(b.MaturityDate); date = AddMonths(date, intervalMonths) {
		rate := b.couponRateAt(date, fwd)
		flows = append(flows, CashFlow{
			PaymentDate: date,
			Amount:      b.ParValue * rate / float64(b.PaymentFrequency),
		})
	}

	// 本金与到期票息合并为一笔
	merged := false
	for i := range flows {
		if flows[i].PaymentDate.Equal(b.MaturityDate) {
			flows[i].Amount += b.ParValue
			merged = true
			break
		}
	}
	if !merged {
		flows = append(flows, CashFlow{PaymentDate: b.MaturityDate, Amount: b.ParValue})
	}
	return flows
}

// RemainingCashFlows 返回估值日之后（严格晚于）的现金流
func (b *Bond) RemainingCashFlows(valuationDate time.Time, fwd ForwardRates) []CashFlow {
	all := b.CashFlows(fwd)
	remaining := make([]CashFlow, 0, len(all))
	for _, cf := range all {
		if cf.PaymentDate.After(valuationDate) {
			remaining = append(remaining, cf)
		}
	}
	return remaining
}

// initialYieldGuess 收益率求解的初始猜测
// 固定债用票面利率，浮息债用利差，零息债不会走迭代求解
func (b *Bond) initialYieldGuess() float64 {
	if b.Type == BondTypeFloating {
		return b.Spread
	}
	return b.CouponRate
}
