package domain

import "errors"

var (
	// ErrInvalidCurve 曲线输入不合法（长度不匹配、点数不足、期限非正）
	ErrInvalidCurve = errors.New("invalid rate curve")
	// ErrInterpolation 期限插值失败（理论上不可达，构造期已保证可夹取）
	ErrInterpolation = errors.New("rate interpolation failed")
	// ErrInvalidBond 债券条款不合法（日期顺序、付息频率）
	ErrInvalidBond = errors.New("invalid bond terms")
	// ErrUnknownBondType 未识别的债券类型标签
	ErrUnknownBondType = errors.New("unknown bond type")
	// ErrDegeneratePrice 当前价格为零，无法归一化收益
	ErrDegeneratePrice = errors.New("degenerate price: current price is zero")
	// ErrScenarioNotFound 压力测试场景未注册
	ErrScenarioNotFound = errors.New("stress scenario not found")
	// ErrYieldNotFound 收益率求解失败（Newton 与二分回退均失败）
	ErrYieldNotFound = errors.New("yield to maturity not found")
)
