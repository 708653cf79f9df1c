// Package loader 从 CSV/JSON 文件加载债券条款与利率曲线并登记进服务
package loader

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wyfcoding/fixedincome/internal/analytics/application"
	"github.com/wyfcoding/fixedincome/pkg/logger"
)

// FileLoader 数据文件加载器
type FileLoader struct {
	svc *application.AnalyticsService
}

// NewFileLoader 创建文件加载器
func NewFileLoader(svc *application.AnalyticsService) *FileLoader {
	return &FileLoader{svc: svc}
}

// LoadCurveCSV 加载利率曲线 CSV
// 期望列为 Date/Tenor/Rate，列名大小写不敏感且接受常见同义词；
// 同一文件内多条日期各自成曲线
func (l *FileLoader) LoadCurveCSV(ctx context.Context, path string, compoundingFrequency int) (int, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	dateCol := findColumn(header, "date", "time")
	tenorCol := findColumn(header, "tenor", "term", "maturity")
	rateCol := findColumn(header, "rate", "yield", "interest")
	if dateCol < 0 || tenorCol < 0 || rateCol < 0 {
		return 0, fmt.Errorf("curve file %s: columns Date/Tenor/Rate not found in header %v", path, header)
	}

	type curveAccum struct {
		tenors []float64
		rates  []float64
	}
	curves := make(map[string]*curveAccum)
	order := []string{}

	for i, row := range rows {
		tenor, err := strconv.ParseFloat(strings.TrimSpace(row[tenorCol]), 64)
		if err != nil {
			return 0, fmt.Errorf("curve file %s row %d: bad tenor %q", path, i+2, row[tenorCol])
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(row[rateCol]), 64)
		if err != nil {
			return 0, fmt.Errorf("curve file %s row %d: bad rate %q", path, i+2, row[rateCol])
		}

		curveDate := strings.TrimSpace(row[dateCol])
		acc, ok := curves[curveDate]
		if !ok {
			acc = &curveAccum{}
			curves[curveDate] = acc
			order = append(order, curveDate)
		}
		acc.tenors = append(acc.tenors, tenor)
		acc.rates = append(acc.rates, rate)
	}

	loaded := 0
	for _, curveDate := range order {
		acc := curves[curveDate]
		req := application.CurveRequest{
			CurveDate:            curveDate,
			Tenors:               acc.tenors,
			Rates:                acc.rates,
			CompoundingFrequency: compoundingFrequency,
		}
		if err := l.svc.RegisterCurve(ctx, req); err != nil {
			return loaded, fmt.Errorf("curve file %s date %s: %w", path, curveDate, err)
		}
		loaded++
	}

	logger.Info(ctx, "rate curves loaded from csv", "path", path, "curves", loaded)
	return loaded, nil
}

// LoadBondsCSV 加载债券条款 CSV
// 列名大小写不敏感；类型列缺失时按证券描述推断；单行失败跳过并继续
func (l *FileLoader) LoadBondsCSV(ctx context.Context, path string) (int, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	cols := map[string]int{
		"contract_id":       findColumn(header, "contractid", "contract_id", "id"),
		"security_desc":     findColumn(header, "securitydesc", "security_desc", "description"),
		"bond_type":         findColumn(header, "bondtype", "bond_type"),
		"issue_date":        findColumn(header, "issuedate", "issue_date"),
		"maturity_date":     findColumn(header, "maturitydate", "maturity_date"),
		"par_value":         findColumn(header, "parvalue", "par_value"),
		"coupon_rate":       findColumn(header, "couponrate", "coupon_rate", "coupon"),
		"spread":            findColumn(header, "spread"),
		"reference_rate":    findColumn(header, "referencerate", "reference_rate"),
		"payment_frequency": findColumn(header, "paymentfrequency", "payment_frequency"),
		"discount_rate":     findColumn(header, "discountrate", "discount_rate"),
	}
	if cols["issue_date"] < 0 || cols["maturity_date"] < 0 {
		return 0, fmt.Errorf("bond file %s: issue/maturity date columns not found in header %v", path, header)
	}

	loaded := 0
	for i, row := range rows {
		req := bondRequestFromRow(row, cols)
		if err := l.svc.RegisterBond(ctx, req); err != nil {
			logger.Warn(ctx, "skipping bond row",
				"path", path, "row", i+2, "contract_id", req.ContractID, "error", err)
			continue
		}
		loaded++
	}

	logger.Info(ctx, "bonds loaded from csv", "path", path, "loaded", loaded, "rows", len(rows))
	return loaded, nil
}

// LoadBondsJSON 加载债券条款 JSON（对象数组，字段与请求 DTO 一致）
func (l *FileLoader) LoadBondsJSON(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var reqs []application.BondRequest
	if err := json.Unmarshal(data, &reqs); err != nil {
		return 0, fmt.Errorf("bond file %s: %w", path, err)
	}

	loaded := 0
	for i, req := range reqs {
		applyBondDefaults(&req)
		if err := l.svc.RegisterBond(ctx, req); err != nil {
			logger.Warn(ctx, "skipping bond entry",
				"path", path, "index", i, "contract_id", req.ContractID, "error", err)
			continue
		}
		loaded++
	}

	logger.Info(ctx, "bonds loaded from json", "path", path, "loaded", loaded, "entries", len(reqs))
	return loaded, nil
}

// bondRequestFromRow 把 CSV 行装配为请求 DTO
func bondRequestFromRow(row []string, cols map[string]int) application.BondRequest {
	get := func(name string) string {
		idx := cols[name]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	getFloat := func(name string) float64 {
		v, err := strconv.ParseFloat(get(name), 64)
		if err != nil {
			return 0
		}
		return v
	}

	req := application.BondRequest{
		ContractID:    get("contract_id"),
		SecurityDesc:  get("security_desc"),
		BondType:      strings.ToLower(get("bond_type")),
		IssueDate:     get("issue_date"),
		MaturityDate:  get("maturity_date"),
		ParValue:      getFloat("par_value"),
		CouponRate:    getFloat("coupon_rate"),
		Spread:        getFloat("spread"),
		ReferenceRate: get("reference_rate"),
		DiscountRate:  getFloat("discount_rate"),
	}
	if freq, err := strconv.Atoi(get("payment_frequency")); err == nil {
		req.PaymentFrequency = freq
	}
	applyBondDefaults(&req)
	return req
}

// applyBondDefaults 补全缺省值：类型按描述推断，面值 1000，半年付息
func applyBondDefaults(req *application.BondRequest) {
	if req.BondType == "" {
		desc := strings.ToLower(req.SecurityDesc)
		switch {
		case strings.Contains(desc, "zero") || strings.HasPrefix(desc, "s 0"):
			req.BondType = "zero"
		case strings.Contains(desc, "float"):
			req.BondType = "floating"
		default:
			req.BondType = "fixed"
		}
	}
	if req.ParValue == 0 {
		req.ParValue = 1000
	}
	if req.PaymentFrequency == 0 && req.BondType != "zero" {
		req.PaymentFrequency = 2
	}
}

// readCSV 读取 CSV 文件，返回数据行与首行表头
func readCSV(path string) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, nil, fmt.Errorf("file %s is empty", path)
	}
	return records[1:], records[0], nil
}

// findColumn 在表头中按候选名查找列号
// 大小写与分隔符不敏感，先精确匹配，再退化为包含匹配
func findColumn(header []string, candidates ...string) int {
	normalize := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		s = strings.ReplaceAll(s, "_", "")
		return strings.ReplaceAll(s, " ", "")
	}
	for _, candidate := range candidates {
		want := normalize(candidate)
		for i, col := range header {
			if normalize(col) == want {
				return i
			}
		}
	}
	for _, candidate := range candidates {
		want := normalize(candidate)
		for i, col := range header {
			if strings.Contains(normalize(col), want) {
				return i
			}
		}
	}
	return -1
}
