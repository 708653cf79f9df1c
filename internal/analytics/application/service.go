// Package application 编排估值、风险、压力测试与 VaR 用例，并负责落库与事件发布
package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/fixedincome/internal/analytics/domain"
	"github.com/wyfcoding/fixedincome/pkg/logger"
	"github.com/wyfcoding/fixedincome/pkg/metrics"
)

var (
	// ErrNoCurve 请求未携带曲线且仓储中没有可用曲线
	ErrNoCurve = errors.New("no rate curve available")
	// ErrUnknownVaRMethod 不支持的 VaR 方法
	ErrUnknownVaRMethod = errors.New("unknown VaR method")
)

// Options 引擎参数，来自服务配置
type Options struct {
	SolverTolerance     float64
	SolverMaxIterations int
	VaRSimulations      int
	VaRSeed             int64
	PortfolioWorkers    int
}

// AnalyticsService 固定收益分析应用服务
// 仓储、缓存与事件发布者均可为 nil，此时对应能力退化为纯计算
type AnalyticsService struct {
	valuer *domain.Valuer
	risk   *domain.RiskCalculator
	stress *domain.StressTestEngine
	varEng *domain.VaREngine

	bonds      domain.BondRepository
	curves     domain.CurveRepository
	analyses   domain.AnalysisRepository
	stressRepo domain.StressRepository
	varRepo    domain.VaRRepository
	cache      domain.AnalysisReadRepository
	publisher  domain.EventPublisher
	metrics    *metrics.Metrics

	simulations int
	workers     int
}

// NewAnalyticsService 创建分析应用服务
func NewAnalyticsService(opts Options,
	bonds domain.BondRepository, curves domain.CurveRepository,
	analyses domain.AnalysisRepository, stressRepo domain.StressRepository,
	varRepo domain.VaRRepository, cache domain.AnalysisReadRepository,
	publisher domain.EventPublisher, m *metrics.Metrics) *AnalyticsService {

	if opts.VaRSimulations <= 0 {
		opts.VaRSimulations = 10000
	}
	if opts.PortfolioWorkers <= 0 {
		opts.PortfolioWorkers = 8
	}

	valuer := domain.NewValuer(opts.SolverTolerance, opts.SolverMaxIterations)
	return &AnalyticsService{
		valuer:      valuer,
		risk:        domain.NewRiskCalculator(valuer),
		stress:      domain.NewStressTestEngine(valuer),
		varEng:      domain.NewVaREngine(valuer, opts.VaRSimulations, opts.VaRSeed),
		bonds:       bonds,
		curves:      curves,
		analyses:    analyses,
		stressRepo:  stressRepo,
		varRepo:     varRepo,
		cache:       cache,
		publisher:   publisher,
		metrics:     m,
		simulations: opts.VaRSimulations,
		workers:     opts.PortfolioWorkers,
	}
}

// resolveCurve 优先使用请求内联的曲线，否则取仓储中最新一条
func (s *AnalyticsService) resolveCurve(ctx context.Context, req *CurveRequest) (*domain.RateCurve, error) {
	if req != nil {
		return toDomainCurve(*req)
	}
	if s.curves == nil {
		return nil, ErrNoCurve
	}
	curve, err := s.curves.GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCurve, err)
	}
	return curve, nil
}

// AnalyzeBond 单债全量分析：定价、反解收益率、久期/凸性/DV01
// 计算结果落库并发布 BondAnalyzedEvent；落库失败只告警，不阻断返回
func (s *AnalyticsService) AnalyzeBond(ctx context.Context, req AnalyzeBondRequest) (*AnalysisDTO, error) {
	bond, fwd, err := toDomainBond(req.Bond)
	if err != nil {
		return nil, err
	}
	valuationDate, err := domain.ParseDate(req.ValuationDate)
	if err != nil {
		return nil, fmt.Errorf("valuation_date: %w", err)
	}
	curve, err := s.resolveCurve(ctx, req.Curve)
	if err != nil {
		return nil, err
	}

	started := time.Now()

	price := 0.0
	if req.MarketPrice != nil {
		price = *req.MarketPrice
	} else {
		price, err = s.valuer.Price(bond, valuationDate, curve, fwd)
		if err != nil {
			return nil, err
		}
	}

	sol, err := s.valuer.SolveYield(bond, valuationDate, price, fwd)
	if err != nil {
		return nil, err
	}
	report := s.risk.InterestRateRisk(bond, valuationDate, sol.Yield, fwd)

	if s.metrics != nil {
		s.metrics.ValuationsTotal.WithLabelValues(string(bond.Type)).Inc()
		s.metrics.ValuationDuration.Observe(time.Since(started).Seconds())
		s.metrics.SolverIterations.Observe(float64(sol.Iterations))
		if sol.UsedFallback {
			s.metrics.SolverFallbacksTotal.Inc()
		}
	}

	result := &domain.AnalysisResult{
		ContractID:       bond.ContractID,
		SecurityDesc:     bond.SecurityDesc,
		BondType:         string(bond.Type),
		ValuationDate:    valuationDate,
		CleanPrice:       dec(price),
		YieldToMaturity:  dec(sol.Yield),
		Duration:         dec(report["duration"]),
		ModifiedDuration: dec(report["modified_duration"]),
		Convexity:        dec(report["convexity"]),
		DV01:             dec(report["dv01"]),
		SolverIterations: sol.Iterations,
		UsedFallback:     sol.UsedFallback,
	}

	if s.analyses != nil {
		if err := s.analyses.Save(ctx, result); err != nil {
			logger.Warn(ctx, "failed to persist analysis result", "contract_id", bond.ContractID, "error", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.SaveAnalysis(ctx, result); err != nil {
			logger.Warn(ctx, "failed to cache analysis result", "contract_id", bond.ContractID, "error", err)
		}
	}
	if s.publisher != nil {
		event := domain.BondAnalyzedEvent{
			ContractID:       bond.ContractID,
			SecurityDesc:     bond.SecurityDesc,
			BondType:         string(bond.Type),
			ValuationDate:    valuationDate.Format("2006-01-02"),
			CleanPrice:       price,
			YieldToMaturity:  sol.Yield,
			Duration:         report["duration"],
			ModifiedDuration: report["modified_duration"],
			Convexity:        report["convexity"],
			DV01:             report["dv01"],
			SolverIterations: sol.Iterations,
			UsedFallback:     sol.UsedFallback,
			OccurredOn:       time.Now(),
		}
		if err := s.publisher.PublishBondAnalyzed(event); err != nil {
			logger.Warn(ctx, "failed to publish bond analyzed event", "contract_id", bond.ContractID, "error", err)
		}
	}

	logger.Info(ctx, "bond analyzed",
		"contract_id", bond.ContractID,
		"bond_type", bond.Type,
		"clean_price", price,
		"ytm", sol.Yield,
		"used_fallback", sol.UsedFallback)

	return toAnalysisDTO(result), nil
}

// AnalyzePortfolio 组合并行分析
// 单券失败不终止整体，失败原因按合约号记录在结果的 errors 中
func (s *AnalyticsService) AnalyzePortfolio(ctx context.Context, req PortfolioAnalyzeRequest) (*PortfolioAnalysisDTO, error) {
	out := &PortfolioAnalysisDTO{
		Results: make(map[string]*AnalysisDTO, len(req.Bonds)),
		Errors:  make(map[string]string),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, bondReq := range req.Bonds {
		key := bondReq.ContractID
		if key == "" {
			key = fmt.Sprintf("bond_%d", i)
		}
		single := AnalyzeBondRequest{
			Bond:          bondReq,
			Curve:         req.Curve,
			ValuationDate: req.ValuationDate,
		}
		g.Go(func() error {
			dto, err := s.AnalyzeBond(gctx, single)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Errors[key] = err.Error()
				logger.Warn(gctx, "skipping bond in portfolio analysis", "contract_id", key, "error", err)
				return nil
			}
			out.Results[key] = dto
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(out.Errors) == 0 {
		out.Errors = nil
	}
	return out, nil
}

// CashFlowSchedule 现金流计划
// valuation_date 为空时返回全部现金流，否则只返回其后的剩余现金流
func (s *AnalyticsService) CashFlowSchedule(ctx context.Context, req AnalyzeBondRequest) ([]CashFlowDTO, error) {
	bond, fwd, err := toDomainBond(req.Bond)
	if err != nil {
		return nil, err
	}

	var flows []domain.CashFlow
	if req.ValuationDate == "" {
		flows = bond.CashFlows(fwd)
	} else {
		valuationDate, err := domain.ParseDate(req.ValuationDate)
		if err != nil {
			return nil, fmt.Errorf("valuation_date: %w", err)
		}
		flows = bond.RemainingCashFlows(valuationDate, fwd)
	}

	out := make([]CashFlowDTO, len(flows))
	for i, cf := range flows {
		out[i] = CashFlowDTO{
			PaymentDate: cf.PaymentDate.Format("2006-01-02"),
			Amount:      cf.Amount,
		}
	}
	return out, nil
}

// StressTest 压力测试，scenario 为空时运行全部注册场景
// 结果批量落库并发布 StressTestCompletedEvent
func (s *AnalyticsService) StressTest(ctx context.Context, req StressTestRequest) ([]StressResultDTO, error) {
	bond, fwd, err := toDomainBond(req.Bond)
	if err != nil {
		return nil, err
	}
	valuationDate, err := domain.ParseDate(req.ValuationDate)
	if err != nil {
		return nil, fmt.Errorf("valuation_date: %w", err)
	}
	curve, err := s.resolveCurve(ctx, req.Curve)
	if err != nil {
		return nil, err
	}

	var results map[string]*domain.StressResult
	if req.Scenario != "" {
		res, err := s.stress.RunScenario(bond, valuationDate, curve, req.Scenario, fwd)
		if err != nil {
			return nil, err
		}
		results = map[string]*domain.StressResult{req.Scenario: res}
	} else {
		results, err = s.stress.RunAllScenarios(bond, valuationDate, curve, fwd)
		if err != nil {
			return nil, err
		}
	}

	if s.metrics != nil {
		s.metrics.StressScenariosTotal.Add(float64(len(results)))
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]StressResultDTO, 0, len(results))
	records := make([]*domain.StressRecord, 0, len(results))
	worstName, worstChange := "", 0.0
	for _, name := range names {
		res := results[name]
		out = append(out, StressResultDTO{
			Scenario:         res.Scenario,
			BasePrice:        res.BasePrice,
			StressedPrice:    res.StressedPrice,
			PriceChange:      res.PriceChange,
			PercentageChange: res.PercentageChange,
		})
		records = append(records, &domain.StressRecord{
			ContractID:       bond.ContractID,
			ValuationDate:    valuationDate,
			Scenario:         res.Scenario,
			BasePrice:        dec(res.BasePrice),
			StressedPrice:    dec(res.StressedPrice),
			PriceChange:      dec(res.PriceChange),
			PercentageChange: dec(res.PercentageChange),
		})
		if res.PercentageChange < worstChange {
			worstName, worstChange = res.Scenario, res.PercentageChange
		}
	}

	if s.stressRepo != nil {
		if err := s.stressRepo.SaveBatch(ctx, records); err != nil {
			logger.Warn(ctx, "failed to persist stress results", "contract_id", bond.ContractID, "error", err)
		}
	}
	if s.publisher != nil {
		event := domain.StressTestCompletedEvent{
			ContractID:    bond.ContractID,
			ValuationDate: valuationDate.Format("2006-01-02"),
			ScenarioCount: len(results),
			WorstScenario: worstName,
			WorstChange:   worstChange,
			OccurredOn:    time.Now(),
		}
		if err := s.publisher.PublishStressTestCompleted(event); err != nil {
			logger.Warn(ctx, "failed to publish stress test event", "contract_id", bond.ContractID, "error", err)
		}
	}

	logger.Info(ctx, "stress test completed",
		"contract_id", bond.ContractID,
		"scenarios", len(results),
		"worst_scenario", worstName,
		"worst_change_pct", worstChange)

	return out, nil
}

// Scenarios 返回已注册的压力场景名
func (s *AnalyticsService) Scenarios() []string {
	return s.stress.Scenarios()
}

// ComputeVaR 在险价值，method 取 historical/parametric/montecarlo
// 蒙特卡洛方法同时返回同置信度下的预期损失
func (s *AnalyticsService) ComputeVaR(ctx context.Context, req VaRRequest) (*VaRResultDTO, error) {
	bond, fwd, err := toDomainBond(req.Bond)
	if err != nil {
		return nil, err
	}
	valuationDate, err := domain.ParseDate(req.ValuationDate)
	if err != nil {
		return nil, fmt.Errorf("valuation_date: %w", err)
	}
	curve, err := s.resolveCurve(ctx, req.Curve)
	if err != nil {
		return nil, err
	}

	confidence := req.Confidence
	if confidence <= 0 || confidence >= 1 {
		confidence = 0.95
	}
	horizon := req.HorizonDays
	if horizon <= 0 {
		horizon = 1
	}

	result := &VaRResultDTO{
		ContractID:  bond.ContractID,
		Method:      req.Method,
		Confidence:  confidence,
		HorizonDays: horizon,
	}

	switch req.Method {
	case "historical":
		if len(req.HistoricalYields) < 2 {
			return nil, fmt.Errorf("historical method needs at least two yield observations")
		}
		result.Value, err = s.varEng.HistoricalVaR(bond, valuationDate, curve,
			req.HistoricalYields, confidence, horizon, fwd)
	case "parametric":
		result.Value, err = s.varEng.ParametricVaR(bond, valuationDate, curve,
			req.YieldVolatility, confidence, horizon, fwd)
	case "montecarlo":
		result.Value, err = s.varEng.MonteCarloVaR(bond, valuationDate, curve,
			req.YieldMean, req.YieldVolatility, confidence, horizon, fwd)
		if err == nil {
			result.ExpectedShortfall, err = s.varEng.ExpectedShortfall(bond, valuationDate, curve,
				req.YieldVolatility, confidence, horizon, fwd)
		}
		if s.metrics != nil {
			s.metrics.VaRSimulationsTotal.Add(float64(s.simulations))
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVaRMethod, req.Method)
	}
	if err != nil {
		return nil, err
	}

	if s.varRepo != nil {
		record := &domain.VaRRecord{
			ContractID:    bond.ContractID,
			ValuationDate: valuationDate,
			Method:        req.Method,
			Confidence:    dec(confidence),
			HorizonDays:   horizon,
			Value:         dec(result.Value),
		}
		if err := s.varRepo.Save(ctx, record); err != nil {
			logger.Warn(ctx, "failed to persist VaR result", "contract_id", bond.ContractID, "error", err)
		}
	}
	if s.publisher != nil {
		event := domain.VaRCalculatedEvent{
			ContractID:    bond.ContractID,
			ValuationDate: valuationDate.Format("2006-01-02"),
			Method:        req.Method,
			Confidence:    confidence,
			HorizonDays:   horizon,
			Value:         result.Value,
			OccurredOn:    time.Now(),
		}
		if err := s.publisher.PublishVaRCalculated(event); err != nil {
			logger.Warn(ctx, "failed to publish VaR event", "contract_id", bond.ContractID, "error", err)
		}
	}

	logger.Info(ctx, "VaR calculated",
		"contract_id", bond.ContractID,
		"method", req.Method,
		"confidence", confidence,
		"horizon_days", horizon,
		"value_pct", result.Value)

	return result, nil
}

// KeyRateDurations 关键利率久期，未匹配到曲线节点的期限被省略
func (s *AnalyticsService) KeyRateDurations(ctx context.Context, req KeyRateRequest) (map[float64]float64, error) {
	bond, fwd, err := toDomainBond(req.Bond)
	if err != nil {
		return nil, err
	}
	valuationDate, err := domain.ParseDate(req.ValuationDate)
	if err != nil {
		return nil, fmt.Errorf("valuation_date: %w", err)
	}
	curve, err := s.resolveCurve(ctx, req.Curve)
	if err != nil {
		return nil, err
	}
	return s.risk.KeyRateDurations(bond, valuationDate, curve, req.KeyTenors, req.Shift, fwd)
}

// GetAnalysis 查询最近一次分析结果，优先读缓存，未命中回源数据库并回填
func (s *AnalyticsService) GetAnalysis(ctx context.Context, contractID string) (*AnalysisDTO, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetAnalysis(ctx, contractID); err == nil && cached != nil {
			return toAnalysisDTO(cached), nil
		}
	}
	if s.analyses == nil {
		return nil, fmt.Errorf("no analysis found for contract %q", contractID)
	}

	result, err := s.analyses.GetLatestByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SaveAnalysis(ctx, result); err != nil {
			logger.Warn(ctx, "failed to refill analysis cache", "contract_id", contractID, "error", err)
		}
	}
	return toAnalysisDTO(result), nil
}

// RegisterBond 登记债券合约条款，供行情消费者与文件加载器使用
func (s *AnalyticsService) RegisterBond(ctx context.Context, req BondRequest) error {
	bond, _, err := toDomainBond(req)
	if err != nil {
		return err
	}
	if s.bonds == nil {
		return nil
	}
	if err := s.bonds.Save(ctx, bond); err != nil {
		return err
	}
	logger.Info(ctx, "bond registered", "contract_id", bond.ContractID, "bond_type", bond.Type)
	return nil
}

// RegisterCurve 登记利率曲线
func (s *AnalyticsService) RegisterCurve(ctx context.Context, req CurveRequest) error {
	curve, err := toDomainCurve(req)
	if err != nil {
		return err
	}
	if s.curves == nil {
		return nil
	}
	if err := s.curves.Save(ctx, curve); err != nil {
		return err
	}
	logger.Info(ctx, "rate curve registered",
		"curve_date", curve.CurveDate.Format("2006-01-02"), "points", len(curve.Tenors))
	return nil
}

// ListBonds 列出已登记的债券
func (s *AnalyticsService) ListBonds(ctx context.Context) ([]*domain.Bond, error) {
	if s.bonds == nil {
		return nil, nil
	}
	return s.bonds.List(ctx)
}
