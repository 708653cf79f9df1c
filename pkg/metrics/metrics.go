// Package metrics 提供 Prometheus 指标集合，覆盖 HTTP 层与估值引擎
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 估值计数（按债券类型）
	ValuationsTotal *prometheus.CounterVec
	// 单次估值耗时
	ValuationDuration prometheus.Histogram
	// 收益率求解迭代次数
	SolverIterations prometheus.Histogram
	// 收益率求解回退到二分法的次数
	SolverFallbacksTotal prometheus.Counter
	// 压力测试场景执行计数
	StressScenariosTotal prometheus.Counter
	// VaR 模拟路径计数
	VaRSimulationsTotal prometheus.Counter
}

// New 创建并注册指标实例
func New(serviceName string) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixedincome",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fixedincome",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ValuationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixedincome",
			Subsystem: serviceName,
			Name:      "valuations_total",
			Help:      "Total bond valuations by bond type",
		}, []string{"bond_type"}),
		ValuationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fixedincome",
			Subsystem: serviceName,
			Name:      "valuation_duration_seconds",
			Help:      "Single bond valuation duration in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		SolverIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fixedincome",
			Subsystem: serviceName,
			Name:      "solver_iterations",
			Help:      "Iterations spent solving yield to maturity",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 100},
		}),
		SolverFallbacksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fixedincome",
			Subsystem: serviceName,
			Name:      "solver_fallbacks_total",
			Help:      "Newton-Raphson failures that fell back to bisection",
		}),
		StressScenariosTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fixedincome",
			Subsystem: serviceName,
			Name:      "stress_scenarios_total",
			Help:      "Stress scenarios executed",
		}),
		VaRSimulationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fixedincome",
			Subsystem: serviceName,
			Name:      "var_simulations_total",
			Help:      "Monte Carlo paths simulated for VaR/ES",
		}),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ValuationsTotal,
		m.ValuationDuration,
		m.SolverIterations,
		m.SolverFallbacksTotal,
		m.StressScenariosTotal,
		m.VaRSimulationsTotal,
	)
	return m
}
