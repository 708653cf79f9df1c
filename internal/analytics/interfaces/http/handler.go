// Package http 暴露固定收益分析服务的 REST 接口
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/fixedincome/internal/analytics/application"
	"github.com/wyfcoding/fixedincome/pkg/logger"
	"github.com/wyfcoding/fixedincome/pkg/response"
)

// AnalyticsHandler 负责处理与债券分析相关的 HTTP 请求
type AnalyticsHandler struct {
	svc *application.AnalyticsService
}

// NewAnalyticsHandler 创建 HTTP 处理器
func NewAnalyticsHandler(svc *application.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/analytics")
	{
		api.POST("/bonds", h.RegisterBond)
		api.GET("/bonds", h.ListBonds)
		api.POST("/curves", h.RegisterCurve)

		api.POST("/analyze", h.AnalyzeBond)
		api.POST("/portfolio/analyze", h.AnalyzePortfolio)
		api.POST("/cashflows", h.CashFlowSchedule)

		api.POST("/stress", h.StressTest)
		api.GET("/stress/scenarios", h.ListScenarios)

		api.POST("/var", h.ComputeVaR)
		api.POST("/keyrates", h.KeyRateDurations)

		api.GET("/analysis/:contract_id", h.GetAnalysis)
	}
}

// AnalyzeBond 单债分析
func (h *AnalyticsHandler) AnalyzeBond(c *gin.Context) {
	var req application.AnalyzeBondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	dto, err := h.svc.AnalyzeBond(c.Request.Context(), req)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to analyze bond", "contract_id", req.Bond.ContractID, "error", err)
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, err.Error(), "")
		return
	}
	response.Success(c, dto)
}

// AnalyzePortfolio 组合分析
func (h *AnalyticsHandler) AnalyzePortfolio(c *gin.Context) {
	var req application.PortfolioAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	if len(req.Bonds) == 0 {
		response.ErrorWithStatus(c, http.StatusBadRequest, "bonds is required", "")
		return
	}

	dto, err := h.svc.AnalyzePortfolio(c.Request.Context(), req)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to analyze portfolio", "bonds", len(req.Bonds), "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, dto)
}

// CashFlowSchedule 现金流计划
func (h *AnalyticsHandler) CashFlowSchedule(c *gin.Context) {
	var req application.AnalyzeBondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	flows, err := h.svc.CashFlowSchedule(c.Request.Context(), req)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to build cash flow schedule", "contract_id", req.Bond.ContractID, "error", err)
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, err.Error(), "")
		return
	}
	response.Success(c, flows)
}

// StressTest 压力测试
func (h *AnalyticsHandler) StressTest(c *gin.Context) {
	var req application.StressTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	results, err := h.svc.StressTest(c.Request.Context(), req)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to run stress test", "contract_id", req.Bond.ContractID, "error", err)
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, err.Error(), "")
		return
	}
	response.Success(c, results)
}

// ListScenarios 列出注册场景
func (h *AnalyticsHandler) ListScenarios(c *gin.Context) {
	response.Success(c, h.svc.Scenarios())
}

// ComputeVaR 在险价值
func (h *AnalyticsHandler) ComputeVaR(c *gin.Context) {
	var req application.VaRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.svc.ComputeVaR(c.Request.Context(), req)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to compute VaR", "contract_id", req.Bond.ContractID, "method", req.Method, "error", err)
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, err.Error(), "")
		return
	}
	response.Success(c, result)
}

// KeyRateDurations 关键利率久期
func (h *AnalyticsHandler) KeyRateDurations(c *gin.Context) {
	var req application.KeyRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	krd, err := h.svc.KeyRateDurations(c.Request.Context(), req)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to compute key rate durations", "contract_id", req.Bond.ContractID, "error", err)
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, err.Error(), "")
		return
	}
	response.Success(c, krd)
}

// GetAnalysis 查询最近一次分析结果
func (h *AnalyticsHandler) GetAnalysis(c *gin.Context) {
	contractID := c.Param("contract_id")
	if contractID == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "contract_id is required", "")
		return
	}

	dto, err := h.svc.GetAnalysis(c.Request.Context(), contractID)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to get analysis", "contract_id", contractID, "error", err)
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
		return
	}
	response.Success(c, dto)
}

// RegisterBond 登记债券
func (h *AnalyticsHandler) RegisterBond(c *gin.Context) {
	var req application.BondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	if err := h.svc.RegisterBond(c.Request.Context(), req); err != nil {
		logger.Error(c.Request.Context(), "failed to register bond", "contract_id", req.ContractID, "error", err)
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"contract_id": req.ContractID})
}

// ListBonds 列出已登记债券
func (h *AnalyticsHandler) ListBonds(c *gin.Context) {
	bonds, err := h.svc.ListBonds(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "failed to list bonds", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, bonds)
}

// RegisterCurve 登记利率曲线
func (h *AnalyticsHandler) RegisterCurve(c *gin.Context) {
	var req application.CurveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	if err := h.svc.RegisterCurve(c.Request.Context(), req); err != nil {
		logger.Error(c.Request.Context(), "failed to register curve", "curve_date", req.CurveDate, "error", err)
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"curve_date": req.CurveDate})
}
