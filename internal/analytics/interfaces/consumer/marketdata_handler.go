// Package consumer 消费行情主题，把债券条款与利率曲线投影进本地仓储
package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/wyfcoding/fixedincome/internal/analytics/application"
)

// 行情消息类型
const (
	messageTypeBond  = "bond"
	messageTypeCurve = "curve"
)

// envelope 行情消息信封，payload 按 type 解码
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MarketDataHandler 行情投影处理器
type MarketDataHandler struct {
	svc    *application.AnalyticsService
	logger *slog.Logger
}

// NewMarketDataHandler 创建行情投影处理器
func NewMarketDataHandler(svc *application.AnalyticsService, logger *slog.Logger) *MarketDataHandler {
	return &MarketDataHandler{svc: svc, logger: logger}
}

// Handle 处理单条行情消息
// 未知类型只告警不报错，避免毒丸消息卡住消费组
func (h *MarketDataHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var env envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		h.logger.ErrorContext(ctx, "failed to unmarshal market data envelope",
			"topic", msg.Topic, "offset", msg.Offset, "error", err)
		return err
	}

	switch env.Type {
	case messageTypeBond:
		var req application.BondRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal bond payload", "offset", msg.Offset, "error", err)
			return err
		}
		return h.svc.RegisterBond(ctx, req)
	case messageTypeCurve:
		var req application.CurveRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal curve payload", "offset", msg.Offset, "error", err)
			return err
		}
		return h.svc.RegisterCurve(ctx, req)
	default:
		h.logger.WarnContext(ctx, "unknown market data message type", "type", env.Type, "offset", msg.Offset)
		return nil
	}
}
