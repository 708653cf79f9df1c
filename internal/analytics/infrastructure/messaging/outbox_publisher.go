// Package messaging 基于 Outbox 模式的事件发布与投递
package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wyfcoding/fixedincome/internal/analytics/domain"
	"github.com/wyfcoding/fixedincome/pkg/logger"
	"github.com/wyfcoding/fixedincome/pkg/mq"
)

// 消息状态
const (
	statusPending = "pending"
	statusSent    = "sent"
)

// OutboxMessage 事件外发表
type OutboxMessage struct {
	ID        string    `gorm:"type:varchar(36);primary_key"`
	EventID   string    `gorm:"type:varchar(36);index"`
	EventType string    `gorm:"type:varchar(100);index"`
	Payload   string    `gorm:"type:text"`
	Status    string    `gorm:"type:varchar(20);index;default:'pending'"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName 指定表名
func (OutboxMessage) TableName() string {
	return "analytics_outbox_messages"
}

// OutboxEventPublisher 实现 EventPublisher 接口，事件先落库再由中继投递
type OutboxEventPublisher struct {
	db *gorm.DB
}

// NewOutboxEventPublisher 创建 OutboxEventPublisher 实例
func NewOutboxEventPublisher(db *gorm.DB) *OutboxEventPublisher {
	return &OutboxEventPublisher{db: db}
}

// PublishBondAnalyzed 发布债券分析完成事件
func (p *OutboxEventPublisher) PublishBondAnalyzed(event domain.BondAnalyzedEvent) error {
	return p.publishEvent("BondAnalyzedEvent", event)
}

// PublishStressTestCompleted 发布压力测试完成事件
func (p *OutboxEventPublisher) PublishStressTestCompleted(event domain.StressTestCompletedEvent) error {
	return p.publishEvent("StressTestCompletedEvent", event)
}

// PublishVaRCalculated 发布在险价值计算完成事件
func (p *OutboxEventPublisher) PublishVaRCalculated(event domain.VaRCalculatedEvent) error {
	return p.publishEvent("VaRCalculatedEvent", event)
}

func (p *OutboxEventPublisher) publishEvent(eventType string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	message := OutboxMessage{
		ID:        uuid.NewString(),
		EventID:   uuid.NewString(),
		EventType: eventType,
		Payload:   string(data),
		Status:    statusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	return p.db.Create(&message).Error
}

// OutboxRelay 周期性扫描外发表，把待投递的事件发送到 Kafka
type OutboxRelay struct {
	db        *gorm.DB
	producer  *mq.Producer
	topic     string
	batchSize int
	interval  time.Duration
}

// NewOutboxRelay 创建外发中继
func NewOutboxRelay(db *gorm.DB, producer *mq.Producer, topic string) *OutboxRelay {
	return &OutboxRelay{
		db:        db,
		producer:  producer,
		topic:     topic,
		batchSize: 100,
		interval:  time.Second,
	}
}

// Run 循环投递直到 context 取消
func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.relayBatch(ctx); err != nil {
				logger.Error(ctx, "outbox relay batch failed", "error", err)
			}
		}
	}
}

// relayBatch 投递一批待处理消息
// 发送失败的消息保持 pending，由下一轮重试
func (r *OutboxRelay) relayBatch(ctx context.Context) error {
	var messages []OutboxMessage
	err := r.db.WithContext(ctx).
		Where("status = ?", statusPending).
		Order("created_at").
		Limit(r.batchSize).
		Find(&messages).Error
	if err != nil {
		return err
	}

	for _, message := range messages {
		if err := r.producer.SendRaw(ctx, r.topic, message.EventType, []byte(message.Payload)); err != nil {
			logger.Warn(ctx, "failed to relay outbox message",
				"event_id", message.EventID, "event_type", message.EventType, "error", err)
			continue
		}
		if err := r.db.WithContext(ctx).Model(&message).Update("status", statusSent).Error; err != nil {
			return err
		}
	}
	return nil
}

// CleanupSentMessages 清理已投递的历史消息
func (r *OutboxRelay) CleanupSentMessages(ctx context.Context, before time.Time) error {
	return r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", statusSent, before).
		Delete(&OutboxMessage{}).Error
}
