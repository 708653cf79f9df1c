package domain

// EventPublisher 事件发布者接口
type EventPublisher interface {
	// PublishBondAnalyzed 发布债券分析完成事件
	PublishBondAnalyzed(event BondAnalyzedEvent) error

	// PublishStressTestCompleted 发布压力测试完成事件
	PublishStressTestCompleted(event StressTestCompletedEvent) error

	// PublishVaRCalculated 发布在险价值计算完成事件
	PublishVaRCalculated(event VaRCalculatedEvent) error
}
