package domain

import (
	"time"
)

// BondAnalyzedEvent 债券分析完成事件
type BondAnalyzedEvent struct {
	ContractID       string
	SecurityDesc     string
	BondType         string
	ValuationDate    string
	CleanPrice       float64
	YieldToMaturity  float64
	Duration         float64
	ModifiedDuration float64
	Convexity        float64
	DV01             float64
	SolverIterations int
	UsedFallback     bool
	OccurredOn       time.Time
}

// StressTestCompletedEvent 压力测试完成事件
type StressTestCompletedEvent struct {
	ContractID    string
	ValuationDate string
	ScenarioCount int
	WorstScenario string
	WorstChange   float64
	OccurredOn    time.Time
}

// VaRCalculatedEvent 在险价值计算完成事件
type VaRCalculatedEvent struct {
	ContractID    string
	ValuationDate string
	Method        string
	Confidence    float64
	HorizonDays   int
	Value         float64
	OccurredOn    time.Time
}
