package domain

import (
	"context"
	"time"
)

// BondRepository 债券仓储接口
type BondRepository interface {
	Save(ctx context.Context, bond *Bond) error
	Get(ctx context.Context, contractID string) (*Bond, error)
	List(ctx context.Context) ([]*Bond, error)
}

// CurveRepository 利率曲线仓储接口
type CurveRepository interface {
	Save(ctx context.Context, curve *RateCurve) error
	GetByDate(ctx context.Context, curveDate time.Time) (*RateCurve, error)
	GetLatest(ctx context.Context) (*RateCurve, error)
}

// AnalysisRepository 分析结果仓储接口
type AnalysisRepository interface {
	Save(ctx context.Context, result *AnalysisResult) error
	GetLatestByContract(ctx context.Context, contractID string) (*AnalysisResult, error)
	ListByContract(ctx context.Context, contractID string, limit int) ([]*AnalysisResult, error)
}

// AnalysisReadRepository 分析结果读缓存接口，键为合约号
type AnalysisReadRepository interface {
	SaveAnalysis(ctx context.Context, result *AnalysisResult) error
	GetAnalysis(ctx context.Context, contractID string) (*AnalysisResult, error)
	DeleteAnalysis(ctx context.Context, contractID string) error
}

// StressRepository 压力测试结果仓储接口
type StressRepository interface {
	SaveBatch(ctx context.Context, records []*StressRecord) error
	ListByContract(ctx context.Context, contractID string, limit int) ([]*StressRecord, error)
}

// VaRRepository 在险价值结果仓储接口
type VaRRepository interface {
	Save(ctx context.Context, record *VaRRecord) error
	ListByContract(ctx context.Context, contractID string, limit int) ([]*VaRRecord, error)
}
