// Package redis 分析结果读缓存
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wyfcoding/fixedincome/internal/analytics/domain"
)

type analysisReadRepository struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewAnalysisReadRepository 创建分析结果读缓存
func NewAnalysisReadRepository(client redis.UniversalClient) domain.AnalysisReadRepository {
	return &analysisReadRepository{
		client: client,
		prefix: "analytics:",
		ttl:    1 * time.Hour,
	}
}

func (r *analysisReadRepository) SaveAnalysis(ctx context.Context, result *domain.AnalysisResult) error {
	if result == nil {
		return nil
	}
	key := fmt.Sprintf("%sanalysis:%s", r.prefix, result.ContractID)
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *analysisReadRepository) GetAnalysis(ctx context.Context, contractID string) (*domain.AnalysisResult, error) {
	key := fmt.Sprintf("%sanalysis:%s", r.prefix, contractID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result domain.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *analysisReadRepository) DeleteAnalysis(ctx context.Context, contractID string) error {
	key := fmt.Sprintf("%sanalysis:%s", r.prefix, contractID)
	return r.client.Del(ctx, key).Err()
}
