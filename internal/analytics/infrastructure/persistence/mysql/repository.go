// Package mysql 基于 GORM 的仓储实现
package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/wyfcoding/fixedincome/internal/analytics/domain"
)

type bondRepository struct {
	db *gorm.DB
}

// NewBondRepository 创建债券仓储
func NewBondRepository(db *gorm.DB) domain.BondRepository {
	return &bondRepository{db: db}
}

// Save 按合约号幂等保存，已存在时整行覆盖
func (r *bondRepository) Save(ctx context.Context, bond *domain.Bond) error {
	model := toBondModel(bond)
	db := r.db.WithContext(ctx)

	var existing BondModel
	err := db.Where("contract_id = ?", bond.ContractID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(model).Error
	}
	if err != nil {
		return err
	}

	model.ID = existing.ID
	model.CreatedAt = existing.CreatedAt
	return db.Save(model).Error
}

func (r *bondRepository) Get(ctx context.Context, contractID string) (*domain.Bond, error) {
	var model BondModel
	if err := r.db.WithContext(ctx).Where("contract_id = ?", contractID).First(&model).Error; err != nil {
		return nil, err
	}
	return toDomainBond(&model)
}

func (r *bondRepository) List(ctx context.Context) ([]*domain.Bond, error) {
	var models []BondModel
	if err := r.db.WithContext(ctx).Order("contract_id").Find(&models).Error; err != nil {
		return nil, err
	}
	bonds := make([]*domain.Bond, 0, len(models))
	for i := range models {
		bond, err := toDomainBond(&models[i])
		if err != nil {
			return nil, err
		}
		bonds = append(bonds, bond)
	}
	return bonds, nil
}

type curveRepository struct {
	db *gorm.DB
}

// NewCurveRepository 创建利率曲线仓储
func NewCurveRepository(db *gorm.DB) domain.CurveRepository {
	return &curveRepository{db: db}
}

// Save 按曲线日期幂等保存
func (r *curveRepository) Save(ctx context.Context, curve *domain.RateCurve) error {
	model, err := toCurveModel(curve)
	if err != nil {
		return err
	}
	db := r.db.WithContext(ctx)

	var existing CurveModel
	err = db.Where("curve_date = ?", curve.CurveDate).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(model).Error
	}
	if err != nil {
		return err
	}

	model.ID = existing.ID
	model.CreatedAt = existing.CreatedAt
	return db.Save(model).Error
}

func (r *curveRepository) GetByDate(ctx context.Context, curveDate time.Time) (*domain.RateCurve, error) {
	var model CurveModel
	if err := r.db.WithContext(ctx).Where("curve_date = ?", curveDate).First(&model).Error; err != nil {
		return nil, err
	}
	return toDomainCurve(&model)
}

func (r *curveRepository) GetLatest(ctx context.Context) (*domain.RateCurve, error) {
	var model CurveModel
	if err := r.db.WithContext(ctx).Order("curve_date DESC").First(&model).Error; err != nil {
		return nil, err
	}
	return toDomainCurve(&model)
}

type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository 创建分析结果仓储
func NewAnalysisRepository(db *gorm.DB) domain.AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Save(ctx context.Context, result *domain.AnalysisResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *analysisRepository) GetLatestByContract(ctx context.Context, contractID string) (*domain.AnalysisResult, error) {
	var result domain.AnalysisResult
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at DESC").
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *analysisRepository) ListByContract(ctx context.Context, contractID string, limit int) ([]*domain.AnalysisResult, error) {
	if limit <= 0 {
		limit = 50
	}
	var results []*domain.AnalysisResult
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error
	return results, err
}

type stressRepository struct {
	db *gorm.DB
}

// NewStressRepository 创建压力测试结果仓储
func NewStressRepository(db *gorm.DB) domain.StressRepository {
	return &stressRepository{db: db}
}

func (r *stressRepository) SaveBatch(ctx context.Context, records []*domain.StressRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(records).Error
}

func (r *stressRepository) ListByContract(ctx context.Context, contractID string, limit int) ([]*domain.StressRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []*domain.StressRecord
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

type varRepository struct {
	db *gorm.DB
}

// NewVaRRepository 创建在险价值结果仓储
func NewVaRRepository(db *gorm.DB) domain.VaRRepository {
	return &varRepository{db: db}
}

func (r *varRepository) Save(ctx context.Context, record *domain.VaRRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *varRepository) ListByContract(ctx context.Context, contractID string, limit int) ([]*domain.VaRRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []*domain.VaRRecord
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
