package repository

import (
	"context"
	"fmt"

	"LifeStats/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImportRepository 批量导入：事件与导入记录在同一事务内写入
type ImportRepository interface {
	SaveBathroomBatch(ctx context.Context, events []*model.BathroomEvent, batch *model.ImportBatch) error
	SaveDentalBatch(ctx context.Context, events []*model.DentalEvent, batch *model.ImportBatch) error
	ListBatches(ctx context.Context, limit int) ([]*model.ImportBatch, error)
}

type importRepository struct {
	db *gorm.DB
}

func NewImportRepository(db *gorm.DB) ImportRepository {
	return &importRepository{db: db}
}

func (r *importRepository) saveBatch(ctx context.Context, batch *model.ImportBatch, insert func(tx *gorm.DB) error) error {
	if batch.BatchUUID == "" {
		batch.BatchUUID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := insert(tx); err != nil {
			return fmt.Errorf("保存%s事件失败: %w", batch.Kind, err)
		}
		if err := tx.Create(batch).Error; err != nil {
			return fmt.Errorf("保存导入记录失败: %w", err)
		}
		return nil
	})
}

func (r *importRepository) SaveBathroomBatch(ctx context.Context, events []*model.BathroomEvent, batch *model.ImportBatch) error {
	return r.saveBatch(ctx, batch, func(tx *gorm.DB) error {
		if len(events) == 0 {
			return nil
		}
		return tx.CreateInBatches(events, 100).Error
	})
}

func (r *importRepository) SaveDentalBatch(ctx context.Context, events []*model.DentalEvent, batch *model.ImportBatch) error {
	return r.saveBatch(ctx, batch, func(tx *gorm.DB) error {
		if len(events) == 0 {
			return nil
		}
		return tx.CreateInBatches(events, 100).Error
	})
}

// ListBatches 最新的导入记录在前
func (r *importRepository) ListBatches(ctx context.Context, limit int) ([]*model.ImportBatch, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var list []*model.ImportBatch
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
