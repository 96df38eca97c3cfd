package repository

import (
	"context"

	"LifeStats/internal/model"

	"gorm.io/gorm"
)

// DentalRepository dental_events 仓储
type DentalRepository interface {
	Create(ctx context.Context, ev *model.DentalEvent) error
	Update(ctx context.Context, ev *model.DentalEvent) error
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (*model.DentalEvent, error)
	List(ctx context.Context) ([]*model.DentalEvent, error)
}

type dentalRepository struct {
	db *gorm.DB
}

func NewDentalRepository(db *gorm.DB) DentalRepository {
	return &dentalRepository{db: db}
}

func (r *dentalRepository) Create(ctx context.Context, ev *model.DentalEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *dentalRepository) Update(ctx context.Context, ev *model.DentalEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.DentalEvent
		if err := tx.Where("id = ?", ev.ID).First(&existing).Error; err != nil {
			return err
		}
		ev.CreatedAt = existing.CreatedAt
		return tx.Save(ev).Error
	})
}

func (r *dentalRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&model.DentalEvent{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *dentalRepository) GetByID(ctx context.Context, id uint64) (*model.DentalEvent, error) {
	var ev model.DentalEvent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

// List 按解析后的时间倒序
func (r *dentalRepository) List(ctx context.Context) ([]*model.DentalEvent, error) {
	var list []*model.DentalEvent
	if err := r.db.WithContext(ctx).Order(newestFirst).Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
