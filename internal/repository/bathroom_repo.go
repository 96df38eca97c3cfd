package repository

import (
	"context"

	"LifeStats/internal/model"

	"gorm.io/gorm"
)

// BathroomFilter 列表筛选条件
type BathroomFilter struct {
	IncludeSensitive bool // 是否包含敏感类别（cum）
}

// BathroomRepository bathroom_events 仓储。
// Update/Delete/GetByID 在记录不存在时返回 gorm.ErrRecordNotFound
type BathroomRepository interface {
	Create(ctx context.Context, ev *model.BathroomEvent) error
	Update(ctx context.Context, ev *model.BathroomEvent) error
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (*model.BathroomEvent, error)
	List(ctx context.Context, filter BathroomFilter) ([]*model.BathroomEvent, error)
}

type bathroomRepository struct {
	db *gorm.DB
}

// NewBathroomRepository 创建 BathroomRepository 实例
func NewBathroomRepository(db *gorm.DB) BathroomRepository {
	return &bathroomRepository{db: db}
}

// newestFirst 按 occurred_at 倒序，未回填的旧数据排在最后
const newestFirst = "CASE WHEN occurred_at IS NULL THEN 1 ELSE 0 END, occurred_at DESC"

// visibleEvents 默认排除敏感类别
func visibleEvents(db *gorm.DB, includeSensitive bool) *gorm.DB {
	if !includeSensitive {
		return db.Where("event_type <> ?", model.EventCum)
	}
	return db
}

func (r *bathroomRepository) Create(ctx context.Context, ev *model.BathroomEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

// Update 整体替换可变字段，id 与 created_at 保持不变
func (r *bathroomRepository) Update(ctx context.Context, ev *model.BathroomEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.BathroomEvent
		if err := tx.Where("id = ?", ev.ID).First(&existing).Error; err != nil {
			return err
		}
		ev.CreatedAt = existing.CreatedAt
		return tx.Save(ev).Error
	})
}

func (r *bathroomRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&model.BathroomEvent{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bathroomRepository) GetByID(ctx context.Context, id uint64) (*model.BathroomEvent, error) {
	var ev model.BathroomEvent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

// List 按解析后的时间倒序返回事件，同一时间按 id 倒序
func (r *bathroomRepository) List(ctx context.Context, filter BathroomFilter) ([]*model.BathroomEvent, error) {
	var list []*model.BathroomEvent
	db := visibleEvents(r.db.WithContext(ctx), filter.IncludeSensitive)
	if err := db.Order(newestFirst).Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
