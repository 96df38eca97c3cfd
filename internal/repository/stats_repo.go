package repository

import (
	"context"

	"LifeStats/internal/model"

	"gorm.io/gorm"
)

// dateExpr 取用户时间字符串的日期部分（YYYY-MM-DD），sqlite 与 postgres 通用
const dateExpr = "SUBSTR(event_time, 1, 10)"

// TypeCount 按类型计数
type TypeCount struct {
	EventType model.EventType `gorm:"column:event_type" json:"event_type"`
	Count     int64           `gorm:"column:count" json:"count"`
}

// PersonCount 按人计数
type PersonCount struct {
	Person string `gorm:"column:person" json:"person"`
	Count  int64  `gorm:"column:count" json:"count"`
}

// LocationCount 按 (类型, 地点) 计数
type LocationCount struct {
	EventType model.EventType `gorm:"column:event_type" json:"event_type"`
	Location  string          `gorm:"column:location" json:"location"`
	Count     int64           `gorm:"column:count" json:"count"`
}

// TimelineRow 按 (类型, 日期) 计数
type TimelineRow struct {
	EventType model.EventType `gorm:"column:event_type" json:"event_type"`
	Date      string          `gorm:"column:date" json:"date"`
	Count     int64           `gorm:"column:count" json:"count"`
}

// DentalDailyRow 每日刷牙/牙线次数
type DentalDailyRow struct {
	Date       string `gorm:"column:date" json:"date"`
	BrushCount int64  `gorm:"column:brush_count" json:"brush_count"`
	FlossCount int64  `gorm:"column:floss_count" json:"floss_count"`
}

// StatsRepository 只读聚合查询，每次调用都完整重算
type StatsRepository interface {
	CountByType(ctx context.Context, includeSensitive bool) ([]TypeCount, error)
	// CountByPerson 统计所有带人名的事件，不区分是否敏感
	CountByPerson(ctx context.Context) ([]PersonCount, error)
	CountByLocationAndType(ctx context.Context, includeSensitive bool) ([]LocationCount, error)
	Timeline(ctx context.Context, includeSensitive bool) ([]TimelineRow, error)
	DentalDaily(ctx context.Context) ([]DentalDailyRow, error)
	RecentBathroom(ctx context.Context, includeSensitive bool, limit int) ([]*model.BathroomEvent, error)
	RecentDental(ctx context.Context, limit int) ([]*model.DentalEvent, error)
	CountBathroom(ctx context.Context, includeSensitive bool) (int64, error)
	CountDental(ctx context.Context) (int64, error)
	// TopNames 统计 cum 事件中两个人名位（规范名）的出现次数
	TopNames(ctx context.Context, limit int) ([]PersonCount, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) bathroom(ctx context.Context, includeSensitive bool) *gorm.DB {
	return visibleEvents(r.db.WithContext(ctx).Model(&model.BathroomEvent{}), includeSensitive)
}

func (r *statsRepository) CountByType(ctx context.Context, includeSensitive bool) ([]TypeCount, error) {
	var rows []TypeCount
	err := r.bathroom(ctx, includeSensitive).
		Select("event_type, COUNT(*) AS count").
		Group("event_type").
		Order("event_type ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepository) CountByPerson(ctx context.Context) ([]PersonCount, error) {
	const personExpr = "COALESCE(normalized_who, person1)"
	var rows []PersonCount
	err := r.bathroom(ctx, true).
		Select(personExpr+" AS person, COUNT(*) AS count").
		Where(personExpr + " IS NOT NULL AND " + personExpr + " <> ''").
		Group(personExpr).
		Order("count DESC").Order("person ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepository) CountByLocationAndType(ctx context.Context, includeSensitive bool) ([]LocationCount, error) {
	var rows []LocationCount
	err := r.bathroom(ctx, includeSensitive).
		Select("event_type, location, COUNT(*) AS count").
		Where("location IS NOT NULL AND location <> ''").
		Group("event_type, location").
		Order("event_type ASC").Order("location ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepository) Timeline(ctx context.Context, includeSensitive bool) ([]TimelineRow, error) {
	var rows []TimelineRow
	err := r.bathroom(ctx, includeSensitive).
		Select("event_type, " + dateExpr + " AS date, COUNT(*) AS count").
		Group("event_type, " + dateExpr).
		Order("date ASC").Order("event_type ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepository) DentalDaily(ctx context.Context) ([]DentalDailyRow, error) {
	var rows []DentalDailyRow
	err := r.db.WithContext(ctx).Model(&model.DentalEvent{}).
		Select(dateExpr + " AS date, COUNT(*) AS brush_count, " +
			"SUM(CASE WHEN used_flosser = 1 THEN 1 ELSE 0 END) AS floss_count").
		Group(dateExpr).
		Order("date ASC").
		Scan(&rows).Error
	return rows, err
}

// RecentBathroom 最近创建的事件（按 id 倒序）
func (r *statsRepository) RecentBathroom(ctx context.Context, includeSensitive bool, limit int) ([]*model.BathroomEvent, error) {
	var list []*model.BathroomEvent
	err := visibleEvents(r.db.WithContext(ctx), includeSensitive).
		Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *statsRepository) RecentDental(ctx context.Context, limit int) ([]*model.DentalEvent, error) {
	var list []*model.DentalEvent
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *statsRepository) CountBathroom(ctx context.Context, includeSensitive bool) (int64, error) {
	var total int64
	err := r.bathroom(ctx, includeSensitive).Count(&total).Error
	return total, err
}

func (r *statsRepository) CountDental(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.DentalEvent{}).Count(&total).Error
	return total, err
}

func (r *statsRepository) TopNames(ctx context.Context, limit int) ([]PersonCount, error) {
	var rows []PersonCount
	err := r.db.WithContext(ctx).Raw(`
        SELECT person, COUNT(*) AS count FROM (
            SELECT normalized_who AS person FROM bathroom_events
            WHERE event_type = ? AND normalized_who IS NOT NULL AND normalized_who <> ''
            UNION ALL
            SELECT normalized_person2 AS person FROM bathroom_events
            WHERE event_type = ? AND normalized_person2 IS NOT NULL AND normalized_person2 <> ''
        ) AS names
        GROUP BY person
        ORDER BY count DESC, person ASC
        LIMIT ?
    `, model.EventCum, model.EventCum, limit).Scan(&rows).Error
	return rows, err
}
