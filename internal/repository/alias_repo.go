package repository

import (
	"context"
	"sort"

	"LifeStats/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AliasRepository name_aliases 仓储
type AliasRepository interface {
	// Load 返回全部别名（alias -> canonical）
	Load(ctx context.Context) (map[string]string, error)
	// Merge 写入或覆盖给定别名，不删除其他记录
	Merge(ctx context.Context, mapping map[string]string) error
	// ReplaceAll 清空后整体写入
	ReplaceAll(ctx context.Context, mapping map[string]string) error
}

type aliasRepository struct {
	db *gorm.DB
}

func NewAliasRepository(db *gorm.DB) AliasRepository {
	return &aliasRepository{db: db}
}

func toAliasRows(mapping map[string]string) []model.NameAlias {
	rows := make([]model.NameAlias, 0, len(mapping))
	for k, v := range mapping {
		rows = append(rows, model.NameAlias{Alias: k, Canonical: v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Alias < rows[j].Alias })
	return rows
}

func upsertAliases(tx *gorm.DB, mapping map[string]string) error {
	rows := toAliasRows(mapping)
	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "alias"}},
		DoUpdates: clause.AssignmentColumns([]string{"canonical", "updated_at"}),
	}).CreateInBatches(rows, 200).Error
}

func (r *aliasRepository) Load(ctx context.Context) (map[string]string, error) {
	var rows []model.NameAlias
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Alias] = row.Canonical
	}
	return out, nil
}

func (r *aliasRepository) Merge(ctx context.Context, mapping map[string]string) error {
	return upsertAliases(r.db.WithContext(ctx), mapping)
}

func (r *aliasRepository) ReplaceAll(ctx context.Context, mapping map[string]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.NameAlias{}).Error; err != nil {
			return err
		}
		return upsertAliases(tx, mapping)
	})
}
