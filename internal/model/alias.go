package model

import (
	"time"

	"gorm.io/datatypes"
)

// NameAlias 名字别名：Alias 为小写输入名，Canonical 为展示用的规范名
type NameAlias struct {
	Alias     string    `gorm:"column:alias;primaryKey;type:varchar(128)"`
	Canonical string    `gorm:"column:canonical;type:varchar(128);not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (NameAlias) TableName() string { return "name_aliases" }

// ImportBatch 批量导入记录，Payload 保存提交的原始行（方便排查问题）
type ImportBatch struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BatchUUID string         `gorm:"column:batch_uuid;type:varchar(64);uniqueIndex;not null" json:"batch_uuid"`
	Kind      string         `gorm:"column:kind;type:varchar(16);not null" json:"kind"`     // bathroom/dental
	Source    string         `gorm:"column:source;type:varchar(16);not null" json:"source"` // api/forms_csv
	Count     int            `gorm:"column:count;not null" json:"count"`
	Payload   datatypes.JSON `gorm:"column:payload" json:"payload,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ImportBatch) TableName() string { return "import_batches" }

const (
	ImportKindBathroom = "bathroom"
	ImportKindDental   = "dental"

	ImportSourceAPI      = "api"
	ImportSourceFormsCSV = "forms_csv"
)

// AllModels 按依赖顺序返回需要迁移的表
func AllModels() []interface{} {
	return []interface{}{
		&BathroomEvent{},
		&DentalEvent{},
		&NameAlias{},
		&ImportBatch{},
	}
}
