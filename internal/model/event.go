package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// EventType 排泄/亲密事件类型
type EventType string

const (
	EventPee EventType = "pee"
	EventPoo EventType = "poo"
	EventCum EventType = "cum" // 敏感类别：默认列表与统计中隐藏
)

// Valid 是否为已知事件类型
func (t EventType) Valid() bool {
	switch t {
	case EventPee, EventPoo, EventCum:
		return true
	}
	return false
}

// Sensitive 是否为默认隐藏的类别
func (t EventType) Sensitive() bool { return t == EventCum }

// TimestampLayouts 可接受的 ISO-8601 写法，均以 YYYY-MM-DD 开头
var TimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseEventTime 按 TimestampLayouts 解析用户时间字符串，结果统一为 UTC
func ParseEventTime(ts string) (time.Time, bool) {
	ts = strings.TrimSpace(ts)
	for _, layout := range TimestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// occurredAt 排序列的值；无法解析时为 nil
func occurredAt(ts string) *time.Time {
	t, ok := ParseEventTime(ts)
	if !ok {
		return nil
	}
	return &t
}

// BathroomEvent 对应 bathroom_events 表。
// Timestamp 为用户提交的时间字符串（非服务器时间），原样保存；日期统计取其前 10 位。
// OccurredAt 为 Timestamp 解析后的 UTC 时间，只用于列表排序。
// NormalizedWho/NormalizedPerson2 在写入时经别名表解析，原始名字保留在 Person1/Person2。
type BathroomEvent struct {
	ID                uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EventType         EventType  `gorm:"column:event_type;type:varchar(16);not null;index" json:"event_type"`
	Timestamp         string     `gorm:"column:event_time;type:varchar(40);not null;index" json:"timestamp"`
	OccurredAt        *time.Time `gorm:"column:occurred_at;index" json:"-"`
	Location          *string    `gorm:"column:location;type:varchar(64)" json:"location"`
	InVR              *int       `gorm:"column:in_vr" json:"in_vr"`
	Person1           *string    `gorm:"column:person1;type:varchar(128)" json:"person1"`
	Person2           *string    `gorm:"column:person2;type:varchar(128)" json:"person2"`
	NormalizedWho     *string    `gorm:"column:normalized_who;type:varchar(128);index" json:"normalized_who"`
	NormalizedPerson2 *string    `gorm:"column:normalized_person2;type:varchar(128)" json:"normalized_person2"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (BathroomEvent) TableName() string { return "bathroom_events" }

// BeforeSave 每次写入时按 Timestamp 重算排序列
func (e *BathroomEvent) BeforeSave(tx *gorm.DB) error {
	e.OccurredAt = occurredAt(e.Timestamp)
	return nil
}

// DentalEvent 对应 dental_events 表（刷牙记录）
type DentalEvent struct {
	ID          uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Timestamp   string     `gorm:"column:event_time;type:varchar(40);not null;index" json:"timestamp"`
	OccurredAt  *time.Time `gorm:"column:occurred_at;index" json:"-"`
	UsedFlosser int        `gorm:"column:used_flosser;not null;default:0" json:"used_flosser"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (DentalEvent) TableName() string { return "dental_events" }

func (e *DentalEvent) BeforeSave(tx *gorm.DB) error {
	e.OccurredAt = occurredAt(e.Timestamp)
	return nil
}
