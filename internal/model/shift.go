package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shift 班次模板表 — 对应 shifts
// 只描述一天内的起止时刻，不含日期
type Shift struct {
	ID        string `gorm:"type:uuid;primaryKey"                   json:"id"`
	Name      string `gorm:"type:varchar(60);not null"              json:"name"`
	StartTime string `gorm:"type:varchar(5);not null"               json:"start_time"` // HH:MM
	EndTime   string `gorm:"type:varchar(5);not null"               json:"end_time"`   // HH:MM
	Color     string `gorm:"type:varchar(20);not null;default:'#3b82f6'" json:"color"`
	VersionedModel
}

// TableName 指定表名
func (Shift) TableName() string { return "shifts" }

// BeforeCreate 生成主键
func (s *Shift) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// ParseClock 解析 HH:MM，返回自零点起的分钟数
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("时间格式无效 %q，应为 HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Duration 班次时长，结束早于或等于开始视为跨夜
func (s *Shift) Duration() (time.Duration, error) {
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return 0, err
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return 0, err
	}
	minutes := end - start
	if minutes <= 0 {
		minutes += 24 * 60
	}
	return time.Duration(minutes) * time.Minute, nil
}
