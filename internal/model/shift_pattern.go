package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShiftPattern 排班模式表 — 对应 shift_patterns
// Sequence 按日循环，第 i 天取 Sequence[i mod N]
type ShiftPattern struct {
	ID       string        `gorm:"type:uuid;primaryKey"          json:"id"`
	Name     string        `gorm:"type:varchar(120);not null"    json:"name"`
	Sequence ShiftSequence `gorm:"type:jsonb;not null"           json:"sequence"`
	VersionedModel
}

// TableName 指定表名
func (ShiftPattern) TableName() string { return "shift_patterns" }

// BeforeCreate 生成主键
func (p *ShiftPattern) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
