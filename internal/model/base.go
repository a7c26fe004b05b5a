package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ── 排班模式序列 JSONB 自定义类型 ──

// ShiftSequence 排班模式的循环序列，元素为班次 ID，nil 表示休息日。
// 对应 PostgreSQL JSONB，形如 ["id-a", null, "id-a", null]。
type ShiftSequence []*string

// Scan 实现 sql.Scanner
func (s *ShiftSequence) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("ShiftSequence.Scan: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*s = ShiftSequence{}
		return nil
	}
	var out ShiftSequence
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("ShiftSequence.Scan: %w", err)
	}
	*s = out
	return nil
}

// Value 实现 driver.Valuer，nil 序列写入 []
func (s ShiftSequence) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// At 返回循环序列第 offset 天对应的班次，休息日或空序列返回 ""
func (s ShiftSequence) At(offset int) string {
	if len(s) == 0 {
		return ""
	}
	p := s[offset%len(s)]
	if p == nil {
		return ""
	}
	return *p
}

// ShiftIDs 去重后的非休息日班次 ID
func (s ShiftSequence) ShiftIDs() []string {
	seen := make(map[string]bool, len(s))
	ids := make([]string, 0, len(s))
	for _, p := range s {
		if p == nil || *p == "" || seen[*p] {
			continue
		}
		seen[*p] = true
		ids = append(ids, *p)
	}
	return ids
}

// BaseModel 通用审计字段
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"    json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
}

// VersionedModel 支持乐观锁的模型
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}
