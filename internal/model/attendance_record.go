package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 考勤记录类型
const (
	AttendanceEntry = "entry"
	AttendanceExit  = "exit"
)

// AttendanceRecord 考勤记录表 — 对应 attendance_records（只追加）
type AttendanceRecord struct {
	ID               string    `gorm:"type:uuid;primaryKey"            json:"id"`
	CollaboratorID   string    `gorm:"type:uuid;not null;index:idx_attendance_collaborator_ts,priority:1" json:"collaborator_id"`
	CollaboratorName string    `gorm:"type:varchar(120);not null"      json:"collaborator_name"` // 冗余快照
	Timestamp        time.Time `gorm:"column:occurred_at;not null;index:idx_attendance_collaborator_ts,priority:2;index" json:"timestamp"`
	Type             string    `gorm:"type:varchar(10);not null"       json:"type"` // entry | exit
	PhotoURL         *string   `gorm:"type:text"                       json:"photo_url,omitempty"`
	IsManual         bool      `gorm:"not null;default:false"          json:"is_manual"` // 人工补录
	Note             string    `gorm:"type:text;not null;default:''"   json:"note,omitempty"`
	CreatedAt        time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy        *string   `gorm:"type:uuid"                       json:"created_by,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }

// BeforeCreate 生成主键
func (r *AttendanceRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
