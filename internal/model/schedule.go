package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 排班状态
const (
	ScheduleStatusScheduled = "scheduled"
	ScheduleStatusPresent   = "present"
	ScheduleStatusAbsent    = "absent"
	ScheduleStatusLate      = "late"
	ScheduleStatusOnLeave   = "on_leave"
)

// ValidScheduleStatus 校验排班状态取值
func ValidScheduleStatus(s string) bool {
	switch s {
	case ScheduleStatusScheduled, ScheduleStatusPresent, ScheduleStatusAbsent,
		ScheduleStatusLate, ScheduleStatusOnLeave:
		return true
	}
	return false
}

// Schedule 排班表 — 对应 schedules
// (collaborator_id, date) 唯一；没有班次即没有记录
type Schedule struct {
	ID             string `gorm:"type:uuid;primaryKey"                                         json:"id"`
	CollaboratorID string `gorm:"type:uuid;not null;uniqueIndex:uk_schedules_collaborator_date" json:"collaborator_id"`
	Date           Date   `gorm:"column:work_date;type:date;not null;uniqueIndex:uk_schedules_collaborator_date;index" json:"date"`
	ShiftID        string `gorm:"type:uuid;not null"                                           json:"shift_id"`
	Status         string `gorm:"type:varchar(20);not null;default:'scheduled'"                json:"status"`
	BaseModel

	// 关联
	Shift        *Shift        `gorm:"foreignKey:ShiftID;references:ID"        json:"shift,omitempty"`
	Collaborator *Collaborator `gorm:"foreignKey:CollaboratorID;references:ID" json:"collaborator,omitempty"`
}

// TableName 指定表名
func (Schedule) TableName() string { return "schedules" }

// BeforeCreate 生成主键并补默认状态
func (s *Schedule) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = ScheduleStatusScheduled
	}
	return nil
}

// ScheduleKey 排班唯一键
type ScheduleKey struct {
	CollaboratorID string
	Date           Date
}

// Key 返回唯一键
func (s *Schedule) Key() ScheduleKey {
	return ScheduleKey{CollaboratorID: s.CollaboratorID, Date: s.Date}
}
