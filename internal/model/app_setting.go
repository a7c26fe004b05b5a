package model

import "time"

// 配置键
const (
	SettingWeeklyHoursLimit = "weekly_hours_limit"
	SettingLawReference     = "law_reference"
)

// AppSetting 应用配置表 — 对应 app_settings（键值对）
type AppSetting struct {
	Key         string    `gorm:"type:varchar(60);primaryKey"        json:"key"`
	Value       string    `gorm:"type:text;not null"                 json:"value"`
	Description string    `gorm:"type:text;not null;default:''"      json:"description"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy   *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// TableName 指定表名
func (AppSetting) TableName() string { return "app_settings" }
