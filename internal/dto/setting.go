package dto

// ── 应用配置模块 DTO ──

// UpdateSettingsRequest 更新应用配置
type UpdateSettingsRequest struct {
	WeeklyHoursLimit *int    `json:"weekly_hours_limit" binding:"omitempty,min=1,max=168"`
	LawReference     *string `json:"law_reference"      binding:"omitempty,max=2000"`
}

// SettingsResponse 应用配置
type SettingsResponse struct {
	WeeklyHoursLimit int    `json:"weekly_hours_limit"`
	LawReference     string `json:"law_reference"`
	UpdatedAt        string `json:"updated_at,omitempty"`
}
