package dto

// ── 班次模块 DTO ──

// CreateShiftRequest 创建班次请求
type CreateShiftRequest struct {
	Name      string `json:"name"       binding:"required,min=1,max=60"`
	StartTime string `json:"start_time" binding:"required,datetime=15:04"`
	EndTime   string `json:"end_time"   binding:"required,datetime=15:04"`
	Color     string `json:"color"      binding:"omitempty,max=20"`
}

// UpdateShiftRequest 更新班次请求
type UpdateShiftRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=1,max=60"`
	StartTime *string `json:"start_time" binding:"omitempty,datetime=15:04"`
	EndTime   *string `json:"end_time"   binding:"omitempty,datetime=15:04"`
	Color     *string `json:"color"      binding:"omitempty,max=20"`
	Version   int     `json:"version"    binding:"required,min=1"`
}

// ShiftResponse 班次信息响应
type ShiftResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	Color         string  `json:"color"`
	DurationHours float64 `json:"duration_hours"`
	Version       int     `json:"version"`
}
