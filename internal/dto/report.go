package dto

// ── 工时报表模块 DTO ──

// HoursReportRequest 工时报表查询参数
type HoursReportRequest struct {
	CollaboratorID string `form:"collaborator_id" binding:"omitempty,uuid"`
	From           string `form:"from"            binding:"required,datetime=2006-01-02"`
	To             string `form:"to"              binding:"required,datetime=2006-01-02"`
}

// WeekExcessResponse 单周超出法定周工时部分
type WeekExcessResponse struct {
	WeekStart   string  `json:"week_start"`
	WorkedHours float64 `json:"worked_hours"`
	ExcessHours float64 `json:"excess_hours"`
}

// HoursSummaryResponse 单个员工工时汇总
type HoursSummaryResponse struct {
	CollaboratorID   string               `json:"collaborator_id"`
	CollaboratorName string               `json:"collaborator_name"`
	RecordCount      int                  `json:"record_count"`
	WorkedHours      float64              `json:"worked_hours"`
	ScheduledHours   float64              `json:"scheduled_hours"`
	OvertimeHours    float64              `json:"overtime_hours"`
	WeeklyExcess     []WeekExcessResponse `json:"weekly_excess,omitempty"`
}

// HoursReportResponse 工时报表
type HoursReportResponse struct {
	From             string                 `json:"from"`
	To               string                 `json:"to"`
	Baseline         string                 `json:"baseline"`
	WeeklyHoursLimit int                    `json:"weekly_hours_limit"`
	Summaries        []HoursSummaryResponse `json:"summaries"`
}
