package dto

// ── 排班网格模块 DTO ──

// WeekQuery 周视图查询参数，start 可为该周任意一天
type WeekQuery struct {
	Start string `form:"start" binding:"required,datetime=2006-01-02"`
}

// CalendarQuery 单个员工的周日历订阅参数
type CalendarQuery struct {
	Start          string `form:"start"           binding:"required,datetime=2006-01-02"`
	CollaboratorID string `form:"collaborator_id" binding:"required,uuid"`
}

// SetCellRequest 设置单元格班次
type SetCellRequest struct {
	CollaboratorID string `json:"collaborator_id" binding:"required,uuid"`
	Date           string `json:"date"            binding:"required,datetime=2006-01-02"`
	ShiftID        string `json:"shift_id"        binding:"required,uuid"`
}

// RemoveCellRequest 清除单元格
type RemoveCellRequest struct {
	CollaboratorID string `json:"collaborator_id" binding:"required,uuid"`
	Date           string `json:"date"            binding:"required,datetime=2006-01-02"`
}

// CopyWeekRequest 复制上一周到目标区间（仅填空位）
type CopyWeekRequest struct {
	TargetStart string `json:"target_start" binding:"required,datetime=2006-01-02"`
	TargetEnd   string `json:"target_end"   binding:"required,datetime=2006-01-02"`
}

// FillGapsRequest 用指定班次填充空位
type FillGapsRequest struct {
	ShiftID         string   `json:"shift_id"         binding:"required,uuid"`
	CollaboratorIDs []string `json:"collaborator_ids" binding:"required,min=1,dive,uuid"`
	StartDate       string   `json:"start_date"       binding:"required,datetime=2006-01-02"`
	EndDate         string   `json:"end_date"         binding:"required,datetime=2006-01-02"`
}

// UpdateScheduleStatusRequest 管理员修改排班状态
type UpdateScheduleStatusRequest struct {
	CollaboratorID string `json:"collaborator_id" binding:"required,uuid"`
	Date           string `json:"date"            binding:"required,datetime=2006-01-02"`
	Status         string `json:"status"          binding:"required,oneof=scheduled present absent late on_leave"`
}

// ScheduleCell 网格中的单个排班
type ScheduleCell struct {
	ID             string         `json:"id"`
	CollaboratorID string         `json:"collaborator_id"`
	Date           string         `json:"date"`
	ShiftID        string         `json:"shift_id"`
	Status         string         `json:"status"`
	Shift          *ShiftResponse `json:"shift,omitempty"`
}

// CellResult 单元格写操作结果
type CellResult struct {
	Cell    *ScheduleCell `json:"cell,omitempty"`
	Changed bool          `json:"changed"`
}

// WeekRow 网格中一名员工的一周
type WeekRow struct {
	Collaborator CollaboratorBrief `json:"collaborator"`
	Cells        []*ScheduleCell   `json:"cells"` // 与 Days 对齐，空位为 null
}

// CollaboratorBrief 员工简要信息
type CollaboratorBrief struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
}

// WeekGridResponse 周排班网格
type WeekGridResponse struct {
	WeekStart string          `json:"week_start"`
	Days      []string        `json:"days"`
	Shifts    []ShiftResponse `json:"shifts"`
	Rows      []WeekRow       `json:"rows"`
}

// BulkWriteResponse 批量写入结果
type BulkWriteResponse struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}
