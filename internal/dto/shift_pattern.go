package dto

// ── 排班模式模块 DTO ──

// CreateShiftPatternRequest 创建排班模式请求
// Sequence 元素为班次 ID，null 表示休息日
type CreateShiftPatternRequest struct {
	Name     string    `json:"name"     binding:"required,min=1,max=120"`
	Sequence []*string `json:"sequence" binding:"required,max=366"`
}

// UpdateShiftPatternRequest 更新排班模式请求
type UpdateShiftPatternRequest struct {
	Name     *string   `json:"name"     binding:"omitempty,min=1,max=120"`
	Sequence []*string `json:"sequence" binding:"omitempty,max=366"`
	Version  int       `json:"version"  binding:"required,min=1"`
}

// AssignPatternRequest 将排班模式应用到员工与日期区间
type AssignPatternRequest struct {
	StartDate       string   `json:"start_date"       binding:"required,datetime=2006-01-02"`
	EndDate         string   `json:"end_date"         binding:"required,datetime=2006-01-02"`
	CollaboratorIDs []string `json:"collaborator_ids" binding:"required,min=1,dive,uuid"`
}

// ShiftPatternResponse 排班模式响应
type ShiftPatternResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Sequence []*string `json:"sequence"`
	Length   int       `json:"length"`
	WorkDays int       `json:"work_days"`
	Version  int       `json:"version"`
}

// AssignPatternResponse 排班模式应用结果
type AssignPatternResponse struct {
	PatternID string `json:"pattern_id"`
	Rows      int    `json:"rows"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
