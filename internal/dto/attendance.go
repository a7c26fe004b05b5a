package dto

// ── 考勤模块 DTO ──

// RecordEventRequest 直接为已识别员工记录考勤（抓拍已由外部完成比对）
type RecordEventRequest struct {
	CollaboratorID string `json:"collaborator_id" binding:"required,uuid"`
	Timestamp      string `json:"timestamp"       binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	PhotoURL       string `json:"photo_url"       binding:"omitempty,max=1024"`
}

// AttendanceListRequest 考勤记录查询参数
type AttendanceListRequest struct {
	CollaboratorID string `form:"collaborator_id" binding:"omitempty,uuid"`
	From           string `form:"from"            binding:"omitempty,datetime=2006-01-02"`
	To             string `form:"to"              binding:"omitempty,datetime=2006-01-02"`
}

// AttendanceRecordResponse 考勤记录响应
type AttendanceRecordResponse struct {
	ID               string  `json:"id"`
	CollaboratorID   string  `json:"collaborator_id"`
	CollaboratorName string  `json:"collaborator_name"`
	Timestamp        string  `json:"timestamp"`
	Date             string  `json:"date"` // 本地日历日
	Type             string  `json:"type"`
	PhotoURL         *string `json:"photo_url,omitempty"`
	IsManual         bool    `json:"is_manual"`
	Note             string  `json:"note,omitempty"`
}

// RecordEventResponse 考勤判定结果
type RecordEventResponse struct {
	Record      AttendanceRecordResponse `json:"record"`
	Schedule    *ScheduleCell            `json:"schedule,omitempty"`
	Unscheduled bool                     `json:"unscheduled"`
	Warnings    []string                 `json:"warnings,omitempty"`
}

// CaptureResponse 抓拍识别结果
// Matched=false 时表示未识别到员工，不是错误
type CaptureResponse struct {
	Matched      bool                 `json:"matched"`
	Collaborator *CollaboratorBrief   `json:"collaborator,omitempty"`
	Event        *RecordEventResponse `json:"event,omitempty"`
	Compared     int                  `json:"compared"`
}

// AttendanceStatusResponse 员工当前考勤状态
type AttendanceStatusResponse struct {
	CollaboratorID string                    `json:"collaborator_id"`
	State          string                    `json:"state"` // out | in | stale_open
	NextType       string                    `json:"next_type,omitempty"`
	StaleDate      string                    `json:"stale_date,omitempty"`
	LastRecord     *AttendanceRecordResponse `json:"last_record,omitempty"`
}

// StaleOpenDetails 阻断响应中的详情
type StaleOpenDetails struct {
	CollaboratorID string `json:"collaborator_id"`
	EntryID        string `json:"entry_id"`
	EntryAt        string `json:"entry_at"`
	StaleDate      string `json:"stale_date"`
}
