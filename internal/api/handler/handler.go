package handler

import "timeface/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Shift        *ShiftHandler
	Collaborator *CollaboratorHandler
	ShiftPattern *ShiftPatternHandler
	Schedule     *ScheduleHandler
	Attendance   *AttendanceHandler
	Correction   *CorrectionHandler
	Report       *ReportHandler
	Setting      *SettingHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Shift:        NewShiftHandler(svc.Shift),
		Collaborator: NewCollaboratorHandler(svc.Collaborator),
		ShiftPattern: NewShiftPatternHandler(svc.ShiftPattern),
		Schedule:     NewScheduleHandler(svc.Schedule, svc.Export),
		Attendance:   NewAttendanceHandler(svc.Attendance),
		Correction:   NewCorrectionHandler(svc.Correction),
		Report:       NewReportHandler(svc.Report),
		Setting:      NewSettingHandler(svc.Setting),
	}
}
