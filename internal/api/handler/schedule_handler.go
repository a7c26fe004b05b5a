package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"timeface/internal/dto"
	"timeface/internal/model"
	"timeface/internal/service"
	"timeface/pkg/response"
)

const codeSchedule = 23000

// ScheduleHandler 排班网格 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
	exportSvc   service.ExportService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService, exportSvc service.ExportService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc, exportSvc: exportSvc}
}

// GetWeek 获取周网格
// GET /api/v1/schedules/week?start=YYYY-MM-DD
func (h *ScheduleHandler) GetWeek(c *gin.Context) {
	start, ok := bindWeekStart(c)
	if !ok {
		return
	}

	grid, err := h.scheduleSvc.GetWeek(c.Request.Context(), start)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, grid)
}

// SetCell 设置单元格班次
// PUT /api/v1/schedules/cell
func (h *ScheduleHandler) SetCell(c *gin.Context) {
	var req dto.SetCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeSchedule+1, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.scheduleSvc.SetCell(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, result)
}

// RemoveCell 清除单元格
// DELETE /api/v1/schedules/cell
func (h *ScheduleHandler) RemoveCell(c *gin.Context) {
	var req dto.RemoveCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeSchedule+1, "参数校验失败")
		return
	}

	result, err := h.scheduleSvc.RemoveCell(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, result)
}

// CopyWeek 复制上一周到目标区间，仅填空位
// POST /api/v1/schedules/copy-week
func (h *ScheduleHandler) CopyWeek(c *gin.Context) {
	var req dto.CopyWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeSchedule+1, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.scheduleSvc.CopyWeek(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, result)
}

// FillGaps 用指定班次填充空位
// POST /api/v1/schedules/fill-gaps
func (h *ScheduleHandler) FillGaps(c *gin.Context) {
	var req dto.FillGapsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeSchedule+1, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.scheduleSvc.FillGaps(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateStatus 修改排班状态
// PUT /api/v1/schedules/status
func (h *ScheduleHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateScheduleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeSchedule+1, "参数校验失败")
		return
	}

	cell, err := h.scheduleSvc.UpdateStatus(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, cell)
}

// Export 导出周排班 Excel
// GET /api/v1/schedules/export?start=YYYY-MM-DD
func (h *ScheduleHandler) Export(c *gin.Context) {
	start, ok := bindWeekStart(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportWeek(c.Request.Context(), start)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	sendXLSX(c, filename, buf.Bytes())
}

// Calendar 导出单个员工的周排班 iCalendar
// GET /api/v1/schedules/calendar?start=YYYY-MM-DD&collaborator_id=
func (h *ScheduleHandler) Calendar(c *gin.Context) {
	var q dto.CalendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, codeSchedule+1, "需要 start(YYYY-MM-DD) 与 collaborator_id")
		return
	}
	start, err := model.ParseDate(q.Start)
	if err != nil {
		response.BadRequest(c, codeSchedule+1, "start 应为 YYYY-MM-DD")
		return
	}

	buf, filename, err := h.exportSvc.ExportCalendar(c.Request.Context(), start, q.CollaboratorID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	sendICS(c, filename, buf.Bytes())
}

func bindWeekStart(c *gin.Context) (model.Date, bool) {
	var q dto.WeekQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, codeSchedule+1, "start 应为 YYYY-MM-DD")
		return model.Date{}, false
	}
	start, err := model.ParseDate(q.Start)
	if err != nil {
		response.BadRequest(c, codeSchedule+1, "start 应为 YYYY-MM-DD")
		return model.Date{}, false
	}
	return start, true
}

// handleScheduleError 统一处理排班模块业务错误
func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptySourceWeek):
		response.NotFound(c, codeSchedule+101, "源周没有任何排班可复制")
	case errors.Is(err, service.ErrCopyRangeTooLong):
		response.BadRequest(c, codeSchedule+102, "目标区间不能超过 7 天")
	case errors.Is(err, service.ErrExportGenerateFail), errors.Is(err, service.ErrCalendarGenerateFail):
		response.InternalError(c)
	default:
		respondDomainError(c, codeSchedule, err)
	}
}
