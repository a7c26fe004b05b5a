package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"timeface/internal/dto"
	"timeface/internal/service"
	"timeface/pkg/response"
)

const codeAttendance = 24000

// AttendanceHandler 考勤 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Capture 打卡终端提交抓拍（multipart 字段 image，可选 timestamp）
// POST /api/v1/attendance/capture
//
// 未识别到员工返回 200 且 matched=false
func (h *AttendanceHandler) Capture(c *gin.Context) {
	at, ok := parseTimestamp(c, c.PostForm("timestamp"))
	if !ok {
		return
	}
	image, ok := readUpload(c, "image")
	if !ok {
		return
	}

	result, err := h.attendanceSvc.RecordCapture(c.Request.Context(), image, at)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, result)
}

// RecordEvent 为已识别员工直接记录考勤
// POST /api/v1/attendance/events
func (h *AttendanceHandler) RecordEvent(c *gin.Context) {
	var req dto.RecordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeAttendance+1, "参数校验失败")
		return
	}
	at, ok := parseTimestamp(c, req.Timestamp)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.RecordEvent(c.Request.Context(), req.CollaboratorID, at, req.PhotoURL)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.Created(c, result)
}

// ListRecords 查询考勤记录
// GET /api/v1/attendance/records
func (h *AttendanceHandler) ListRecords(c *gin.Context) {
	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeAttendance+1, "参数校验失败")
		return
	}

	list, err := h.attendanceSvc.ListRecords(c.Request.Context(), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OKList(c, list, len(list))
}

// Status 员工当前考勤状态
// GET /api/v1/attendance/status/:collaborator_id
func (h *AttendanceHandler) Status(c *gin.Context) {
	status, err := h.attendanceSvc.Status(c.Request.Context(), c.Param("collaborator_id"))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, status)
}

// parseTimestamp 空串返回零值，由业务层取当前时间
func parseTimestamp(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	at, err := time.Parse(dto.TimeLayout, raw)
	if err != nil {
		response.BadRequest(c, codeAttendance+1, "timestamp 应为 RFC3339 格式")
		return time.Time{}, false
	}
	return at, true
}

// handleAttendanceError 统一处理考勤模块业务错误
func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFaceMatchDisabled):
		response.Error(c, http.StatusServiceUnavailable, codeAttendance+503, "人脸比对未配置")
	case errors.Is(err, service.ErrPhotoStoreDisabled):
		response.Error(c, http.StatusServiceUnavailable, codeAttendance+503, "照片存储未启用")
	default:
		respondDomainError(c, codeAttendance, err)
	}
}
