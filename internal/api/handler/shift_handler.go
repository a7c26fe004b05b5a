package handler

import (
	"github.com/gin-gonic/gin"

	"timeface/internal/dto"
	"timeface/internal/service"
	"timeface/pkg/response"
)

const codeShift = 20000

// ShiftHandler 班次目录 HTTP 处理器
type ShiftHandler struct {
	shiftSvc service.ShiftService
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// List 列出班次
// GET /api/v1/shifts
func (h *ShiftHandler) List(c *gin.Context) {
	list, err := h.shiftSvc.List(c.Request.Context())
	if err != nil {
		respondDomainError(c, codeShift, err)
		return
	}
	response.OKList(c, list, len(list))
}

// Create 创建班次
// POST /api/v1/shifts
func (h *ShiftHandler) Create(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeShift+1, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shift, err := h.shiftSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		respondDomainError(c, codeShift, err)
		return
	}
	response.Created(c, shift)
}

// Update 更新班次（乐观锁）
// PUT /api/v1/shifts/:id
func (h *ShiftHandler) Update(c *gin.Context) {
	var req dto.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeShift+1, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shift, err := h.shiftSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		respondDomainError(c, codeShift, err)
		return
	}
	response.OK(c, shift)
}

// Delete 删除班次，被引用时返回 409
// DELETE /api/v1/shifts/:id
func (h *ShiftHandler) Delete(c *gin.Context) {
	if err := h.shiftSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, codeShift, err)
		return
	}
	response.OK(c, nil)
}
