package handler

import (
	"github.com/gin-gonic/gin"

	"timeface/internal/dto"
	"timeface/internal/service"
	"timeface/pkg/response"
)

const codeShiftPattern = 22000

// ShiftPatternHandler 排班模式 HTTP 处理器
type ShiftPatternHandler struct {
	patternSvc service.ShiftPatternService
}

// NewShiftPatternHandler 创建 ShiftPatternHandler
func NewShiftPatternHandler(patternSvc service.ShiftPatternService) *ShiftPatternHandler {
	return &ShiftPatternHandler{patternSvc: patternSvc}
}

// List 列出排班模式
// GET /api/v1/shift-patterns
func (h *ShiftPatternHandler) List(c *gin.Context) {
	list, err := h.patternSvc.List(c.Request.Context())
	if err != nil {
		respondDomainError(c, codeShiftPattern, err)
		return
	}
	response.OKList(c, list, len(list))
}

// Create 创建排班模式
// POST /api/v1/shift-patterns
func (h *ShiftPatternHandler) Create(c *gin.Context) {
	var req dto.CreateShiftPatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeShiftPattern+1, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	p, err := h.patternSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		respondDomainError(c, codeShiftPattern, err)
		return
	}
	response.Created(c, p)
}

// Update 更新排班模式（乐观锁）
// PUT /api/v1/shift-patterns/:id
func (h *ShiftPatternHandler) Update(c *gin.Context) {
	var req dto.UpdateShiftPatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeShiftPattern+1, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	p, err := h.patternSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		respondDomainError(c, codeShiftPattern, err)
		return
	}
	response.OK(c, p)
}

// Delete 删除排班模式，已生成的排班不受影响
// DELETE /api/v1/shift-patterns/:id
func (h *ShiftPatternHandler) Delete(c *gin.Context) {
	if err := h.patternSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, codeShiftPattern, err)
		return
	}
	response.OK(c, nil)
}

// Assign 将模式展开写入排班网格
// POST /api/v1/shift-patterns/:id/assign
func (h *ShiftPatternHandler) Assign(c *gin.Context) {
	var req dto.AssignPatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeShiftPattern+1, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.patternSvc.Assign(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		respondDomainError(c, codeShiftPattern, err)
		return
	}
	response.OK(c, result)
}
