package handler

import (
	"github.com/gin-gonic/gin"

	"timeface/internal/dto"
	"timeface/internal/service"
	"timeface/pkg/response"
)

const codeCorrection = 25000

// CorrectionHandler 人工补录 HTTP 处理器
type CorrectionHandler struct {
	correctionSvc service.CorrectionService
}

// NewCorrectionHandler 创建 CorrectionHandler
func NewCorrectionHandler(correctionSvc service.CorrectionService) *CorrectionHandler {
	return &CorrectionHandler{correctionSvc: correctionSvc}
}

// ListStale 列出跨日未关闭的入场
// GET /api/v1/corrections/stale
func (h *CorrectionHandler) ListStale(c *gin.Context) {
	list, err := h.correctionSvc.ListStaleOpen(c.Request.Context())
	if err != nil {
		respondDomainError(c, codeCorrection, err)
		return
	}
	response.OKList(c, list, len(list))
}

// Close 补录出场，解除阻断
// POST /api/v1/corrections/close
func (h *CorrectionHandler) Close(c *gin.Context) {
	var req dto.CloseStaleShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeCorrection+1, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	rec, err := h.correctionSvc.CloseStale(c.Request.Context(), &req, callerID)
	if err != nil {
		respondDomainError(c, codeCorrection, err)
		return
	}
	response.Created(c, rec)
}
