package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"timeface/internal/dto"
	"timeface/internal/service"
	"timeface/pkg/response"
)

const codeCollaborator = 21000

// CollaboratorHandler 员工 HTTP 处理器
type CollaboratorHandler struct {
	collaboratorSvc service.CollaboratorService
}

// NewCollaboratorHandler 创建 CollaboratorHandler
func NewCollaboratorHandler(collaboratorSvc service.CollaboratorService) *CollaboratorHandler {
	return &CollaboratorHandler{collaboratorSvc: collaboratorSvc}
}

// List 列出员工，?active=true 只返回启用员工
// GET /api/v1/collaborators
func (h *CollaboratorHandler) List(c *gin.Context) {
	list, err := h.collaboratorSvc.List(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		h.handleCollaboratorError(c, err)
		return
	}
	response.OKList(c, list, len(list))
}

// Get 获取员工
// GET /api/v1/collaborators/:id
func (h *CollaboratorHandler) Get(c *gin.Context) {
	item, err := h.collaboratorSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCollaboratorError(c, err)
		return
	}
	response.OK(c, item)
}

// Create 创建员工
// POST /api/v1/collaborators
func (h *CollaboratorHandler) Create(c *gin.Context) {
	var req dto.CreateCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeCollaborator+1, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.collaboratorSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCollaboratorError(c, err)
		return
	}
	response.Created(c, item)
}

// Update 更新员工
// PUT /api/v1/collaborators/:id
func (h *CollaboratorHandler) Update(c *gin.Context) {
	var req dto.UpdateCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeCollaborator+1, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.collaboratorSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCollaboratorError(c, err)
		return
	}
	response.OK(c, item)
}

// Delete 删除员工
// DELETE /api/v1/collaborators/:id
func (h *CollaboratorHandler) Delete(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.collaboratorSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleCollaboratorError(c, err)
		return
	}
	response.OK(c, nil)
}

// UploadPhoto 上传人脸比对参考照（multipart 字段 photo）
// PUT /api/v1/collaborators/:id/photo
func (h *CollaboratorHandler) UploadPhoto(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	data, ok := readUpload(c, "photo")
	if !ok {
		return
	}

	item, err := h.collaboratorSvc.SetReferencePhoto(c.Request.Context(), c.Param("id"), data, callerID)
	if err != nil {
		h.handleCollaboratorError(c, err)
		return
	}
	response.OK(c, item)
}

func (h *CollaboratorHandler) handleCollaboratorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPhotoStoreDisabled):
		response.Error(c, http.StatusServiceUnavailable, codeCollaborator+503, "照片存储未启用")
	default:
		respondDomainError(c, codeCollaborator, err)
	}
}
