package handler

import (
	"github.com/gin-gonic/gin"

	"timeface/internal/dto"
	"timeface/internal/service"
	"timeface/pkg/response"
)

const codeSetting = 27000

// SettingHandler 应用配置 HTTP 处理器
type SettingHandler struct {
	settingSvc service.SettingService
}

// NewSettingHandler 创建 SettingHandler
func NewSettingHandler(settingSvc service.SettingService) *SettingHandler {
	return &SettingHandler{settingSvc: settingSvc}
}

// Get 获取应用配置
// GET /api/v1/settings
func (h *SettingHandler) Get(c *gin.Context) {
	s, err := h.settingSvc.Get(c.Request.Context())
	if err != nil {
		respondDomainError(c, codeSetting, err)
		return
	}
	response.OK(c, s)
}

// Update 更新应用配置
// PUT /api/v1/settings
func (h *SettingHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeSetting+1, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	s, err := h.settingSvc.Update(c.Request.Context(), &req, callerID)
	if err != nil {
		respondDomainError(c, codeSetting, err)
		return
	}
	response.OK(c, s)
}
