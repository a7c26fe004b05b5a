package dto

// ── 员工模块 DTO ──

// CreateCollaboratorRequest 创建员工请求
type CreateCollaboratorRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=120"`
	Position string `json:"position" binding:"omitempty,max=120"`
}

// UpdateCollaboratorRequest 更新员工请求
type UpdateCollaboratorRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=2,max=120"`
	Position *string `json:"position" binding:"omitempty,max=120"`
	Active   *bool   `json:"active"`
}

// CollaboratorResponse 员工信息响应
type CollaboratorResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Position          string  `json:"position"`
	ReferencePhotoURL *string `json:"reference_photo_url,omitempty"`
	Active            bool    `json:"active"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}
