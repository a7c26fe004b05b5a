package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Collaborator 员工表 — 对应 collaborators
type Collaborator struct {
	ID                string  `gorm:"type:uuid;primaryKey"         json:"id"`
	Name              string  `gorm:"type:varchar(120);not null"   json:"name"`
	Position          string  `gorm:"type:varchar(120);not null"   json:"position"`
	ReferencePhotoURL *string `gorm:"type:text"                    json:"reference_photo_url,omitempty"` // 人脸比对参考照
	Active            bool    `gorm:"not null;default:true"        json:"active"`
	SoftDeleteModel
}

// TableName 指定表名
func (Collaborator) TableName() string { return "collaborators" }

// BeforeCreate 生成主键
func (c *Collaborator) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// HasReferencePhoto 是否可参与人脸比对
func (c *Collaborator) HasReferencePhoto() bool {
	return c.ReferencePhotoURL != nil && *c.ReferencePhotoURL != ""
}
