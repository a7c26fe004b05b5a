package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"timeface/internal/model"
)

// CollaboratorRepository 员工数据访问接口
type CollaboratorRepository interface {
	Create(ctx context.Context, c *model.Collaborator) error
	GetByID(ctx context.Context, id string) (*model.Collaborator, error)
	// GetForUpdate 行级锁读取，用于串行化同一员工的考勤判定（须在事务内调用）
	GetForUpdate(ctx context.Context, id string) (*model.Collaborator, error)
	List(ctx context.Context, activeOnly bool) ([]model.Collaborator, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Collaborator, error)
	// ListMatchCandidates 启用且有参考照的员工，按姓名排序（比对顺序即目录顺序）
	ListMatchCandidates(ctx context.Context) ([]model.Collaborator, error)
	Update(ctx context.Context, c *model.Collaborator) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type collaboratorRepo struct {
	db *gorm.DB
}

// NewCollaboratorRepo 创建 CollaboratorRepository 实例
func NewCollaboratorRepo(db *gorm.DB) CollaboratorRepository {
	return &collaboratorRepo{db: db}
}

func (r *collaboratorRepo) Create(ctx context.Context, c *model.Collaborator) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *collaboratorRepo) GetByID(ctx context.Context, id string) (*model.Collaborator, error) {
	var c model.Collaborator
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *collaboratorRepo) GetForUpdate(ctx context.Context, id string) (*model.Collaborator, error) {
	var c model.Collaborator
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *collaboratorRepo) List(ctx context.Context, activeOnly bool) ([]model.Collaborator, error) {
	var list []model.Collaborator
	db := r.db.WithContext(ctx)
	if activeOnly {
		db = db.Where("active = ?", true)
	}
	err := db.Order("name ASC, id ASC").Find(&list).Error
	return list, err
}

func (r *collaboratorRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Collaborator, error) {
	var list []model.Collaborator
	if len(ids) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC, id ASC").Find(&list).Error
	return list, err
}

func (r *collaboratorRepo) ListMatchCandidates(ctx context.Context) ([]model.Collaborator, error) {
	var list []model.Collaborator
	err := r.db.WithContext(ctx).
		Where("active = ? AND reference_photo_url IS NOT NULL AND reference_photo_url <> ''", true).
		Order("name ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *collaboratorRepo) Update(ctx context.Context, c *model.Collaborator) error {
	return r.db.WithContext(ctx).
		Model(c).
		Select("name", "position", "reference_photo_url", "active", "updated_by", "updated_at").
		Updates(c).Error
}

func (r *collaboratorRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Collaborator{}).
			Where("id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Collaborator{}).Error
	})
}
