package repository

import (
	"context"

	"gorm.io/gorm"

	"timeface/internal/model"
	pkgerrors "timeface/pkg/errors"
)

// ShiftPatternRepository 排班模式数据访问接口
type ShiftPatternRepository interface {
	Create(ctx context.Context, p *model.ShiftPattern) error
	GetByID(ctx context.Context, id string) (*model.ShiftPattern, error)
	List(ctx context.Context) ([]model.ShiftPattern, error)
	// Update 乐观锁更新，版本不一致返回 ErrConflict
	Update(ctx context.Context, p *model.ShiftPattern) error
	Delete(ctx context.Context, id string) error
	// CountReferencing 序列中引用了指定班次的模式数量
	CountReferencing(ctx context.Context, shiftID string) (int64, error)
}

type shiftPatternRepo struct {
	db *gorm.DB
}

// NewShiftPatternRepo 创建 ShiftPatternRepository 实例
func NewShiftPatternRepo(db *gorm.DB) ShiftPatternRepository {
	return &shiftPatternRepo{db: db}
}

func (r *shiftPatternRepo) Create(ctx context.Context, p *model.ShiftPattern) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *shiftPatternRepo) GetByID(ctx context.Context, id string) (*model.ShiftPattern, error) {
	var p model.ShiftPattern
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *shiftPatternRepo) List(ctx context.Context) ([]model.ShiftPattern, error) {
	var list []model.ShiftPattern
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *shiftPatternRepo) Update(ctx context.Context, p *model.ShiftPattern) error {
	oldVersion := p.Version
	result := r.db.WithContext(ctx).
		Model(p).
		Where("id = ? AND version = ?", p.ID, oldVersion).
		Updates(map[string]interface{}{
			"name":       p.Name,
			"sequence":   p.Sequence,
			"updated_by": p.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrConflict
	}
	p.Version = oldVersion + 1
	return nil
}

func (r *shiftPatternRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ShiftPattern{}).Error
}

// 序列存为 JSON 文本，按带引号的 ID 子串匹配即可兼容 PostgreSQL 与 SQLite
func (r *shiftPatternRepo) CountReferencing(ctx context.Context, shiftID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.ShiftPattern{}).
		Where("CAST(sequence AS TEXT) LIKE ?", `%"`+shiftID+`"%`).
		Count(&n).Error
	return n, err
}
