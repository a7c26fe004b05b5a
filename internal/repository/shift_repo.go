package repository

import (
	"context"

	"gorm.io/gorm"

	"timeface/internal/model"
	pkgerrors "timeface/pkg/errors"
)

// ShiftRepository 班次数据访问接口
type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	List(ctx context.Context) ([]model.Shift, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Shift, error)
	// Update 乐观锁更新，版本不一致返回 ErrConflict
	Update(ctx context.Context, shift *model.Shift) error
	Delete(ctx context.Context, id string) error
}

type shiftRepo struct {
	db *gorm.DB
}

// NewShiftRepo 创建 ShiftRepository 实例
func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Create(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) List(ctx context.Context) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).Order("start_time ASC, name ASC").Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Shift, error) {
	var shifts []model.Shift
	if len(ids) == 0 {
		return shifts, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) Update(ctx context.Context, shift *model.Shift) error {
	oldVersion := shift.Version
	result := r.db.WithContext(ctx).
		Model(shift).
		Where("id = ? AND version = ?", shift.ID, oldVersion).
		Updates(map[string]interface{}{
			"name":       shift.Name,
			"start_time": shift.StartTime,
			"end_time":   shift.EndTime,
			"color":      shift.Color,
			"updated_by": shift.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrConflict
	}
	shift.Version = oldVersion + 1
	return nil
}

func (r *shiftRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Shift{}).Error
}
