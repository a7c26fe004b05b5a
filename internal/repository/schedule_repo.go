package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"timeface/internal/model"
	"timeface/pkg/database"
	pkgerrors "timeface/pkg/errors"
)

// 批量写入每批行数
const scheduleBatchSize = 500

var scheduleKeyColumns = []clause.Column{{Name: "collaborator_id"}, {Name: "work_date"}}

// ScheduleRepository 排班数据访问接口
// (collaborator_id, date) 唯一性由数据库唯一索引保证，冲突统一返回 ErrConflict
type ScheduleRepository interface {
	// ListByRange 日期闭区间内的排班，collaboratorIDs 为空时不按员工过滤
	ListByRange(ctx context.Context, start, end model.Date, collaboratorIDs []string) ([]model.Schedule, error)
	GetByKey(ctx context.Context, collaboratorID string, date model.Date) (*model.Schedule, error)
	Create(ctx context.Context, s *model.Schedule) error
	UpdateShift(ctx context.Context, id, shiftID string, updatedBy *string) error
	UpdateStatus(ctx context.Context, id, status string) error
	// DeleteByKey 返回删除行数，0 表示原本不存在
	DeleteByKey(ctx context.Context, collaboratorID string, date model.Date) (int64, error)
	// UpsertBatch 单事务批量写入，已存在的键只替换班次，保留状态
	UpsertBatch(ctx context.Context, rows []model.Schedule) error
	// InsertMissing 单事务批量写入，仅填充空位，返回实际插入行数
	InsertMissing(ctx context.Context, rows []model.Schedule) (int64, error)
	CountByShift(ctx context.Context, shiftID string) (int64, error)
}

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 创建 ScheduleRepository 实例
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) ListByRange(ctx context.Context, start, end model.Date, collaboratorIDs []string) ([]model.Schedule, error) {
	var rows []model.Schedule
	db := r.db.WithContext(ctx).
		Preload("Shift").
		Where("work_date BETWEEN ? AND ?", start, end)
	if len(collaboratorIDs) > 0 {
		db = db.Where("collaborator_id IN ?", collaboratorIDs)
	}
	err := db.Order("work_date ASC, collaborator_id ASC").Find(&rows).Error
	return rows, err
}

func (r *scheduleRepo) GetByKey(ctx context.Context, collaboratorID string, date model.Date) (*model.Schedule, error) {
	var s model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Where("collaborator_id = ? AND work_date = ?", collaboratorID, date).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *scheduleRepo) Create(ctx context.Context, s *model.Schedule) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return translateWriteError(err, s.CollaboratorID, s.Date)
	}
	return nil
}

func (r *scheduleRepo) UpdateShift(ctx context.Context, id, shiftID string, updatedBy *string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"shift_id":   shiftID,
			"updated_by": updatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *scheduleRepo) UpdateStatus(ctx context.Context, id, status string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *scheduleRepo) DeleteByKey(ctx context.Context, collaboratorID string, date model.Date) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("collaborator_id = ? AND work_date = ?", collaboratorID, date).
		Delete(&model.Schedule{})
	return result.RowsAffected, result.Error
}

func (r *scheduleRepo) UpsertBatch(ctx context.Context, rows []model.Schedule) error {
	if len(rows) == 0 {
		return nil
	}
	batch := stampScheduleBatch(rows, time.Now())
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   scheduleKeyColumns,
			DoUpdates: clause.AssignmentColumns([]string{"shift_id", "updated_by", "updated_at"}),
		}).CreateInBatches(&batch, scheduleBatchSize).Error
		if err != nil {
			return translateWriteError(err, "", model.Date{})
		}
		return nil
	})
}

func (r *scheduleRepo) InsertMissing(ctx context.Context, rows []model.Schedule) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	var inserted int64
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for start := 0; start < len(rows); start += scheduleBatchSize {
			end := start + scheduleBatchSize
			if end > len(rows) {
				end = len(rows)
			}
			batch := stampScheduleBatch(rows[start:end], now)
			result := tx.Clauses(clause.OnConflict{
				Columns:   scheduleKeyColumns,
				DoNothing: true,
			}).Create(&batch)
			if result.Error != nil {
				return translateWriteError(result.Error, "", model.Date{})
			}
			inserted += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *scheduleRepo) CountByShift(ctx context.Context, shiftID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Schedule{}).Where("shift_id = ?", shiftID).Count(&n).Error
	return n, err
}

// stampScheduleBatch 复制一份待写入的行并统一审计时间
// gorm 会回写 ID 与时间戳，不能改动调用方的切片
func stampScheduleBatch(rows []model.Schedule, now time.Time) []model.Schedule {
	batch := append([]model.Schedule(nil), rows...)
	for i := range batch {
		batch[i].CreatedAt = now
		batch[i].UpdatedAt = now
	}
	return batch
}

// translateWriteError 唯一约束冲突转换为 ErrConflict，并附带冲突键
func translateWriteError(err error, collaboratorID string, date model.Date) error {
	if !database.IsUniqueViolation(err) {
		return err
	}
	if collaboratorID == "" {
		return fmt.Errorf("%w: 排班键冲突", pkgerrors.ErrConflict)
	}
	return fmt.Errorf("%w: 员工 %s 在 %s 已有排班", pkgerrors.ErrConflict, collaboratorID, date)
}
