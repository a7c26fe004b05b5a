package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"timeface/internal/model"
)

// AttendanceFilter 考勤记录查询条件，零值字段不参与过滤
type AttendanceFilter struct {
	CollaboratorID string
	From           *time.Time // 含
	To             *time.Time // 不含
	Limit          int
}

// AttendanceRepository 考勤记录数据访问接口（只追加）
type AttendanceRepository interface {
	Create(ctx context.Context, rec *model.AttendanceRecord) error
	// GetLatest 员工最近一条记录，没有记录时返回 gorm.ErrRecordNotFound
	GetLatest(ctx context.Context, collaboratorID string) (*model.AttendanceRecord, error)
	List(ctx context.Context, f AttendanceFilter) ([]model.AttendanceRecord, error)
	// ListOpenEntries 每位员工最近一条记录中类型为入场的那些
	ListOpenEntries(ctx context.Context) ([]model.AttendanceRecord, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, rec *model.AttendanceRecord) error {
	rec.Timestamp = rec.Timestamp.UTC()
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *attendanceRepo) GetLatest(ctx context.Context, collaboratorID string) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("collaborator_id = ?", collaboratorID).
		Order("occurred_at DESC, created_at DESC").
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attendanceRepo) List(ctx context.Context, f AttendanceFilter) ([]model.AttendanceRecord, error) {
	var list []model.AttendanceRecord
	db := r.db.WithContext(ctx)
	if f.CollaboratorID != "" {
		db = db.Where("collaborator_id = ?", f.CollaboratorID)
	}
	if f.From != nil {
		db = db.Where("occurred_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		db = db.Where("occurred_at < ?", f.To.UTC())
	}
	if f.Limit > 0 {
		db = db.Limit(f.Limit)
	}
	err := db.Order("occurred_at ASC, created_at ASC").Find(&list).Error
	return list, err
}

func (r *attendanceRepo) ListOpenEntries(ctx context.Context) ([]model.AttendanceRecord, error) {
	var list []model.AttendanceRecord
	// 与 GetLatest 相同的排序：同一时刻以写入顺序区分先后
	latest := r.db.Model(&model.AttendanceRecord{}).
		Select("id, ROW_NUMBER() OVER (PARTITION BY collaborator_id ORDER BY occurred_at DESC, created_at DESC) AS rn")
	err := r.db.WithContext(ctx).
		Joins("JOIN (?) latest ON latest.id = attendance_records.id AND latest.rn = 1", latest).
		Where("attendance_records.type = ?", model.AttendanceEntry).
		Order("attendance_records.occurred_at ASC").
		Find(&list).Error
	return list, err
}
