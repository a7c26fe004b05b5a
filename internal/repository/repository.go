package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Collaborator CollaboratorRepository
	Shift        ShiftRepository
	ShiftPattern ShiftPatternRepository
	Schedule     ScheduleRepository
	Attendance   AttendanceRepository
	Setting      AppSettingRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		Collaborator: NewCollaboratorRepo(db),
		Shift:        NewShiftRepo(db),
		ShiftPattern: NewShiftPatternRepo(db),
		Schedule:     NewScheduleRepo(db),
		Attendance:   NewAttendanceRepo(db),
		Setting:      NewAppSettingRepo(db),
	}
}

// Transaction 在单个数据库事务内执行 fn，fn 拿到的 Repository 全部绑定该事务。
// 未绑定数据库（单元测试中的 mock 聚合）时直接执行 fn。
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
