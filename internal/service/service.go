package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"timeface/config"
	"timeface/internal/repository"
	"timeface/pkg/facematch"
)

// Locker 跨进程互斥，用于串行化同一员工的考勤判定
// 锁已被占用时返回 redis.ErrLockHeld
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// PhotoStore 照片存储，数据库只保存返回的引用
type PhotoStore interface {
	Save(ctx context.Context, kind string, data []byte) (string, error)
	Load(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}

// Service 所有 Service 的聚合入口
type Service struct {
	Shift        ShiftService
	Collaborator CollaboratorService
	ShiftPattern ShiftPatternService
	Schedule     ScheduleService
	Attendance   AttendanceService
	Correction   CorrectionService
	Report       ReportService
	Export       ExportService
	Setting      SettingService
}

// Deps 可选的外部依赖，nil 表示不可用
type Deps struct {
	Locker  Locker
	Photos  PhotoStore
	Matcher facematch.Matcher
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	deps Deps,
	logger *zap.Logger,
) *Service {
	settings := NewSettingService(cfg, repo, logger)
	schedule := NewScheduleService(repo, logger)
	return &Service{
		Shift:        NewShiftService(repo, logger),
		Collaborator: NewCollaboratorService(repo, deps.Photos, logger),
		ShiftPattern: NewShiftPatternService(repo, logger),
		Schedule:     schedule,
		Attendance:   NewAttendanceService(&cfg.Attendance, repo, deps.Locker, deps.Photos, deps.Matcher, logger),
		Correction:   NewCorrectionService(&cfg.Attendance, repo, logger),
		Report:       NewReportService(&cfg.Attendance, repo, settings, logger),
		Export:       NewExportService(schedule, cfg.Attendance.Location(), logger),
		Setting:      settings,
	}
}
