package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timeface/config"
	"timeface/internal/dto"
	"timeface/internal/model"
	"timeface/internal/repository"
	pkgerrors "timeface/pkg/errors"
	"timeface/pkg/facematch"
	"timeface/pkg/media"
	"timeface/pkg/redis"
)

// ── 考勤模块业务错误 ──

var (
	ErrAttendanceBusy       = fmt.Errorf("%w: 该员工的考勤正在处理中，请稍后重试", pkgerrors.ErrConflict)
	ErrEventOutOfOrder      = fmt.Errorf("%w: 打卡时间早于最近一条考勤记录", pkgerrors.ErrInvalid)
	ErrEventInFuture        = fmt.Errorf("%w: 打卡时间不能晚于当前时间", pkgerrors.ErrInvalid)
	ErrCollaboratorInactive = fmt.Errorf("%w: 员工已停用", pkgerrors.ErrInvalid)
	ErrUnscheduled          = fmt.Errorf("%w: 员工今天没有排班", pkgerrors.ErrInvalid)
	ErrFaceMatchDisabled    = errors.New("人脸比对未配置")
)

// 未排班提示
const warningUnscheduled = "unscheduled"

// 打卡时间允许的时钟偏差
const clockSkew = 2 * time.Minute

// AttendanceService 考勤状态机业务接口
type AttendanceService interface {
	// RecordEvent 为已识别的员工判定入场/出场并写入记录
	// 往日入场未关闭时返回 *pkgerrors.StaleOpenError，不写入任何数据
	RecordEvent(ctx context.Context, collaboratorID string, at time.Time, photoURL string) (*dto.RecordEventResponse, error)
	// RecordCapture 人脸比对识别员工后记录考勤，未识别到不是错误
	RecordCapture(ctx context.Context, image []byte, at time.Time) (*dto.CaptureResponse, error)
	ListRecords(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceRecordResponse, error)
	Status(ctx context.Context, collaboratorID string) (*dto.AttendanceStatusResponse, error)
}

type attendanceService struct {
	cfg     *config.AttendanceConfig
	loc     *time.Location
	repo    *repository.Repository
	locker  Locker
	photos  PhotoStore
	matcher facematch.Matcher
	logger  *zap.Logger
	now     func() time.Time
}

// NewAttendanceService 创建 AttendanceService 实例
// locker 为 nil 时仅依赖数据库行锁串行化
func NewAttendanceService(
	cfg *config.AttendanceConfig,
	repo *repository.Repository,
	locker Locker,
	photos PhotoStore,
	matcher facematch.Matcher,
	logger *zap.Logger,
) AttendanceService {
	return &attendanceService{
		cfg:     cfg,
		loc:     cfg.Location(),
		repo:    repo,
		locker:  locker,
		photos:  photos,
		matcher: matcher,
		logger:  logger,
		now:     time.Now,
	}
}

// ────────────────────── RecordEvent ──────────────────────

func (s *attendanceService) RecordEvent(ctx context.Context, collaboratorID string, at time.Time, photoURL string) (*dto.RecordEventResponse, error) {
	now := s.now()
	if at.IsZero() {
		at = now
	}
	if at.After(now.Add(clockSkew)) {
		return nil, ErrEventInFuture
	}

	release, err := s.lock(ctx, collaboratorID)
	if err != nil {
		return nil, err
	}
	defer release()

	var resp *dto.RecordEventResponse
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		resp, err = s.recordLocked(ctx, tx, collaboratorID, at, photoURL)
		return err
	})
	if err != nil {
		if stale, ok := pkgerrors.AsStaleOpen(err); ok {
			s.logger.Warn("考勤被阻断：存在跨日未关闭的入场",
				zap.String("collaborator_id", collaboratorID),
				zap.String("stale_date", stale.StaleDate),
				zap.String("entry_id", stale.EntryID),
			)
			return nil, err
		}
		if !errors.Is(err, pkgerrors.ErrNotFound) && !errors.Is(err, pkgerrors.ErrInvalid) {
			s.logger.Error("记录考勤失败",
				zap.String("collaborator_id", collaboratorID),
				zap.Time("at", at),
				zap.Error(err),
			)
		}
		return nil, err
	}

	if resp.Unscheduled {
		s.logger.Warn("未排班打卡",
			zap.String("collaborator_id", collaboratorID),
			zap.String("date", resp.Record.Date),
		)
	}
	s.logger.Info("考勤已记录",
		zap.String("collaborator_id", collaboratorID),
		zap.String("type", resp.Record.Type),
		zap.String("record_id", resp.Record.ID),
	)
	return resp, nil
}

// recordLocked 在事务与员工行锁内完成判定与写入
func (s *attendanceService) recordLocked(ctx context.Context, tx *repository.Repository, collaboratorID string, at time.Time, photoURL string) (*dto.RecordEventResponse, error) {
	collaborator, err := tx.Collaborator.GetForUpdate(ctx, collaboratorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCollaboratorNotFound, collaboratorID)
		}
		return nil, err
	}
	if !collaborator.Active {
		return nil, ErrCollaboratorInactive
	}

	last, err := tx.Attendance.GetLatest(ctx, collaboratorID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		last = nil
	}
	if last != nil && at.Before(last.Timestamp) {
		return nil, ErrEventOutOfOrder
	}

	kind, err := DecideNext(last, at, s.loc)
	if err != nil {
		return nil, err
	}

	today := model.DateIn(at, s.loc)
	schedule, err := tx.Schedule.GetByKey(ctx, collaboratorID, today)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		schedule = nil
	}

	resp := &dto.RecordEventResponse{}
	if kind == model.AttendanceEntry && schedule == nil {
		if s.cfg.UnscheduledPolicy == config.UnscheduledReject {
			return nil, fmt.Errorf("%w (%s)", ErrUnscheduled, today)
		}
		resp.Unscheduled = true
		resp.Warnings = append(resp.Warnings, warningUnscheduled)
	}

	rec := &model.AttendanceRecord{
		CollaboratorID:   collaborator.ID,
		CollaboratorName: collaborator.Name,
		Timestamp:        at,
		Type:             kind,
	}
	if photoURL != "" {
		rec.PhotoURL = &photoURL
	}
	if err := tx.Attendance.Create(ctx, rec); err != nil {
		return nil, err
	}

	// 出场不改变排班状态
	if kind == model.AttendanceEntry && schedule != nil && schedule.Status != model.ScheduleStatusPresent {
		if err := tx.Schedule.UpdateStatus(ctx, schedule.ID, model.ScheduleStatusPresent); err != nil {
			return nil, err
		}
		schedule.Status = model.ScheduleStatusPresent
	}

	resp.Record = toAttendanceRecordResponse(rec, s.loc)
	if schedule != nil {
		resp.Schedule = toScheduleCell(schedule)
	}
	return resp, nil
}

// lock 获取员工级分布式锁；Redis 不可用时退回数据库行锁
func (s *attendanceService) lock(ctx context.Context, collaboratorID string) (func(), error) {
	noop := func() {}
	if s.locker == nil {
		return noop, nil
	}
	release, err := s.locker.Acquire(ctx, "attendance:"+collaboratorID, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, redis.ErrLockHeld) {
			return nil, ErrAttendanceBusy
		}
		s.logger.Warn("获取考勤锁失败，退回数据库行锁",
			zap.String("collaborator_id", collaboratorID),
			zap.Error(err),
		)
		return noop, nil
	}
	return release, nil
}

// ────────────────────── RecordCapture ──────────────────────

func (s *attendanceService) RecordCapture(ctx context.Context, image []byte, at time.Time) (*dto.CaptureResponse, error) {
	if s.matcher == nil {
		return nil, ErrFaceMatchDisabled
	}
	if s.photos == nil {
		return nil, ErrPhotoStoreDisabled
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrInvalid, media.ErrEmptyImage)
	}
	if at.IsZero() {
		at = s.now()
	}

	matched, compared, err := s.identify(ctx, image)
	if err != nil {
		return nil, err
	}
	resp := &dto.CaptureResponse{Compared: compared}
	if matched == nil {
		s.logger.Info("抓拍未识别到员工", zap.Int("compared", compared))
		return resp, nil
	}
	brief := toCollaboratorBrief(matched)
	resp.Matched = true
	resp.Collaborator = &brief

	ref, err := s.photos.Save(ctx, media.KindCapture, image)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedImage) || errors.Is(err, media.ErrEmptyImage) {
			return nil, fmt.Errorf("%w: %v", pkgerrors.ErrInvalid, err)
		}
		s.logger.Error("保存抓拍照片失败", zap.String("collaborator_id", matched.ID), zap.Error(err))
		return nil, err
	}

	event, err := s.RecordEvent(ctx, matched.ID, at, ref)
	if err != nil {
		// 未落库的抓拍不保留照片
		if delErr := s.photos.Delete(context.WithoutCancel(ctx), ref); delErr != nil {
			s.logger.Warn("清理抓拍照片失败", zap.String("ref", ref), zap.Error(delErr))
		}
		return nil, err
	}
	resp.Event = event
	return resp, nil
}

// identify 按目录顺序逐一比对，首个命中即返回
// 比对出错视为未命中；上下文取消则终止并返回错误
func (s *attendanceService) identify(ctx context.Context, live []byte) (*model.Collaborator, int, error) {
	candidates, err := s.repo.Collaborator.ListMatchCandidates(ctx)
	if err != nil {
		s.logger.Error("查询比对候选失败", zap.Error(err))
		return nil, 0, err
	}

	compared := 0
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, compared, err
		}
		c := &candidates[i]
		reference, err := s.photos.Load(ctx, *c.ReferencePhotoURL)
		if err != nil {
			s.logger.Warn("读取参考照失败，跳过", zap.String("collaborator_id", c.ID), zap.Error(err))
			continue
		}
		compared++
		ok, err := s.matcher.Match(ctx, live, reference)
		if err != nil {
			if errors.Is(err, facematch.ErrDisabled) {
				return nil, compared, ErrFaceMatchDisabled
			}
			s.logger.Warn("人脸比对失败，视为未命中", zap.String("collaborator_id", c.ID), zap.Error(err))
			continue
		}
		if ok {
			return c, compared, nil
		}
	}
	return nil, compared, nil
}

// ────────────────────── ListRecords ──────────────────────

func (s *attendanceService) ListRecords(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceRecordResponse, error) {
	f := repository.AttendanceFilter{CollaboratorID: req.CollaboratorID}
	if req.From != "" {
		d, err := parseDate(req.From)
		if err != nil {
			return nil, err
		}
		from := d.At(0, 0, s.loc)
		f.From = &from
	}
	if req.To != "" {
		d, err := parseDate(req.To)
		if err != nil {
			return nil, err
		}
		to := d.AddDays(1).At(0, 0, s.loc)
		f.To = &to
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return nil, ErrInvalidDateRange
	}

	records, err := s.repo.Attendance.List(ctx, f)
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.AttendanceRecordResponse, 0, len(records))
	for i := range records {
		result = append(result, toAttendanceRecordResponse(&records[i], s.loc))
	}
	return result, nil
}

// ────────────────────── Status ──────────────────────

func (s *attendanceService) Status(ctx context.Context, collaboratorID string) (*dto.AttendanceStatusResponse, error) {
	if _, err := s.repo.Collaborator.GetByID(ctx, collaboratorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollaboratorNotFound
		}
		return nil, err
	}

	last, err := s.repo.Attendance.GetLatest(ctx, collaboratorID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		last = nil
	}

	state, staleDate := DeriveState(last, model.DateIn(s.now(), s.loc), s.loc)
	resp := &dto.AttendanceStatusResponse{CollaboratorID: collaboratorID, State: state}
	switch state {
	case StateOut:
		resp.NextType = model.AttendanceEntry
	case StateIn:
		resp.NextType = model.AttendanceExit
	case StateStaleOpen:
		resp.StaleDate = staleDate.String()
	}
	if last != nil {
		r := toAttendanceRecordResponse(last, s.loc)
		resp.LastRecord = &r
	}
	return resp, nil
}

// ── 内部方法 ──

func toAttendanceRecordResponse(rec *model.AttendanceRecord, loc *time.Location) dto.AttendanceRecordResponse {
	return dto.AttendanceRecordResponse{
		ID:               rec.ID,
		CollaboratorID:   rec.CollaboratorID,
		CollaboratorName: rec.CollaboratorName,
		Timestamp:        dto.FormatTime(rec.Timestamp.In(loc)),
		Date:             model.DateIn(rec.Timestamp, loc).String(),
		Type:             rec.Type,
		PhotoURL:         rec.PhotoURL,
		IsManual:         rec.IsManual,
		Note:             rec.Note,
	}
}
