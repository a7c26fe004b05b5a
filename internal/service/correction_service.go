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
)

// ── 人工补录模块业务错误 ──

var (
	ErrNothingToCorrect = fmt.Errorf("%w: 该员工没有跨日未关闭的入场", pkgerrors.ErrInvalid)
	ErrExitBeforeEntry  = fmt.Errorf("%w: 出场时间必须晚于入场时间", pkgerrors.ErrInvalid)
	ErrExitInFuture     = fmt.Errorf("%w: 出场时间不能晚于当前时间", pkgerrors.ErrInvalid)
)

// 默认建议出场时刻
const (
	suggestedExitHour   = 18
	suggestedExitMinute = 0
)

// CorrectionService 跨日未关闭入场的人工补录
// 补录只追加一条出场记录，不修改历史
type CorrectionService interface {
	ListStaleOpen(ctx context.Context) ([]dto.StaleShiftResponse, error)
	CloseStale(ctx context.Context, req *dto.CloseStaleShiftRequest, callerID string) (*dto.AttendanceRecordResponse, error)
}

type correctionService struct {
	loc    *time.Location
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewCorrectionService 创建 CorrectionService 实例
func NewCorrectionService(cfg *config.AttendanceConfig, repo *repository.Repository, logger *zap.Logger) CorrectionService {
	return &correctionService{loc: cfg.Location(), repo: repo, logger: logger, now: time.Now}
}

// SuggestExit 入场当天 18:00；入场晚于该时刻时取入场后一小时
func SuggestExit(entry time.Time, loc *time.Location) time.Time {
	exit := model.DateIn(entry, loc).At(suggestedExitHour, suggestedExitMinute, loc)
	if !exit.After(entry) {
		exit = entry.Add(time.Hour)
	}
	return exit
}

// ────────────────────── ListStaleOpen ──────────────────────

func (s *correctionService) ListStaleOpen(ctx context.Context) ([]dto.StaleShiftResponse, error) {
	open, err := s.repo.Attendance.ListOpenEntries(ctx)
	if err != nil {
		s.logger.Error("查询未关闭入场失败", zap.Error(err))
		return nil, err
	}

	today := model.DateIn(s.now(), s.loc)
	result := make([]dto.StaleShiftResponse, 0, len(open))
	for i := range open {
		rec := &open[i]
		state, staleDate := DeriveState(rec, today, s.loc)
		if state != StateStaleOpen {
			continue
		}
		result = append(result, dto.StaleShiftResponse{
			CollaboratorID:   rec.CollaboratorID,
			CollaboratorName: rec.CollaboratorName,
			EntryID:          rec.ID,
			EntryAt:          dto.FormatTime(rec.Timestamp.In(s.loc)),
			StaleDate:        staleDate.String(),
			SuggestedExit:    dto.FormatTime(SuggestExit(rec.Timestamp, s.loc)),
		})
	}
	return result, nil
}

// ────────────────────── CloseStale ──────────────────────

func (s *correctionService) CloseStale(ctx context.Context, req *dto.CloseStaleShiftRequest, callerID string) (*dto.AttendanceRecordResponse, error) {
	exitAt, err := time.Parse(dto.TimeLayout, req.ExitAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrInvalid, err)
	}
	now := s.now()
	if exitAt.After(now) {
		return nil, ErrExitInFuture
	}

	var created *model.AttendanceRecord
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		collaborator, err := tx.Collaborator.GetForUpdate(ctx, req.CollaboratorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCollaboratorNotFound
			}
			return err
		}

		last, err := tx.Attendance.GetLatest(ctx, req.CollaboratorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNothingToCorrect
			}
			return err
		}
		if state, _ := DeriveState(last, model.DateIn(now, s.loc), s.loc); state != StateStaleOpen {
			return ErrNothingToCorrect
		}
		if !exitAt.After(last.Timestamp) {
			return ErrExitBeforeEntry
		}

		rec := &model.AttendanceRecord{
			CollaboratorID:   collaborator.ID,
			CollaboratorName: collaborator.Name,
			Timestamp:        exitAt,
			Type:             model.AttendanceExit,
			IsManual:         true,
			Note:             req.Note,
			CreatedBy:        &callerID,
		}
		if err := tx.Attendance.Create(ctx, rec); err != nil {
			return err
		}
		created = rec
		return nil
	})
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrInvalid) && !errors.Is(err, pkgerrors.ErrNotFound) {
			s.logger.Error("补录出场失败", zap.String("collaborator_id", req.CollaboratorID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("已补录出场",
		zap.String("collaborator_id", req.CollaboratorID),
		zap.Time("exit_at", exitAt),
		zap.String("by", callerID),
	)
	resp := toAttendanceRecordResponse(created, s.loc)
	return &resp, nil
}
