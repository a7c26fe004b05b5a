package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timeface/internal/dto"
	"timeface/internal/model"
	"timeface/internal/repository"
	pkgerrors "timeface/pkg/errors"
)

// ── 班次模块业务错误 ──

var (
	ErrShiftNotFound    = fmt.Errorf("%w: 班次不存在", pkgerrors.ErrNotFound)
	ErrShiftInUse       = fmt.Errorf("%w: 班次仍被排班或排班模式引用", pkgerrors.ErrConflict)
	ErrShiftStale       = fmt.Errorf("%w: 班次已被修改，请刷新后重试", pkgerrors.ErrConflict)
	ErrInvalidShiftTime = fmt.Errorf("%w: 班次时间格式应为 HH:MM", pkgerrors.ErrInvalid)
)

// ShiftService 班次目录业务接口
type ShiftService interface {
	Create(ctx context.Context, req *dto.CreateShiftRequest, callerID string) (*dto.ShiftResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ShiftResponse, error)
	List(ctx context.Context) ([]dto.ShiftResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateShiftRequest, callerID string) (*dto.ShiftResponse, error)
	Delete(ctx context.Context, id string) error
}

type shiftService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(repo *repository.Repository, logger *zap.Logger) ShiftService {
	return &shiftService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *shiftService) Create(ctx context.Context, req *dto.CreateShiftRequest, callerID string) (*dto.ShiftResponse, error) {
	shift := &model.Shift{
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Color:     req.Color,
	}
	if shift.Color == "" {
		shift.Color = "#3b82f6"
	}
	if _, err := shift.Duration(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShiftTime, err)
	}
	shift.CreatedBy = &callerID
	shift.UpdatedBy = &callerID
	shift.Version = 1

	if err := s.repo.Shift.Create(ctx, shift); err != nil {
		s.logger.Error("创建班次失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("班次已创建", zap.String("shift_id", shift.ID), zap.String("name", shift.Name))
	return toShiftResponse(shift), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *shiftService) GetByID(ctx context.Context, id string) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toShiftResponse(shift), nil
}

// ────────────────────── List ──────────────────────

func (s *shiftService) List(ctx context.Context) ([]dto.ShiftResponse, error) {
	shifts, err := s.repo.Shift.List(ctx)
	if err != nil {
		s.logger.Error("列出班次失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, *toShiftResponse(&shifts[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *shiftService) Update(ctx context.Context, id string, req *dto.UpdateShiftRequest, callerID string) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		shift.Name = *req.Name
	}
	if req.StartTime != nil {
		shift.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		shift.EndTime = *req.EndTime
	}
	if req.Color != nil {
		shift.Color = *req.Color
	}
	if _, err := shift.Duration(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShiftTime, err)
	}
	shift.Version = req.Version
	shift.UpdatedBy = &callerID

	if err := s.repo.Shift.Update(ctx, shift); err != nil {
		if errors.Is(err, pkgerrors.ErrConflict) {
			return nil, ErrShiftStale
		}
		s.logger.Error("更新班次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toShiftResponse(shift), nil
}

// ────────────────────── Delete ──────────────────────

func (s *shiftService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Shift.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		return err
	}

	// 排班行与模式序列均以 ID 引用班次，被引用时禁止删除
	used, err := s.repo.Schedule.CountByShift(ctx, id)
	if err != nil {
		return err
	}
	if used == 0 {
		used, err = s.repo.ShiftPattern.CountReferencing(ctx, id)
		if err != nil {
			return err
		}
	}
	if used > 0 {
		return ErrShiftInUse
	}

	if err := s.repo.Shift.Delete(ctx, id); err != nil {
		s.logger.Error("删除班次失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("班次已删除", zap.String("shift_id", id))
	return nil
}

// ── 内部方法 ──

func toShiftResponse(shift *model.Shift) *dto.ShiftResponse {
	resp := &dto.ShiftResponse{
		ID:        shift.ID,
		Name:      shift.Name,
		StartTime: shift.StartTime,
		EndTime:   shift.EndTime,
		Color:     shift.Color,
		Version:   shift.Version,
	}
	if d, err := shift.Duration(); err == nil {
		resp.DurationHours = roundHours(d.Hours())
	}
	return resp
}
