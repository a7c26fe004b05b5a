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

// ── 排班模式模块业务错误 ──

var (
	ErrShiftPatternNotFound = fmt.Errorf("%w: 排班模式不存在", pkgerrors.ErrNotFound)
	ErrShiftPatternStale    = fmt.Errorf("%w: 排班模式已被修改，请刷新后重试", pkgerrors.ErrConflict)
	ErrInvalidDateRange     = fmt.Errorf("%w: 开始日期不能晚于结束日期", pkgerrors.ErrInvalid)
)

// ShiftPatternService 排班模式业务接口
type ShiftPatternService interface {
	Create(ctx context.Context, req *dto.CreateShiftPatternRequest, callerID string) (*dto.ShiftPatternResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ShiftPatternResponse, error)
	List(ctx context.Context) ([]dto.ShiftPatternResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateShiftPatternRequest, callerID string) (*dto.ShiftPatternResponse, error)
	Delete(ctx context.Context, id string) error
	// Assign 将模式展开并写入排班网格，已存在的单元格替换班次、保留状态，整体原子
	Assign(ctx context.Context, id string, req *dto.AssignPatternRequest, callerID string) (*dto.AssignPatternResponse, error)
}

type shiftPatternService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShiftPatternService 创建 ShiftPatternService 实例
func NewShiftPatternService(repo *repository.Repository, logger *zap.Logger) ShiftPatternService {
	return &shiftPatternService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *shiftPatternService) Create(ctx context.Context, req *dto.CreateShiftPatternRequest, callerID string) (*dto.ShiftPatternResponse, error) {
	seq := model.ShiftSequence(req.Sequence)
	if err := s.ensureShiftsExist(ctx, seq.ShiftIDs()); err != nil {
		return nil, err
	}

	p := &model.ShiftPattern{Name: req.Name, Sequence: seq}
	p.Version = 1
	p.CreatedBy = &callerID
	p.UpdatedBy = &callerID

	if err := s.repo.ShiftPattern.Create(ctx, p); err != nil {
		s.logger.Error("创建排班模式失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("排班模式已创建", zap.String("pattern_id", p.ID), zap.Int("length", len(seq)))
	return toShiftPatternResponse(p), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *shiftPatternService) GetByID(ctx context.Context, id string) (*dto.ShiftPatternResponse, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toShiftPatternResponse(p), nil
}

// ────────────────────── List ──────────────────────

func (s *shiftPatternService) List(ctx context.Context) ([]dto.ShiftPatternResponse, error) {
	list, err := s.repo.ShiftPattern.List(ctx)
	if err != nil {
		s.logger.Error("列出排班模式失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ShiftPatternResponse, 0, len(list))
	for i := range list {
		result = append(result, *toShiftPatternResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *shiftPatternService) Update(ctx context.Context, id string, req *dto.UpdateShiftPatternRequest, callerID string) (*dto.ShiftPatternResponse, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Sequence != nil {
		seq := model.ShiftSequence(req.Sequence)
		if err := s.ensureShiftsExist(ctx, seq.ShiftIDs()); err != nil {
			return nil, err
		}
		p.Sequence = seq
	}
	p.Version = req.Version
	p.UpdatedBy = &callerID

	if err := s.repo.ShiftPattern.Update(ctx, p); err != nil {
		if errors.Is(err, pkgerrors.ErrConflict) {
			return nil, ErrShiftPatternStale
		}
		s.logger.Error("更新排班模式失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toShiftPatternResponse(p), nil
}

// ────────────────────── Delete ──────────────────────

// Delete 删除模式不影响已展开的排班
func (s *shiftPatternService) Delete(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.ShiftPattern.Delete(ctx, id); err != nil {
		s.logger.Error("删除排班模式失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Assign ──────────────────────

func (s *shiftPatternService) Assign(ctx context.Context, id string, req *dto.AssignPatternRequest, callerID string) (*dto.AssignPatternResponse, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := uniqueIDs(req.CollaboratorIDs)
	if err := s.ensureCollaboratorsExist(ctx, ids); err != nil {
		return nil, err
	}
	// 班次在模式创建后可能已被删除
	if err := s.ensureShiftsExist(ctx, p.Sequence.ShiftIDs()); err != nil {
		return nil, err
	}

	rows, err := ExpandPattern(p.Sequence, start, end, ids)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].CreatedBy = &callerID
		rows[i].UpdatedBy = &callerID
	}

	if len(rows) > 0 {
		if err := s.repo.Schedule.UpsertBatch(ctx, rows); err != nil {
			s.logger.Error("写入排班失败",
				zap.String("pattern_id", id),
				zap.Int("rows", len(rows)),
				zap.Error(err),
			)
			return nil, err
		}
	}

	s.logger.Info("排班模式已应用",
		zap.String("pattern_id", id),
		zap.String("start", start.String()),
		zap.String("end", end.String()),
		zap.Int("collaborators", len(ids)),
		zap.Int("rows", len(rows)),
	)

	return &dto.AssignPatternResponse{
		PatternID: id,
		Rows:      len(rows),
		StartDate: start.String(),
		EndDate:   end.String(),
	}, nil
}

// ── 内部方法 ──

func (s *shiftPatternService) get(ctx context.Context, id string) (*model.ShiftPattern, error) {
	p, err := s.repo.ShiftPattern.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftPatternNotFound
		}
		s.logger.Error("查询排班模式失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (s *shiftPatternService) ensureShiftsExist(ctx context.Context, ids []string) error {
	return ensureShiftsExist(ctx, s.repo, ids)
}

func (s *shiftPatternService) ensureCollaboratorsExist(ctx context.Context, ids []string) error {
	return ensureCollaboratorsExist(ctx, s.repo, ids)
}

func ensureShiftsExist(ctx context.Context, repo *repository.Repository, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	shifts, err := repo.Shift.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[string]bool, len(shifts))
	for _, sh := range shifts {
		found[sh.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return fmt.Errorf("%w: %s", ErrShiftNotFound, id)
		}
	}
	return nil
}

func ensureCollaboratorsExist(ctx context.Context, repo *repository.Repository, ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: 员工列表不能为空", pkgerrors.ErrInvalid)
	}
	list, err := repo.Collaborator.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[string]bool, len(list))
	for _, c := range list {
		found[c.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return fmt.Errorf("%w: %s", ErrCollaboratorNotFound, id)
		}
	}
	return nil
}

func parseDateRange(from, to string) (model.Date, model.Date, error) {
	start, err := model.ParseDate(from)
	if err != nil {
		return model.Date{}, model.Date{}, fmt.Errorf("%w: %v", pkgerrors.ErrInvalid, err)
	}
	end, err := model.ParseDate(to)
	if err != nil {
		return model.Date{}, model.Date{}, fmt.Errorf("%w: %v", pkgerrors.ErrInvalid, err)
	}
	if start.After(end) {
		return model.Date{}, model.Date{}, ErrInvalidDateRange
	}
	return start, end, nil
}

func toShiftPatternResponse(p *model.ShiftPattern) *dto.ShiftPatternResponse {
	seq := []*string(p.Sequence)
	if seq == nil {
		seq = []*string{}
	}
	work := 0
	for _, id := range seq {
		if id != nil && *id != "" {
			work++
		}
	}
	return &dto.ShiftPatternResponse{
		ID:       p.ID,
		Name:     p.Name,
		Sequence: seq,
		Length:   len(seq),
		WorkDays: work,
		Version:  p.Version,
	}
}
