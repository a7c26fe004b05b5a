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

// ── 排班网格模块业务错误 ──

var (
	ErrScheduleNotFound      = fmt.Errorf("%w: 该员工当天没有排班", pkgerrors.ErrNotFound)
	ErrEmptySourceWeek       = fmt.Errorf("%w: 上一周没有可复制的排班", pkgerrors.ErrNotFound)
	ErrCopyRangeTooLong      = fmt.Errorf("%w: 复制区间不能超过 7 天", pkgerrors.ErrInvalid)
	ErrInvalidScheduleStatus = fmt.Errorf("%w: 排班状态无效", pkgerrors.ErrInvalid)
)

// 一周天数，复制周的源窗口偏移
const daysPerWeek = 7

// ScheduleService 排班网格业务接口
// 网格中没有记录即未排班，不存在“空班次”行
type ScheduleService interface {
	// GetWeek 返回员工 × 7 天网格，start 归一到所在周的周一
	GetWeek(ctx context.Context, start model.Date) (*dto.WeekGridResponse, error)
	// SetCell 新建、替换班次或幂等不变
	SetCell(ctx context.Context, req *dto.SetCellRequest, callerID string) (*dto.CellResult, error)
	// RemoveCell 删除单元格，不存在时不做任何事
	RemoveCell(ctx context.Context, req *dto.RemoveCellRequest) (*dto.CellResult, error)
	// CopyWeek 将前 7 天平移到目标区间，只填空位
	CopyWeek(ctx context.Context, req *dto.CopyWeekRequest, callerID string) (*dto.BulkWriteResponse, error)
	// FillGaps 对员工 × 日期的笛卡尔积中的空位写入指定班次
	FillGaps(ctx context.Context, req *dto.FillGapsRequest, callerID string) (*dto.BulkWriteResponse, error)
	UpdateStatus(ctx context.Context, req *dto.UpdateScheduleStatusRequest) (*dto.ScheduleCell, error)
}

type scheduleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, logger: logger}
}

// ────────────────────── GetWeek ──────────────────────

func (s *scheduleService) GetWeek(ctx context.Context, start model.Date) (*dto.WeekGridResponse, error) {
	weekStart := start.StartOfWeek()
	weekEnd := weekStart.AddDays(daysPerWeek - 1)
	days := model.DateRange(weekStart, weekEnd)

	collaborators, err := s.repo.Collaborator.List(ctx, true)
	if err != nil {
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}
	rows, err := s.repo.Schedule.ListByRange(ctx, weekStart, weekEnd, nil)
	if err != nil {
		s.logger.Error("查询周排班失败", zap.String("week_start", weekStart.String()), zap.Error(err))
		return nil, err
	}
	// 班次目录每次请求直接查询
	shifts, err := s.repo.Shift.List(ctx)
	if err != nil {
		return nil, err
	}

	// 已停用但本周仍有排班的员工也要出现在网格中
	listed := make(map[string]bool, len(collaborators))
	for _, c := range collaborators {
		listed[c.ID] = true
	}
	var missing []string
	for _, r := range rows {
		if !listed[r.CollaboratorID] {
			listed[r.CollaboratorID] = true
			missing = append(missing, r.CollaboratorID)
		}
	}
	if len(missing) > 0 {
		extra, err := s.repo.Collaborator.ListByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		collaborators = append(collaborators, extra...)
	}

	cells := make(map[model.ScheduleKey]*model.Schedule, len(rows))
	for i := range rows {
		cells[rows[i].Key()] = &rows[i]
	}

	resp := &dto.WeekGridResponse{
		WeekStart: weekStart.String(),
		Days:      make([]string, 0, len(days)),
		Shifts:    make([]dto.ShiftResponse, 0, len(shifts)),
		Rows:      make([]dto.WeekRow, 0, len(collaborators)),
	}
	for _, d := range days {
		resp.Days = append(resp.Days, d.String())
	}
	for i := range shifts {
		resp.Shifts = append(resp.Shifts, *toShiftResponse(&shifts[i]))
	}
	for i := range collaborators {
		c := &collaborators[i]
		row := dto.WeekRow{
			Collaborator: toCollaboratorBrief(c),
			Cells:        make([]*dto.ScheduleCell, len(days)),
		}
		for j, d := range days {
			if sch, ok := cells[model.ScheduleKey{CollaboratorID: c.ID, Date: d}]; ok {
				row.Cells[j] = toScheduleCell(sch)
			}
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp, nil
}

// ────────────────────── SetCell ──────────────────────

func (s *scheduleService) SetCell(ctx context.Context, req *dto.SetCellRequest, callerID string) (*dto.CellResult, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := ensureCollaboratorsExist(ctx, s.repo, []string{req.CollaboratorID}); err != nil {
		return nil, err
	}
	if err := ensureShiftsExist(ctx, s.repo, []string{req.ShiftID}); err != nil {
		return nil, err
	}

	var result dto.CellResult
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		existing, err := tx.Schedule.GetByKey(ctx, req.CollaboratorID, date)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := &model.Schedule{
				CollaboratorID: req.CollaboratorID,
				Date:           date,
				ShiftID:        req.ShiftID,
				Status:         model.ScheduleStatusScheduled,
			}
			row.CreatedBy = &callerID
			row.UpdatedBy = &callerID
			if err := tx.Schedule.Create(ctx, row); err != nil {
				return err
			}
			result = dto.CellResult{Cell: toScheduleCell(row), Changed: true}
			return nil
		case err != nil:
			return err
		}

		if existing.ShiftID == req.ShiftID {
			result = dto.CellResult{Cell: toScheduleCell(existing), Changed: false}
			return nil
		}
		if err := tx.Schedule.UpdateShift(ctx, existing.ID, req.ShiftID, &callerID); err != nil {
			return err
		}
		existing.ShiftID = req.ShiftID
		existing.Shift = nil
		result = dto.CellResult{Cell: toScheduleCell(existing), Changed: true}
		return nil
	})
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrConflict) {
			s.logger.Error("设置排班失败",
				zap.String("collaborator_id", req.CollaboratorID),
				zap.String("date", date.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}
	return &result, nil
}

// ────────────────────── RemoveCell ──────────────────────

func (s *scheduleService) RemoveCell(ctx context.Context, req *dto.RemoveCellRequest) (*dto.CellResult, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	n, err := s.repo.Schedule.DeleteByKey(ctx, req.CollaboratorID, date)
	if err != nil {
		s.logger.Error("删除排班失败",
			zap.String("collaborator_id", req.CollaboratorID),
			zap.String("date", date.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return &dto.CellResult{Changed: n > 0}, nil
}

// ────────────────────── CopyWeek ──────────────────────

func (s *scheduleService) CopyWeek(ctx context.Context, req *dto.CopyWeekRequest, callerID string) (*dto.BulkWriteResponse, error) {
	targetStart, targetEnd, err := parseDateRange(req.TargetStart, req.TargetEnd)
	if err != nil {
		return nil, err
	}
	// 源窗口与目标窗口不得重叠
	if targetEnd.DaysSince(targetStart) >= daysPerWeek {
		return nil, ErrCopyRangeTooLong
	}

	sourceStart := targetStart.AddDays(-daysPerWeek)
	sourceEnd := targetEnd.AddDays(-daysPerWeek)
	source, err := s.repo.Schedule.ListByRange(ctx, sourceStart, sourceEnd, nil)
	if err != nil {
		s.logger.Error("查询源周排班失败", zap.Error(err))
		return nil, err
	}
	if len(source) == 0 {
		return nil, fmt.Errorf("%w (%s ~ %s)", ErrEmptySourceWeek, sourceStart, sourceEnd)
	}

	rows := make([]model.Schedule, 0, len(source))
	for _, src := range source {
		row := model.Schedule{
			CollaboratorID: src.CollaboratorID,
			Date:           src.Date.AddDays(daysPerWeek),
			ShiftID:        src.ShiftID,
			Status:         model.ScheduleStatusScheduled,
		}
		row.CreatedBy = &callerID
		row.UpdatedBy = &callerID
		rows = append(rows, row)
	}

	inserted, err := s.repo.Schedule.InsertMissing(ctx, rows)
	if err != nil {
		s.logger.Error("复制周排班失败", zap.Int("rows", len(rows)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("周排班已复制",
		zap.String("target_start", targetStart.String()),
		zap.String("target_end", targetEnd.String()),
		zap.Int64("inserted", inserted),
		zap.Int("source_rows", len(rows)),
	)
	return &dto.BulkWriteResponse{Inserted: int(inserted), Skipped: len(rows) - int(inserted)}, nil
}

// ────────────────────── FillGaps ──────────────────────

func (s *scheduleService) FillGaps(ctx context.Context, req *dto.FillGapsRequest, callerID string) (*dto.BulkWriteResponse, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	ids := uniqueIDs(req.CollaboratorIDs)
	if err := ensureCollaboratorsExist(ctx, s.repo, ids); err != nil {
		return nil, err
	}
	if err := ensureShiftsExist(ctx, s.repo, []string{req.ShiftID}); err != nil {
		return nil, err
	}

	days := model.DateRange(start, end)
	rows := make([]model.Schedule, 0, len(days)*len(ids))
	for _, cid := range ids {
		for _, d := range days {
			row := model.Schedule{
				CollaboratorID: cid,
				Date:           d,
				ShiftID:        req.ShiftID,
				Status:         model.ScheduleStatusScheduled,
			}
			row.CreatedBy = &callerID
			row.UpdatedBy = &callerID
			rows = append(rows, row)
		}
	}

	inserted, err := s.repo.Schedule.InsertMissing(ctx, rows)
	if err != nil {
		s.logger.Error("填充空位失败", zap.Int("rows", len(rows)), zap.Error(err))
		return nil, err
	}
	return &dto.BulkWriteResponse{Inserted: int(inserted), Skipped: len(rows) - int(inserted)}, nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *scheduleService) UpdateStatus(ctx context.Context, req *dto.UpdateScheduleStatusRequest) (*dto.ScheduleCell, error) {
	if !model.ValidScheduleStatus(req.Status) {
		return nil, ErrInvalidScheduleStatus
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.Schedule.GetByKey(ctx, req.CollaboratorID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	if err := s.repo.Schedule.UpdateStatus(ctx, row.ID, req.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	row.Status = req.Status
	return toScheduleCell(row), nil
}

// ── 内部方法 ──

func parseDate(s string) (model.Date, error) {
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, fmt.Errorf("%w: %v", pkgerrors.ErrInvalid, err)
	}
	return d, nil
}

func toScheduleCell(row *model.Schedule) *dto.ScheduleCell {
	cell := &dto.ScheduleCell{
		ID:             row.ID,
		CollaboratorID: row.CollaboratorID,
		Date:           row.Date.String(),
		ShiftID:        row.ShiftID,
		Status:         row.Status,
	}
	if row.Shift != nil {
		cell.Shift = toShiftResponse(row.Shift)
	}
	return cell
}
