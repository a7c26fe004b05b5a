package service

import (
	"bytes"
	"context"
	"time"

	"go.uber.org/zap"

	"timeface/config"
	"timeface/internal/dto"
	"timeface/internal/repository"
)

// ReportService 工时报表业务接口
type ReportService interface {
	Hours(ctx context.Context, req *dto.HoursReportRequest) (*dto.HoursReportResponse, error)
	// ExportHours 以 Excel 导出工时报表，返回内容与建议文件名
	ExportHours(ctx context.Context, req *dto.HoursReportRequest) (*bytes.Buffer, string, error)
}

type reportService struct {
	cfg      *config.AttendanceConfig
	loc      *time.Location
	repo     *repository.Repository
	settings SettingService
	logger   *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(cfg *config.AttendanceConfig, repo *repository.Repository, settings SettingService, logger *zap.Logger) ReportService {
	return &reportService{cfg: cfg, loc: cfg.Location(), repo: repo, settings: settings, logger: logger}
}

// ────────────────────── Hours ──────────────────────

func (s *reportService) Hours(ctx context.Context, req *dto.HoursReportRequest) (*dto.HoursReportResponse, error) {
	start, end, err := parseDateRange(req.From, req.To)
	if err != nil {
		return nil, err
	}
	from := start.At(0, 0, s.loc)
	to := end.AddDays(1).At(0, 0, s.loc)

	records, err := s.repo.Attendance.List(ctx, repository.AttendanceFilter{
		CollaboratorID: req.CollaboratorID,
		From:           &from,
		To:             &to,
	})
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.Error(err))
		return nil, err
	}

	limit, err := s.settings.WeeklyHoursLimit(ctx)
	if err != nil {
		s.logger.Warn("读取周工时上限失败，使用配置文件", zap.Error(err))
		limit = s.cfg.WeeklyHoursLimit
	}

	opts := HoursOptions{
		DailyHours:  s.cfg.DailyHours,
		WeeklyLimit: float64(limit),
		Location:    s.loc,
	}
	if s.cfg.HoursBaseline == config.BaselineSchedule {
		var ids []string
		if req.CollaboratorID != "" {
			ids = []string{req.CollaboratorID}
		}
		rows, err := s.repo.Schedule.ListByRange(ctx, start, end, ids)
		if err != nil {
			s.logger.Error("查询排班失败", zap.Error(err))
			return nil, err
		}
		opts.ScheduledHours = ScheduledHoursFromRows(rows)
	}

	summaries := AggregateHours(records, opts)

	resp := &dto.HoursReportResponse{
		From:             start.String(),
		To:               end.String(),
		Baseline:         s.cfg.HoursBaseline,
		WeeklyHoursLimit: limit,
		Summaries:        make([]dto.HoursSummaryResponse, 0, len(summaries)),
	}
	for _, sum := range summaries {
		item := dto.HoursSummaryResponse{
			CollaboratorID:   sum.CollaboratorID,
			CollaboratorName: sum.CollaboratorName,
			RecordCount:      sum.RecordCount,
			WorkedHours:      roundHours(sum.WorkedHours),
			ScheduledHours:   roundHours(sum.ScheduledHours),
			OvertimeHours:    roundHours(sum.OvertimeHours),
		}
		for _, w := range sum.WeeklyExcess {
			item.WeeklyExcess = append(item.WeeklyExcess, dto.WeekExcessResponse{
				WeekStart:   w.WeekStart.String(),
				WorkedHours: roundHours(w.Worked),
				ExcessHours: roundHours(w.Excess),
			})
		}
		resp.Summaries = append(resp.Summaries, item)
	}
	return resp, nil
}

// ────────────────────── ExportHours ──────────────────────

func (s *reportService) ExportHours(ctx context.Context, req *dto.HoursReportRequest) (*bytes.Buffer, string, error) {
	report, err := s.Hours(ctx, req)
	if err != nil {
		return nil, "", err
	}
	buf, err := renderHoursWorkbook(report)
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, "hours_" + report.From + "_" + report.To + ".xlsx", nil
}
