package service

import (
	"context"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"timeface/config"
	"timeface/internal/dto"
	"timeface/internal/model"
)

func setupTestReportService(baseline string) (ReportService, *mockRepos) {
	repo, m := newMockRepos()
	cfg := testConfig()
	cfg.Attendance.HoursBaseline = baseline
	settings := NewSettingService(cfg, repo, zap.NewNop())
	return NewReportService(&cfg.Attendance, repo, settings, zap.NewNop()), m
}

func TestReportService_Hours_Heuristic(t *testing.T) {
	svc, m := setupTestReportService(config.BaselineHeuristic)
	m.attendance.add("c1", model.AttendanceEntry, localTime(2024, 3, 5, 8, 0))
	m.attendance.add("c1", model.AttendanceExit, localTime(2024, 3, 5, 17, 0))
	// 区间外
	m.attendance.add("c1", model.AttendanceEntry, localTime(2024, 3, 7, 8, 0))

	resp, err := svc.Hours(context.Background(), &dto.HoursReportRequest{From: "2024-03-05", To: "2024-03-05"})
	if err != nil {
		t.Fatalf("Hours 应成功: %v", err)
	}
	if resp.Baseline != config.BaselineHeuristic || resp.WeeklyHoursLimit != 44 {
		t.Errorf("报表元信息不正确: %+v", resp)
	}
	if len(resp.Summaries) != 1 {
		t.Fatalf("期望 1 个汇总, 实际 %d", len(resp.Summaries))
	}
	s := resp.Summaries[0]
	if s.WorkedHours != 9 || s.ScheduledHours != 8 || s.OvertimeHours != 1 || s.RecordCount != 2 {
		t.Errorf("期望 9/8/1/2, 实际 %+v", s)
	}
}

func TestReportService_Hours_ScheduleBaseline(t *testing.T) {
	svc, m := setupTestReportService(config.BaselineSchedule)
	m.shifts.add("shift-a", "早班", "08:00", "14:00")
	m.schedules.put(&model.Schedule{CollaboratorID: "c1", Date: date(2024, 3, 5), ShiftID: "shift-a"})
	m.attendance.add("c1", model.AttendanceEntry, localTime(2024, 3, 5, 8, 0))
	m.attendance.add("c1", model.AttendanceExit, localTime(2024, 3, 5, 17, 0))

	resp, err := svc.Hours(context.Background(), &dto.HoursReportRequest{From: "2024-03-04", To: "2024-03-10"})
	if err != nil {
		t.Fatalf("Hours 应成功: %v", err)
	}
	s := resp.Summaries[0]
	if s.ScheduledHours != 6 || s.OvertimeHours != 3 {
		t.Errorf("排班基线期望 6/3, 实际 %+v", s)
	}
}

func TestReportService_ExportHours(t *testing.T) {
	svc, m := setupTestReportService(config.BaselineHeuristic)
	m.attendance.add("c1", model.AttendanceEntry, localTime(2024, 3, 5, 8, 0))
	m.attendance.add("c1", model.AttendanceExit, localTime(2024, 3, 5, 17, 0))

	buf, name, err := svc.ExportHours(context.Background(), &dto.HoursReportRequest{From: "2024-03-04", To: "2024-03-10"})
	if err != nil {
		t.Fatalf("ExportHours 应成功: %v", err)
	}
	if name != "hours_2024-03-04_2024-03-10.xlsx" {
		t.Errorf("文件名不正确: %s", name)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容应为合法 xlsx: %v", err)
	}
	defer f.Close()
	v, _ := f.GetCellValue("工时", "C3")
	if v != "9" {
		t.Errorf("期望 C3=9, 实际 %q", v)
	}
}
