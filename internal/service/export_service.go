package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"timeface/internal/dto"
	"timeface/internal/model"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail   = errors.New("生成 Excel 文件失败")
	ErrCalendarGenerateFail = errors.New("生成日历文件失败")
)

const calendarProductID = "-//timeface//schedule//ZH"

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportWeek 导出周排班网格：行为员工，列为周一至周日
	ExportWeek(ctx context.Context, start model.Date) (*bytes.Buffer, string, error)
	// ExportCalendar 导出单个员工一周的排班为 iCalendar，每个班次一个 VEVENT
	ExportCalendar(ctx context.Context, start model.Date, collaboratorID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	schedule ScheduleService
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService 创建 ExportService 实例
// loc 为业务时区，班次的 HH:MM 在该时区下解释
func NewExportService(schedule ScheduleService, loc *time.Location, logger *zap.Logger) ExportService {
	return &exportService{schedule: schedule, loc: loc, logger: logger, now: time.Now}
}

var weekdayNames = []string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

// ═══════════════════════════════════════════════════════════
// ExportWeek — 导出周排班为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 标题行：周起止日期
//   - 表头：员工 | 职位 | 周一 MM-DD ... 周日 MM-DD
//   - 单元格：班次名 HH:MM-HH:MM，未排班为 "-"，背景色取班次颜色

func (s *exportService) ExportWeek(ctx context.Context, start model.Date) (*bytes.Buffer, string, error) {
	grid, err := s.schedule.GetWeek(ctx, start)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "排班"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 22)
	f.SetColWidth(sheetName, "B", "B", 16)
	f.SetColWidth(sheetName, colName(3), colName(2+len(grid.Days)), 20)

	headerStyle, _ := f.NewStyle(headerStyleDef())

	// 标题行
	last := grid.Days[len(grid.Days)-1]
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("排班表 %s ~ %s", grid.WeekStart, last))
	f.MergeCell(sheetName, "A1", cell(colName(2+len(grid.Days)), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "员工")
	f.SetCellValue(sheetName, cell("B", row), "职位")
	for i, day := range grid.Days {
		f.SetCellValue(sheetName, cell(colName(3+i), row), fmt.Sprintf("%s %s", weekdayNames[i], day[5:]))
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(2+len(grid.Days)), row), headerStyle)

	// 每种班次颜色一个样式
	shiftStyles := make(map[string]int, len(grid.Shifts))
	for _, sh := range grid.Shifts {
		if sh.Color == "" {
			continue
		}
		st, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{sh.Color}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err == nil {
			shiftStyles[sh.ID] = st
		}
	}
	shiftByID := make(map[string]dto.ShiftResponse, len(grid.Shifts))
	for _, sh := range grid.Shifts {
		shiftByID[sh.ID] = sh
	}

	// 数据行
	row = 3
	for _, r := range grid.Rows {
		f.SetCellValue(sheetName, cell("A", row), r.Collaborator.Name)
		f.SetCellValue(sheetName, cell("B", row), r.Collaborator.Position)
		for i, c := range r.Cells {
			addr := cell(colName(3+i), row)
			if c == nil {
				f.SetCellValue(sheetName, addr, "-")
				continue
			}
			sh, ok := shiftByID[c.ShiftID]
			if !ok {
				f.SetCellValue(sheetName, addr, c.ShiftID)
				continue
			}
			f.SetCellValue(sheetName, addr, fmt.Sprintf("%s %s-%s", sh.Name, sh.StartTime, sh.EndTime))
			if st, ok := shiftStyles[sh.ID]; ok {
				f.SetCellStyle(sheetName, addr, addr, st)
			}
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("schedule_%s.xlsx", grid.WeekStart)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportCalendar — 导出员工周排班为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 事件 UID 取排班 ID，重复订阅时客户端按 UID 更新而非重复添加
// 结束不晚于开始的班次视为跨夜，结束时间落在次日

func (s *exportService) ExportCalendar(ctx context.Context, start model.Date, collaboratorID string) (*bytes.Buffer, string, error) {
	grid, err := s.schedule.GetWeek(ctx, start)
	if err != nil {
		return nil, "", err
	}

	var row *dto.WeekRow
	for i := range grid.Rows {
		if grid.Rows[i].Collaborator.ID == collaboratorID {
			row = &grid.Rows[i]
			break
		}
	}
	if row == nil {
		return nil, "", fmt.Errorf("%w: %s", ErrCollaboratorNotFound, collaboratorID)
	}

	shiftByID := make(map[string]dto.ShiftResponse, len(grid.Shifts))
	for _, sh := range grid.Shifts {
		shiftByID[sh.ID] = sh
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(fmt.Sprintf("%s 排班 %s", row.Collaborator.Name, grid.WeekStart))
	cal.SetXWRTimezone(s.loc.String())

	stamp := s.now()
	for _, c := range row.Cells {
		if c == nil {
			continue
		}
		sh, ok := shiftByID[c.ShiftID]
		if !ok {
			continue
		}
		from, to, err := shiftWindow(c.Date, sh, s.loc)
		if err != nil {
			s.logger.Warn("班次时间无效，跳过日历事件", zap.String("shift_id", sh.ID), zap.Error(err))
			continue
		}
		event := cal.AddEvent(c.ID)
		event.SetDtStampTime(stamp)
		event.SetStartAt(from)
		event.SetEndAt(to)
		event.SetSummary(sh.Name)
		if row.Collaborator.Position != "" {
			event.SetDescription(row.Collaborator.Position)
		}
	}

	buf := new(bytes.Buffer)
	if err := cal.SerializeTo(buf); err != nil {
		s.logger.Error("写入日历失败", zap.Error(err))
		return nil, "", ErrCalendarGenerateFail
	}

	filename := fmt.Sprintf("schedule_%s_%s.ics", grid.WeekStart, collaboratorID)
	return buf, filename, nil
}

// shiftWindow 计算某日班次的起止时刻
func shiftWindow(day string, sh dto.ShiftResponse, loc *time.Location) (time.Time, time.Time, error) {
	d, err := model.ParseDate(day)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	startMin, err := model.ParseClock(sh.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	length, err := (&model.Shift{StartTime: sh.StartTime, EndTime: sh.EndTime}).Duration()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from := d.At(startMin/60, startMin%60, loc)
	return from, from.Add(length), nil
}

// ═══════════════════════════════════════════════════════════
// 工时报表工作簿
// ═══════════════════════════════════════════════════════════
//
// Sheet "工时"：员工 | 记录数 | 实际工时 | 基线工时 | 加班
// Sheet "周超时"：仅在存在超出周上限的周时生成

func renderHoursWorkbook(report *dto.HoursReportResponse) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "工时"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 24)
	f.SetColWidth(sheetName, "B", "E", 14)
	headerStyle, _ := f.NewStyle(headerStyleDef())

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("工时报表 %s ~ %s（基线：%s）", report.From, report.To, report.Baseline))
	f.MergeCell(sheetName, "A1", "E1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	row := 2
	for i, title := range []string{"员工", "记录数", "实际工时", "基线工时", "加班"} {
		f.SetCellValue(sheetName, cell(colName(1+i), row), title)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell("E", row), headerStyle)

	row = 3
	hasExcess := false
	for _, sum := range report.Summaries {
		f.SetCellValue(sheetName, cell("A", row), sum.CollaboratorName)
		f.SetCellValue(sheetName, cell("B", row), sum.RecordCount)
		f.SetCellValue(sheetName, cell("C", row), sum.WorkedHours)
		f.SetCellValue(sheetName, cell("D", row), sum.ScheduledHours)
		f.SetCellValue(sheetName, cell("E", row), sum.OvertimeHours)
		if len(sum.WeeklyExcess) > 0 {
			hasExcess = true
		}
		row++
	}

	if hasExcess {
		excessSheet := "周超时"
		f.NewSheet(excessSheet)
		f.SetColWidth(excessSheet, "A", "A", 24)
		f.SetColWidth(excessSheet, "B", "D", 14)
		f.SetCellValue(excessSheet, "A1", fmt.Sprintf("周工时上限 %d 小时", report.WeeklyHoursLimit))
		f.MergeCell(excessSheet, "A1", "D1")
		f.SetCellStyle(excessSheet, "A1", "A1", headerStyle)
		for i, title := range []string{"员工", "周起始", "实际工时", "超出"} {
			f.SetCellValue(excessSheet, cell(colName(1+i), 2), title)
		}
		f.SetCellStyle(excessSheet, "A2", "D2", headerStyle)

		r := 3
		for _, sum := range report.Summaries {
			for _, w := range sum.WeeklyExcess {
				f.SetCellValue(excessSheet, cell("A", r), sum.CollaboratorName)
				f.SetCellValue(excessSheet, cell("B", r), w.WeekStart)
				f.SetCellValue(excessSheet, cell("C", r), w.WorkedHours)
				f.SetCellValue(excessSheet, cell("D", r), w.ExcessHours)
				r++
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func headerStyleDef() *excelize.Style {
	return &excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}
}

// colName 列序号（1 起）转列名
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx)
	return name
}

// cell 拼接单元格坐标
func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
