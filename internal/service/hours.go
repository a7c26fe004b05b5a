package service

import (
	"math"
	"sort"
	"time"

	"timeface/internal/model"
)

// HoursOptions 工时汇总参数
type HoursOptions struct {
	// DailyHours 启发式基线每班小时数，<=0 时取 8
	DailyHours float64
	// ScheduledHours 非 nil 时按员工取实际排班时长作为基线，替代启发式
	ScheduledHours map[string]float64
	// WeeklyLimit >0 时统计每周超出部分
	WeeklyLimit float64
	// Location 周归属按入场的本地日期计算
	Location *time.Location
}

// WeekExcess 单周超出上限的工时
type WeekExcess struct {
	WeekStart model.Date
	Worked    float64
	Excess    float64
}

// HoursSummary 单个员工的工时汇总
type HoursSummary struct {
	CollaboratorID   string
	CollaboratorName string
	RecordCount      int
	WorkedHours      float64
	ScheduledHours   float64
	OvertimeHours    float64
	WeeklyExcess     []WeekExcess
}

// AggregateHours 按员工配对入场/出场并计算工时，纯函数。
//
// 每个员工的记录按时间升序扫描：空闲时遇入场即开启，开启时遇出场即累计并关闭。
// 开启时重复入场、空闲时出现出场都直接跳过，因此对异常序列只是近似值。
// 默认基线为 ceil(记录数/2) * DailyHours，加班 = max(0, 实际 - 基线)。
func AggregateHours(records []model.AttendanceRecord, opts HoursOptions) []HoursSummary {
	daily := opts.DailyHours
	if daily <= 0 {
		daily = 8
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	groups := make(map[string][]model.AttendanceRecord)
	var order []string
	for _, r := range records {
		if _, ok := groups[r.CollaboratorID]; !ok {
			order = append(order, r.CollaboratorID)
		}
		groups[r.CollaboratorID] = append(groups[r.CollaboratorID], r)
	}

	summaries := make([]HoursSummary, 0, len(groups))
	for _, cid := range order {
		recs := groups[cid]
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].Timestamp.Before(recs[j].Timestamp)
		})

		var worked time.Duration
		weekly := make(map[model.Date]time.Duration)
		var openEntry *time.Time
		for i := range recs {
			r := &recs[i]
			switch r.Type {
			case model.AttendanceEntry:
				if openEntry == nil {
					ts := r.Timestamp
					openEntry = &ts
				}
			case model.AttendanceExit:
				if openEntry != nil {
					d := r.Timestamp.Sub(*openEntry)
					worked += d
					weekly[model.DateIn(*openEntry, loc).StartOfWeek()] += d
					openEntry = nil
				}
			}
		}

		sum := HoursSummary{
			CollaboratorID:   cid,
			CollaboratorName: latestName(recs),
			RecordCount:      len(recs),
			WorkedHours:      worked.Hours(),
		}
		if opts.ScheduledHours != nil {
			sum.ScheduledHours = opts.ScheduledHours[cid]
		} else {
			sum.ScheduledHours = math.Ceil(float64(len(recs))/2) * daily
		}
		sum.OvertimeHours = math.Max(0, sum.WorkedHours-sum.ScheduledHours)

		if opts.WeeklyLimit > 0 {
			sum.WeeklyExcess = weeklyExcess(weekly, opts.WeeklyLimit)
		}
		summaries = append(summaries, sum)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].CollaboratorName != summaries[j].CollaboratorName {
			return summaries[i].CollaboratorName < summaries[j].CollaboratorName
		}
		return summaries[i].CollaboratorID < summaries[j].CollaboratorID
	})
	return summaries
}

// ScheduledHoursFromRows 按员工累加排班班次时长（跨夜班次按 +24h 计算）
func ScheduledHoursFromRows(rows []model.Schedule) map[string]float64 {
	out := make(map[string]float64)
	for i := range rows {
		r := &rows[i]
		if r.Shift == nil {
			continue
		}
		d, err := r.Shift.Duration()
		if err != nil {
			continue
		}
		out[r.CollaboratorID] += d.Hours()
	}
	return out
}

func weeklyExcess(weekly map[model.Date]time.Duration, limit float64) []WeekExcess {
	var out []WeekExcess
	for week, d := range weekly {
		h := d.Hours()
		if h > limit {
			out = append(out, WeekExcess{WeekStart: week, Worked: h, Excess: h - limit})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart.Before(out[j].WeekStart) })
	return out
}

// 报表展示使用最新的快照姓名
func latestName(sorted []model.AttendanceRecord) string {
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].CollaboratorName != "" {
			return sorted[i].CollaboratorName
		}
	}
	return ""
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
