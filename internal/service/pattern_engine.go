package service

import (
	"fmt"

	"timeface/internal/model"
	pkgerrors "timeface/pkg/errors"
)

// ExpandPattern 将循环排班模式展开为具体排班行。
//
// 周期位置按日历日推进：区间内第 i 天取 sequence[i mod N]，
// 休息日同样推进位置但不产生记录。每个非休息日为每名员工产出一行。
// 空序列合法，结果为空。
func ExpandPattern(seq model.ShiftSequence, start, end model.Date, collaboratorIDs []string) ([]model.Schedule, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: 开始日期 %s 晚于结束日期 %s", pkgerrors.ErrInvalid, start, end)
	}
	ids := uniqueIDs(collaboratorIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: 员工列表不能为空", pkgerrors.ErrInvalid)
	}
	if len(seq) == 0 {
		return nil, nil
	}

	var rows []model.Schedule
	for offset, day := range model.DateRange(start, end) {
		shiftID := seq.At(offset)
		if shiftID == "" {
			continue
		}
		for _, cid := range ids {
			rows = append(rows, model.Schedule{
				CollaboratorID: cid,
				Date:           day,
				ShiftID:        shiftID,
				Status:         model.ScheduleStatusScheduled,
			})
		}
	}
	return rows, nil
}

// uniqueIDs 去重并去掉空串，保持首次出现顺序
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
