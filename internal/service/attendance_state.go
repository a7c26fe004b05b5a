package service

import (
	"time"

	"timeface/internal/model"
	pkgerrors "timeface/pkg/errors"
)

// 员工考勤状态，由最近一条记录推导，不落库
const (
	StateOut       = "out"
	StateIn        = "in"
	StateStaleOpen = "stale_open"
)

// DeriveState 根据最近一条记录和当天日期推导状态
// 返回 StaleOpen 时 staleDate 为入场所在的本地日期
func DeriveState(last *model.AttendanceRecord, today model.Date, loc *time.Location) (state string, staleDate model.Date) {
	if last == nil || last.Type == model.AttendanceExit {
		return StateOut, model.Date{}
	}
	entryDate := model.DateIn(last.Timestamp, loc)
	if entryDate == today {
		return StateIn, model.Date{}
	}
	return StateStaleOpen, entryDate
}

// DecideNext 判定本次抓拍的记录类型
//   - 无记录或最近为出场：入场
//   - 最近为当天入场：出场
//   - 最近为往日入场：返回 *StaleOpenError，不得写入
func DecideNext(last *model.AttendanceRecord, at time.Time, loc *time.Location) (string, error) {
	state, staleDate := DeriveState(last, model.DateIn(at, loc), loc)
	switch state {
	case StateOut:
		return model.AttendanceEntry, nil
	case StateIn:
		return model.AttendanceExit, nil
	default:
		return "", &pkgerrors.StaleOpenError{
			CollaboratorID: last.CollaboratorID,
			EntryID:        last.ID,
			EntryAt:        last.Timestamp,
			StaleDate:      staleDate.String(),
		}
	}
}
