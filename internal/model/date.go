package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Date 不含时区的日历日期，所有排班日期运算都基于它完成。
// 数据库列类型为 DATE，JSON 形如 "2024-03-04"。
type Date struct {
	civil.Date
}

// NewDate 由年月日构造日期
func NewDate(year int, month time.Month, day int) Date {
	return Date{civil.Date{Year: year, Month: month, Day: day}}
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return Date{}, fmt.Errorf("日期格式无效 %q，应为 YYYY-MM-DD", s)
	}
	return Date{d}, nil
}

// DateIn 返回瞬时时间在指定时区下的日历日期
func DateIn(t time.Time, loc *time.Location) Date {
	return Date{civil.DateOf(t.In(loc))}
}

// AddDays 按日历日偏移
func (d Date) AddDays(n int) Date {
	return Date{d.Date.AddDays(n)}
}

// DaysSince 返回 d 与 s 相差的日历天数
func (d Date) DaysSince(s Date) int {
	return d.Date.DaysSince(s.Date)
}

// Before 是否早于 e
func (d Date) Before(e Date) bool { return d.Date.Before(e.Date) }

// After 是否晚于 e
func (d Date) After(e Date) bool { return d.Date.After(e.Date) }

// Weekday 星期几
func (d Date) Weekday() time.Weekday {
	return d.Date.In(time.UTC).Weekday()
}

// StartOfWeek 返回所在周的周一
func (d Date) StartOfWeek() Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// At 返回该日期在 loc 时区下 hh:mm 对应的瞬时时间
func (d Date) At(hour, minute int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, loc)
}

// Scan 实现 sql.Scanner，兼容 PostgreSQL time.Time 与 SQLite 文本
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("Date.Scan: unsupported type %T", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > 10 {
		s = s[:10]
	}
	parsed, err := civil.ParseDate(s)
	if err != nil {
		return fmt.Errorf("Date.Scan: %w", err)
	}
	*d = Date{parsed}
	return nil
}

// Value 实现 driver.Valuer
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// DateRange 返回 [start, end] 闭区间内的每一天，start 晚于 end 时为空
func DateRange(start, end Date) []Date {
	if start.After(end) {
		return nil
	}
	n := end.DaysSince(start) + 1
	days := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, start.AddDays(i))
	}
	return days
}
