package dto

import "time"

// TimeLayout 响应中的时间格式（带时区偏移）
const TimeLayout = time.RFC3339

// FormatTime 按响应格式输出时间，零值输出空串
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

// DateRangeQuery 日期区间查询参数（闭区间）
type DateRangeQuery struct {
	From string `form:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to"   binding:"required,datetime=2006-01-02"`
}
