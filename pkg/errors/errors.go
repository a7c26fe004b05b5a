package errors

import (
	"errors"
	"fmt"
	"time"
)

// 领域错误分类，业务层通过 fmt.Errorf("%w: ...") 包装后向上传播
var (
	// ErrNotFound 目标不存在（排班模式、员工、班次等）
	ErrNotFound = errors.New("资源不存在")
	// ErrConflict 唯一性冲突，调用方可重试
	ErrConflict = errors.New("数据冲突，请刷新后重试")
	// ErrBlocked 操作被阻断，需要人工处理
	ErrBlocked = errors.New("操作被阻断")
	// ErrInvalid 输入参数不合法
	ErrInvalid = errors.New("参数不合法")
)

// StaleOpenError 员工存在跨日未关闭的入场记录
type StaleOpenError struct {
	CollaboratorID string
	EntryID        string
	EntryAt        time.Time
	StaleDate      string // YYYY-MM-DD
}

func (e *StaleOpenError) Error() string {
	return fmt.Sprintf("员工 %s 在 %s 有未关闭的入场记录，请先人工补录出场", e.CollaboratorID, e.StaleDate)
}

// Unwrap 使 errors.Is(err, ErrBlocked) 成立
func (e *StaleOpenError) Unwrap() error { return ErrBlocked }

// AsStaleOpen 提取 StaleOpenError
func AsStaleOpen(err error) (*StaleOpenError, bool) {
	var target *StaleOpenError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
