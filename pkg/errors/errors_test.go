package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestStaleOpenError_IsBlocked(t *testing.T) {
	var err error = &StaleOpenError{
		CollaboratorID: "c-1",
		EntryAt:        time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC),
		StaleDate:      "2024-03-04",
	}
	wrapped := fmt.Errorf("记录考勤失败: %w", err)

	if !errors.Is(wrapped, ErrBlocked) {
		t.Error("期望 StaleOpenError 可被识别为 ErrBlocked")
	}
	if errors.Is(wrapped, ErrConflict) {
		t.Error("StaleOpenError 不应被识别为 ErrConflict")
	}

	so, ok := AsStaleOpen(wrapped)
	if !ok {
		t.Fatal("期望能提取 StaleOpenError")
	}
	if so.StaleDate != "2024-03-04" {
		t.Errorf("期望 StaleDate=2024-03-04, 实际 %s", so.StaleDate)
	}
}

func TestAsStaleOpen_OtherError(t *testing.T) {
	if _, ok := AsStaleOpen(ErrNotFound); ok {
		t.Error("普通错误不应被识别为 StaleOpenError")
	}
}
