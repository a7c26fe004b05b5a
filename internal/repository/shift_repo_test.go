package repository

import (
	"context"
	"errors"
	"testing"

	"timeface/internal/model"
	pkgerrors "timeface/pkg/errors"
)

func TestShiftRepo_OptimisticLock(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	s := seedShift(t, repo, "Mañana", "06:00", "14:00")

	stale := *s
	s.Name = "Madrugada"
	if err := repo.Shift.Update(ctx, s); err != nil {
		t.Fatalf("Update 失败: %v", err)
	}
	if s.Version != 2 {
		t.Errorf("期望版本 2, 实际 %d", s.Version)
	}

	stale.Name = "Otro"
	if err := repo.Shift.Update(ctx, &stale); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Errorf("过期版本期望 ErrConflict, 实际 %v", err)
	}
}

func TestShiftPatternRepo_SequenceRoundTrip(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	a := seedShift(t, repo, "Mañana", "06:00", "14:00")
	other := seedShift(t, repo, "Noche", "22:00", "06:00")

	p := &model.ShiftPattern{Name: "4x4", Sequence: model.ShiftSequence{&a.ID, nil, &a.ID, nil}}
	if err := repo.ShiftPattern.Create(ctx, p); err != nil {
		t.Fatalf("Create 失败: %v", err)
	}

	got, err := repo.ShiftPattern.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID 失败: %v", err)
	}
	if len(got.Sequence) != 4 || got.Sequence[1] != nil || *got.Sequence[0] != a.ID {
		t.Errorf("序列回读错误: %v", got.Sequence)
	}

	n, _ := repo.ShiftPattern.CountReferencing(ctx, a.ID)
	if n != 1 {
		t.Errorf("期望 1 个模式引用该班次, 实际 %d", n)
	}
	n, _ = repo.ShiftPattern.CountReferencing(ctx, other.ID)
	if n != 0 {
		t.Errorf("期望 0 个模式引用夜班, 实际 %d", n)
	}
}

func TestAppSettingRepo_Upsert(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	err := repo.Setting.Upsert(ctx, []model.AppSetting{
		{Key: model.SettingWeeklyHoursLimit, Value: "44"},
		{Key: model.SettingLawReference, Value: "Ley 2101"},
	})
	if err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}
	if err := repo.Setting.Upsert(ctx, []model.AppSetting{{Key: model.SettingWeeklyHoursLimit, Value: "42"}}); err != nil {
		t.Fatalf("二次 Upsert 失败: %v", err)
	}

	s, err := repo.Setting.Get(ctx, model.SettingWeeklyHoursLimit)
	if err != nil {
		t.Fatalf("Get 失败: %v", err)
	}
	if s.Value != "42" {
		t.Errorf("期望 42, 实际 %s", s.Value)
	}
	list, _ := repo.Setting.List(ctx)
	if len(list) != 2 {
		t.Errorf("期望 2 项, 实际 %d", len(list))
	}
}
