package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"timeface/internal/model"
)

// newTestDB 内存 SQLite，每个测试独立
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("打开 SQLite 失败: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取 sql.DB 失败: %v", err)
	}
	// 内存库按连接隔离，固定单连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&model.Collaborator{},
		&model.Shift{},
		&model.ShiftPattern{},
		&model.Schedule{},
		&model.AttendanceRecord{},
		&model.AppSetting{},
	); err != nil {
		t.Fatalf("AutoMigrate 失败: %v", err)
	}
	return db
}

func seedCollaborator(t *testing.T, repo *Repository, name string) *model.Collaborator {
	t.Helper()
	c := &model.Collaborator{Name: name, Position: "operario", Active: true}
	if err := repo.Collaborator.Create(context.Background(), c); err != nil {
		t.Fatalf("创建员工失败: %v", err)
	}
	return c
}

func seedShift(t *testing.T, repo *Repository, name, start, end string) *model.Shift {
	t.Helper()
	s := &model.Shift{Name: name, StartTime: start, EndTime: end, Color: "#22c55e"}
	if err := repo.Shift.Create(context.Background(), s); err != nil {
		t.Fatalf("创建班次失败: %v", err)
	}
	return s
}

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}
