package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Auth:   AuthConfig{JWTSecret: "0123456789abcdef0123"},
		Attendance: AttendanceConfig{
			Timezone:          "America/Bogota",
			DailyHours:        8,
			WeeklyHoursLimit:  44,
			UnscheduledPolicy: UnscheduledAllow,
			HoursBaseline:     BaselineHeuristic,
		},
		FaceMatch: FaceMatchConfig{Provider: "none"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"合法配置", func(c *Config) {}, false},
		{"缺少 JWT 密钥", func(c *Config) { c.Auth.JWTSecret = "" }, true},
		{"JWT 密钥过短", func(c *Config) { c.Auth.JWTSecret = "short" }, true},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, true},
		{"无效时区", func(c *Config) { c.Attendance.Timezone = "Mars/Base" }, true},
		{"每日工时为 0", func(c *Config) { c.Attendance.DailyHours = 0 }, true},
		{"周工时上限为 0", func(c *Config) { c.Attendance.WeeklyHoursLimit = 0 }, true},
		{"未知未排班策略", func(c *Config) { c.Attendance.UnscheduledPolicy = "maybe" }, true},
		{"未知工时基线", func(c *Config) { c.Attendance.HoursBaseline = "magic" }, true},
		{"未知人脸比对提供方", func(c *Config) { c.FaceMatch.Provider = "aws" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("期望 wantErr=%v, 实际 err=%v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
auth:
  jwt_secret: "file-secret-0123456789"
attendance:
  weekly_hours_limit: 48
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	t.Setenv("TIMEFACE_ATTENDANCE_DAILY_HOURS", "7.5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("期望端口 9090, 实际 %d", cfg.Server.Port)
	}
	if cfg.Attendance.WeeklyHoursLimit != 48 {
		t.Errorf("期望周工时上限 48, 实际 %d", cfg.Attendance.WeeklyHoursLimit)
	}
	if cfg.Attendance.DailyHours != 7.5 {
		t.Errorf("期望环境变量覆盖每日工时为 7.5, 实际 %v", cfg.Attendance.DailyHours)
	}
	if cfg.Attendance.LockTTL != 10*time.Second {
		t.Errorf("期望默认锁 TTL 10s, 实际 %v", cfg.Attendance.LockTTL)
	}
	if cfg.Attendance.UnscheduledPolicy != UnscheduledAllow {
		t.Errorf("期望默认未排班策略 allow, 实际 %s", cfg.Attendance.UnscheduledPolicy)
	}
	if cfg.Attendance.Location().String() != "America/Bogota" {
		t.Errorf("期望时区 America/Bogota, 实际 %s", cfg.Attendance.Location())
	}
}
