package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
	Attendance AttendanceConfig `mapstructure:"attendance"`
	FaceMatch  FaceMatchConfig  `mapstructure:"face_match"`
	Media      MediaConfig      `mapstructure:"media"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 分钟
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
// Token 由外部身份服务签发，本服务只做校验
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// 未排班打卡策略
const (
	UnscheduledAllow  = "allow"
	UnscheduledReject = "reject"
)

// 工时基线算法
const (
	BaselineHeuristic = "heuristic"
	BaselineSchedule  = "schedule"
)

// AttendanceConfig 考勤引擎配置
type AttendanceConfig struct {
	Timezone          string        `mapstructure:"timezone"`
	DailyHours        float64       `mapstructure:"daily_hours"`
	WeeklyHoursLimit  int           `mapstructure:"weekly_hours_limit"`
	LockTTL           time.Duration `mapstructure:"lock_ttl"`
	UnscheduledPolicy string        `mapstructure:"unscheduled_policy"`
	HoursBaseline     string        `mapstructure:"hours_baseline"`
	CaptureRateLimit  int           `mapstructure:"capture_rate_limit"` // 每分钟每 IP
}

// Location 返回考勤所在时区，配置已在 Validate 中校验
func (c *AttendanceConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// FaceMatchConfig 人脸比对配置
type FaceMatchConfig struct {
	Provider string        `mapstructure:"provider"` // "gemini" | "none"
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// MediaConfig 照片存储配置
type MediaConfig struct {
	Dir         string `mapstructure:"dir"`
	BaseURL     string `mapstructure:"base_url"`
	MaxEdge     int    `mapstructure:"max_edge"`
	JPEGQuality int    `mapstructure:"jpeg_quality"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量（含 .env） > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "timeface")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "America/Bogota")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.issuer", "timeface")
	v.SetDefault("auth.access_token_ttl", "12h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("attendance.timezone", "America/Bogota")
	v.SetDefault("attendance.daily_hours", 8)
	v.SetDefault("attendance.weekly_hours_limit", 44)
	v.SetDefault("attendance.lock_ttl", "10s")
	v.SetDefault("attendance.unscheduled_policy", UnscheduledAllow)
	v.SetDefault("attendance.hours_baseline", BaselineHeuristic)
	v.SetDefault("attendance.capture_rate_limit", 30)

	v.SetDefault("face_match.provider", "gemini")
	v.SetDefault("face_match.model", "gemini-2.5-flash")
	v.SetDefault("face_match.timeout", "20s")

	v.SetDefault("media.dir", "./data/media")
	v.SetDefault("media.base_url", "/media")
	v.SetDefault("media.max_edge", 640)
	v.SetDefault("media.jpeg_quality", 85)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("TIMEFACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("配置校验失败: attendance.timezone 无效: %w", err)
	}
	if c.Attendance.DailyHours <= 0 {
		return fmt.Errorf("配置校验失败: attendance.daily_hours 必须大于 0")
	}
	if c.Attendance.WeeklyHoursLimit <= 0 {
		return fmt.Errorf("配置校验失败: attendance.weekly_hours_limit 必须大于 0")
	}
	switch c.Attendance.UnscheduledPolicy {
	case UnscheduledAllow, UnscheduledReject:
	default:
		return fmt.Errorf("配置校验失败: attendance.unscheduled_policy 仅支持 allow/reject")
	}
	switch c.Attendance.HoursBaseline {
	case BaselineHeuristic, BaselineSchedule:
	default:
		return fmt.Errorf("配置校验失败: attendance.hours_baseline 仅支持 heuristic/schedule")
	}
	switch c.FaceMatch.Provider {
	case "gemini", "none":
	default:
		return fmt.Errorf("配置校验失败: face_match.provider 仅支持 gemini/none")
	}
	return nil
}
