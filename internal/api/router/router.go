package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timeface/config"
	"timeface/internal/api/handler"
	"timeface/internal/api/middleware"
	"timeface/pkg/jwt"
	"timeface/pkg/redis"
)

// 请求体上限，需容纳单张照片的 multipart 上传
const maxBodyBytes = 10 << 20

// Setup 初始化并返回 Gin 路由引擎
// mediaDir 为空时不挂载照片静态目录
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, mediaDir string, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", health(db))

	// ── 照片 ──
	if mediaDir != "" {
		r.Static(cfg.Media.BaseURL, mediaDir)
	}

	admin := middleware.RoleAuth(jwt.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		// 班次目录
		shifts := v1.Group("/shifts", admin)
		{
			shifts.GET("", h.Shift.List)
			shifts.POST("", h.Shift.Create)
			shifts.PUT("/:id", h.Shift.Update)
			shifts.DELETE("/:id", h.Shift.Delete)
		}

		// 员工
		collaborators := v1.Group("/collaborators", admin)
		{
			collaborators.GET("", h.Collaborator.List)
			collaborators.POST("", h.Collaborator.Create)
			collaborators.GET("/:id", h.Collaborator.Get)
			collaborators.PUT("/:id", h.Collaborator.Update)
			collaborators.DELETE("/:id", h.Collaborator.Delete)
			collaborators.PUT("/:id/photo", h.Collaborator.UploadPhoto)
		}

		// 排班模式
		patterns := v1.Group("/shift-patterns", admin)
		{
			patterns.GET("", h.ShiftPattern.List)
			patterns.POST("", h.ShiftPattern.Create)
			patterns.PUT("/:id", h.ShiftPattern.Update)
			patterns.DELETE("/:id", h.ShiftPattern.Delete)
			patterns.POST("/:id/assign", h.ShiftPattern.Assign)
		}

		// 排班网格
		schedules := v1.Group("/schedules", admin)
		{
			schedules.GET("/week", h.Schedule.GetWeek)
			schedules.PUT("/cell", h.Schedule.SetCell)
			schedules.DELETE("/cell", h.Schedule.RemoveCell)
			schedules.POST("/copy-week", h.Schedule.CopyWeek)
			schedules.POST("/fill-gaps", h.Schedule.FillGaps)
			schedules.PUT("/status", h.Schedule.UpdateStatus)
			schedules.GET("/export", h.Schedule.Export)
			schedules.GET("/calendar", h.Schedule.Calendar)
		}

		// 考勤：抓拍开放给打卡终端
		attendance := v1.Group("/attendance")
		{
			attendance.POST("/capture",
				middleware.RoleAuth(jwt.RoleKiosk, jwt.RoleAdmin),
				middleware.RateLimit(rdb, cfg.Attendance.CaptureRateLimit, time.Minute),
				h.Attendance.Capture,
			)
			attendance.POST("/events", admin, h.Attendance.RecordEvent)
			attendance.GET("/records", admin, h.Attendance.ListRecords)
			attendance.GET("/status/:collaborator_id", admin, h.Attendance.Status)
		}

		// 人工补录
		corrections := v1.Group("/corrections", admin)
		{
			corrections.GET("/stale", h.Correction.ListStale)
			corrections.POST("/close", h.Correction.Close)
		}

		// 工时报表
		reports := v1.Group("/reports", admin)
		{
			reports.GET("/hours", h.Report.Hours)
			reports.GET("/hours/export", h.Report.ExportHours)
		}

		// 应用配置
		settings := v1.Group("/settings", admin)
		{
			settings.GET("", h.Setting.Get)
			settings.PUT("", h.Setting.Update)
		}
	}

	return r
}

// health 数据库可达时返回 200，否则 503
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
