package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"equipcare/backend/config"
	"equipcare/backend/internal/api/handler"
	"equipcare/backend/internal/api/middleware"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(middleware.DefaultBodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 设备台账模块
		equipment := v1.Group("/equipment")
		{
			equipment.GET("/ppm", h.Equipment.ListPPM)
			equipment.POST("/ppm", h.Equipment.CreatePPM)
			equipment.PUT("/ppm/:serial", h.Equipment.UpdatePPM)
			equipment.DELETE("/ppm/:serial", h.Equipment.DeletePPM)

			equipment.GET("/ocm", h.Equipment.ListOCM)
			equipment.POST("/ocm", h.Equipment.CreateOCM)
			equipment.PUT("/ocm/:serial", h.Equipment.UpdateOCM)
			equipment.DELETE("/ocm/:serial", h.Equipment.DeleteOCM)
		}

		// 提醒设置模块
		settings := v1.Group("/settings")
		{
			settings.GET("/reminder", h.Setting.GetSetting)
			settings.PUT("/reminder", h.Setting.UpdateSetting)
		}

		// 推送订阅模块
		push := v1.Group("/push")
		{
			push.POST("/subscribe", h.Push.Subscribe)
			push.POST("/unsubscribe", h.Push.Unsubscribe)
		}

		// 提醒调度模块（手动触发 / 状态查询）
		reminders := v1.Group("/reminders")
		{
			reminders.POST("/refresh-statuses", h.Reminder.RefreshStatuses)
			reminders.POST("/trigger-email", h.Reminder.TriggerEmail)
			reminders.POST("/trigger-push", h.Reminder.TriggerPush)
			reminders.GET("/scheduler-status", h.Reminder.SchedulerStatus)
		}

		// 审计日志模块
		v1.GET("/audit-logs", h.Audit.ListLogs)

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/inventory", h.Export.ExportInventory)
			export.GET("/calendar", h.Export.ExportCalendar)
		}
	}

	return r
}
