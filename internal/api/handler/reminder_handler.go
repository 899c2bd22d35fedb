package handler

import (
	"github.com/gin-gonic/gin"

	"equipcare/backend/internal/service"
	"equipcare/backend/pkg/response"
)

// ReminderHandler 提醒调度模块 HTTP 处理器
// 提供状态批量刷新与手动触发接口，供运维排查与前端"立即发送"按钮使用
type ReminderHandler struct {
	equipSvc service.EquipmentService
	email    *service.EmailReminderScheduler
	push     *service.PushReminderScheduler
}

// NewReminderHandler 创建 ReminderHandler
func NewReminderHandler(equipSvc service.EquipmentService, email *service.EmailReminderScheduler, push *service.PushReminderScheduler) *ReminderHandler {
	return &ReminderHandler{equipSvc: equipSvc, email: email, push: push}
}

// RefreshStatuses 手动触发全库状态刷新
// POST /api/v1/reminders/refresh-statuses
func (h *ReminderHandler) RefreshStatuses(c *gin.Context) {
	result, err := h.equipSvc.RefreshAllStatuses(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// TriggerEmail 手动触发一次邮件阈值扫描与发送
// POST /api/v1/reminders/trigger-email
func (h *ReminderHandler) TriggerEmail(c *gin.Context) {
	sent := h.email.ProcessReminders(c.Request.Context())
	response.OK(c, gin.H{"emails_sent": sent})
}

// TriggerPush 手动触发一次推送汇总广播
// POST /api/v1/reminders/trigger-push
func (h *ReminderHandler) TriggerPush(c *gin.Context) {
	h.push.ProcessPushNotifications(c.Request.Context())
	response.OK(c, nil)
}

// SchedulerStatus 查询两条调度循环的运行状态
// GET /api/v1/reminders/scheduler-status
func (h *ReminderHandler) SchedulerStatus(c *gin.Context) {
	response.OK(c, gin.H{
		"email_scheduler_running": h.email.IsRunning(),
		"push_scheduler_running":  h.push.IsRunning(),
	})
}
