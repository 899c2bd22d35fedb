package handler

import (
	"github.com/gin-gonic/gin"

	"equipcare/backend/internal/dto"
	"equipcare/backend/internal/service"
	"equipcare/backend/pkg/response"
)

// AuditHandler 审计日志模块 HTTP 处理器
type AuditHandler struct {
	auditSvc service.AuditService
}

// NewAuditHandler 创建 AuditHandler
func NewAuditHandler(auditSvc service.AuditService) *AuditHandler {
	return &AuditHandler{auditSvc: auditSvc}
}

// ListLogs 审计日志列表（时间倒序）
// GET /api/v1/audit-logs
func (h *AuditHandler) ListLogs(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	logs, total, err := h.auditSvc.List(c.Request.Context(), page.GetPage(), page.GetPageSize())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, logs, total, page.GetPage(), page.GetPageSize())
}
