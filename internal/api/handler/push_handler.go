package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"equipcare/backend/internal/dto"
	"equipcare/backend/internal/service"
	"equipcare/backend/pkg/response"
)

// PushHandler 推送订阅模块 HTTP 处理器
type PushHandler struct {
	pushSvc service.PushService
}

// NewPushHandler 创建 PushHandler
func NewPushHandler(pushSvc service.PushService) *PushHandler {
	return &PushHandler{pushSvc: pushSvc}
}

// Subscribe 新增推送订阅（幂等：同 endpoint 重复订阅只更新密钥）
// POST /api/v1/push/subscribe
func (h *PushHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.pushSvc.Subscribe(c.Request.Context(), &req); err != nil {
		if errors.Is(err, service.ErrInvalidSubscription) {
			response.BadRequest(c, 40001, "订阅信息不完整")
			return
		}
		response.InternalError(c)
		return
	}
	response.Created(c, nil)
}

// Unsubscribe 取消推送订阅
// POST /api/v1/push/unsubscribe
func (h *PushHandler) Unsubscribe(c *gin.Context) {
	var req dto.UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.pushSvc.Unsubscribe(c.Request.Context(), req.Endpoint); err != nil {
		if errors.Is(err, service.ErrInvalidSubscription) {
			response.BadRequest(c, 40001, "订阅信息不完整")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}
