package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"equipcare/backend/config"
	"equipcare/backend/internal/model"
	"equipcare/backend/internal/repository"
)

// pushPayload Web Push 通知载荷，前端 Service Worker 按此结构展示
type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// WebPushDispatcher 基于 VAPID 的汇总广播发送器
// 向全部订阅逐个推送；推送服务返回 404/410 表示订阅已永久失效，
// 就地删除该订阅行
type WebPushDispatcher struct {
	cfg    *config.PushConfig
	repo   repository.PushSubscriptionRepository
	logger *zap.Logger

	// sendOne 便于测试时替换真实 Web Push 请求
	sendOne func(ctx context.Context, message []byte, sub *webpush.Subscription) (int, error)
}

// NewWebPushDispatcher 创建 Web Push 发送器
func NewWebPushDispatcher(cfg *config.PushConfig, repo repository.PushSubscriptionRepository, logger *zap.Logger) *WebPushDispatcher {
	d := &WebPushDispatcher{
		cfg:    cfg,
		repo:   repo,
		logger: logger,
	}
	d.sendOne = func(ctx context.Context, message []byte, sub *webpush.Subscription) (int, error) {
		resp, err := webpush.SendNotificationWithContext(ctx, message, sub, &webpush.Options{
			Subscriber:      cfg.Subject,
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			TTL:             3600,
		})
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()
		return resp.StatusCode, nil
	}
	return d
}

// SendBroadcast 向全部订阅者广播一条汇总通知
// 单个订阅失败不中断广播；返回成功数与清除的失效订阅数
func (d *WebPushDispatcher) SendBroadcast(ctx context.Context, summary string) (sent, removed int, err error) {
	subs, err := d.repo.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("加载推送订阅失败: %w", err)
	}
	if len(subs) == 0 {
		return 0, 0, nil
	}

	message, err := json.Marshal(pushPayload{
		Title: "设备维护提醒",
		Body:  summary,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("序列化推送载荷失败: %w", err)
	}

	for i := range subs {
		status, sendErr := d.sendOne(ctx, message, toWebPushSubscription(&subs[i]))
		if sendErr != nil {
			d.logger.Warn("推送发送失败",
				zap.String("endpoint", subs[i].Endpoint), zap.Error(sendErr))
			continue
		}

		switch {
		case status == http.StatusNotFound || status == http.StatusGone:
			// 订阅已失效，清除
			if rmErr := d.repo.Remove(ctx, subs[i].Endpoint); rmErr != nil {
				d.logger.Warn("清除失效订阅失败",
					zap.String("endpoint", subs[i].Endpoint), zap.Error(rmErr))
				continue
			}
			removed++
		case status >= 400:
			d.logger.Warn("推送服务返回错误状态",
				zap.String("endpoint", subs[i].Endpoint), zap.Int("status", status))
		default:
			sent++
		}
	}

	d.logger.Info("推送广播完成",
		zap.Int("sent", sent),
		zap.Int("removed", removed),
		zap.Int("subscriptions", len(subs)),
	)
	return sent, removed, nil
}

// toWebPushSubscription 数据库订阅行转 webpush 库结构
func toWebPushSubscription(sub *model.PushSubscription) *webpush.Subscription {
	return &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}
}
