package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"equipcare/backend/internal/dto"
	"equipcare/backend/internal/model"
	"equipcare/backend/internal/repository"
)

// ErrInvalidSubscription 订阅缺少 endpoint 或密钥
var ErrInvalidSubscription = errors.New("订阅信息不完整")

// PushService 推送订阅管理接口
// 订阅按 endpoint 幂等落库；取消订阅按 endpoint 删除
type PushService interface {
	Subscribe(ctx context.Context, req *dto.SubscribeRequest) error
	Unsubscribe(ctx context.Context, endpoint string) error
	Count(ctx context.Context) (int, error)
}

type pushService struct {
	repo   repository.PushSubscriptionRepository
	logger *zap.Logger
}

// NewPushService 创建 PushService 实例
func NewPushService(repo repository.PushSubscriptionRepository, logger *zap.Logger) PushService {
	return &pushService{repo: repo, logger: logger}
}

func (s *pushService) Subscribe(ctx context.Context, req *dto.SubscribeRequest) error {
	if strings.TrimSpace(req.Endpoint) == "" ||
		strings.TrimSpace(req.Keys.P256dh) == "" ||
		strings.TrimSpace(req.Keys.Auth) == "" {
		return ErrInvalidSubscription
	}

	sub := &model.PushSubscription{
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if err := s.repo.Add(ctx, sub); err != nil {
		s.logger.Error("保存推送订阅失败", zap.Error(err))
		return err
	}

	s.logger.Info("新增推送订阅", zap.String("endpoint", req.Endpoint))
	return nil
}

func (s *pushService) Unsubscribe(ctx context.Context, endpoint string) error {
	if strings.TrimSpace(endpoint) == "" {
		return ErrInvalidSubscription
	}
	if err := s.repo.Remove(ctx, endpoint); err != nil {
		s.logger.Error("删除推送订阅失败", zap.Error(err))
		return err
	}
	s.logger.Info("推送订阅已取消", zap.String("endpoint", endpoint))
	return nil
}

func (s *pushService) Count(ctx context.Context) (int, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(subs), nil
}
