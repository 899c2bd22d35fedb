package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"equipcare/backend/internal/model"
)

// PushSubscriptionRepository Web Push 订阅数据访问接口
type PushSubscriptionRepository interface {
	// Add 新增订阅；endpoint 已存在时更新密钥（浏览器可能轮换）
	Add(ctx context.Context, sub *model.PushSubscription) error
	List(ctx context.Context) ([]model.PushSubscription, error)
	// Remove 按 endpoint 删除订阅；不存在时静默成功
	Remove(ctx context.Context, endpoint string) error
}

type pushSubscriptionRepo struct {
	db *gorm.DB
}

// NewPushSubscriptionRepo 创建 PushSubscriptionRepository 实例
func NewPushSubscriptionRepo(db *gorm.DB) PushSubscriptionRepository {
	return &pushSubscriptionRepo{db: db}
}

func (r *pushSubscriptionRepo) Add(ctx context.Context, sub *model.PushSubscription) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "updated_at"}),
	}).Create(sub).Error
}

func (r *pushSubscriptionRepo) List(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := r.db.WithContext(ctx).Order("id ASC").Find(&subs).Error
	return subs, err
}

func (r *pushSubscriptionRepo) Remove(ctx context.Context, endpoint string) error {
	err := r.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
