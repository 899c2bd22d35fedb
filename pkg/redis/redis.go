package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"equipcare/backend/config"
)

// Client Redis 客户端封装
// 当前用于提醒邮件的每日发送去重标记；后续可扩展缓存、分布式锁等场景
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 每日发送去重 ──

const dailySentPrefix = "reminder:sent:"

// dailySentKey 按渠道与自然日生成标记键，如 reminder:sent:email:2026-08-28
func dailySentKey(channel string, day time.Time) string {
	return dailySentPrefix + channel + ":" + day.Format("2006-01-02")
}

// MarkDailySent 记录某渠道当日已发送，48 小时后自动过期
func (c *Client) MarkDailySent(ctx context.Context, channel string, day time.Time) error {
	return c.rdb.Set(ctx, dailySentKey(channel, day), "1", 48*time.Hour).Err()
}

// WasDailySent 检查某渠道当日是否已发送
func (c *Client) WasDailySent(ctx context.Context, channel string, day time.Time) (bool, error) {
	n, err := c.rdb.Exists(ctx, dailySentKey(channel, day)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
