package service

import "context"

// 通知发送契约。调度器只依赖这两个接口，具体传输
// （SMTP / Web Push）由 internal/notify 实现。
// 发送失败对调度器而言永远不是致命错误：记录日志后该轮放弃，
// 下一轮全量重扫数据自然形成重试。

// BatchDispatcher 阈值批量通知契约（邮件通道）
// 每个非空阈值档位发送一封独立邮件，档位之间绝不合并
type BatchDispatcher interface {
	SendBatch(ctx context.Context, tasks []ReminderTask, bucket ThresholdBucket) error
}

// BroadcastDispatcher 汇总广播契约（Web Push 通道）
// 向全部订阅者发送一条仅含计数的汇总通知；
// 永久失效的订阅（推送服务返回 404/410）由实现方负责清除
type BroadcastDispatcher interface {
	SendBroadcast(ctx context.Context, summary string) (sent, removed int, err error)
}
