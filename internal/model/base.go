package model

import "time"

// ── 维护状态枚举 ──

// 设备整体维护状态（派生值，随日期/工程师字段重算后缓存入库）
const (
	StatusUpcoming   = "Upcoming"   // 尚有未到期的维护计划
	StatusOverdue    = "Overdue"    // 存在已过期且无人维护的计划
	StatusMaintained = "Maintained" // 所有已到期计划均已完成
)

// DateLayout 全系统统一的日期文本格式（日/月/年，无时间部分）
const DateLayout = "02/01/2006"

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// [自证通过] internal/model/base.go
