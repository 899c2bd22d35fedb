package service

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"equipcare/backend/internal/model"
)

// TaskKindPPM / TaskKindOCM 提醒任务来源类型
const (
	TaskKindPPM = "PPM"
	TaskKindOCM = "OCM"
)

// ReminderTask 一条待提醒的维护任务（瞬态，仅在单次调度内存活）
type ReminderTask struct {
	Kind        string // PPM / OCM
	Department  string
	Serial      string
	Description string // "Quarter II" / "Next Maintenance"
	DueDate     string // 原始日期文本
	Engineer    string
	DaysUntil   int
}

// ThresholdBucket 阈值档位：天数区间（闭区间）+ 优先级标签
type ThresholdBucket struct {
	MinDays  int
	MaxDays  int
	Priority string
}

// DefaultThresholds 固定阈值档位表，调度时按此顺序处理
var DefaultThresholds = [4]ThresholdBucket{
	{0, 1, "URGENT"},
	{2, 7, "HIGH"},
	{8, 15, "MEDIUM"},
	{16, 30, "LOW"},
}

// Bucketer 阈值扫描器：对数据集快照做全量扫描，筛出落在指定
// 天数区间内的维护任务
type Bucketer struct {
	logger *zap.Logger
}

// NewBucketer 创建 Bucketer 实例
func NewBucketer(logger *zap.Logger) *Bucketer {
	return &Bucketer{logger: logger}
}

// Bucket 扫描 PPM 与 OCM 快照，返回到期日落在
// [today+minDays, today+maxDays]（含两端）的任务，
// 按 DaysUntil 升序稳定排序（同天任务保持插入顺序）
func (b *Bucketer) Bucket(ppm []model.PPMEquipment, ocm []model.OCMEquipment, minDays, maxDays int, today time.Time) []ReminderTask {
	tasks := b.CollectPPM(ppm, minDays, maxDays, today)
	tasks = append(tasks, b.CollectOCM(ocm, minDays, maxDays, today)...)

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].DaysUntil < tasks[j].DaysUntil
	})
	return tasks
}

// CollectPPM 扫描 PPM 快照；每个落入区间的季度槽位产出一条任务，
// 单台设备一次最多贡献 4 条
func (b *Bucketer) CollectPPM(ppm []model.PPMEquipment, minDays, maxDays int, today time.Time) []ReminderTask {
	today = dateOnly(today)
	quarterNames := [4]string{"Quarter I", "Quarter II", "Quarter III", "Quarter IV"}

	var tasks []ReminderTask
	for i := range ppm {
		e := &ppm[i]
		for qi, slot := range e.Quarters() {
			if slot.QuarterDate == nil || *slot.QuarterDate == "" {
				continue
			}
			due, err := parseDateFlexible(*slot.QuarterDate)
			if err != nil {
				b.logger.Warn("季度日期无法解析，跳过",
					zap.String("serial", e.Serial),
					zap.String("quarter_date", *slot.QuarterDate),
				)
				continue
			}

			daysUntil := daysBetween(today, due)
			if daysUntil < minDays || daysUntil > maxDays {
				continue
			}

			engineer := ""
			if slot.Engineer != nil {
				engineer = *slot.Engineer
			}
			tasks = append(tasks, ReminderTask{
				Kind:        TaskKindPPM,
				Department:  e.Department,
				Serial:      e.Serial,
				Description: quarterNames[qi],
				DueDate:     *slot.QuarterDate,
				Engineer:    engineer,
				DaysUntil:   daysUntil,
			})
		}
	}
	return tasks
}

// CollectOCM 扫描 OCM 快照；每台设备最多产出一条任务
func (b *Bucketer) CollectOCM(ocm []model.OCMEquipment, minDays, maxDays int, today time.Time) []ReminderTask {
	today = dateOnly(today)

	var tasks []ReminderTask
	for i := range ocm {
		e := &ocm[i]
		if e.NextMaintenance == nil || *e.NextMaintenance == "" {
			b.logger.Warn("OCM 设备缺少下次维护日期，跳过", zap.String("serial", e.Serial))
			continue
		}
		due, err := parseDateFlexible(*e.NextMaintenance)
		if err != nil {
			b.logger.Warn("下次维护日期无法解析，跳过",
				zap.String("serial", e.Serial),
				zap.String("next_maintenance", *e.NextMaintenance),
			)
			continue
		}

		daysUntil := daysBetween(today, due)
		if daysUntil < minDays || daysUntil > maxDays {
			continue
		}

		tasks = append(tasks, ReminderTask{
			Kind:        TaskKindOCM,
			Department:  e.Department,
			Serial:      e.Serial,
			Description: "Next Maintenance",
			DueDate:     *e.NextMaintenance,
			Engineer:    e.Engineer,
			DaysUntil:   daysUntil,
		})
	}
	return tasks
}
