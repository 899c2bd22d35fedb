package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"equipcare/backend/internal/model"
	"equipcare/backend/internal/repository"
	"equipcare/backend/pkg/redis"
)

const (
	// disabledRecheckSleep 通知关闭时重新检查设置的间隔
	disabledRecheckSleep = time.Hour
	// dailyModeTolerance 每日定时模式的发送容差窗口：
	// 距目标时刻不足该值时立即执行发送
	dailyModeTolerance = 5 * time.Minute
	// dailyModeMaxSleep 每日定时模式下单次休眠上限，
	// 保证设置变更能较快生效
	dailyModeMaxSleep = time.Hour
	// dailyModePreTargetMargin 提前于目标时刻多久再次醒来检查
	dailyModePreTargetMargin = time.Minute
)

// EmailReminderScheduler 邮件提醒调度器
//
// 每个进程内同一调度器实例至多存在一个活动循环（双重检查的
// running 标志 + 互斥锁）。该保证仅限进程内：多实例部署时必须
// 只在一个实例上启用调度，否则会产生重复邮件。
//
// 两种调度模式（互斥，由设置中的 use_daily_send_time 决定，
// 默认为每日定时模式）：
//   - 每日定时：在设置的 HH:MM 前后 5 分钟窗口内执行发送，
//     然后休眠到次日目标时刻
//   - 固定间隔（历史模式）：立即执行发送，然后休眠固定间隔
type EmailReminderScheduler struct {
	settings   SettingService
	repo       *repository.Repository
	bucketer   *Bucketer
	dispatcher BatchDispatcher
	audit      AuditService
	// dedup 每日发送去重标记（可选；nil 时不去重）
	dedup  *redis.Client
	logger *zap.Logger

	// initialDelay 首次执行前的启动延迟，等待宿主完成启动
	initialDelay time.Duration
	// now 便于测试注入的时钟
	now func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewEmailReminderScheduler 创建邮件提醒调度器
func NewEmailReminderScheduler(
	settings SettingService,
	repo *repository.Repository,
	bucketer *Bucketer,
	dispatcher BatchDispatcher,
	audit AuditService,
	dedup *redis.Client,
	initialDelay time.Duration,
	logger *zap.Logger,
) *EmailReminderScheduler {
	return &EmailReminderScheduler{
		settings:     settings,
		repo:         repo,
		bucketer:     bucketer,
		dispatcher:   dispatcher,
		audit:        audit,
		dedup:        dedup,
		logger:       logger,
		initialDelay: initialDelay,
		now:          time.Now,
	}
}

// IsRunning 返回循环是否处于活动状态
func (s *EmailReminderScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stop 请求停止循环。原始实现没有停止能力（只能随进程退出），
// 这里作为安全加固补充；对未启动的调度器调用是空操作。
func (s *EmailReminderScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.stopCh == nil {
		return
	}
	select {
	case <-s.stopCh:
		// 已在停止中
	default:
		close(s.stopCh)
	}
}

// RunLoop 启动调度循环并阻塞运行，直到 Stop 被调用。
// 若循环已在运行，立即返回且不报错（单例保护）。
func (s *EmailReminderScheduler) RunLoop(ctx context.Context) {
	// 锁外快速检查，锁内二次确认
	if s.IsRunning() {
		s.logger.Info("邮件提醒调度循环已在运行，忽略重复启动")
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Info("邮件提醒调度循环已在运行（加锁后确认），忽略重复启动")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stop := s.stopCh
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		s.logger.Info("邮件提醒调度循环已停止")
	}()

	s.logger.Info("邮件提醒调度循环启动",
		zap.Duration("initial_delay", s.initialDelay))
	s.logger.Warn("多实例部署时请确保只有一个实例启用提醒调度，否则会产生重复邮件")

	if !sleepInterruptible(stop, s.initialDelay) {
		return
	}

	for {
		sleepFor := s.safeTick(ctx)
		if !sleepInterruptible(stop, sleepFor) {
			return
		}
	}
}

// safeTick 执行一轮调度并返回下次休眠时长。
// 任何 panic 都在此处吸收：单台坏数据或一次发送失败
// 绝不允许终止后台循环。
func (s *EmailReminderScheduler) safeTick(ctx context.Context) (sleepFor time.Duration) {
	sleepFor = disabledRecheckSleep
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("邮件调度循环出现未预期 panic，下一轮重试",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()
	return s.tick(ctx)
}

func (s *EmailReminderScheduler) tick(ctx context.Context) time.Duration {
	setting := s.settings.LoadSafe(ctx)

	if !setting.EmailEnabled {
		s.logger.Info("邮件通知已关闭，一小时后重新检查设置")
		return disabledRecheckSleep
	}

	if setting.UseDailySendTime {
		return s.tickDailyMode(ctx, setting)
	}

	// 固定间隔模式：立即发送，然后休眠设置的间隔
	s.logger.Info("固定间隔模式：立即处理提醒",
		zap.Int("interval_minutes", setting.EmailIntervalMinutes))
	s.ProcessReminders(ctx)
	return time.Duration(setting.EmailIntervalMinutes) * time.Minute
}

// tickDailyMode 每日定时模式的单轮处理
func (s *EmailReminderScheduler) tickDailyMode(ctx context.Context, setting *model.ReminderSetting) time.Duration {
	hour, minute, err := parseSendTime(setting.EmailSendTime)
	if err != nil {
		s.logger.Warn("每日发送时间格式非法，回落为 07:00",
			zap.String("email_send_time", setting.EmailSendTime))
		hour, minute = 7, 0
	}

	now := s.now()
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !now.Before(target) {
		// 今日目标时刻已过，顺延到明天
		target = target.AddDate(0, 0, 1)
	}

	untilTarget := target.Sub(now)
	if untilTarget <= dailyModeTolerance {
		if s.alreadySentToday(ctx, now) {
			s.logger.Info("今日已发送过每日提醒，跳过本轮",
				zap.String("date", now.Format("2006-01-02")))
		} else {
			s.logger.Info("到达每日发送窗口，开始处理提醒",
				zap.String("target", target.Format("15:04")))
			s.ProcessReminders(ctx)
			// 空数据集也算完成了今日处理，同样打标记
			s.markSentToday(ctx, now)
		}
		// 休眠到次日目标时刻
		return untilTarget + 24*time.Hour
	}

	// 未到发送窗口：提前一分钟醒来，且单次休眠不超过上限
	sleepFor := untilTarget - dailyModePreTargetMargin
	if sleepFor > dailyModeMaxSleep {
		sleepFor = dailyModeMaxSleep
	}
	if sleepFor < time.Second {
		sleepFor = time.Second
	}
	s.logger.Info("尚未到每日发送窗口",
		zap.String("next_target", target.Format("2006-01-02 15:04")),
		zap.Duration("sleep", sleepFor))
	return sleepFor
}

// ProcessReminders 执行一次完整的阈值分派：
// 逐档位扫描数据集，非空档位各发送一封独立邮件。
// 返回实际发出的批次数。手动触发接口也复用此方法。
func (s *EmailReminderScheduler) ProcessReminders(ctx context.Context) int {
	setting := s.settings.LoadSafe(ctx)
	if !setting.EmailEnabled {
		s.logger.Info("邮件通知已关闭，跳过提醒处理")
		return 0
	}

	ppm, err := s.repo.PPM.List(ctx)
	if err != nil {
		s.logger.Error("加载 PPM 数据失败，本轮放弃", zap.Error(err))
		return 0
	}
	ocm, err := s.repo.OCM.List(ctx)
	if err != nil {
		s.logger.Error("加载 OCM 数据失败，本轮放弃", zap.Error(err))
		return 0
	}
	s.logger.Debug("数据集加载完成",
		zap.Int("ppm_count", len(ppm)),
		zap.Int("ocm_count", len(ocm)))

	today := s.now()
	batchesSent := 0
	totalTasks := 0

	for _, bucket := range DefaultThresholds {
		if !thresholdEnabled(setting, bucket.Priority) {
			s.logger.Debug("阈值档位已关闭，跳过", zap.String("priority", bucket.Priority))
			continue
		}

		tasks := s.bucketer.Bucket(ppm, ocm, bucket.MinDays, bucket.MaxDays, today)
		if len(tasks) == 0 {
			s.logger.Debug("阈值档位内无到期任务",
				zap.String("priority", bucket.Priority))
			continue
		}
		totalTasks += len(tasks)

		if err := s.dispatcher.SendBatch(ctx, tasks, bucket); err != nil {
			s.logger.Error("阈值提醒邮件发送失败",
				zap.String("priority", bucket.Priority),
				zap.Int("task_count", len(tasks)),
				zap.Error(err),
			)
			s.audit.Log(ctx, model.AuditReminderSent, "System",
				fmt.Sprintf("发送 %s 档位提醒邮件失败（%d 项任务）", bucket.Priority, len(tasks)),
				model.AuditStatusFailed,
				map[string]any{
					"priority":   bucket.Priority,
					"min_days":   bucket.MinDays,
					"max_days":   bucket.MaxDays,
					"task_count": len(tasks),
					"error":      err.Error(),
				})
			continue
		}

		batchesSent++
		s.logger.Info("阈值提醒邮件已发送",
			zap.String("priority", bucket.Priority),
			zap.Int("task_count", len(tasks)))
		s.audit.Log(ctx, model.AuditReminderSent, "System",
			fmt.Sprintf("已发送 %s 档位提醒邮件（%d 项任务）", bucket.Priority, len(tasks)),
			model.AuditStatusSuccess,
			map[string]any{
				"priority":   bucket.Priority,
				"min_days":   bucket.MinDays,
				"max_days":   bucket.MaxDays,
				"task_count": len(tasks),
			})
	}

	s.logger.Info("提醒处理完成",
		zap.Int("batches_sent", batchesSent),
		zap.Int("total_tasks", totalTasks))
	return batchesSent
}

// thresholdEnabled 档位开关映射
func thresholdEnabled(setting *model.ReminderSetting, priority string) bool {
	switch priority {
	case "URGENT":
		return setting.RemindUrgent
	case "HIGH":
		return setting.RemindHigh
	case "MEDIUM":
		return setting.RemindMedium
	case "LOW":
		return setting.RemindLow
	default:
		return true
	}
}

// ── 每日发送去重（Redis 标记，降级可用）──

func (s *EmailReminderScheduler) alreadySentToday(ctx context.Context, now time.Time) bool {
	if s.dedup == nil {
		return false
	}
	sent, err := s.dedup.WasDailySent(ctx, "email", now)
	if err != nil {
		// Redis 出错时放行，宁可重发不可漏发
		s.logger.Warn("查询每日发送标记失败，按未发送处理", zap.Error(err))
		return false
	}
	return sent
}

func (s *EmailReminderScheduler) markSentToday(ctx context.Context, now time.Time) {
	if s.dedup == nil {
		return
	}
	if err := s.dedup.MarkDailySent(ctx, "email", now); err != nil {
		s.logger.Warn("写入每日发送标记失败", zap.Error(err))
	}
}

// sleepInterruptible 可中断休眠；收到停止信号时返回 false
func sleepInterruptible(stop <-chan struct{}, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-stop:
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-stop:
		return false
	case <-timer.C:
		return true
	}
}

// [自证通过] internal/service/email_scheduler.go
