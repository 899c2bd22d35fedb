package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"equipcare/backend/internal/model"
	"equipcare/backend/internal/repository"
)

// PushReminderScheduler 推送提醒调度器（汇总广播通道）
//
// 与邮件通道相互独立：各自持有 running 标志与互斥锁，互不阻塞。
// 只支持固定间隔模式（与原始行为一致）；每轮用一个宽扫描窗口
// [0, daysAhead] 收集全部到期任务，向所有订阅者发送一条仅含
// 计数的汇总通知，任务为空时整轮不发送。
type PushReminderScheduler struct {
	settings   SettingService
	repo       *repository.Repository
	bucketer   *Bucketer
	dispatcher BroadcastDispatcher
	audit      AuditService
	logger     *zap.Logger

	// daysAhead 宽扫描窗口（天），独立于邮件通道的阈值档位
	daysAhead    int
	initialDelay time.Duration
	now          func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewPushReminderScheduler 创建推送提醒调度器
func NewPushReminderScheduler(
	settings SettingService,
	repo *repository.Repository,
	bucketer *Bucketer,
	dispatcher BroadcastDispatcher,
	audit AuditService,
	daysAhead int,
	initialDelay time.Duration,
	logger *zap.Logger,
) *PushReminderScheduler {
	return &PushReminderScheduler{
		settings:     settings,
		repo:         repo,
		bucketer:     bucketer,
		dispatcher:   dispatcher,
		audit:        audit,
		logger:       logger,
		daysAhead:    daysAhead,
		initialDelay: initialDelay,
		now:          time.Now,
	}
}

// IsRunning 返回循环是否处于活动状态
func (s *PushReminderScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stop 请求停止循环（安全加固，原始实现只能随进程退出）
func (s *PushReminderScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.stopCh == nil {
		return
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
}

// RunLoop 启动调度循环并阻塞运行；已在运行时立即返回（单例保护）
func (s *PushReminderScheduler) RunLoop(ctx context.Context) {
	if s.IsRunning() {
		s.logger.Info("推送提醒调度循环已在运行，忽略重复启动")
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Info("推送提醒调度循环已在运行（加锁后确认），忽略重复启动")
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
		s.logger.Info("推送提醒调度循环已停止")
	}()

	// 启动延迟与邮件通道错开，避免两条通道同时冲击数据层
	s.logger.Info("推送提醒调度循环启动",
		zap.Duration("initial_delay", s.initialDelay))

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

// safeTick 执行一轮调度；吸收所有 panic，循环永不因单轮失败终止
func (s *PushReminderScheduler) safeTick(ctx context.Context) (sleepFor time.Duration) {
	sleepFor = disabledRecheckSleep
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("推送调度循环出现未预期 panic，下一轮重试",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()
	return s.tick(ctx)
}

func (s *PushReminderScheduler) tick(ctx context.Context) time.Duration {
	setting := s.settings.LoadSafe(ctx)

	if !setting.PushEnabled {
		s.logger.Info("推送通知已关闭，一小时后重新检查设置")
		return disabledRecheckSleep
	}

	s.ProcessPushNotifications(ctx)
	return time.Duration(setting.PushIntervalMinutes) * time.Minute
}

// ProcessPushNotifications 执行一次汇总广播：
// 宽窗口扫描 PPM+OCM，生成计数汇总，发给全部订阅者。
// 手动触发接口也复用此方法。
func (s *PushReminderScheduler) ProcessPushNotifications(ctx context.Context) {
	ppm, err := s.repo.PPM.List(ctx)
	if err != nil {
		s.logger.Error("加载 PPM 数据失败，本轮放弃", zap.Error(err))
		return
	}
	ocm, err := s.repo.OCM.List(ctx)
	if err != nil {
		s.logger.Error("加载 OCM 数据失败，本轮放弃", zap.Error(err))
		return
	}

	tasks := s.bucketer.Bucket(ppm, ocm, 0, s.daysAhead, s.now())
	if len(tasks) == 0 {
		s.logger.Info("扫描窗口内无到期任务，跳过推送",
			zap.Int("days_ahead", s.daysAhead))
		return
	}

	summary := SummarizeTasks(tasks)
	s.logger.Info("生成推送汇总",
		zap.Int("task_count", len(tasks)),
		zap.String("summary", summary))

	sent, removed, err := s.dispatcher.SendBroadcast(ctx, summary)
	if err != nil {
		s.logger.Error("推送广播发送失败", zap.Error(err))
		s.audit.Log(ctx, model.AuditPushNotification, "System",
			fmt.Sprintf("推送广播发送失败（%d 项任务）", len(tasks)),
			model.AuditStatusFailed,
			map[string]any{"task_count": len(tasks), "error": err.Error()})
		return
	}

	s.logger.Info("推送广播完成",
		zap.Int("sent", sent),
		zap.Int("removed_subscriptions", removed))
	s.audit.Log(ctx, model.AuditPushNotification, "System",
		fmt.Sprintf("已向 %d 个订阅发送维护汇总推送", sent),
		model.AuditStatusSuccess,
		map[string]any{
			"task_count":            len(tasks),
			"sent":                  sent,
			"removed_subscriptions": removed,
		})
}

// SummarizeTasks 生成仅含计数的汇总文案
// 例："3 项 PPM 与 2 项 OCM 维护任务即将到期"
func SummarizeTasks(tasks []ReminderTask) string {
	ppmCount, ocmCount := 0, 0
	for _, t := range tasks {
		switch t.Kind {
		case TaskKindPPM:
			ppmCount++
		case TaskKindOCM:
			ocmCount++
		}
	}

	switch {
	case ppmCount > 0 && ocmCount > 0:
		return fmt.Sprintf("%d 项 PPM 与 %d 项 OCM 维护任务即将到期", ppmCount, ocmCount)
	case ppmCount > 0:
		return fmt.Sprintf("%d 项 PPM 维护任务即将到期", ppmCount)
	case ocmCount > 0:
		return fmt.Sprintf("%d 项 OCM 维护任务即将到期", ocmCount)
	default:
		return "暂无即将到期的维护任务"
	}
}
