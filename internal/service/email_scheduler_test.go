package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"equipcare/backend/internal/model"
	"equipcare/backend/internal/repository"
)

// ── Mock BatchDispatcher ──

type sentBatch struct {
	priority string
	tasks    []ReminderTask
}

type mockBatchDispatcher struct {
	batches []sentBatch
	failFor string // 指定优先级发送失败
	doPanic bool
}

func (m *mockBatchDispatcher) SendBatch(_ context.Context, tasks []ReminderTask, bucket ThresholdBucket) error {
	if m.doPanic {
		panic("smtp exploded")
	}
	if m.failFor == bucket.Priority {
		return errors.New("SMTP 连接失败")
	}
	m.batches = append(m.batches, sentBatch{priority: bucket.Priority, tasks: tasks})
	return nil
}

// ── 测试辅助 ──

func enabledSetting() *model.ReminderSetting {
	return &model.ReminderSetting{
		EmailEnabled:         true,
		EmailIntervalMinutes: 60,
		UseDailySendTime:     false,
		EmailSendTime:        "07:00",
		RemindUrgent:         true,
		RemindHigh:           true,
		RemindMedium:         true,
		RemindLow:            true,
	}
}

func setupTestEmailScheduler(setting *model.ReminderSetting, dispatcher BatchDispatcher) (*EmailReminderScheduler, *mockPPMRepo, *mockOCMRepo, *mockAuditRepo) {
	ppmRepo := newMockPPMRepo()
	ocmRepo := newMockOCMRepo()
	settingRepo := newMockSettingRepo()
	settingRepo.setting = setting
	auditRepo := newMockAuditRepo()

	repo := &repository.Repository{
		PPM:              ppmRepo,
		OCM:              ocmRepo,
		Setting:          settingRepo,
		PushSubscription: newMockPushSubRepo(),
		AuditLog:         auditRepo,
	}
	logger := zap.NewNop()
	audit := NewAuditService(repo, logger)
	settings := NewSettingService(repo, audit, logger)
	bucketer := NewBucketer(logger)

	sched := NewEmailReminderScheduler(settings, repo, bucketer, dispatcher, audit, nil, time.Hour, logger)
	sched.now = func() time.Time { return testDay("2024-07-15") }
	return sched, ppmRepo, ocmRepo, auditRepo
}

func seedPPM(repo *mockPPMRepo, serial, quarterDate string) {
	e := ppmWithSlots([2]string{quarterDate, ""})
	e.Serial = serial
	_ = repo.Create(context.Background(), e)
}

// ── ProcessReminders 测试 ──

func TestEmailScheduler_ProcessReminders_PerTierBatches(t *testing.T) {
	dispatcher := &mockBatchDispatcher{}
	sched, ppmRepo, _, _ := setupTestEmailScheduler(enabledSetting(), dispatcher)

	// 今天 2024-07-15：各档位各一条任务
	seedPPM(ppmRepo, "PPM-URGENT", "16/07/2024") // 1 天
	seedPPM(ppmRepo, "PPM-HIGH", "20/07/2024")   // 5 天
	seedPPM(ppmRepo, "PPM-MEDIUM", "25/07/2024") // 10 天
	seedPPM(ppmRepo, "PPM-LOW", "04/08/2024")    // 20 天

	sent := sched.ProcessReminders(context.Background())
	if sent != 4 {
		t.Fatalf("期望 4 个批次，实际 %d", sent)
	}

	// 档位顺序固定：URGENT → HIGH → MEDIUM → LOW，且互不合并
	wantOrder := []string{"URGENT", "HIGH", "MEDIUM", "LOW"}
	for i, batch := range dispatcher.batches {
		if batch.priority != wantOrder[i] {
			t.Errorf("第 %d 批期望 %s，实际 %s", i, wantOrder[i], batch.priority)
		}
		if len(batch.tasks) != 1 {
			t.Errorf("%s 档位期望 1 条任务，实际 %d", batch.priority, len(batch.tasks))
		}
	}
}

func TestEmailScheduler_ProcessReminders_EmptyTierSkipped(t *testing.T) {
	dispatcher := &mockBatchDispatcher{}
	sched, ppmRepo, _, _ := setupTestEmailScheduler(enabledSetting(), dispatcher)

	seedPPM(ppmRepo, "PPM-HIGH", "20/07/2024") // 仅 HIGH 档位有任务

	sent := sched.ProcessReminders(context.Background())
	if sent != 1 {
		t.Fatalf("期望 1 个批次，实际 %d", sent)
	}
	if dispatcher.batches[0].priority != "HIGH" {
		t.Errorf("期望 HIGH 批次，实际 %s", dispatcher.batches[0].priority)
	}
}

func TestEmailScheduler_ProcessReminders_DisabledTierSkipped(t *testing.T) {
	setting := enabledSetting()
	setting.RemindLow = false
	dispatcher := &mockBatchDispatcher{}
	sched, ppmRepo, _, _ := setupTestEmailScheduler(setting, dispatcher)

	seedPPM(ppmRepo, "PPM-HIGH", "20/07/2024")
	seedPPM(ppmRepo, "PPM-LOW", "04/08/2024")

	sent := sched.ProcessReminders(context.Background())
	if sent != 1 {
		t.Fatalf("LOW 档已关闭，期望 1 个批次，实际 %d", sent)
	}
	if dispatcher.batches[0].priority != "HIGH" {
		t.Errorf("期望 HIGH 批次，实际 %s", dispatcher.batches[0].priority)
	}
}

func TestEmailScheduler_ProcessReminders_EmailDisabled(t *testing.T) {
	setting := enabledSetting()
	setting.EmailEnabled = false
	dispatcher := &mockBatchDispatcher{}
	sched, ppmRepo, _, _ := setupTestEmailScheduler(setting, dispatcher)

	seedPPM(ppmRepo, "PPM-HIGH", "20/07/2024")

	if sent := sched.ProcessReminders(context.Background()); sent != 0 {
		t.Fatalf("通知关闭时期望 0 个批次，实际 %d", sent)
	}
}

func TestEmailScheduler_ProcessReminders_SendFailureContinues(t *testing.T) {
	dispatcher := &mockBatchDispatcher{failFor: "URGENT"}
	sched, ppmRepo, _, auditRepo := setupTestEmailScheduler(enabledSetting(), dispatcher)

	seedPPM(ppmRepo, "PPM-URGENT", "16/07/2024")
	seedPPM(ppmRepo, "PPM-HIGH", "20/07/2024")

	sent := sched.ProcessReminders(context.Background())
	if sent != 1 {
		t.Fatalf("URGENT 发送失败后应继续处理 HIGH，期望 1 个批次，实际 %d", sent)
	}

	// 审计应同时记录失败与成功
	var failed, success int
	for _, entry := range auditRepo.entries {
		if entry.EventType != model.AuditReminderSent {
			continue
		}
		switch entry.Status {
		case model.AuditStatusFailed:
			failed++
		case model.AuditStatusSuccess:
			success++
		}
	}
	if failed != 1 || success != 1 {
		t.Errorf("期望审计 1 失败 1 成功，实际 %d 失败 %d 成功", failed, success)
	}
}

// ── 故障韧性测试 ──

func TestEmailScheduler_SafeTickAbsorbsPanic(t *testing.T) {
	dispatcher := &mockBatchDispatcher{doPanic: true}
	setting := enabledSetting()
	sched, ppmRepo, _, _ := setupTestEmailScheduler(setting, dispatcher)

	seedPPM(ppmRepo, "PPM-URGENT", "16/07/2024")

	// 发送 panic 不得逃逸出 safeTick
	sleepFor := sched.safeTick(context.Background())
	if sleepFor != disabledRecheckSleep {
		t.Errorf("panic 后期望回落休眠 %v，实际 %v", disabledRecheckSleep, sleepFor)
	}
}

func TestEmailScheduler_SettingsLoadFailureFailSoft(t *testing.T) {
	dispatcher := &mockBatchDispatcher{}
	sched, ppmRepo, _, _ := setupTestEmailScheduler(nil, dispatcher) // 设置行不存在

	seedPPM(ppmRepo, "PPM-URGENT", "16/07/2024")

	// 默认值通知关闭：不发送且不报错
	if sent := sched.ProcessReminders(context.Background()); sent != 0 {
		t.Fatalf("设置缺失时期望 0 个批次，实际 %d", sent)
	}
	if sleepFor := sched.safeTick(context.Background()); sleepFor != disabledRecheckSleep {
		t.Errorf("设置缺失时期望休眠 %v，实际 %v", disabledRecheckSleep, sleepFor)
	}
}

// ── 调度模式测试 ──

func TestEmailScheduler_IntervalModeSleepsInterval(t *testing.T) {
	setting := enabledSetting()
	setting.UseDailySendTime = false
	setting.EmailIntervalMinutes = 45
	dispatcher := &mockBatchDispatcher{}
	sched, ppmRepo, _, _ := setupTestEmailScheduler(setting, dispatcher)

	seedPPM(ppmRepo, "PPM-HIGH", "20/07/2024")

	sleepFor := sched.tick(context.Background())
	if sleepFor != 45*time.Minute {
		t.Errorf("期望休眠 45 分钟，实际 %v", sleepFor)
	}
	if len(dispatcher.batches) != 1 {
		t.Errorf("固定间隔模式应立即发送，实际批次数 %d", len(dispatcher.batches))
	}
}

func TestEmailScheduler_DailyModeFarFromTargetCappedSleep(t *testing.T) {
	setting := enabledSetting()
	setting.UseDailySendTime = true
	setting.EmailSendTime = "07:00"
	dispatcher := &mockBatchDispatcher{}
	sched, _, _, _ := setupTestEmailScheduler(setting, dispatcher)

	// 当前 00:00，距 07:00 还有 7 小时：单次休眠封顶 1 小时
	sleepFor := sched.tick(context.Background())
	if sleepFor != dailyModeMaxSleep {
		t.Errorf("期望休眠上限 %v，实际 %v", dailyModeMaxSleep, sleepFor)
	}
	if len(dispatcher.batches) != 0 {
		t.Errorf("未到发送窗口不应发送，实际批次数 %d", len(dispatcher.batches))
	}
}

func TestEmailScheduler_DailyModeWithinToleranceSends(t *testing.T) {
	setting := enabledSetting()
	setting.UseDailySendTime = true
	setting.EmailSendTime = "07:00"
	dispatcher := &mockBatchDispatcher{}
	sched, ppmRepo, _, _ := setupTestEmailScheduler(setting, dispatcher)

	seedPPM(ppmRepo, "PPM-HIGH", "20/07/2024")

	// 当前 06:58，距目标 2 分钟，落在 5 分钟容差内
	sched.now = func() time.Time {
		return time.Date(2024, 7, 15, 6, 58, 0, 0, time.UTC)
	}

	sleepFor := sched.tick(context.Background())
	if len(dispatcher.batches) != 1 {
		t.Fatalf("容差窗口内应立即发送，实际批次数 %d", len(dispatcher.batches))
	}
	// 发送后休眠到次日目标时刻（2 分钟 + 24 小时）
	want := 2*time.Minute + 24*time.Hour
	if sleepFor != want {
		t.Errorf("期望休眠 %v，实际 %v", want, sleepFor)
	}
}

func TestEmailScheduler_DailyModeBadSendTimeFallback(t *testing.T) {
	setting := enabledSetting()
	setting.UseDailySendTime = true
	setting.EmailSendTime = "25:99"
	dispatcher := &mockBatchDispatcher{}
	sched, _, _, _ := setupTestEmailScheduler(setting, dispatcher)

	// 非法时间回落为 07:00，当前 00:00 距目标 7 小时 → 封顶休眠
	sleepFor := sched.tick(context.Background())
	if sleepFor != dailyModeMaxSleep {
		t.Errorf("期望休眠上限 %v，实际 %v", dailyModeMaxSleep, sleepFor)
	}
}

// ── 单例保护测试 ──

func TestEmailScheduler_SingletonGuard(t *testing.T) {
	dispatcher := &mockBatchDispatcher{}
	sched, _, _, _ := setupTestEmailScheduler(enabledSetting(), dispatcher)

	done := make(chan struct{})
	go func() {
		sched.RunLoop(context.Background())
		close(done)
	}()

	// 等待循环进入运行态
	deadline := time.Now().Add(2 * time.Second)
	for !sched.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("调度循环未能进入运行态")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// 重复启动立即返回，不阻塞
	returned := make(chan struct{})
	go func() {
		sched.RunLoop(context.Background())
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("重复启动应立即返回")
	}

	sched.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop 后循环未退出")
	}
	if sched.IsRunning() {
		t.Error("停止后 IsRunning 仍为 true")
	}

	// 重复 Stop 是空操作
	sched.Stop()
}
