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

// ── Mock BroadcastDispatcher ──

type mockBroadcastDispatcher struct {
	summaries []string
	sent      int
	removed   int
	err       error
}

func (m *mockBroadcastDispatcher) SendBroadcast(_ context.Context, summary string) (int, int, error) {
	if m.err != nil {
		return 0, 0, m.err
	}
	m.summaries = append(m.summaries, summary)
	return m.sent, m.removed, nil
}

// ── 测试辅助 ──

func setupTestPushScheduler(setting *model.ReminderSetting, dispatcher BroadcastDispatcher) (*PushReminderScheduler, *mockPPMRepo, *mockOCMRepo, *mockAuditRepo) {
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

	sched := NewPushReminderScheduler(settings, repo, bucketer, dispatcher, audit, 60, time.Hour, logger)
	sched.now = func() time.Time { return testDay("2024-07-15") }
	return sched, ppmRepo, ocmRepo, auditRepo
}

func pushEnabledSetting() *model.ReminderSetting {
	s := enabledSetting()
	s.PushEnabled = true
	s.PushIntervalMinutes = 30
	return s
}

// ── ProcessPushNotifications 测试 ──

func TestPushScheduler_BroadcastSummary(t *testing.T) {
	dispatcher := &mockBroadcastDispatcher{sent: 3}
	sched, ppmRepo, ocmRepo, _ := setupTestPushScheduler(pushEnabledSetting(), dispatcher)

	seedPPM(ppmRepo, "PPM-1", "20/07/2024")
	seedPPM(ppmRepo, "PPM-2", "01/08/2024")
	_ = ocmRepo.Create(context.Background(), &model.OCMEquipment{
		Serial:          "OCM-1",
		NextMaintenance: strPtr("25/07/2024"),
	})

	sched.ProcessPushNotifications(context.Background())

	if len(dispatcher.summaries) != 1 {
		t.Fatalf("期望 1 次广播，实际 %d", len(dispatcher.summaries))
	}
	want := "2 项 PPM 与 1 项 OCM 维护任务即将到期"
	if dispatcher.summaries[0] != want {
		t.Errorf("期望汇总 %q，实际 %q", want, dispatcher.summaries[0])
	}
}

func TestPushScheduler_EmptyWindowSkipsBroadcast(t *testing.T) {
	dispatcher := &mockBroadcastDispatcher{}
	sched, ppmRepo, _, auditRepo := setupTestPushScheduler(pushEnabledSetting(), dispatcher)

	// 窗口外（60 天后）
	seedPPM(ppmRepo, "PPM-FAR", "01/12/2024")

	sched.ProcessPushNotifications(context.Background())

	if len(dispatcher.summaries) != 0 {
		t.Errorf("窗口内无任务不应广播，实际 %d 次", len(dispatcher.summaries))
	}
	for _, entry := range auditRepo.entries {
		if entry.EventType == model.AuditPushNotification {
			t.Error("空窗口不应产生推送审计记录")
		}
	}
}

func TestPushScheduler_BroadcastFailureAudited(t *testing.T) {
	dispatcher := &mockBroadcastDispatcher{err: errors.New("push service down")}
	sched, ppmRepo, _, auditRepo := setupTestPushScheduler(pushEnabledSetting(), dispatcher)

	seedPPM(ppmRepo, "PPM-1", "20/07/2024")

	sched.ProcessPushNotifications(context.Background())

	var failed int
	for _, entry := range auditRepo.entries {
		if entry.EventType == model.AuditPushNotification && entry.Status == model.AuditStatusFailed {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("期望 1 条失败审计记录，实际 %d", failed)
	}
}

// ── 调度循环测试 ──

func TestPushScheduler_TickDisabledRecheck(t *testing.T) {
	setting := pushEnabledSetting()
	setting.PushEnabled = false
	dispatcher := &mockBroadcastDispatcher{}
	sched, ppmRepo, _, _ := setupTestPushScheduler(setting, dispatcher)

	seedPPM(ppmRepo, "PPM-1", "20/07/2024")

	sleepFor := sched.tick(context.Background())
	if sleepFor != disabledRecheckSleep {
		t.Errorf("通知关闭时期望休眠 %v，实际 %v", disabledRecheckSleep, sleepFor)
	}
	if len(dispatcher.summaries) != 0 {
		t.Errorf("通知关闭不应广播，实际 %d 次", len(dispatcher.summaries))
	}
}

func TestPushScheduler_TickIntervalSleep(t *testing.T) {
	dispatcher := &mockBroadcastDispatcher{}
	sched, ppmRepo, _, _ := setupTestPushScheduler(pushEnabledSetting(), dispatcher)

	seedPPM(ppmRepo, "PPM-1", "20/07/2024")

	sleepFor := sched.tick(context.Background())
	if sleepFor != 30*time.Minute {
		t.Errorf("期望休眠 30 分钟，实际 %v", sleepFor)
	}
	if len(dispatcher.summaries) != 1 {
		t.Errorf("期望广播 1 次，实际 %d", len(dispatcher.summaries))
	}
}

func TestPushScheduler_SingletonGuard(t *testing.T) {
	dispatcher := &mockBroadcastDispatcher{}
	sched, _, _, _ := setupTestPushScheduler(pushEnabledSetting(), dispatcher)

	done := make(chan struct{})
	go func() {
		sched.RunLoop(context.Background())
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !sched.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("调度循环未能进入运行态")
		}
		time.Sleep(5 * time.Millisecond)
	}

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
}

// ── SummarizeTasks 测试 ──

func TestSummarizeTasks_Wording(t *testing.T) {
	cases := []struct {
		name  string
		tasks []ReminderTask
		want  string
	}{
		{"混合", []ReminderTask{{Kind: TaskKindPPM}, {Kind: TaskKindOCM}}, "1 项 PPM 与 1 项 OCM 维护任务即将到期"},
		{"仅PPM", []ReminderTask{{Kind: TaskKindPPM}, {Kind: TaskKindPPM}}, "2 项 PPM 维护任务即将到期"},
		{"仅OCM", []ReminderTask{{Kind: TaskKindOCM}}, "1 项 OCM 维护任务即将到期"},
		{"空", nil, "暂无即将到期的维护任务"},
	}
	for _, tc := range cases {
		if got := SummarizeTasks(tc.tasks); got != tc.want {
			t.Errorf("%s: 期望 %q，实际 %q", tc.name, tc.want, got)
		}
	}
}
