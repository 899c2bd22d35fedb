package service

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"equipcare/backend/internal/model"
)

// ── Mock PPMRepository ──

type mockPPMRepo struct {
	items map[string]*model.PPMEquipment
}

func newMockPPMRepo() *mockPPMRepo {
	return &mockPPMRepo{items: make(map[string]*model.PPMEquipment)}
}

func (m *mockPPMRepo) Create(_ context.Context, e *model.PPMEquipment) error {
	if e.ID == 0 {
		e.ID = uint(len(m.items) + 1)
	}
	m.items[e.Serial] = e
	return nil
}

func (m *mockPPMRepo) GetBySerial(_ context.Context, serial string) (*model.PPMEquipment, error) {
	if e, ok := m.items[serial]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPPMRepo) List(_ context.Context) ([]model.PPMEquipment, error) {
	var result []model.PPMEquipment
	for _, e := range m.items {
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockPPMRepo) Update(_ context.Context, e *model.PPMEquipment) error {
	m.items[e.Serial] = e
	return nil
}

func (m *mockPPMRepo) Delete(_ context.Context, serial string) error {
	delete(m.items, serial)
	return nil
}

func (m *mockPPMRepo) UpdateStatus(_ context.Context, serial, status string) error {
	if e, ok := m.items[serial]; ok {
		e.Status = status
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockPPMRepo) Reindex(_ context.Context) error { return nil }

// ── Mock OCMRepository ──

type mockOCMRepo struct {
	items map[string]*model.OCMEquipment
}

func newMockOCMRepo() *mockOCMRepo {
	return &mockOCMRepo{items: make(map[string]*model.OCMEquipment)}
}

func (m *mockOCMRepo) Create(_ context.Context, e *model.OCMEquipment) error {
	if e.ID == 0 {
		e.ID = uint(len(m.items) + 1)
	}
	m.items[e.Serial] = e
	return nil
}

func (m *mockOCMRepo) GetBySerial(_ context.Context, serial string) (*model.OCMEquipment, error) {
	if e, ok := m.items[serial]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOCMRepo) List(_ context.Context) ([]model.OCMEquipment, error) {
	var result []model.OCMEquipment
	for _, e := range m.items {
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockOCMRepo) Update(_ context.Context, e *model.OCMEquipment) error {
	m.items[e.Serial] = e
	return nil
}

func (m *mockOCMRepo) Delete(_ context.Context, serial string) error {
	delete(m.items, serial)
	return nil
}

func (m *mockOCMRepo) UpdateStatus(_ context.Context, serial, status string) error {
	if e, ok := m.items[serial]; ok {
		e.Status = status
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockOCMRepo) Reindex(_ context.Context) error { return nil }

// ── Mock SettingRepository ──

type mockSettingRepo struct {
	setting *model.ReminderSetting
	getErr  error
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{}
}

func (m *mockSettingRepo) Get(_ context.Context) (*model.ReminderSetting, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.setting == nil {
		return nil, gorm.ErrRecordNotFound
	}
	// 返回副本，避免测试中 LoadSafe 的就地修正影响存储值
	cp := *m.setting
	return &cp, nil
}

func (m *mockSettingRepo) Update(_ context.Context, s *model.ReminderSetting) error {
	cp := *s
	m.setting = &cp
	return nil
}

// ── Mock PushSubscriptionRepository ──

type mockPushSubRepo struct {
	subs map[string]*model.PushSubscription
}

func newMockPushSubRepo() *mockPushSubRepo {
	return &mockPushSubRepo{subs: make(map[string]*model.PushSubscription)}
}

func (m *mockPushSubRepo) Add(_ context.Context, sub *model.PushSubscription) error {
	m.subs[sub.Endpoint] = sub
	return nil
}

func (m *mockPushSubRepo) List(_ context.Context) ([]model.PushSubscription, error) {
	var result []model.PushSubscription
	for _, s := range m.subs {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Endpoint < result[j].Endpoint })
	return result, nil
}

func (m *mockPushSubRepo) Remove(_ context.Context, endpoint string) error {
	delete(m.subs, endpoint)
	return nil
}

// ── Mock AuditLogRepository ──

type mockAuditRepo struct {
	entries []model.AuditLog
}

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{}
}

func (m *mockAuditRepo) Append(_ context.Context, entry *model.AuditLog) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) List(_ context.Context, page, pageSize int) ([]model.AuditLog, int64, error) {
	total := int64(len(m.entries))
	start := (page - 1) * pageSize
	if start >= len(m.entries) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(m.entries) {
		end = len(m.entries)
	}
	return m.entries[start:end], total, nil
}
