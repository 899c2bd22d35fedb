package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"equipcare/backend/internal/dto"
	"equipcare/backend/internal/model"
	"equipcare/backend/internal/repository"
)

// ── 提醒设置模块业务错误 ──

var (
	ErrSettingNotFound = errors.New("提醒设置未初始化")
	ErrInvalidSendTime = errors.New("发送时间格式无效，应为 HH:MM")
	ErrInvalidInterval = errors.New("提醒间隔必须为正数")
)

// SettingService 提醒设置业务接口
type SettingService interface {
	Get(ctx context.Context) (*dto.ReminderSettingResponse, error)
	Update(ctx context.Context, req *dto.UpdateReminderSettingRequest) (*dto.ReminderSettingResponse, error)
	// LoadSafe 调度循环专用的软失败加载：设置读不到或非法时回落到
	// 内置保守默认值（通知关闭、60 分钟间隔），绝不向调用方抛错
	LoadSafe(ctx context.Context) *model.ReminderSetting
}

type settingService struct {
	repo   *repository.Repository
	audit  AuditService
	logger *zap.Logger
}

// NewSettingService 创建 SettingService 实例
func NewSettingService(repo *repository.Repository, audit AuditService, logger *zap.Logger) SettingService {
	return &settingService{repo: repo, audit: audit, logger: logger}
}

// defaultSetting 加载失败时调度器使用的保守默认值
func defaultSetting() *model.ReminderSetting {
	return &model.ReminderSetting{
		EmailEnabled:         false,
		EmailIntervalMinutes: 60,
		UseDailySendTime:     true,
		EmailSendTime:        "07:00",
		RemindUrgent:         true,
		RemindHigh:           true,
		RemindMedium:         true,
		RemindLow:            true,
		PushEnabled:          false,
		PushIntervalMinutes:  60,
	}
}

// ────────────────────── Get ──────────────────────

func (s *settingService) Get(ctx context.Context) (*dto.ReminderSettingResponse, error) {
	setting, err := s.repo.Setting.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		s.logger.Error("查询提醒设置失败", zap.Error(err))
		return nil, err
	}
	return toSettingResponse(setting), nil
}

// ────────────────────── Update ──────────────────────

func (s *settingService) Update(ctx context.Context, req *dto.UpdateReminderSettingRequest) (*dto.ReminderSettingResponse, error) {
	setting, err := s.repo.Setting.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		s.logger.Error("查询提醒设置失败", zap.Error(err))
		return nil, err
	}

	if req.EmailEnabled != nil {
		setting.EmailEnabled = *req.EmailEnabled
	}
	if req.EmailIntervalMinutes != nil {
		if *req.EmailIntervalMinutes <= 0 {
			return nil, ErrInvalidInterval
		}
		setting.EmailIntervalMinutes = *req.EmailIntervalMinutes
	}
	if req.UseDailySendTime != nil {
		setting.UseDailySendTime = *req.UseDailySendTime
	}
	if req.EmailSendTime != nil {
		if _, _, err := parseSendTime(*req.EmailSendTime); err != nil {
			return nil, ErrInvalidSendTime
		}
		setting.EmailSendTime = *req.EmailSendTime
	}
	if req.RecipientEmail != nil {
		setting.RecipientEmail = *req.RecipientEmail
	}
	if req.CCEmails != nil {
		setting.CCEmails = *req.CCEmails
	}
	if req.RemindUrgent != nil {
		setting.RemindUrgent = *req.RemindUrgent
	}
	if req.RemindHigh != nil {
		setting.RemindHigh = *req.RemindHigh
	}
	if req.RemindMedium != nil {
		setting.RemindMedium = *req.RemindMedium
	}
	if req.RemindLow != nil {
		setting.RemindLow = *req.RemindLow
	}
	if req.PushEnabled != nil {
		setting.PushEnabled = *req.PushEnabled
	}
	if req.PushIntervalMinutes != nil {
		if *req.PushIntervalMinutes <= 0 {
			return nil, ErrInvalidInterval
		}
		setting.PushIntervalMinutes = *req.PushIntervalMinutes
	}

	if err := s.repo.Setting.Update(ctx, setting); err != nil {
		s.logger.Error("更新提醒设置失败", zap.Error(err))
		return nil, err
	}

	s.audit.Log(ctx, model.AuditSettingChanged, "System",
		"提醒设置已更新", model.AuditStatusSuccess,
		map[string]any{
			"email_enabled": setting.EmailEnabled,
			"push_enabled":  setting.PushEnabled,
		})

	return toSettingResponse(setting), nil
}

// ────────────────────── LoadSafe ──────────────────────

func (s *settingService) LoadSafe(ctx context.Context) *model.ReminderSetting {
	setting, err := s.repo.Setting.Get(ctx)
	if err != nil {
		s.logger.Error("调度循环加载设置失败，使用内置默认值", zap.Error(err))
		return defaultSetting()
	}

	// 非法间隔就地修正，不中断调度
	if setting.EmailIntervalMinutes <= 0 {
		s.logger.Warn("邮件提醒间隔非法，回落为 60 分钟",
			zap.Int("email_interval_minutes", setting.EmailIntervalMinutes))
		setting.EmailIntervalMinutes = 60
	}
	if setting.PushIntervalMinutes <= 0 {
		s.logger.Warn("推送提醒间隔非法，回落为 60 分钟",
			zap.Int("push_interval_minutes", setting.PushIntervalMinutes))
		setting.PushIntervalMinutes = 60
	}

	return setting
}

func toSettingResponse(m *model.ReminderSetting) *dto.ReminderSettingResponse {
	return &dto.ReminderSettingResponse{
		EmailEnabled:         m.EmailEnabled,
		EmailIntervalMinutes: m.EmailIntervalMinutes,
		UseDailySendTime:     m.UseDailySendTime,
		EmailSendTime:        m.EmailSendTime,
		RecipientEmail:       m.RecipientEmail,
		CCEmails:             m.CCEmails,
		RemindUrgent:         m.RemindUrgent,
		RemindHigh:           m.RemindHigh,
		RemindMedium:         m.RemindMedium,
		RemindLow:            m.RemindLow,
		PushEnabled:          m.PushEnabled,
		PushIntervalMinutes:  m.PushIntervalMinutes,
		UpdatedAt:            m.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
