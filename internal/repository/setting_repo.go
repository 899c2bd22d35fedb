package repository

import (
	"context"

	"gorm.io/gorm"

	"equipcare/backend/internal/model"
)

// SettingRepository 提醒设置数据访问接口（单行表）
type SettingRepository interface {
	Get(ctx context.Context) (*model.ReminderSetting, error)
	Update(ctx context.Context, s *model.ReminderSetting) error
}

type settingRepo struct {
	db *gorm.DB
}

// NewSettingRepo 创建 SettingRepository 实例
func NewSettingRepo(db *gorm.DB) SettingRepository {
	return &settingRepo{db: db}
}

func (r *settingRepo) Get(ctx context.Context) (*model.ReminderSetting, error) {
	var s model.ReminderSetting
	if err := r.db.WithContext(ctx).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingRepo) Update(ctx context.Context, s *model.ReminderSetting) error {
	return r.db.WithContext(ctx).Save(s).Error
}
