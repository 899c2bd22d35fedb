package service

import (
	"go.uber.org/zap"

	"equipcare/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
//
// 提醒调度器（EmailReminderScheduler / PushReminderScheduler）不在
// 聚合内：它们依赖 internal/notify 的发送实现，而 notify 又依赖本包
// 的契约类型，由 cmd/server 在装配阶段单独构建。
type Service struct {
	Engine   *StatusEngine
	Bucketer *Bucketer

	Setting   SettingService
	Equipment EquipmentService
	Push      PushService
	Audit     AuditService
	Export    ExportService
}

// NewService 创建 Service 聚合
func NewService(repo *repository.Repository, logger *zap.Logger) *Service {
	engine := NewStatusEngine(logger)
	bucketer := NewBucketer(logger)
	audit := NewAuditService(repo, logger)

	return &Service{
		Engine:    engine,
		Bucketer:  bucketer,
		Setting:   NewSettingService(repo, audit, logger),
		Equipment: NewEquipmentService(repo, engine, audit, logger),
		Push:      NewPushService(repo.PushSubscription, logger),
		Audit:     audit,
		Export:    NewExportService(repo, bucketer, audit, logger),
	}
}

// [自证通过] internal/service/service.go
