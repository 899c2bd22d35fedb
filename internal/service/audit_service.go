package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"equipcare/backend/internal/dto"
	"equipcare/backend/internal/model"
	"equipcare/backend/internal/repository"
)

// AuditService 审计日志业务接口
//
// Log 为尽力而为语义：写入失败只记日志，绝不把错误抛回调用方。
// 调度循环、设备变更等所有埋点都依赖这一保证。
type AuditService interface {
	Log(ctx context.Context, eventType, performedBy, description, status string, details map[string]any)
	List(ctx context.Context, page, pageSize int) ([]dto.AuditLogResponse, int64, error)
}

type auditService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAuditService 创建 AuditService 实例
func NewAuditService(repo *repository.Repository, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, logger: logger}
}

func (s *auditService) Log(ctx context.Context, eventType, performedBy, description, status string, details map[string]any) {
	detailsJSON := "{}"
	if len(details) > 0 {
		if raw, err := json.Marshal(details); err != nil {
			s.logger.Warn("审计详情序列化失败", zap.Error(err))
		} else {
			detailsJSON = string(raw)
		}
	}

	entry := &model.AuditLog{
		LogID:       uuid.New().String(),
		EventType:   eventType,
		PerformedBy: performedBy,
		Description: description,
		Status:      status,
		Details:     detailsJSON,
		Timestamp:   time.Now(),
	}

	if err := s.repo.AuditLog.Append(ctx, entry); err != nil {
		s.logger.Warn("审计日志写入失败",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func (s *auditService) List(ctx context.Context, page, pageSize int) ([]dto.AuditLogResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	logs, total, err := s.repo.AuditLog.List(ctx, page, pageSize)
	if err != nil {
		s.logger.Error("查询审计日志失败", zap.Error(err))
		return nil, 0, err
	}

	out := make([]dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.AuditLogResponse{
			LogID:       l.LogID,
			EventType:   l.EventType,
			PerformedBy: l.PerformedBy,
			Description: l.Description,
			Status:      l.Status,
			Details:     l.Details,
			Timestamp:   l.Timestamp.Format("2006-01-02T15:04:05Z"),
		})
	}
	return out, total, nil
}
