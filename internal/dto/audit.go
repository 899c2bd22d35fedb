package dto

// AuditLogResponse 审计日志出参
type AuditLogResponse struct {
	LogID       string `json:"log_id"`
	EventType   string `json:"event_type"`
	PerformedBy string `json:"performed_by"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Details     string `json:"details"`
	Timestamp   string `json:"timestamp"`
}
