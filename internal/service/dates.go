package service

import (
	"fmt"
	"strings"
	"time"

	"equipcare/backend/internal/model"
)

// 日期解析按优先级依次尝试：DD/MM/YYYY（标准格式）、YYYY-MM-DD（HTML5
// 表单兼容）、MM/DD/YYYY（历史数据兼容）
var dateLayouts = []string{model.DateLayout, "2006-01-02", "01/02/2006"}

// parseDateFlexible 解析多种格式的日期文本，返回无时区的日历日
func parseDateFlexible(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "N/A") {
		return time.Time{}, fmt.Errorf("日期为空")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析日期 %q", s)
}

// dateOnly 截断到日历日（丢弃时间部分，保持 UTC 零点）
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween 两个日历日之间的天数（to - from；同日为 0）
func daysBetween(from, to time.Time) int {
	return int(dateOnly(to).Sub(dateOnly(from)).Hours() / 24)
}

// engineerAssigned 工程师字段非空且非纯空白才视为已分配
func engineerAssigned(engineer *string) bool {
	return engineer != nil && strings.TrimSpace(*engineer) != ""
}

// parseSendTime 解析 HH:MM 格式的每日发送时间
func parseSendTime(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("无效的发送时间 %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}
