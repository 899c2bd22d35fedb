package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"equipcare/backend/internal/service"
	"equipcare/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportInventory 导出设备台账为 Excel
// GET /api/v1/export/inventory
func (h *ExportHandler) ExportInventory(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportInventory(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrExportNoEquipment) {
			response.NotFound(c, 50001, "暂无设备数据可导出")
			return
		}
		response.InternalError(c)
		return
	}

	// 文件名含中文，需 RFC 5987 编码
	encodedName := url.QueryEscape(filename)
	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename*=UTF-8''%s`, encodedName))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

// ExportCalendar 导出维护日程为 iCalendar
// GET /api/v1/export/calendar?days_ahead=60
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	daysAhead := 60
	if raw := c.Query("days_ahead"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 365 {
			response.BadRequest(c, 10001, "days_ahead 必须为 1~365 的整数")
			return
		}
		daysAhead = n
	}

	content, filename, err := h.exportSvc.ExportCalendar(c.Request.Context(), daysAhead)
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename=%s`, filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(content))
}
