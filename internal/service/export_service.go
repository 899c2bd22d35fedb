package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"equipcare/backend/internal/model"
	"equipcare/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoEquipment  = errors.New("暂无设备数据可导出")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 台账导出为 Excel (.xlsx)，PPM / OCM 各一个 Sheet
//   - 维护日程导出为 iCalendar (RFC 5545)，供科室订阅日历
//   - 导出以 bytes.Buffer / string 返回，由 Handler 层设置响应头后写入
type ExportService interface {
	// ExportInventory 导出全部设备台账为 Excel
	ExportInventory(ctx context.Context) (*bytes.Buffer, string, error)
	// ExportCalendar 导出未来 daysAhead 天内的维护日程为 iCalendar 文本
	ExportCalendar(ctx context.Context, daysAhead int) (string, string, error)
}

type exportService struct {
	repo     *repository.Repository
	bucketer *Bucketer
	audit    AuditService
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, bucketer *Bucketer, audit AuditService, logger *zap.Logger) ExportService {
	return &exportService{
		repo:     repo,
		bucketer: bucketer,
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

// ═══════════════════════════════════════════════════════════
// ExportInventory — 导出设备台账为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "PPM"：序号/序列号/科室/名称/型号/厂商/四个季度日期与工程师/状态
//   - Sheet "OCM"：序号/序列号/科室/名称/型号/厂商/维修日期/下次维护/工程师/状态
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportInventory(ctx context.Context) (*bytes.Buffer, string, error) {
	ppm, err := s.repo.PPM.List(ctx)
	if err != nil {
		s.logger.Error("查询 PPM 列表失败", zap.Error(err))
		return nil, "", err
	}
	ocm, err := s.repo.OCM.List(ctx)
	if err != nil {
		s.logger.Error("查询 OCM 列表失败", zap.Error(err))
		return nil, "", err
	}
	if len(ppm) == 0 && len(ocm) == 0 {
		return nil, "", ErrExportNoEquipment
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── Sheet "PPM" ──
	ppmSheet := "PPM"
	idx, _ := f.NewSheet(ppmSheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	ppmHeaders := []string{
		"序号", "序列号", "科室", "名称", "型号", "厂商", "日志号",
		"Q1 日期", "Q1 工程师", "Q2 日期", "Q2 工程师",
		"Q3 日期", "Q3 工程师", "Q4 日期", "Q4 工程师", "状态",
	}
	for i, h := range ppmHeaders {
		f.SetCellValue(ppmSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(ppmSheet, "A1", cell(colName(len(ppmHeaders)-1), 1), headerStyle)

	row := 2
	for i := range ppm {
		e := &ppm[i]
		values := []any{e.SequenceNo, e.Serial, e.Department, e.Name, e.Model, e.Manufacturer, e.LogNumber}
		for _, slot := range e.Quarters() {
			values = append(values, strOrDash(slot.QuarterDate), strOrDash(slot.Engineer))
		}
		values = append(values, e.Status)
		for col, v := range values {
			f.SetCellValue(ppmSheet, cell(colName(col), row), v)
		}
		row++
	}

	// ── Sheet "OCM" ──
	ocmSheet := "OCM"
	f.NewSheet(ocmSheet)

	ocmHeaders := []string{
		"序号", "序列号", "科室", "名称", "型号", "厂商", "日志号",
		"维修日期", "下次维护", "工程师", "状态",
	}
	for i, h := range ocmHeaders {
		f.SetCellValue(ocmSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(ocmSheet, "A1", cell(colName(len(ocmHeaders)-1), 1), headerStyle)

	row = 2
	for i := range ocm {
		e := &ocm[i]
		values := []any{
			e.SequenceNo, e.Serial, e.Department, e.Name, e.Model, e.Manufacturer, e.LogNumber,
			strOrDash(e.ServiceDate), strOrDash(e.NextMaintenance), e.Engineer, e.Status,
		}
		for col, v := range values {
			f.SetCellValue(ocmSheet, cell(colName(col), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("设备台账_%s.xlsx", s.now().Format("2006-01-02"))

	s.audit.Log(ctx, model.AuditDataExport, "System",
		fmt.Sprintf("导出设备台账（PPM %d 台，OCM %d 台）", len(ppm), len(ocm)),
		model.AuditStatusSuccess,
		map[string]any{"format": "xlsx", "ppm": len(ppm), "ocm": len(ocm)})

	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportCalendar — 导出维护日程为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 未来 daysAhead 天内的每条维护任务生成一个全天 VEVENT，
// 科室日历软件可直接订阅该 .ics。

func (s *exportService) ExportCalendar(ctx context.Context, daysAhead int) (string, string, error) {
	ppm, err := s.repo.PPM.List(ctx)
	if err != nil {
		s.logger.Error("查询 PPM 列表失败", zap.Error(err))
		return "", "", err
	}
	ocm, err := s.repo.OCM.List(ctx)
	if err != nil {
		s.logger.Error("查询 OCM 列表失败", zap.Error(err))
		return "", "", err
	}

	now := s.now()
	tasks := s.bucketer.Bucket(ppm, ocm, 0, daysAhead, now)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//EquipCare//Maintenance Schedule//CN")
	cal.SetName("设备维护日程")

	for _, t := range tasks {
		due, err := parseDateFlexible(t.DueDate)
		if err != nil {
			continue
		}
		ev := cal.AddEvent(uuid.NewString() + "@equipcare")
		ev.SetCreatedTime(now)
		ev.SetDtStampTime(now)
		ev.SetAllDayStartAt(due)
		ev.SetAllDayEndAt(due.AddDate(0, 0, 1))
		ev.SetSummary(fmt.Sprintf("[%s] %s — %s", t.Kind, t.Serial, t.Description))
		ev.SetLocation(t.Department)
		desc := fmt.Sprintf("设备 %s 的 %s 维护于 %s 到期", t.Serial, t.Kind, t.DueDate)
		if t.Engineer != "" {
			desc += fmt.Sprintf("，负责工程师：%s", t.Engineer)
		}
		ev.SetDescription(desc)
	}

	filename := fmt.Sprintf("maintenance_%s.ics", now.Format("2006-01-02"))

	s.audit.Log(ctx, model.AuditDataExport, "System",
		fmt.Sprintf("导出维护日程（%d 条，未来 %d 天）", len(tasks), daysAhead),
		model.AuditStatusSuccess,
		map[string]any{"format": "ics", "events": len(tasks), "days_ahead": daysAhead})

	return cal.Serialize(), filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func strOrDash(p *string) string {
	if p == nil || *p == "" {
		return "-"
	}
	return *p
}
