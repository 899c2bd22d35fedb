package service

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"equipcare/backend/internal/model"
)

// ── 测试辅助 ──

func strPtr(s string) *string { return &s }

func testDay(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func ppmWithSlots(slots ...[2]string) *model.PPMEquipment {
	e := &model.PPMEquipment{Serial: "PPM-001", Department: "ICU"}
	quarters := e.Quarters()
	for i, s := range slots {
		if i >= 4 {
			break
		}
		if s[0] != "" {
			quarters[i].QuarterDate = strPtr(s[0])
		}
		if s[1] != "" {
			quarters[i].Engineer = strPtr(s[1])
		}
	}
	return e
}

// ── DerivePPMStatus 测试 ──

func TestStatusEngine_PPM_OverdueWinsOverFuture(t *testing.T) {
	engine := NewStatusEngine(zap.NewNop())
	today := testDay("2024-06-15")

	// 一个过期无工程师槽位 + 一个未来槽位：Overdue 优先
	e := ppmWithSlots(
		[2]string{"01/05/2024", ""},
		[2]string{"01/08/2024", ""},
	)

	if got := engine.DerivePPMStatus(e, today); got != model.StatusOverdue {
		t.Errorf("期望 Overdue，实际 %s", got)
	}
}

func TestStatusEngine_PPM_FutureSlotMeansUpcoming(t *testing.T) {
	engine := NewStatusEngine(zap.NewNop())
	today := testDay("2024-06-15")

	// 过期槽位已分配工程师 + 未来槽位 → Upcoming
	e := ppmWithSlots(
		[2]string{"01/05/2024", "张工"},
		[2]string{"01/08/2024", ""},
	)

	if got := engine.DerivePPMStatus(e, today); got != model.StatusUpcoming {
		t.Errorf("期望 Upcoming，实际 %s", got)
	}
}

func TestStatusEngine_PPM_AllPastMaintained(t *testing.T) {
	engine := NewStatusEngine(zap.NewNop())
	today := testDay("2024-06-15")

	e := ppmWithSlots(
		[2]string{"01/03/2024", "张工"},
		[2]string{"01/05/2024", "李工"},
	)

	if got := engine.DerivePPMStatus(e, today); got != model.StatusMaintained {
		t.Errorf("期望 Maintained，实际 %s", got)
	}
}

func TestStatusEngine_PPM_SameDayCountsAsFuture(t *testing.T) {
	engine := NewStatusEngine(zap.NewNop())
	today := testDay("2024-06-15")

	// 当天到期无工程师：整体汇总按未来处理，不算 Overdue
	e := ppmWithSlots([2]string{"15/06/2024", ""})

	if got := engine.DerivePPMStatus(e, today); got != model.StatusUpcoming {
		t.Errorf("期望 Upcoming，实际 %s", got)
	}
}

func TestStatusEngine_PPM_NoDatesDefaultsUpcoming(t *testing.T) {
	engine := NewStatusEngine(zap.NewNop())
	today := testDay("2024-06-15")

	e := ppmWithSlots()

	if got := engine.DerivePPMStatus(e, today); got != model.StatusUpcoming {
		t.Errorf("期望 Upcoming（安全默认值），实际 %s", got)
	}
}

func TestStatusEngine_PPM_UnparseableDateSkipped(t *testing.T) {
	engine := NewStatusEngine(zap.NewNop())
	today := testDay("2024-06-15")

	// 无法解析的槽位跳过，不影响其余槽位的结论
	e := ppmWithSlots(
		[2]string{"not-a-date", ""},
		[2]string{"01/05/2024", ""},
	)

	if got := engine.DerivePPMStatus(e, today); got != model.StatusOverdue {
		t.Errorf("期望 Overdue，实际 %s", got)
	}
}

func TestStatusEngine_PPM_WhitespaceEngineerNotAssigned(t *testing.T) {
	engine := NewStatusEngine(zap.NewNop())
	today := testDay("2024-06-15")

	// 纯空白工程师视为未分配
	e := ppmWithSlots([2]string{"01/05/2024", "   "})

	if got := engine.DerivePPMStatus(e, today); got != model.StatusOverdue {
		t.Errorf("期望 Overdue，实际 %s", got)
	}
}

// ── DeriveOCMStatus 测试 ──

func TestStatusEngine_OCM_NoNextDateUpcoming(t *testing.T) {
	engine := NewStatusEngine(zap.NewNop())
	today := testDay("2024-06-15")

	e := &model.OCMEquipment{Serial: "OCM-001"}

	if got := engine.DeriveOCMStatus(e, today); got != model.StatusUpcoming {
		t.Errorf("期望 Upcoming，实际 %s", got)
	}
}

func TestStatusEngine_OCM_ServiceCoversNext(t *testing.T) {
	engine := NewStatusEngine(zap.NewNop())
	today := testDay("2024-06-15")

	// 维修日期不早于下次维护日期 → Maintained，即使下次维护已过期
	e := &model.OCMEquipment{
		Serial:          "OCM-001",
		ServiceDate:     strPtr("01/06/2024"),
		NextMaintenance: strPtr("01/06/2024"),
	}

	if got := engine.DeriveOCMStatus(e, today); got != model.StatusMaintained {
		t.Errorf("期望 Maintained，实际 %s", got)
	}
}

func TestStatusEngine_OCM_PastNextOverdue(t *testing.T) {
	engine := NewStatusEngine(zap.NewNop())
	today := testDay("2024-06-15")

	e := &model.OCMEquipment{
		Serial:          "OCM-001",
		ServiceDate:     strPtr("01/01/2024"),
		NextMaintenance: strPtr("01/06/2024"),
	}

	if got := engine.DeriveOCMStatus(e, today); got != model.StatusOverdue {
		t.Errorf("期望 Overdue，实际 %s", got)
	}
}

func TestStatusEngine_OCM_SameDayNextUpcoming(t *testing.T) {
	engine := NewStatusEngine(zap.NewNop())
	today := testDay("2024-06-15")

	// 当天到期不算过期
	e := &model.OCMEquipment{
		Serial:          "OCM-001",
		NextMaintenance: strPtr("15/06/2024"),
	}

	if got := engine.DeriveOCMStatus(e, today); got != model.StatusUpcoming {
		t.Errorf("期望 Upcoming，实际 %s", got)
	}
}

// ── DeriveQuarterDisplayStatus 测试 ──

func TestStatusEngine_Display_SameDayMaintained(t *testing.T) {
	engine := NewStatusEngine(zap.NewNop())
	today := testDay("2024-06-15")

	// 展示状态与整体汇总策略不同：当天 → Maintained
	slot := &model.QuarterSlot{QuarterDate: strPtr("15/06/2024")}

	if got := engine.DeriveQuarterDisplayStatus(slot, today); got != model.StatusMaintained {
		t.Errorf("期望 Maintained，实际 %s", got)
	}
}

func TestStatusEngine_Display_PastWithEngineer(t *testing.T) {
	engine := NewStatusEngine(zap.NewNop())
	today := testDay("2024-06-15")

	slot := &model.QuarterSlot{
		QuarterDate: strPtr("01/05/2024"),
		Engineer:    strPtr("张工"),
	}
	if got := engine.DeriveQuarterDisplayStatus(slot, today); got != model.StatusMaintained {
		t.Errorf("期望 Maintained，实际 %s", got)
	}

	slot.Engineer = nil
	if got := engine.DeriveQuarterDisplayStatus(slot, today); got != model.StatusOverdue {
		t.Errorf("期望 Overdue，实际 %s", got)
	}
}

func TestStatusEngine_Display_UnparseableNA(t *testing.T) {
	engine := NewStatusEngine(zap.NewNop())
	today := testDay("2024-06-15")

	if got := engine.DeriveQuarterDisplayStatus(&model.QuarterSlot{}, today); got != "N/A" {
		t.Errorf("期望 N/A，实际 %s", got)
	}

	slot := &model.QuarterSlot{QuarterDate: strPtr("32/13/2024")}
	if got := engine.DeriveQuarterDisplayStatus(slot, today); got != "N/A" {
		t.Errorf("期望 N/A，实际 %s", got)
	}
}

// ── ProjectQuarterDates 测试 ──

func TestStatusEngine_ProjectQuarterDates_Cumulative(t *testing.T) {
	engine := NewStatusEngine(zap.NewNop())
	today := testDay("2024-06-15")

	// 锚点 2022-10-01：逐级 +3 个月
	got := engine.ProjectQuarterDates(strPtr("01/10/2022"), today)
	want := [4]string{"01/01/2023", "01/04/2023", "01/07/2023", "01/10/2023"}
	if got != want {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
}

func TestStatusEngine_ProjectQuarterDates_BadAnchorUsesToday(t *testing.T) {
	engine := NewStatusEngine(zap.NewNop())
	today := testDay("2024-06-15")

	got := engine.ProjectQuarterDates(strPtr("garbage"), today)
	want := [4]string{"15/09/2024", "15/12/2024", "15/03/2025", "15/06/2025"}
	if got != want {
		t.Errorf("期望 %v，实际 %v", want, got)
	}

	// 无锚点与坏锚点等价
	if got2 := engine.ProjectQuarterDates(nil, today); got2 != want {
		t.Errorf("期望 %v，实际 %v", want, got2)
	}
}

func TestStatusEngine_ProjectQuarterDates_Deterministic(t *testing.T) {
	engine := NewStatusEngine(zap.NewNop())
	today := testDay("2024-06-15")
	anchor := strPtr("01/10/2022")

	first := engine.ProjectQuarterDates(anchor, today)
	second := engine.ProjectQuarterDates(anchor, today)
	if first != second {
		t.Errorf("同一锚点两次推算结果不一致: %v vs %v", first, second)
	}
}
