package service

import (
	"testing"

	"go.uber.org/zap"

	"equipcare/backend/internal/model"
)

// ── Bucket 窗口边界测试 ──

func TestBucketer_WindowBoundariesInclusive(t *testing.T) {
	bucketer := NewBucketer(zap.NewNop())
	today := testDay("2024-07-15")

	ppm := []model.PPMEquipment{
		*ppmWithSlots([2]string{"15/07/2024", ""}), // 0 天，含
	}
	ppm[0].Serial = "PPM-TODAY"

	edge := ppmWithSlots([2]string{"14/08/2024", ""}) // 30 天，含
	edge.Serial = "PPM-EDGE"
	ppm = append(ppm, *edge)

	beyond := ppmWithSlots([2]string{"15/08/2024", ""}) // 31 天，不含
	beyond.Serial = "PPM-BEYOND"
	ppm = append(ppm, *beyond)

	past := ppmWithSlots([2]string{"14/07/2024", ""}) // -1 天，不含
	past.Serial = "PPM-PAST"
	ppm = append(ppm, *past)

	tasks := bucketer.Bucket(ppm, nil, 0, 30, today)
	if len(tasks) != 2 {
		t.Fatalf("期望 2 条任务，实际 %d", len(tasks))
	}
	if tasks[0].Serial != "PPM-TODAY" || tasks[0].DaysUntil != 0 {
		t.Errorf("期望首条为 PPM-TODAY (0 天)，实际 %s (%d 天)", tasks[0].Serial, tasks[0].DaysUntil)
	}
	if tasks[1].Serial != "PPM-EDGE" || tasks[1].DaysUntil != 30 {
		t.Errorf("期望次条为 PPM-EDGE (30 天)，实际 %s (%d 天)", tasks[1].Serial, tasks[1].DaysUntil)
	}
}

func TestBucketer_PerSlotTasks(t *testing.T) {
	bucketer := NewBucketer(zap.NewNop())
	today := testDay("2024-07-15")

	// 一台设备三个槽位落在窗口内 → 三条任务
	e := ppmWithSlots(
		[2]string{"16/07/2024", "张工"},
		[2]string{"20/07/2024", ""},
		[2]string{"10/08/2024", ""},
		[2]string{"01/12/2024", ""}, // 窗口外
	)

	tasks := bucketer.CollectPPM([]model.PPMEquipment{*e}, 0, 30, today)
	if len(tasks) != 3 {
		t.Fatalf("期望 3 条任务，实际 %d", len(tasks))
	}
	if tasks[0].Description != "Quarter I" {
		t.Errorf("期望 Quarter I，实际 %s", tasks[0].Description)
	}
	if tasks[0].Engineer != "张工" {
		t.Errorf("期望工程师张工，实际 %q", tasks[0].Engineer)
	}
	if tasks[1].Description != "Quarter II" || tasks[2].Description != "Quarter III" {
		t.Errorf("季度名不符: %s / %s", tasks[1].Description, tasks[2].Description)
	}
}

func TestBucketer_OCMNextMaintenance(t *testing.T) {
	bucketer := NewBucketer(zap.NewNop())
	today := testDay("2024-07-15")

	ocm := []model.OCMEquipment{
		{
			Serial:          "OCM-001",
			Department:      "Radiology",
			NextMaintenance: strPtr("20/07/2024"),
			Engineer:        "李工",
		},
		{Serial: "OCM-NODATE"}, // 无下次维护日期，跳过
	}

	tasks := bucketer.CollectOCM(ocm, 0, 30, today)
	if len(tasks) != 1 {
		t.Fatalf("期望 1 条任务，实际 %d", len(tasks))
	}
	task := tasks[0]
	if task.Kind != TaskKindOCM || task.Description != "Next Maintenance" {
		t.Errorf("任务字段不符: %+v", task)
	}
	if task.DaysUntil != 5 {
		t.Errorf("期望 5 天，实际 %d", task.DaysUntil)
	}
}

func TestBucketer_SortStableByDaysUntil(t *testing.T) {
	bucketer := NewBucketer(zap.NewNop())
	today := testDay("2024-07-15")

	a := ppmWithSlots([2]string{"25/07/2024", ""})
	a.Serial = "PPM-A"
	b := ppmWithSlots([2]string{"20/07/2024", ""})
	b.Serial = "PPM-B"
	// 与 PPM-A 同天到期：稳定排序保持 PPM → OCM 的插入顺序
	ocm := []model.OCMEquipment{{
		Serial:          "OCM-C",
		NextMaintenance: strPtr("25/07/2024"),
	}}

	tasks := bucketer.Bucket([]model.PPMEquipment{*a, *b}, ocm, 0, 30, today)
	if len(tasks) != 3 {
		t.Fatalf("期望 3 条任务，实际 %d", len(tasks))
	}
	got := []string{tasks[0].Serial, tasks[1].Serial, tasks[2].Serial}
	want := []string{"PPM-B", "PPM-A", "OCM-C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("期望顺序 %v，实际 %v", want, got)
		}
	}
}

func TestBucketer_UnparseableDateSkipped(t *testing.T) {
	bucketer := NewBucketer(zap.NewNop())
	today := testDay("2024-07-15")

	e := ppmWithSlots(
		[2]string{"bad-date", ""},
		[2]string{"20/07/2024", ""},
	)

	tasks := bucketer.CollectPPM([]model.PPMEquipment{*e}, 0, 30, today)
	if len(tasks) != 1 {
		t.Fatalf("期望 1 条任务（坏日期跳过），实际 %d", len(tasks))
	}
}

// ── 阈值档位表 ──

func TestDefaultThresholds_Coverage(t *testing.T) {
	// 档位表覆盖 [0,30] 且互不重叠
	covered := make(map[int]string)
	for _, b := range DefaultThresholds {
		for d := b.MinDays; d <= b.MaxDays; d++ {
			if prev, ok := covered[d]; ok {
				t.Fatalf("第 %d 天同时落入 %s 与 %s", d, prev, b.Priority)
			}
			covered[d] = b.Priority
		}
	}
	for d := 0; d <= 30; d++ {
		if _, ok := covered[d]; !ok {
			t.Errorf("第 %d 天未被任何档位覆盖", d)
		}
	}
	if covered[0] != "URGENT" || covered[7] != "HIGH" || covered[15] != "MEDIUM" || covered[30] != "LOW" {
		t.Errorf("档位边界不符: %v", covered)
	}
}
