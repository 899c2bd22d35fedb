package dto

// QuarterSlotPayload 季度槽位入参/出参
type QuarterSlotPayload struct {
	Engineer    *string `json:"engineer,omitempty"`
	QuarterDate *string `json:"quarter_date,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// CreatePPMRequest 创建 PPM 设备请求
// 四个季度日期均缺省时，由安装日期（或当天）推算
type CreatePPMRequest struct {
	Serial           string  `json:"serial" binding:"required"`
	Department       string  `json:"department" binding:"required"`
	Name             string  `json:"name"`
	Model            string  `json:"model" binding:"required"`
	Manufacturer     string  `json:"manufacturer" binding:"required"`
	LogNumber        string  `json:"log_number" binding:"required"`
	InstallationDate *string `json:"installation_date,omitempty"`
	WarrantyEnd      *string `json:"warranty_end,omitempty"`

	QuarterI   *QuarterSlotPayload `json:"quarter_i,omitempty"`
	QuarterII  *QuarterSlotPayload `json:"quarter_ii,omitempty"`
	QuarterIII *QuarterSlotPayload `json:"quarter_iii,omitempty"`
	QuarterIV  *QuarterSlotPayload `json:"quarter_iv,omitempty"`
}

// UpdatePPMRequest 更新 PPM 设备请求（nil 字段不修改）
type UpdatePPMRequest struct {
	Department       *string `json:"department,omitempty"`
	Name             *string `json:"name,omitempty"`
	Model            *string `json:"model,omitempty"`
	Manufacturer     *string `json:"manufacturer,omitempty"`
	LogNumber        *string `json:"log_number,omitempty"`
	InstallationDate *string `json:"installation_date,omitempty"`
	WarrantyEnd      *string `json:"warranty_end,omitempty"`

	QuarterI   *QuarterSlotPayload `json:"quarter_i,omitempty"`
	QuarterII  *QuarterSlotPayload `json:"quarter_ii,omitempty"`
	QuarterIII *QuarterSlotPayload `json:"quarter_iii,omitempty"`
	QuarterIV  *QuarterSlotPayload `json:"quarter_iv,omitempty"`
}

// CreateOCMRequest 创建 OCM 设备请求
type CreateOCMRequest struct {
	Serial           string  `json:"serial" binding:"required"`
	Department       string  `json:"department" binding:"required"`
	Name             string  `json:"name"`
	Model            string  `json:"model" binding:"required"`
	Manufacturer     string  `json:"manufacturer" binding:"required"`
	LogNumber        string  `json:"log_number" binding:"required"`
	InstallationDate *string `json:"installation_date,omitempty"`
	WarrantyEnd      *string `json:"warranty_end,omitempty"`
	ServiceDate      *string `json:"service_date,omitempty"`
	NextMaintenance  *string `json:"next_maintenance,omitempty"`
	Engineer         string  `json:"engineer"`
}

// UpdateOCMRequest 更新 OCM 设备请求（nil 字段不修改）
type UpdateOCMRequest struct {
	Department       *string `json:"department,omitempty"`
	Name             *string `json:"name,omitempty"`
	Model            *string `json:"model,omitempty"`
	Manufacturer     *string `json:"manufacturer,omitempty"`
	LogNumber        *string `json:"log_number,omitempty"`
	InstallationDate *string `json:"installation_date,omitempty"`
	WarrantyEnd      *string `json:"warranty_end,omitempty"`
	ServiceDate      *string `json:"service_date,omitempty"`
	NextMaintenance  *string `json:"next_maintenance,omitempty"`
	Engineer         *string `json:"engineer,omitempty"`
}

// RefreshStatusResponse 状态批量刷新结果
type RefreshStatusResponse struct {
	PPMChanged int `json:"ppm_changed"`
	OCMChanged int `json:"ocm_changed"`
}

// [自证通过] internal/dto/equipment.go
