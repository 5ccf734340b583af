package dto

// ── 偏好设置 DTO ──

// PreferenceResponse 偏好设置
type PreferenceResponse struct {
	AppID        string `json:"app_id"`
	Timezone     string `json:"timezone"`
	EnforceHours bool   `json:"enforce_hours"`
	OpenTime     string `json:"open_time"`
	CloseTime    string `json:"close_time"`
	StartDay     string `json:"start_day"`
	UpdatedAt    string `json:"updated_at"`
}

// UpdatePreferenceRequest 部分更新，nil 字段保持不变
type UpdatePreferenceRequest struct {
	Timezone     *string `json:"timezone"      binding:"omitempty,timezone"`
	EnforceHours *bool   `json:"enforce_hours"`
	OpenTime     *string `json:"open_time"     binding:"omitempty,timeofday"`
	CloseTime    *string `json:"close_time"    binding:"omitempty,timeofday"`
	StartDay     *string `json:"start_day"     binding:"omitempty,timeofday"`
}
