package dto

// ── 电话流程 webhook DTO ──
//
// 字段名与 IVR 流程约定一致；响应为扁平 JSON，流程按 success / open 分支。

// ValidateShelterRequest 识别收容所
type ValidateShelterRequest struct {
	ShelterID      string `form:"shelterID"`
	ShelterIDRetry string `form:"shelterID_retry"`
	SpokenText     string `form:"spokenText"`
	Phone          string `form:"phone"`
	ContactType    string `form:"contactType"`
	Tries          int    `form:"tries"`
}

// ValidateShelterResponse 识别成功
type ValidateShelterResponse struct {
	Success bool   `json:"success"`
	ID      uint   `json:"id"`
	LoginID string `json:"login_id"`
	Name    string `json:"name"`
}

// SaveCountRequest 来电/短信上报人数
type SaveCountRequest struct {
	NumberOfPeople string `form:"numberOfPeople"`
	SpokenText     string `form:"spokenText"`
	Phone          string `form:"phone"`
	ShelterID      string `form:"shelterID"`
	ContactType    string `form:"contactType"`
	Tries          int    `form:"tries"`
}

// SaveCountResponse 上报成功
type SaveCountResponse struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Day     string `json:"day"`
}

// FailedCallRequest 流程侧记录失败通话
type FailedCallRequest struct {
	Error       string `form:"error"`
	Phone       string `form:"phone"`
	ContactType string `form:"contactType"`
	ShelterID   string `form:"shelterID"`
}

// FailResponse 流程可识别的失败响应，tries 供流程决定是否重试
type FailResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Tries   int    `json:"tries"`
}

// OpenHoursResponse 当前是否在开放时段
type OpenHoursResponse struct {
	Open        bool   `json:"open"`
	Hours       string `json:"hours,omitempty"`
	SpokenHours string `json:"spoken_hours,omitempty"`
}

// DispatchResult 一轮外呼结果
type DispatchResult struct {
	BusinessDay string `json:"business_day"`
	Selected    int    `json:"selected"`
	Dialed      int    `json:"dialed"`
	Failed      int    `json:"failed"`
	CaughtUp    bool   `json:"caught_up"`
}
