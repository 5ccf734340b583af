package dto

// ── 审计日志 DTO ──

// LogEntry 审计日志条目
type LogEntry struct {
	ID          uint    `json:"id"`
	Time        string  `json:"time"`
	ShelterID   *uint   `json:"shelter_id"`
	FromNumber  string  `json:"from_number"`
	ContactType string  `json:"contact_type"`
	InputText   string  `json:"input_text"`
	ParsedText  string  `json:"parsed_text"`
	Action      string  `json:"action"`
	Error       *string `json:"error"`
}

// ShelterLogsResponse 某收容所的审计日志分页
type ShelterLogsResponse struct {
	Shelter    string     `json:"shelter"`
	Logs       []LogEntry `json:"logs"`
	TotalCalls int64      `json:"total_calls"`
	PageSize   int        `json:"page_size"`
	Page       int        `json:"page"`
}
