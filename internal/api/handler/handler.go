package handler

import "shelter-caller/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Shelter    *ShelterHandler
	Count      *CountHandler
	Log        *LogHandler
	Preference *PreferenceHandler
	Export     *ExportHandler
	Telephony  *TelephonyHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Shelter:    NewShelterHandler(svc.Shelter),
		Count:      NewCountHandler(svc.Counts, svc.Ledger),
		Log:        NewLogHandler(svc.Log),
		Preference: NewPreferenceHandler(svc.Preference),
		Export:     NewExportHandler(svc.Export),
		Telephony:  NewTelephonyHandler(svc.Intake, svc.Dispatch),
	}
}
