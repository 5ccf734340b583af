package model

// Preference 偏好设置 — 对应 preferences（每个 app_id 一行强类型）
type Preference struct {
	AppID        string `gorm:"type:varchar(64);primaryKey" json:"app_id"`
	Timezone     string `gorm:"type:varchar(64);not null"   json:"timezone"`
	EnforceHours bool   `gorm:"not null"                    json:"enforce_hours"`
	OpenTime     string `gorm:"type:varchar(16);not null"   json:"open_time"`
	CloseTime    string `gorm:"type:varchar(16);not null"   json:"close_time"`
	StartDay     string `gorm:"type:varchar(16);not null"   json:"start_day"`
	BaseModel
}

// TableName 指定表名
func (Preference) TableName() string { return "preferences" }
