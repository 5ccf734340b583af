package model

// Shelter 收容所 — 对应 shelters
//
// Phone 为 NULL 表示不可外呼；空串在写入前归一为 NULL，唯一约束只作用于非空号码。
type Shelter struct {
	ID          uint     `gorm:"primaryKey"                              json:"id"`
	Name        string   `gorm:"type:varchar(128);not null;uniqueIndex"  json:"name"`
	LoginID     string   `gorm:"type:varchar(32);not null;uniqueIndex"   json:"login_id"`
	Phone       *string  `gorm:"type:varchar(32);uniqueIndex"            json:"phone"`
	Description string   `gorm:"type:text;not null"                      json:"description"`
	Capacity    int      `gorm:"not null"                                json:"capacity"`
	Active      bool     `gorm:"not null"                                json:"active"`
	Visible     bool     `gorm:"not null"                                json:"visible"`
	Public      bool     `gorm:"not null"                                json:"public"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Shelter) TableName() string { return "shelters" }

