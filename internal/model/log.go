package model

import "time"

// Action 审计日志记录的动作
type Action string

const (
	ActionValidateShelter Action = "validate_shelter"
	ActionSaveCount       Action = "save_count"
	ActionDeleteCount     Action = "delete_count"
	ActionInitializeCall  Action = "initialize call"
	ActionFailedCall      Action = "log_failed_call"
	ActionValidateTime    Action = "validate_time"
)

// FromWeb 管理端操作的来源标识
const FromWeb = "web"

// Log 审计日志 — 对应 logs，只追加不更新
type Log struct {
	ID          uint        `gorm:"primaryKey"                    json:"id"`
	Time        time.Time   `gorm:"not null;index"                json:"time"`
	ShelterID   *uint       `gorm:"index"                         json:"shelter_id"`
	FromNumber  string      `gorm:"type:varchar(32);not null"     json:"from_number"`
	ContactType ContactType `gorm:"type:varchar(20);not null"     json:"contact_type"`
	InputText   string      `gorm:"type:text;not null"            json:"input_text"`
	ParsedText  string      `gorm:"type:text;not null"            json:"parsed_text"`
	Action      Action      `gorm:"type:varchar(32);not null"     json:"action"`
	Error       *string     `gorm:"type:text"                     json:"error"`

	// 关联
	Shelter *Shelter `gorm:"foreignKey:ShelterID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Log) TableName() string { return "logs" }
