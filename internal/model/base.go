package model

import (
	"time"
)

// BaseModel 通用时间戳字段（可编辑的业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// ── 联系渠道 ──

// ContactType 审计日志中的联系渠道，存储与日志统一使用该枚举
type ContactType string

const (
	ContactUnknown      ContactType = "unknown"
	ContactIncomingText ContactType = "incoming_text"
	ContactIncomingCall ContactType = "incoming_call"
	ContactOutgoingCall ContactType = "outgoing_call"
	ContactAdmin        ContactType = "admin"
)

// ParseContactType 解析 webhook 传入的渠道；IVR 流程传 "text"/"call" 简写，无法识别时归为 unknown
func ParseContactType(s string) ContactType {
	switch s {
	case "incoming_text", "text", "sms":
		return ContactIncomingText
	case "incoming_call", "call", "voice":
		return ContactIncomingCall
	case "outgoing_call":
		return ContactOutgoingCall
	case "admin", "web":
		return ContactAdmin
	default:
		return ContactUnknown
	}
}

// Valid 是否为已知枚举值
func (c ContactType) Valid() bool {
	switch c {
	case ContactUnknown, ContactIncomingText, ContactIncomingCall, ContactOutgoingCall, ContactAdmin:
		return true
	}
	return false
}
