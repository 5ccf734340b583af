package model

import (
	"time"

	"shelter-caller/pkg/businessday"
)

// Count 每个收容所每个业务日一行 — 对应 counts，主键 (shelter_id, day)
type Count struct {
	ShelterID   uint             `gorm:"primaryKey;autoIncrement:false" json:"shelter_id"`
	Day         businessday.Date `gorm:"primaryKey;type:date"           json:"day"`
	PersonCount *int             `json:"person_count"`
	BedCount    *int             `json:"bed_count"`
	Time        time.Time        `gorm:"not null"                       json:"time"`

	// 关联
	Shelter *Shelter `gorm:"foreignKey:ShelterID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Count) TableName() string { return "counts" }
