package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ── 人数模块 DTO ──

// SetCountRequest 管理端修正人数；numberOfPeople 为空表示删除当日记录
//
// 看板表单提交的数字可能是字符串也可能是数值，缺失字段由 handler 判定。
type SetCountRequest struct {
	NumberOfPeople Scalar `json:"numberOfPeople"`
	ShelterID      Scalar `json:"shelterID"`
	Day            string `json:"day"`
}

// Scalar 接受 JSON 字符串、数值或 null，统一为字符串
type Scalar string

func (s *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
	case len(b) > 0 && b[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Scalar(str)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("期望字符串或数值: %w", err)
		}
		*s = Scalar(n.String())
	}
	return nil
}

// CountResult 写入后的人数与空床数；删除时均为 nil
type CountResult struct {
	ShelterID   uint   `json:"shelterID"`
	Day         string `json:"day"`
	PersonCount *int   `json:"personcount"`
	BedCount    *int   `json:"bedcount"`
}

// SetCountResponse 管理端修正结果
type SetCountResponse struct {
	Success bool         `json:"success"`
	Counts  *CountResult `json:"counts"`
}

// ShelterCount 看板中单个收容所当日数据
//
// Capacity 仅 admin / visitor 可见，PersonCount 仅 admin 可见，其余角色序列化时省略。
type ShelterCount struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Capacity    *int    `json:"capacity,omitempty"`
	PersonCount *int    `json:"personcount,omitempty"`
	BedCount    *int    `json:"bedcount"`
	Time        *string `json:"time"`
}

// DailyCountsResponse 看板单日视图
type DailyCountsResponse struct {
	Date      string         `json:"date"`
	Yesterday string         `json:"yesterday"`
	Tomorrow  *string        `json:"tomorrow"`
	Counts    []ShelterCount `json:"counts"`
}

// ShelterSeries 单个收容所的空床序列，与 Dates 一一对应，缺失为 null
type ShelterSeries struct {
	Label string `json:"label"`
	Data  []*int `json:"data"`
}

// CountHistoryResponse 14 天空床历史
type CountHistoryResponse struct {
	Dates    []string        `json:"dates"`
	Shelters []ShelterSeries `json:"shelters"`
}
