package businessday

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDay 一天内的时刻（距零点的偏移），与日期、时区无关
type TimeOfDay time.Duration

// 可接受的时刻格式：偏好表里存 "22:00"，PostgreSQL TIME 列读回为 "22:00:00"
var timeOfDayLayouts = []string{"15:04", "15:04:05", "15:04:05.999999", "3:04PM", "3:04 PM"}

// ParseTimeOfDay 解析 "HH:MM" / "HH:MM:SS" / "h:mm PM"
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeOfDayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDayOf(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

// MustTimeOfDay 仅用于常量与测试
func MustTimeOfDay(s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return tod
}

// TimeOfDayOf 取 t 在其自身时区下的墙钟时刻
func TimeOfDayOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond()))
}

func (t TimeOfDay) Hour() int   { return int(time.Duration(t) / time.Hour) }
func (t TimeOfDay) Minute() int { return int(time.Duration(t) % time.Hour / time.Minute) }

// String 规范化为 "HH:MM"（秒为零时）或 "HH:MM:SS"
func (t TimeOfDay) String() string {
	sec := int(time.Duration(t) % time.Minute / time.Second)
	if sec == 0 {
		return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), sec)
}

// Display 面向短信/网页的时刻文本，如 "8:00 PM"
func (t TimeOfDay) Display() string {
	return time.Date(2000, 1, 1, t.Hour(), t.Minute(), 0, 0, time.UTC).Format("3:04 PM")
}

// Spoken 面向语音播报的时刻文本，如 "8 O'clock P M"、"9 oh 5 A M"
func (t TimeOfDay) Spoken() string {
	hour := t.Hour()
	ampm := "A M"
	if hour >= 12 {
		ampm = "P M"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}

	var minute string
	switch m := t.Minute(); {
	case m == 0:
		minute = "O'clock"
	case m < 10:
		minute = fmt.Sprintf("oh %d", m)
	default:
		minute = fmt.Sprintf("%d", m)
	}
	return fmt.Sprintf("%d %s %s", hour, minute, ampm)
}
