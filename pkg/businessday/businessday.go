// Package businessday 业务日与开放时段计算
//
// 所有函数均为纯函数：当前时间作为参数传入，不在内部读取系统时钟。
package businessday

import (
	"time"
)

// Settings 偏好行解析后的强类型时间配置
type Settings struct {
	Location     *time.Location
	EnforceHours bool
	OpenTime     TimeOfDay
	CloseTime    TimeOfDay
	DayCutoff    TimeOfDay
}

// Resolve 计算提交时间所属的业务日
//
// 本地时刻严格晚于 cutoff 时归入次日；恰好等于 cutoff 仍属当日。
// 判断只与 cutoff 比较，与午夜无关：cutoff 为 22:00 时，23:58 属于明天，01:00 属于今天。
func Resolve(ts time.Time, loc *time.Location, cutoff TimeOfDay) Date {
	local := ts.In(loc)
	day := DateOf(local)
	if TimeOfDayOf(local) > cutoff {
		return day.AddDays(1)
	}
	return day
}

// IsOpen 开放时段闸门
//
//   - enforce=false：始终开放
//   - open < close：open ≤ now < close
//   - open > close（跨午夜）：now ≥ open 或 now < close
//   - open == close：零宽区间，始终关闭
func IsOpen(now time.Time, loc *time.Location, open, close TimeOfDay, enforce bool) bool {
	if !enforce {
		return true
	}
	tod := TimeOfDayOf(now.In(loc))
	switch {
	case open < close:
		return open <= tod && tod < close
	case open > close:
		return tod >= open || tod < close
	default:
		return false
	}
}

// Today 业务日视角的"今天"
func (s Settings) Today(now time.Time) Date {
	return Resolve(now, s.Location, s.DayCutoff)
}

// CalendarToday 不考虑 cutoff 的本地日历日（看板日期导航使用）
func (s Settings) CalendarToday(now time.Time) Date {
	return DateOf(now.In(s.Location))
}

// IsOpen 按配置判断 now 是否处于开放时段
func (s Settings) IsOpen(now time.Time) bool {
	return IsOpen(now, s.Location, s.OpenTime, s.CloseTime, s.EnforceHours)
}

// ── 时钟 ──

// Clock 当前时间来源，服务层注入以便测试
type Clock interface {
	Now() time.Time
}

// SystemClock 读取系统时钟
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock 固定时刻（测试使用）
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
