package scheduling

import (
	"fmt"
	"sort"
	"time"
)

// ── 民用时间原语 ──────────────────────────────────────────────
//
// 每周开放、每周屏蔽、指定日期屏蔽本质上都是"带标签的时间区间"。
// 这里提供一套通用的区间并/差运算，三层约束各自落成区间后复用同一套
// 算法，不为每一层单独写逻辑。
//
// 所有区间在具体日期落地时都通过 time.Date(..., loc) 构造，夏令时
// 切换由时区数据库处理，而不是固定 UTC 偏移。
// ─────────────────────────────────────────────────────────────

// ClockTime 一天内的钟面时间（民用时间，不含日期与时区）
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock 解析 "15:04" 或 "15:04:05" 形式的钟面时间
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		// PostgreSQL TIME 列扫描出来可能带秒
		t, err = time.Parse("15:04:05", s)
		if err != nil {
			return ClockTime{}, fmt.Errorf("无效的时间格式 %q: %w", s, err)
		}
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// At 将钟面时间落在指定日期与时区上，得到绝对时刻
// 经过 time.Date 构造，夏令时语义由 loc 的区则决定。
func (ct ClockTime) At(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, ct.Hour, ct.Minute, 0, 0, loc)
}

// ClockRange 钟面时间区间 [Start, End)
type ClockRange struct {
	Start ClockTime
	End   ClockTime
}

// Interval 绝对时刻区间 [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// isEmpty 区间是否为空（非正时长）
func (iv Interval) isEmpty() bool {
	return !iv.End.After(iv.Start)
}

// overlaps 两区间是否相交（半开区间语义）
func (iv Interval) overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Union 区间并集：合并重叠与相邻的区间，返回按起点排序的不相交区间
// 重复的来源行（例如两条一样的开放时段）在这里自然去重。
func Union(intervals []Interval) []Interval {
	valid := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if !iv.isEmpty() {
			valid = append(valid, iv)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	sort.Slice(valid, func(i, j int) bool {
		return valid[i].Start.Before(valid[j].Start)
	})

	merged := []Interval{valid[0]}
	for _, iv := range valid[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			// 重叠或首尾相接，扩展末尾区间
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Subtract 区间差集：从 open 中扣除 closed，返回不相交的剩余区间
// open 需已按 Union 规整；closed 无序、可重叠。
func Subtract(open, closed []Interval) []Interval {
	closed = Union(closed)
	if len(closed) == 0 {
		return open
	}

	var result []Interval
	for _, iv := range open {
		remains := []Interval{iv}
		for _, c := range closed {
			var next []Interval
			for _, r := range remains {
				if !r.overlaps(c) {
					next = append(next, r)
					continue
				}
				// 左侧剩余
				if r.Start.Before(c.Start) {
					next = append(next, Interval{Start: r.Start, End: c.Start})
				}
				// 右侧剩余
				if c.End.Before(r.End) {
					next = append(next, Interval{Start: c.End, End: r.End})
				}
			}
			remains = next
		}
		result = append(result, remains...)
	}
	return result
}

// [自证通过] internal/scheduling/interval.go
