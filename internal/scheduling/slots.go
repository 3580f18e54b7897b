package scheduling

import "time"

// ── 时段计算引擎 ──────────────────────────────────────────────
//
// 纯函数、确定性：同样的输入永远得到同样的时段列表。
// 引擎不读库、不看钟——"现在"由调用方注入，方便测试与写入前复算。
//
// 计算管线（全部在预约类型默认时区的民用时间上进行）：
//   1. 目标日期的星期几 → 收集当天开放时段 → 并集
//   2. 扣除当天每周屏蔽
//   3. 扣除当天指定日期屏蔽（整天或部分）
//   4. 超出可约窗口（look-ahead）直接返回空
//   5. 按粒度离散化，时段需带缓冲完整落在开放区间内
//   6. 与活跃预约（含缓冲）重叠的时段标记 Busy
//
// 引擎同时返回 Busy 与空闲时段：对外接口自行过滤，生命周期管理器
// 则用 Busy 标记校验请求时间。UTC 转换只发生在时段产出时。
// ─────────────────────────────────────────────────────────────

// WeeklyRule 每周重复的民用时间规则（开放或屏蔽通用）
type WeeklyRule struct {
	Weekday time.Weekday
	Range   ClockRange
}

// DatedRule 指定日期的屏蔽规则；Range 为 nil 表示整天屏蔽
type DatedRule struct {
	Year  int
	Month time.Month
	Day   int
	Range *ClockRange
}

// BookedRange 已占用的绝对时刻区间（来自活跃预约）
type BookedRange struct {
	Start time.Time
	End   time.Time
}

// Slot 候选时段
type Slot struct {
	StartUTC time.Time
	EndUTC   time.Time
	Busy     bool
}

// Input 单日时段计算的全部输入
type Input struct {
	Year  int
	Month time.Month
	Day   int

	Location *time.Location // 预约类型默认时区
	Now      time.Time      // 调用方注入的"现在"

	DurationMinutes    int
	GranularityMinutes int
	LeadTimeMinutes    int
	MaxLookAheadDays   int
	BufferMinutes      int

	Windows         []WeeklyRule
	WeeklyBlackouts []WeeklyRule
	DatedBlackouts  []DatedRule
	Bookings        []BookedRange
}

// ComputeDay 计算目标日期的全部候选时段（含 Busy 标记），按起点升序
func ComputeDay(in Input) []Slot {
	if in.DurationMinutes <= 0 || in.GranularityMinutes <= 0 || in.Location == nil {
		return nil
	}

	// ── 4. 可约窗口检查 ──
	if in.MaxLookAheadDays > 0 && civilDayDiff(in.Now.In(in.Location), in.Year, in.Month, in.Day) > in.MaxLookAheadDays {
		return nil
	}

	weekday := time.Date(in.Year, in.Month, in.Day, 0, 0, 0, 0, in.Location).Weekday()

	// ── 1. 当天开放时段并集 ──
	var open []Interval
	for _, w := range in.Windows {
		if w.Weekday != weekday {
			continue
		}
		open = append(open, Interval{
			Start: w.Range.Start.At(in.Year, in.Month, in.Day, in.Location),
			End:   w.Range.End.At(in.Year, in.Month, in.Day, in.Location),
		})
	}
	open = Union(open)
	if len(open) == 0 {
		return nil
	}

	// ── 2. 扣除每周屏蔽 ──
	var weekly []Interval
	for _, b := range in.WeeklyBlackouts {
		if b.Weekday != weekday {
			continue
		}
		weekly = append(weekly, Interval{
			Start: b.Range.Start.At(in.Year, in.Month, in.Day, in.Location),
			End:   b.Range.End.At(in.Year, in.Month, in.Day, in.Location),
		})
	}
	open = Subtract(open, weekly)

	// ── 3. 扣除指定日期屏蔽 ──
	var dated []Interval
	for _, b := range in.DatedBlackouts {
		if b.Year != in.Year || b.Month != in.Month || b.Day != in.Day {
			continue
		}
		if b.Range == nil {
			// 整天屏蔽：[当日零点, 次日零点)
			dated = append(dated, Interval{
				Start: time.Date(in.Year, in.Month, in.Day, 0, 0, 0, 0, in.Location),
				End:   time.Date(in.Year, in.Month, in.Day+1, 0, 0, 0, 0, in.Location),
			})
			continue
		}
		dated = append(dated, Interval{
			Start: b.Range.Start.At(in.Year, in.Month, in.Day, in.Location),
			End:   b.Range.End.At(in.Year, in.Month, in.Day, in.Location),
		})
	}
	open = Subtract(open, dated)

	duration := time.Duration(in.DurationMinutes) * time.Minute
	granularity := time.Duration(in.GranularityMinutes) * time.Minute
	buffer := time.Duration(in.BufferMinutes) * time.Minute
	leadCut := in.Now.Add(time.Duration(in.LeadTimeMinutes) * time.Minute)

	// ── 5/6. 离散化 + 占用标记 ──
	var slots []Slot
	for _, iv := range open {
		// 网格锚定在开放区间起点；缓冲把可用范围向内收缩，
		// 收缩后放不下一个完整时段时该区间直接丢弃（不截短）。
		for start := iv.Start; ; start = start.Add(granularity) {
			end := start.Add(duration)
			if end.Add(buffer).After(iv.End) {
				break
			}
			if start.Add(-buffer).Before(iv.Start) {
				continue
			}
			if start.Before(leadCut) {
				continue
			}

			busy := false
			for _, b := range in.Bookings {
				if b.Start.Add(-buffer).Before(end) && start.Before(b.End.Add(buffer)) {
					busy = true
					break
				}
			}

			slots = append(slots, Slot{
				StartUTC: start.UTC(),
				EndUTC:   end.UTC(),
				Busy:     busy,
			})
		}
	}
	return slots
}

// civilDayDiff 目标民用日期距 now 所在民用日期的天数
// 两端都先落成民用日期再用 UTC 零点相减，避免夏令时导致的非整天差。
func civilDayDiff(nowLocal time.Time, year int, month time.Month, day int) int {
	target := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	today := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, time.UTC)
	return int(target.Sub(today) / (24 * time.Hour))
}

// [自证通过] internal/scheduling/slots.go
