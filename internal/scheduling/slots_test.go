package scheduling

import (
	"testing"
	"time"
)

// 2025-06-02 是周一
var (
	testYear  = 2025
	testMonth = time.June
	testDay   = 2
)

func baseInput(t *testing.T) Input {
	t.Helper()
	return Input{
		Year:     testYear,
		Month:    testMonth,
		Day:      testDay,
		Location: time.UTC,
		Now:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),

		DurationMinutes:    30,
		GranularityMinutes: 15,
		LeadTimeMinutes:    0,
		MaxLookAheadDays:   60,
		BufferMinutes:      0,

		Windows: []WeeklyRule{
			{Weekday: time.Monday, Range: ClockRange{Start: mustClock(t, "09:00"), End: mustClock(t, "12:00")}},
		},
		WeeklyBlackouts: []WeeklyRule{
			{Weekday: time.Monday, Range: ClockRange{Start: mustClock(t, "10:00"), End: mustClock(t, "10:30")}},
		},
	}
}

func slotStarts(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.StartUTC.Format("15:04"))
	}
	return out
}

func assertStarts(t *testing.T, slots []Slot, want []string) {
	t.Helper()
	got := slotStarts(slots)
	if len(got) != len(want) {
		t.Fatalf("期望 %d 个时段 %v，实际 %d 个 %v", len(want), want, len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("时段[%d] 期望 %s，实际 %s", i, want[i], got[i])
		}
	}
}

// ── 规格样例：周一 09:00–12:00，30 分钟时长，15 分钟粒度，
//    每周屏蔽 10:00–10:30，无缓冲 ──

func TestComputeDay_WeeklyBlackoutExample(t *testing.T) {
	slots := ComputeDay(baseInput(t))

	// 09:45 的时段会在 10:15 结束，与屏蔽重叠，所以被排除
	assertStarts(t, slots, []string{
		"09:00", "09:15", "09:30",
		"10:30", "10:45", "11:00", "11:15", "11:30",
	})
	for _, s := range slots {
		if s.Busy {
			t.Errorf("无预约时不应有 Busy 时段: %v", s.StartUTC)
		}
		if got := s.EndUTC.Sub(s.StartUTC); got != 30*time.Minute {
			t.Errorf("时段时长期望 30m，实际 %v", got)
		}
	}
}

func TestComputeDay_NoWindowsForDay(t *testing.T) {
	in := baseInput(t)
	in.Day = 3 // 周二，没有开放时段
	if slots := ComputeDay(in); len(slots) != 0 {
		t.Errorf("期望空列表，实际 %v", slotStarts(slots))
	}
}

func TestComputeDay_OverlappingWindowsUnion(t *testing.T) {
	in := baseInput(t)
	in.WeeklyBlackouts = nil
	// 重叠的两条开放时段并集后等价于 09:00–12:00，不产生重复时段
	in.Windows = append(in.Windows, WeeklyRule{
		Weekday: time.Monday,
		Range:   ClockRange{Start: mustClock(t, "10:00"), End: mustClock(t, "12:00")},
	})

	slots := ComputeDay(in)
	seen := map[string]bool{}
	for _, s := range slots {
		key := s.StartUTC.Format("15:04")
		if seen[key] {
			t.Errorf("时段 %s 重复出现", key)
		}
		seen[key] = true
	}
	if len(slots) != 11 { // 09:00 … 11:30 每 15 分钟
		t.Errorf("期望 11 个时段，实际 %d", len(slots))
	}
}

// ── 指定日期屏蔽 ──

func TestComputeDay_FullDayBlackout(t *testing.T) {
	in := baseInput(t)
	in.DatedBlackouts = []DatedRule{
		{Year: testYear, Month: testMonth, Day: testDay}, // Range 为 nil，整天屏蔽
	}
	if slots := ComputeDay(in); len(slots) != 0 {
		t.Errorf("整天屏蔽后期望空列表，实际 %v", slotStarts(slots))
	}
}

func TestComputeDay_PartialDatedBlackout(t *testing.T) {
	in := baseInput(t)
	in.WeeklyBlackouts = nil
	r := ClockRange{Start: mustClock(t, "09:00"), End: mustClock(t, "11:00")}
	in.DatedBlackouts = []DatedRule{
		{Year: testYear, Month: testMonth, Day: testDay, Range: &r},
	}

	slots := ComputeDay(in)
	assertStarts(t, slots, []string{"11:00", "11:15", "11:30"})
}

func TestComputeDay_DatedBlackoutOtherDayIgnored(t *testing.T) {
	in := baseInput(t)
	in.DatedBlackouts = []DatedRule{
		{Year: testYear, Month: testMonth, Day: testDay + 1},
	}
	if slots := ComputeDay(in); len(slots) == 0 {
		t.Error("其他日期的屏蔽不应影响目标日期")
	}
}

// ── 可约窗口与提前量 ──

func TestComputeDay_BeyondLookAhead(t *testing.T) {
	in := baseInput(t)
	in.MaxLookAheadDays = 7
	in.Now = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) // 距目标 32 天
	if slots := ComputeDay(in); len(slots) != 0 {
		t.Errorf("超出可约窗口期望空列表，实际 %v", slotStarts(slots))
	}
}

func TestComputeDay_AtLookAheadBoundary(t *testing.T) {
	in := baseInput(t)
	in.MaxLookAheadDays = 7
	in.Now = time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC) // 距目标正好 7 天
	if slots := ComputeDay(in); len(slots) == 0 {
		t.Error("可约窗口边界当天应仍可查询")
	}
}

func TestComputeDay_LeadTimeClipsEarlySlots(t *testing.T) {
	in := baseInput(t)
	in.WeeklyBlackouts = nil
	in.Now = time.Date(2025, 6, 2, 9, 10, 0, 0, time.UTC)
	in.LeadTimeMinutes = 30 // 截止线 09:40

	slots := ComputeDay(in)
	assertStarts(t, slots, []string{
		"09:45", "10:00", "10:15", "10:30", "10:45", "11:00", "11:15", "11:30",
	})
}

// ── 缓冲 ──

func TestComputeDay_BufferShrinksWindowEdges(t *testing.T) {
	in := baseInput(t)
	in.WeeklyBlackouts = nil
	in.Windows = []WeeklyRule{
		{Weekday: time.Monday, Range: ClockRange{Start: mustClock(t, "09:00"), End: mustClock(t, "10:30")}},
	}
	in.BufferMinutes = 15

	slots := ComputeDay(in)
	assertStarts(t, slots, []string{"09:15", "09:30", "09:45"})
}

func TestComputeDay_BufferLeavesNoRoom(t *testing.T) {
	// 缓冲收缩后放不下完整时段时直接丢弃，不截短
	in := baseInput(t)
	in.WeeklyBlackouts = nil
	in.Windows = []WeeklyRule{
		{Weekday: time.Monday, Range: ClockRange{Start: mustClock(t, "09:00"), End: mustClock(t, "09:30")}},
	}
	in.BufferMinutes = 15

	if slots := ComputeDay(in); len(slots) != 0 {
		t.Errorf("期望空列表，实际 %v", slotStarts(slots))
	}
}

// ── 占用标记 ──

func TestComputeDay_BookingMarksBusy(t *testing.T) {
	in := baseInput(t)
	in.Bookings = []BookedRange{
		{
			Start: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC),
		},
	}

	slots := ComputeDay(in)
	busyCount := 0
	for _, s := range slots {
		switch s.StartUTC.Format("15:04") {
		case "09:00", "09:15":
			// 09:15–09:45 与预约 09:00–09:30 重叠
			if !s.Busy {
				t.Errorf("时段 %s 应为 Busy", s.StartUTC.Format("15:04"))
			}
			busyCount++
		default:
			if s.Busy {
				t.Errorf("时段 %s 不应为 Busy", s.StartUTC.Format("15:04"))
			}
		}
	}
	if busyCount != 2 {
		t.Errorf("期望 2 个 Busy 时段，实际 %d", busyCount)
	}
}

func TestComputeDay_BusyIncludesBuffer(t *testing.T) {
	in := baseInput(t)
	in.WeeklyBlackouts = nil
	in.BufferMinutes = 15
	in.Bookings = []BookedRange{
		{
			Start: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC),
		},
	}

	slots := ComputeDay(in)
	for _, s := range slots {
		start := s.StartUTC.Format("15:04")
		// 缓冲扩张后 [09:45, 10:45) 范围内开始或结束的时段都算占用
		wantBusy := start == "09:30" || start == "09:45" || start == "10:00" ||
			start == "10:15" || start == "10:30"
		if s.Busy != wantBusy {
			t.Errorf("时段 %s Busy 期望 %v，实际 %v", start, wantBusy, s.Busy)
		}
	}
}

// ── 夏令时 ──

func TestComputeDay_DSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("时区数据库不可用: %v", err)
	}

	in := Input{
		Location:           loc,
		Now:                time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		DurationMinutes:    60,
		GranularityMinutes: 60,
		MaxLookAheadDays:   30,
		Windows: []WeeklyRule{
			{Weekday: time.Sunday, Range: ClockRange{Start: mustClock(t, "09:00"), End: mustClock(t, "10:00")}},
		},
	}

	// 2025-03-02：EST（UTC-5），本地 09:00 = 14:00 UTC
	in.Year, in.Month, in.Day = 2025, time.March, 2
	slots := ComputeDay(in)
	if len(slots) != 1 || slots[0].StartUTC.Hour() != 14 {
		t.Fatalf("EST 期望 14:00 UTC，实际 %v", slotStarts(slots))
	}

	// 2025-03-09：夏令时切换日，EDT（UTC-4），本地 09:00 = 13:00 UTC
	in.Year, in.Month, in.Day = 2025, time.March, 9
	slots = ComputeDay(in)
	if len(slots) != 1 || slots[0].StartUTC.Hour() != 13 {
		t.Fatalf("EDT 期望 13:00 UTC，实际 %v", slotStarts(slots))
	}
}

// ── 不变式：结果内空闲时段互不重叠且不触碰屏蔽 ──

func TestComputeDay_OpenSlotsNeverOverlapBlackouts(t *testing.T) {
	in := baseInput(t)
	slots := ComputeDay(in)

	blackoutStart := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	blackoutEnd := time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)

	for i, s := range slots {
		if s.StartUTC.Before(blackoutEnd) && blackoutStart.Before(s.EndUTC) {
			t.Errorf("时段 %s 与屏蔽区间重叠", s.StartUTC.Format("15:04"))
		}
		if i > 0 && slots[i-1].StartUTC.After(s.StartUTC) {
			t.Error("时段列表未按起点升序")
		}
	}
}
