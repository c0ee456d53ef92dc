package health

import (
	"context"
	"fmt"
	"time"
)

// LinkStater 链路状态来源（由机器人句柄与调度器满足）
type LinkStater interface {
	IsConnected() bool
	Ping(ctx context.Context) error
}

// PendingCounter 在飞请求计数来源
type PendingCounter interface {
	PendingCount() int
}

// LinkChecker 机器人链路健康检查：连接状态 + 探活往返
type LinkChecker struct {
	link        LinkStater
	pending     PendingCounter
	pingTimeout time.Duration
}

// NewLinkChecker 创建链路检查器；pending 可为 nil
func NewLinkChecker(link LinkStater, pending PendingCounter, pingTimeout time.Duration) *LinkChecker {
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}
	return &LinkChecker{link: link, pending: pending, pingTimeout: pingTimeout}
}

func (c *LinkChecker) Name() string { return "droid-link" }

// Check 断链即不健康；探活失败视为降级（链路在但响应异常）
func (c *LinkChecker) Check(ctx context.Context) CheckResult {
	details := map[string]any{}
	if c.pending != nil {
		details["pending_requests"] = c.pending.PendingCount()
	}

	if !c.link.IsConnected() {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: "ble link down",
			Details: details,
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()
	if err := c.link.Ping(pingCtx); err != nil {
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("ping failed: %v", err),
			Details: details,
		}
	}
	return CheckResult{Status: StatusHealthy, Details: details}
}
