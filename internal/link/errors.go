package link

import (
	"errors"
	"fmt"
	"time"

	"github.com/taoyao-code/droidlink/internal/protocol/apiv2"
)

var (
	// ErrNotConnected 调用时链路未连接
	ErrNotConnected = errors.New("link not connected")
	// ErrDisconnected 等待应答期间链路断开
	ErrDisconnected = errors.New("link disconnected")
)

// TimeoutError 在配置时限内未收到匹配应答
type TimeoutError struct {
	DeviceID  uint8
	CommandID uint8
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command timed out after %v (did=0x%02X cid=0x%02X)",
		e.Timeout, e.DeviceID, e.CommandID)
}

// CommandError 设备以非成功错误码应答
type CommandError struct {
	Code apiv2.ErrorCode
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command rejected: %s (0x%02X)", e.Code.Message(), uint8(e.Code))
}
