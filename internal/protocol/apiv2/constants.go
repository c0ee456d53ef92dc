package apiv2

// 帧定界字节与转义前缀
const (
	SOP    byte = 0x8D // 帧起始
	EOP    byte = 0xD8 // 帧结束
	Escape byte = 0xAB // 转义前缀
)

// 转义替代码：保留字节出现在帧体内时写作 Escape + 替代码
const (
	escapedEscape byte = 0x23 // 0xAB -> 0xAB 0x23
	escapedSOP    byte = 0x05 // 0x8D -> 0xAB 0x05
	escapedEOP    byte = 0x50 // 0xD8 -> 0xAB 0x50
)

// minFrameLen 最小可解析帧长（含 SOP/EOP）
const minFrameLen = 6

// Flags 包头标志位
type Flags uint8

const (
	FlagIsResponse                Flags = 0x01 // 响应帧（含错误码字段）
	FlagRequestsResponse          Flags = 0x02 // 请求对端应答
	FlagRequestsOnlyErrorResponse Flags = 0x04 // 仅在出错时应答
	FlagIsActivity                Flags = 0x08 // 活动标记（复位休眠计时）
	FlagHasTargetID               Flags = 0x10 // 帧体含目标处理器ID
	FlagHasSourceID               Flags = 0x20 // 帧体含源处理器ID
	FlagExtendedFlags             Flags = 0x80 // 扩展标志（保留）
)

// Has 判断标志位是否置位
func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// ErrorCode 响应帧携带的设备侧错误码（闭合枚举）
type ErrorCode uint8

const (
	CodeSuccess             ErrorCode = 0x00
	CodeBadDeviceID         ErrorCode = 0x01
	CodeBadCommandID        ErrorCode = 0x02
	CodeNotYetImplemented   ErrorCode = 0x03
	CodeCommandIsRestricted ErrorCode = 0x04
	CodeBadDataLength       ErrorCode = 0x05
	CodeCommandFailed       ErrorCode = 0x06
	CodeBadParameterValue   ErrorCode = 0x07
	CodeBusy                ErrorCode = 0x08
	CodeBadTargetID         ErrorCode = 0x09
	CodeTargetUnavailable   ErrorCode = 0x0A
)

var errorMessages = map[ErrorCode]string{
	CodeSuccess:             "success",
	CodeBadDeviceID:         "bad device ID",
	CodeBadCommandID:        "bad command ID",
	CodeNotYetImplemented:   "not yet implemented",
	CodeCommandIsRestricted: "command is restricted",
	CodeBadDataLength:       "bad data length",
	CodeCommandFailed:       "command failed",
	CodeBadParameterValue:   "bad parameter value",
	CodeBusy:                "device is busy",
	CodeBadTargetID:         "bad target ID",
	CodeTargetUnavailable:   "target unavailable",
}

// IsSuccess 判断是否为成功码
func (c ErrorCode) IsSuccess() bool { return c == CodeSuccess }

// Known 判断错误码是否属于协议定义的闭合枚举
func (c ErrorCode) Known() bool {
	_, ok := errorMessages[c]
	return ok
}

// Message 返回错误码的诊断描述（仅用于日志与错误文本）
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "unknown error"
}
