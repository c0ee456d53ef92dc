// Package transport 定义链路能力接口：协议核心只依赖这五个操作，
// 不感知具体物理层（BLE、仿真、回环）。
package transport

import (
	"context"
	"errors"
)

var ErrNotConnected = errors.New("transport not connected")

// Transport 链路能力集合。
// Write 必须保序投递全部字节，内部可以任意分片；
// OnReceive 注册的回调以任意切块收到原始入站字节，不保证消息边界。
type Transport interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Write(p []byte) error
	OnReceive(fn func(p []byte))
	IsConnected() bool
}
