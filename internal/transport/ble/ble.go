// Package ble 基于 tinygo.org/x/bluetooth 实现机器人 BLE 链路。
// 负责连接、API v2 特征的握手与通知订阅、以及 20 字节 MTU 分片写入；
// 协议语义完全交由上层。
package ble

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"github.com/taoyao-code/droidlink/internal/transport"
)

// NamePrefix 机器人广播名前缀
const NamePrefix = "D2-"

// BLE MTU 限制：单次写入载荷上限
const writeChunkSize = 20

// Sphero API v2 服务与特征
var (
	uuidAPIService  = mustUUID("00010001-574f-4f20-5370-6865726f2121")
	uuidAPIChar     = mustUUID("00010002-574f-4f20-5370-6865726f2121")
	uuidDFUService  = mustUUID("00020001-574f-4f20-5370-6865726f2121")
	uuidForceBand   = mustUUID("00020005-574f-4f20-5370-6865726f2121")
)

// 反 DoS 握手载荷：写入后机器人才开放 API v2 特征
var handshakeData = []byte("usetheforce...band")

var (
	ErrNotFound   = errors.New("droid not found within scan timeout")
	ErrNoAPIChar  = errors.New("api characteristic not found")
)

func mustUUID(s string) bluetooth.UUID {
	u, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Config BLE 链路配置
type Config struct {
	Name        string        // 精确广播名（如 "D2-55E3"），为空时按前缀匹配
	Address     string        // 直接指定地址，优先于名称匹配
	ScanTimeout time.Duration // 搜索超时
	ChunkDelay  time.Duration // 分片写入间隔（部分固件需要喘息时间）
}

// Transport BLE 链路实现，满足 transport.Transport
type Transport struct {
	adapter *bluetooth.Adapter
	cfg     Config
	log     *zap.Logger

	mu        sync.Mutex
	device    bluetooth.Device
	apiChar   bluetooth.DeviceCharacteristic
	bandChar  bluetooth.DeviceCharacteristic
	onRecv    func([]byte)
	onDrop    func()
	connected atomic.Bool

	writeMu sync.Mutex
}

// New 创建 BLE 链路（使用系统默认蓝牙适配器）
func New(cfg Config, logger *zap.Logger) *Transport {
	if cfg.ScanTimeout <= 0 {
		cfg.ScanTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Transport{adapter: bluetooth.DefaultAdapter, cfg: cfg, log: logger}
	// 链路异常断开时回收状态并通知上层
	t.adapter.SetConnectHandler(func(_ bluetooth.Device, connected bool) {
		if connected || !t.connected.CompareAndSwap(true, false) {
			return
		}
		t.log.Warn("ble link dropped")
		t.mu.Lock()
		drop := t.onDrop
		t.mu.Unlock()
		if drop != nil {
			drop()
		}
	})
	return t
}

// SetOnDisconnect 安装异常断开钩子（能力接口之外的具体实现扩展，
// 由上层用于使所有在飞请求立即失败）
func (t *Transport) SetOnDisconnect(fn func()) {
	t.mu.Lock()
	t.onDrop = fn
	t.mu.Unlock()
}

// Connect 搜索、连接并完成握手与通知订阅
func (t *Transport) Connect(ctx context.Context) error {
	if t.connected.Load() {
		return nil
	}
	if err := t.adapter.Enable(); err != nil {
		return err
	}

	result, err := t.discover(ctx)
	if err != nil {
		return err
	}
	t.log.Info("droid found",
		zap.String("name", result.LocalName()),
		zap.String("address", result.Address.String()),
	)

	dev, err := t.adapter.Connect(result.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return err
	}

	if err := t.setup(dev); err != nil {
		_ = dev.Disconnect()
		return err
	}

	t.mu.Lock()
	t.device = dev
	t.mu.Unlock()
	t.connected.Store(true)
	t.log.Info("droid connected", zap.String("address", result.Address.String()))
	return nil
}

// setup 发现服务/特征，写入握手并订阅 API 通知
func (t *Transport) setup(dev bluetooth.Device) error {
	svcs, err := dev.DiscoverServices([]bluetooth.UUID{uuidAPIService, uuidDFUService})
	if err != nil {
		return err
	}
	var apiChar, bandChar bluetooth.DeviceCharacteristic
	var haveAPI, haveBand bool
	for _, svc := range svcs {
		chars, err := svc.DiscoverCharacteristics(nil)
		if err != nil {
			return err
		}
		for _, ch := range chars {
			switch ch.UUID() {
			case uuidAPIChar:
				apiChar, haveAPI = ch, true
			case uuidForceBand:
				bandChar, haveBand = ch, true
			}
		}
	}
	if !haveAPI {
		return ErrNoAPIChar
	}

	// 先握手，再开放 API 通道
	if haveBand {
		if _, err := bandChar.WriteWithoutResponse(handshakeData); err != nil {
			return err
		}
	}

	err = apiChar.EnableNotifications(func(buf []byte) {
		t.mu.Lock()
		cb := t.onRecv
		t.mu.Unlock()
		if cb != nil {
			// 通知缓冲可能被驱动复用，交付副本
			cb(append([]byte(nil), buf...))
		}
	})
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.apiChar = apiChar
	t.bandChar = bandChar
	t.mu.Unlock()
	return nil
}

// discover 按地址或广播名搜索目标机器人
func (t *Transport) discover(ctx context.Context) (bluetooth.ScanResult, error) {
	var (
		found  bluetooth.ScanResult
		okFlag atomic.Bool
	)
	scanCtx, cancel := context.WithTimeout(ctx, t.cfg.ScanTimeout)
	defer cancel()
	go func() {
		<-scanCtx.Done()
		_ = t.adapter.StopScan()
	}()

	err := t.adapter.Scan(func(a *bluetooth.Adapter, res bluetooth.ScanResult) {
		if !t.match(res) {
			return
		}
		found = res
		okFlag.Store(true)
		_ = a.StopScan()
	})
	if err != nil {
		return bluetooth.ScanResult{}, err
	}
	if !okFlag.Load() {
		return bluetooth.ScanResult{}, ErrNotFound
	}
	return found, nil
}

// match 过滤广播：地址精确匹配 > 名称精确匹配 > "D2-" 前缀
func (t *Transport) match(res bluetooth.ScanResult) bool {
	if t.cfg.Address != "" {
		return strings.EqualFold(res.Address.String(), t.cfg.Address)
	}
	name := res.LocalName()
	if t.cfg.Name != "" {
		return name == t.cfg.Name
	}
	return strings.HasPrefix(name, NamePrefix)
}

// Write 保序写入，按 BLE MTU 分片
func (t *Transport) Write(p []byte) error {
	if !t.connected.Load() {
		return transport.ErrNotConnected
	}
	t.mu.Lock()
	ch := t.apiChar
	t.mu.Unlock()

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	for len(p) > 0 {
		n := len(p)
		if n > writeChunkSize {
			n = writeChunkSize
		}
		if _, err := ch.WriteWithoutResponse(p[:n]); err != nil {
			return err
		}
		p = p[n:]
		if len(p) > 0 && t.cfg.ChunkDelay > 0 {
			time.Sleep(t.cfg.ChunkDelay)
		}
	}
	return nil
}

// OnReceive 注册原始入站字节回调（任意切块、无消息边界）
func (t *Transport) OnReceive(fn func(p []byte)) {
	t.mu.Lock()
	t.onRecv = fn
	t.mu.Unlock()
}

// Disconnect 主动断开链路
func (t *Transport) Disconnect() error {
	if !t.connected.CompareAndSwap(true, false) {
		return nil
	}
	t.mu.Lock()
	dev := t.device
	t.mu.Unlock()
	return dev.Disconnect()
}

// IsConnected 返回链路状态
func (t *Transport) IsConnected() bool { return t.connected.Load() }
