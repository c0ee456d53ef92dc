// Package link 实现命令调度核心：构造出站帧、串行化发送、按报文身份
// 三元组 (did, cid, seq) 配对应答，并处理超时与断链失败。
package link

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/taoyao-code/droidlink/internal/metrics"
	"github.com/taoyao-code/droidlink/internal/protocol/apiv2"
	"github.com/taoyao-code/droidlink/internal/transport"
)

// DefaultTimeout 默认命令超时
const DefaultTimeout = 10 * time.Second

// DefaultMinInterval 两次命令之间的最小安全间隔，保护无线链路
const DefaultMinInterval = 120 * time.Millisecond

// Config 调度器配置
type Config struct {
	Timeout     time.Duration // 默认命令超时（<=0 取 DefaultTimeout）
	MinInterval time.Duration // 最小发令间隔（<=0 取 DefaultMinInterval）
}

// outcome 在飞请求的完成槽：应答或失败，二者只填一次
type outcome struct {
	pkt *apiv2.Packet
	err error
}

// Dispatcher 命令调度器。状态（发号器、在飞表）随一条连接存续，
// 断开即清空；多实例各自独立，互不共享。
type Dispatcher struct {
	tr  transport.Transport
	asm *apiv2.Assembler
	seq apiv2.SeqAllocator
	log *zap.Logger
	m   *metrics.AppMetrics

	limiter *rate.Limiter // 发令间隔节流
	sendMu  sync.Mutex    // 发送临界区：保证传输侧严格 FIFO

	mu      sync.Mutex // 保护在飞表（发送路径与接收路径互斥）
	pending map[apiv2.Identity]chan outcome

	timeout time.Duration
}

// New 创建调度器并挂接传输层接收回调
func New(tr transport.Transport, cfg Config, logger *zap.Logger, m *metrics.AppMetrics) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		tr:      tr,
		log:     logger,
		m:       m,
		limiter: rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		pending: make(map[apiv2.Identity]chan outcome),
		timeout: cfg.Timeout,
	}
	d.asm = apiv2.NewAssembler(d.onPacket, d.onFrameError)
	tr.OnReceive(func(p []byte) {
		if d.m != nil {
			d.m.BytesReceived.Add(float64(len(p)))
		}
		d.asm.Feed(p)
	})
	return d
}

// Send 发送一条命令并等待应答载荷。
// 失败语义：未连接 ErrNotConnected；超时 *TimeoutError；设备报错 *CommandError；
// 等待期间断链 ErrDisconnected。不做任何自动重试，重试策略属于调用方。
func (d *Dispatcher) Send(ctx context.Context, did, cid uint8, payload []byte, timeout time.Duration) ([]byte, error) {
	return d.send(ctx, 0, false, did, cid, payload, timeout)
}

// SendTo 面向多处理器机型：指定目标处理器 ID，源 ID 固定 0x01
func (d *Dispatcher) SendTo(ctx context.Context, target uint8, did, cid uint8, payload []byte, timeout time.Duration) ([]byte, error) {
	return d.send(ctx, target, true, did, cid, payload, timeout)
}

func (d *Dispatcher) send(ctx context.Context, target uint8, hasTarget bool, did, cid uint8, payload []byte, timeout time.Duration) ([]byte, error) {
	if !d.tr.IsConnected() {
		return nil, ErrNotConnected
	}
	if timeout <= 0 {
		timeout = d.timeout
	}

	// 发送临界区：等足最小间隔、发号、注册、写链路。
	// 锁只覆盖发送定序，不覆盖等待应答，允许多条命令同时在飞。
	d.sendMu.Lock()
	if err := d.limiter.Wait(ctx); err != nil {
		d.sendMu.Unlock()
		return nil, err
	}
	pkt := &apiv2.Packet{
		Flags:     apiv2.FlagRequestsResponse | apiv2.FlagIsActivity,
		DeviceID:  did,
		CommandID: cid,
		Seq:       d.seq.Next(),
		Payload:   payload,
	}
	if hasTarget {
		pkt.Flags |= apiv2.FlagHasTargetID | apiv2.FlagHasSourceID
		pkt.TargetID = target
		pkt.SourceID = 0x01
	}
	id := pkt.Identity()
	ch := make(chan outcome, 1)
	// 应答可能先于发送方进入等待到达，注册必须先于写出
	d.mu.Lock()
	d.pending[id] = ch
	d.mu.Unlock()
	if d.m != nil {
		d.m.PendingGauge.Inc()
	}
	raw := pkt.Encode()
	err := d.tr.Write(raw)
	d.sendMu.Unlock()

	if err != nil {
		d.remove(id)
		return nil, err
	}
	if d.m != nil {
		d.m.CommandsSent.WithLabelValues(fmt.Sprintf("0x%02X", did)).Inc()
		d.m.BytesWritten.Add(float64(len(raw)))
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case out := <-ch:
		d.remove(id)
		if out.err != nil {
			d.countError("disconnected")
			return nil, out.err
		}
		if !out.pkt.Err.IsSuccess() {
			d.countError("command")
			return nil, &CommandError{Code: out.pkt.Err}
		}
		return out.pkt.Payload, nil
	case <-timer.C:
		d.remove(id)
		d.countError("timeout")
		return nil, &TimeoutError{DeviceID: did, CommandID: cid, Timeout: timeout}
	case <-ctx.Done():
		d.remove(id)
		return nil, ctx.Err()
	}
}

// onPacket 接收路径：按身份三元组配对在飞请求；无主报文（主动通知、
// 迟到应答）直接丢弃，仅计数，不构成协议错误
func (d *Dispatcher) onPacket(p *apiv2.Packet) {
	if d.m != nil {
		d.m.FramesDecoded.Inc()
	}
	id := p.Identity()
	d.mu.Lock()
	ch, ok := d.pending[id]
	if ok {
		delete(d.pending, id)
	}
	d.mu.Unlock()
	if !ok {
		if d.m != nil {
			d.m.UnmatchedFrames.Inc()
		}
		d.log.Debug("unmatched frame dropped",
			zap.Uint8("did", id.DeviceID),
			zap.Uint8("cid", id.CommandID),
			zap.Uint8("seq", id.Seq),
		)
		return
	}
	if d.m != nil {
		d.m.PendingGauge.Dec()
	}
	ch <- outcome{pkt: p}
}

// onFrameError 坏帧诊断：流已在重组器内自同步，这里只做计数
func (d *Dispatcher) onFrameError(err error) {
	kind := "framing"
	if errors.Is(err, apiv2.ErrBadChecksum) {
		kind = "checksum"
	}
	if d.m != nil {
		d.m.FrameErrors.WithLabelValues(kind).Inc()
	}
	d.log.Debug("malformed frame dropped", zap.Error(err))
}

// FailPending 使所有在飞请求立即失败并清空在飞表。
// 必须在链路拆除之前（或作为其一部分）调用，避免请求永久悬挂。
func (d *Dispatcher) FailPending(err error) {
	if err == nil {
		err = ErrDisconnected
	}
	d.mu.Lock()
	for id, ch := range d.pending {
		delete(d.pending, id)
		if d.m != nil {
			d.m.PendingGauge.Dec()
		}
		ch <- outcome{err: err}
	}
	d.mu.Unlock()
}

// countError 失败命令分类计数
func (d *Dispatcher) countError(kind string) {
	if d.m != nil {
		d.m.CommandErrors.WithLabelValues(kind).Inc()
	}
}

// Reset 连接重建时恢复初始状态：失败残留请求、清重组缓冲、发号归零
func (d *Dispatcher) Reset() {
	d.FailPending(ErrDisconnected)
	d.asm.Reset()
	d.seq.Reset()
}

// PendingCount 返回当前在飞请求数（诊断用）
func (d *Dispatcher) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// remove 无条件清理在飞表项（成功、失败、超时共用）
func (d *Dispatcher) remove(id apiv2.Identity) {
	d.mu.Lock()
	_, ok := d.pending[id]
	if ok {
		delete(d.pending, id)
	}
	d.mu.Unlock()
	if ok && d.m != nil {
		d.m.PendingGauge.Dec()
	}
}
