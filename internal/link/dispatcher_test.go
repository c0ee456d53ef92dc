package link

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/droidlink/internal/protocol/apiv2"
)

// fakeTransport 进程内链路：记录写出的帧，可向接收回调注入任意字节
type fakeTransport struct {
	mu        sync.Mutex
	connected bool
	writes    [][]byte
	writeAt   []time.Time
	recv      func([]byte)
	onWrite   func(raw []byte) // 写出钩子（用于自动应答）
	writeErr  error
}

func (f *fakeTransport) Connect(ctx context.Context) error {
	f.mu.Lock()
	f.connected = true
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) Disconnect() error {
	f.mu.Lock()
	f.connected = false
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) Write(p []byte) error {
	f.mu.Lock()
	if f.writeErr != nil {
		err := f.writeErr
		f.mu.Unlock()
		return err
	}
	dup := append([]byte(nil), p...)
	f.writes = append(f.writes, dup)
	f.writeAt = append(f.writeAt, time.Now())
	hook := f.onWrite
	f.mu.Unlock()
	if hook != nil {
		hook(dup)
	}
	return nil
}

func (f *fakeTransport) OnReceive(fn func([]byte)) {
	f.mu.Lock()
	f.recv = fn
	f.mu.Unlock()
}

func (f *fakeTransport) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// inject 模拟链路送达入站字节
func (f *fakeTransport) inject(p []byte) {
	f.mu.Lock()
	fn := f.recv
	f.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}

// respondWith 安装自动应答：对每条写出的请求回一帧同身份响应
func (f *fakeTransport) respondWith(code apiv2.ErrorCode, payload []byte) {
	f.onWrite = func(raw []byte) {
		req, err := apiv2.Decode(raw)
		if err != nil {
			return
		}
		resp := &apiv2.Packet{
			Flags:     apiv2.FlagIsResponse,
			DeviceID:  req.DeviceID,
			CommandID: req.CommandID,
			Seq:       req.Seq,
			Err:       code,
			Payload:   payload,
		}
		f.inject(resp.Encode())
	}
}

func newTestDispatcher(t *testing.T, tr *fakeTransport, cfg Config) *Dispatcher {
	t.Helper()
	if cfg.MinInterval == 0 {
		cfg.MinInterval = time.Millisecond // 测试不等真实 120ms
	}
	return New(tr, cfg, nil, nil)
}

func TestSend_NotConnected(t *testing.T) {
	tr := &fakeTransport{}
	d := newTestDispatcher(t, tr, Config{})
	_, err := d.Send(context.Background(), 0x13, 0x0D, nil, time.Second)
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestSend_SuccessRoundTrip(t *testing.T) {
	tr := &fakeTransport{}
	require.NoError(t, tr.Connect(context.Background()))
	d := newTestDispatcher(t, tr, Config{})
	tr.respondWith(apiv2.CodeSuccess, []byte{0x03, 0x20})

	got, err := d.Send(context.Background(), 0x13, 0x03, nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x20}, got)
	assert.Equal(t, 0, d.PendingCount())

	// 写出的确实是一条合法请求帧
	require.Len(t, tr.writes, 1)
	req, err := apiv2.Decode(tr.writes[0])
	require.NoError(t, err)
	assert.Equal(t, uint8(0x13), req.DeviceID)
	assert.Equal(t, uint8(0x03), req.CommandID)
	assert.True(t, req.Flags.Has(apiv2.FlagRequestsResponse))
}

func TestSend_DeviceErrorCode(t *testing.T) {
	tr := &fakeTransport{}
	_ = tr.Connect(context.Background())
	d := newTestDispatcher(t, tr, Config{})
	tr.respondWith(apiv2.CodeBusy, nil)

	_, err := d.Send(context.Background(), 0x16, 0x07, []byte{0x64, 0x00, 0x00, 0x00}, time.Second)
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, apiv2.CodeBusy, cmdErr.Code)
	assert.Equal(t, 0, d.PendingCount())
}

func TestSend_WrongSeqIgnored(t *testing.T) {
	// 身份三元组不全匹配的响应不得兑现请求：原请求照常超时
	tr := &fakeTransport{}
	_ = tr.Connect(context.Background())
	d := newTestDispatcher(t, tr, Config{})
	tr.onWrite = func(raw []byte) {
		req, err := apiv2.Decode(raw)
		if err != nil {
			return
		}
		resp := &apiv2.Packet{
			Flags:     apiv2.FlagIsResponse,
			DeviceID:  req.DeviceID,
			CommandID: req.CommandID,
			Seq:       req.Seq + 1, // 错误的序号
			Err:       apiv2.CodeSuccess,
		}
		tr.inject(resp.Encode())
	}

	start := time.Now()
	_, err := d.Send(context.Background(), 0x17, 0x0F, nil, 50*time.Millisecond)
	var toErr *TimeoutError
	require.ErrorAs(t, err, &toErr)
	assert.Equal(t, 50*time.Millisecond, toErr.Timeout)
	assert.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond)
	assert.Equal(t, 0, d.PendingCount())
}

func TestSend_TimeoutThenLateResponse(t *testing.T) {
	tr := &fakeTransport{}
	_ = tr.Connect(context.Background())
	d := newTestDispatcher(t, tr, Config{})

	_, err := d.Send(context.Background(), 0x17, 0x0F, nil, 30*time.Millisecond)
	var toErr *TimeoutError
	require.ErrorAs(t, err, &toErr)
	require.Equal(t, 0, d.PendingCount())

	// 迟到的匹配响应：身份已出表，静默丢弃，不产生任何效果
	req, err := apiv2.Decode(tr.writes[0])
	require.NoError(t, err)
	late := &apiv2.Packet{
		Flags:     apiv2.FlagIsResponse,
		DeviceID:  req.DeviceID,
		CommandID: req.CommandID,
		Seq:       req.Seq,
		Err:       apiv2.CodeSuccess,
	}
	tr.inject(late.Encode())
	assert.Equal(t, 0, d.PendingCount())
}

func TestFailPending_Disconnect(t *testing.T) {
	tr := &fakeTransport{}
	_ = tr.Connect(context.Background())
	d := newTestDispatcher(t, tr, Config{})

	errC := make(chan error, 2)
	for i := 0; i < 2; i++ {
		cid := uint8(0x10 + i)
		go func() {
			_, err := d.Send(context.Background(), 0x13, cid, nil, 5*time.Second)
			errC <- err
		}()
	}
	// 等两条命令都在飞
	require.Eventually(t, func() bool { return d.PendingCount() == 2 },
		time.Second, time.Millisecond)

	d.FailPending(nil)

	for i := 0; i < 2; i++ {
		select {
		case err := <-errC:
			assert.ErrorIs(t, err, ErrDisconnected)
		case <-time.After(time.Second):
			t.Fatal("pending request not failed by disconnect")
		}
	}
	assert.Equal(t, 0, d.PendingCount())
}

func TestSend_MinIntervalSpacing(t *testing.T) {
	tr := &fakeTransport{}
	_ = tr.Connect(context.Background())
	d := New(tr, Config{MinInterval: 60 * time.Millisecond}, nil, nil)
	tr.respondWith(apiv2.CodeSuccess, nil)

	_, err := d.Send(context.Background(), 0x13, 0x0D, nil, time.Second)
	require.NoError(t, err)
	_, err = d.Send(context.Background(), 0x13, 0x01, nil, time.Second)
	require.NoError(t, err)

	require.Len(t, tr.writes, 2)
	gap := tr.writeAt[1].Sub(tr.writeAt[0])
	assert.GreaterOrEqual(t, gap, 50*time.Millisecond, "writes must honor the minimum interval")
}

func TestOnPacket_UnsolicitedDropped(t *testing.T) {
	tr := &fakeTransport{}
	_ = tr.Connect(context.Background())
	d := newTestDispatcher(t, tr, Config{})

	notify := &apiv2.Packet{
		Flags:    apiv2.FlagIsResponse,
		DeviceID: 0x18, CommandID: 0x14, Seq: 0x77,
		Err: apiv2.CodeSuccess, Payload: []byte{0x01},
	}
	tr.inject(notify.Encode())
	assert.Equal(t, 0, d.PendingCount())
}

func TestSend_WriteErrorCleansPending(t *testing.T) {
	tr := &fakeTransport{writeErr: errors.New("gatt write failed")}
	_ = tr.Connect(context.Background())
	d := newTestDispatcher(t, tr, Config{})

	_, err := d.Send(context.Background(), 0x13, 0x0D, nil, time.Second)
	require.Error(t, err)
	assert.Equal(t, 0, d.PendingCount())
}
