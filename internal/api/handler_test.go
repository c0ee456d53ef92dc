package api

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taoyao-code/droidlink/internal/api/middleware"
	"github.com/taoyao-code/droidlink/internal/droid"
	"github.com/taoyao-code/droidlink/internal/transport/ble"
)

// fakeCommander 记录下发命令并返回预置响应
type fakeCommander struct {
	mu   sync.Mutex
	sent [][3]interface{} // did, cid, payload
	resp map[[2]uint8][]byte
}

func (f *fakeCommander) Send(ctx context.Context, did, cid uint8, payload []byte, timeout time.Duration) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, [3]interface{}{did, cid, append([]byte(nil), payload...)})
	return f.resp[[2]uint8{did, cid}], nil
}

type fakeTransport struct{ connected bool }

func (f *fakeTransport) Connect(ctx context.Context) error { f.connected = true; return nil }
func (f *fakeTransport) Disconnect() error                 { f.connected = false; return nil }
func (f *fakeTransport) Write(p []byte) error              { return nil }
func (f *fakeTransport) OnReceive(fn func([]byte))         {}
func (f *fakeTransport) IsConnected() bool                 { return f.connected }

func newTestRouter(t *testing.T, cmd *fakeCommander, scan ScanFunc, authCfg middleware.AuthConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	d := droid.New(&fakeTransport{connected: true}, cmd, droid.Config{}, nil)
	h := NewHandler(d, scan, zap.NewNop())
	r := gin.New()
	RegisterRoutes(r, h, authCfg, zap.NewNop())
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRollEndpoint(t *testing.T) {
	cmd := &fakeCommander{resp: map[[2]uint8][]byte{}}
	r := newTestRouter(t, cmd, nil, middleware.AuthConfig{})

	rr := doJSON(t, r, http.MethodPost, "/api/drive/roll", gin.H{"heading": 90, "speed": 100})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	cmd.mu.Lock()
	defer cmd.mu.Unlock()
	require.Len(t, cmd.sent, 1)
	payload := cmd.sent[0][2].([]byte)
	assert.Equal(t, uint8(100), payload[0])
	assert.Equal(t, uint16(90), binary.BigEndian.Uint16(payload[1:3]))
}

func TestRollBadBody(t *testing.T) {
	cmd := &fakeCommander{resp: map[[2]uint8][]byte{}}
	r := newTestRouter(t, cmd, nil, middleware.AuthConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/drive/roll", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStanceEndpoint(t *testing.T) {
	cmd := &fakeCommander{resp: map[[2]uint8][]byte{}}
	r := newTestRouter(t, cmd, nil, middleware.AuthConfig{})

	rr := doJSON(t, r, http.MethodPost, "/api/stance", gin.H{"action": "tripod"})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, r, http.MethodPost, "/api/stance", gin.H{"action": "moonwalk"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBatteryEndpoint(t *testing.T) {
	cmd := &fakeCommander{resp: map[[2]uint8][]byte{
		{0x13, 0x03}: {0x01, 0x90}, // 4.00V
		{0x13, 0x04}: {0x03},       // ok
		{0x13, 0x10}: {0x55},       // 85%
	}}
	r := newTestRouter(t, cmd, nil, middleware.AuthConfig{})

	rr := doJSON(t, r, http.MethodGet, "/api/power/battery", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Voltage    float64 `json:"voltage"`
		State      string  `json:"state"`
		Percentage int     `json:"percentage"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.InDelta(t, 4.0, resp.Voltage, 0.001)
	assert.Equal(t, "ok", resp.State)
	assert.Equal(t, 85, resp.Percentage)
}

func TestScanEndpoint(t *testing.T) {
	cmd := &fakeCommander{resp: map[[2]uint8][]byte{}}
	scan := func(ctx context.Context, timeout time.Duration) ([]ble.DroidInfo, error) {
		return []ble.DroidInfo{{Name: "D2-55A2", Address: "AA:BB:CC:DD:EE:FF", RSSI: -60}}, nil
	}
	r := newTestRouter(t, cmd, scan, middleware.AuthConfig{})

	rr := doJSON(t, r, http.MethodGet, "/api/scan?timeout=2s", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "D2-55A2")

	// 未注入扫描器时返回 503
	r = newTestRouter(t, cmd, nil, middleware.AuthConfig{})
	rr = doJSON(t, r, http.MethodGet, "/api/scan", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestAPIKeyAuthRejects(t *testing.T) {
	cmd := &fakeCommander{resp: map[[2]uint8][]byte{}}
	authCfg := middleware.AuthConfig{APIKey: "secret", Enabled: true}
	r := newTestRouter(t, cmd, nil, authCfg)

	// 无 Key
	rr := doJSON(t, r, http.MethodPost, "/api/drive/stop", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// 错误 Key
	req := httptest.NewRequest(http.MethodPost, "/api/drive/stop", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// 正确 Key（Bearer 格式）
	req = httptest.NewRequest(http.MethodPost, "/api/drive/stop", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDPropagated(t *testing.T) {
	cmd := &fakeCommander{resp: map[[2]uint8][]byte{}}
	r := newTestRouter(t, cmd, nil, middleware.AuthConfig{})

	rr := doJSON(t, r, http.MethodPost, "/api/drive/stop", nil)
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))

	req := httptest.NewRequest(http.MethodPost, "/api/drive/stop", nil)
	req.Header.Set(middleware.RequestIDHeader, "fixed-id")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get(middleware.RequestIDHeader))
}
