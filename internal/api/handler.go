package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/droidlink/internal/droid"
	"github.com/taoyao-code/droidlink/internal/transport/ble"
)

// ScanFunc 蓝牙扫描入口（守护进程注入；nil 表示不支持扫描）
type ScanFunc func(ctx context.Context, timeout time.Duration) ([]ble.DroidInfo, error)

// Handler 机器人控制API处理器
type Handler struct {
	d      *droid.Droid
	scan   ScanFunc
	logger *zap.Logger
}

// NewHandler 创建控制API处理器
func NewHandler(d *droid.Droid, scan ScanFunc, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{d: d, scan: scan, logger: logger}
}

func fail(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{"error": err.Error()})
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- 行驶 ---

type rollRequest struct {
	Heading    int `json:"heading"`
	Speed      int `json:"speed"`
	DurationMs int `json:"durationMs"`
}

// Roll 以给定航向/速度行驶
func (h *Handler) Roll(c *gin.Context) {
	var req rollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	dur := time.Duration(req.DurationMs) * time.Millisecond
	if err := h.d.Drive.Roll(c.Request.Context(), req.Heading, req.Speed, dur); err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c)
}

// Stop 停止行驶
func (h *Handler) Stop(c *gin.Context) {
	if err := h.d.Drive.Stop(c.Request.Context()); err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c)
}

type headingRequest struct {
	Heading int `json:"heading"`
}

// SetHeading 原地调整航向
func (h *Handler) SetHeading(c *gin.Context) {
	var req headingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.d.Drive.SetHeading(c.Request.Context(), req.Heading); err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c)
}

// ResetYaw 重置航向系
func (h *Handler) ResetYaw(c *gin.Context) {
	if err := h.d.Drive.ResetYaw(c.Request.Context()); err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c)
}

// --- 头部 ---

type domeRequest struct {
	Angle float32 `json:"angle"`
}

// SetDomePosition 设置头部角度
func (h *Handler) SetDomePosition(c *gin.Context) {
	var req domeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.d.Dome.SetPosition(c.Request.Context(), req.Angle); err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c)
}

// GetDomePosition 读取头部角度
func (h *Handler) GetDomePosition(c *gin.Context) {
	angle, err := h.d.Dome.Position(c.Request.Context())
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"angle": angle})
}

// --- 腿部姿态 ---

type stanceRequest struct {
	Action string `json:"action"`
}

var stanceActions = map[string]droid.LegAction{
	"stop":   droid.LegActionStop,
	"tripod": droid.LegActionTripod,
	"bipod":  droid.LegActionBipod,
	"waddle": droid.LegActionWaddle,
}

// SetStance 下发腿部动作
func (h *Handler) SetStance(c *gin.Context) {
	var req stanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	action, known := stanceActions[req.Action]
	if !known {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action: " + req.Action})
		return
	}
	if err := h.d.Stance.Set(c.Request.Context(), action); err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c)
}

// GetStance 查询腿部状态
func (h *Handler) GetStance(c *gin.Context) {
	state, err := h.d.Stance.State(c.Request.Context())
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": uint8(state)})
}

// --- 灯光 ---

type rgbRequest struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// SetFrontLED 设置前灯颜色
func (h *Handler) SetFrontLED(c *gin.Context) {
	var req rgbRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.d.LEDs.SetFront(c.Request.Context(), req.R, req.G, req.B); err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c)
}

// SetBackLED 设置后灯颜色
func (h *Handler) SetBackLED(c *gin.Context) {
	var req rgbRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.d.LEDs.SetBack(c.Request.Context(), req.R, req.G, req.B); err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c)
}

type brightnessRequest struct {
	Brightness uint8 `json:"brightness"`
}

// SetHoloProjector 设置全息投影灯亮度
func (h *Handler) SetHoloProjector(c *gin.Context) {
	var req brightnessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.d.LEDs.SetHoloProjector(c.Request.Context(), req.Brightness); err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c)
}

// SetLogicDisplays 设置逻辑显示屏亮度
func (h *Handler) SetLogicDisplays(c *gin.Context) {
	var req brightnessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.d.LEDs.SetLogicDisplays(c.Request.Context(), req.Brightness); err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c)
}

// LEDsOff 熄灭全部灯光
func (h *Handler) LEDsOff(c *gin.Context) {
	if err := h.d.LEDs.Off(c.Request.Context()); err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c)
}

// --- 音频 ---

type playRequest struct {
	SoundID uint16 `json:"soundId"`
	Mode    uint8  `json:"mode"`
}

// PlaySound 播放内置音效
func (h *Handler) PlaySound(c *gin.Context) {
	var req playRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.d.Audio.Play(c.Request.Context(), req.SoundID, droid.AudioPlaybackMode(req.Mode)); err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c)
}

// StopAudio 停止全部音频
func (h *Handler) StopAudio(c *gin.Context) {
	if err := h.d.Audio.StopAll(c.Request.Context()); err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c)
}

type volumeRequest struct {
	Volume uint8 `json:"volume"`
}

// SetVolume 设置音量
func (h *Handler) SetVolume(c *gin.Context) {
	var req volumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.d.Audio.SetVolume(c.Request.Context(), req.Volume); err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c)
}

// GetVolume 读取音量
func (h *Handler) GetVolume(c *gin.Context) {
	vol, err := h.d.Audio.Volume(c.Request.Context())
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"volume": vol})
}

// --- 电源与信息 ---

// Wake 唤醒
func (h *Handler) Wake(c *gin.Context) {
	if err := h.d.Wake(c.Request.Context()); err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c)
}

// Sleep 休眠
func (h *Handler) Sleep(c *gin.Context) {
	if err := h.d.Sleep(c.Request.Context()); err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c)
}

// Battery 电池电压/状态/百分比汇总
func (h *Handler) Battery(c *gin.Context) {
	ctx := c.Request.Context()
	voltage, err := h.d.BatteryVoltage(ctx)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	state, err := h.d.BatteryState(ctx)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	pct, err := h.d.BatteryPercentage(ctx)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"voltage":    voltage,
		"state":      state.String(),
		"percentage": pct,
	})
}

// Info 固件版本与MAC地址
func (h *Handler) Info(c *gin.Context) {
	ctx := c.Request.Context()
	fw, err := h.d.FirmwareVersion(ctx)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	mac, err := h.d.MACAddress(ctx)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"firmware":  fw,
		"mac":       mac,
		"connected": h.d.IsConnected(),
	})
}

// Scan 扫描周边可连接的机器人
func (h *Handler) Scan(c *gin.Context) {
	if h.scan == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scanning not available"})
		return
	}
	timeout := 10 * time.Second
	if v := c.Query("timeout"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		timeout = d
	}
	found, err := h.scan(c.Request.Context(), timeout)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"droids": found})
}
