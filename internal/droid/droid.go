// Package droid 在命令调度核心之上提供面向人的便捷操作层：
// 唤醒/休眠、电量查询、行驶、头部、腿部姿态、灯光与音频。
// 每个操作只是一次载荷打包 + Commander.Send，不含协议逻辑。
package droid

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/droidlink/internal/transport"
)

// Commander 命令下发原语（由 link.Dispatcher 满足）
type Commander interface {
	Send(ctx context.Context, did, cid uint8, payload []byte, timeout time.Duration) ([]byte, error)
}

// Config 机器人便捷层配置
type Config struct {
	Timeout       time.Duration // 单命令超时（0 用调度器默认）
	WakeOnConnect bool          // 连接成功后自动唤醒
}

// Droid 一台已配对机器人的控制句柄
type Droid struct {
	tr      transport.Transport
	cmd     Commander
	log     *zap.Logger
	timeout time.Duration
	wake    bool

	Drive  *DriveComponent
	Dome   *DomeComponent
	Stance *StanceComponent
	LEDs   *LEDComponent
	Audio  *AudioComponent
}

// New 组装控制句柄；tr 与 cmd 的接线（BLE、调度器）由调用方完成
func New(tr transport.Transport, cmd Commander, cfg Config, logger *zap.Logger) *Droid {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Droid{
		tr:      tr,
		cmd:     cmd,
		log:     logger,
		timeout: cfg.Timeout,
		wake:    cfg.WakeOnConnect,
	}
	d.Drive = &DriveComponent{d: d}
	d.Dome = &DomeComponent{d: d}
	d.Stance = &StanceComponent{d: d}
	d.LEDs = &LEDComponent{d: d}
	d.Audio = &AudioComponent{d: d}
	return d
}

// Connect 建立链路；按配置自动唤醒
func (d *Droid) Connect(ctx context.Context) error {
	if err := d.tr.Connect(ctx); err != nil {
		return err
	}
	if d.wake {
		if err := d.Wake(ctx); err != nil {
			d.log.Warn("wake on connect failed", zap.Error(err))
		}
	}
	return nil
}

// Disconnect 拆除链路
func (d *Droid) Disconnect() error { return d.tr.Disconnect() }

// IsConnected 返回链路状态
func (d *Droid) IsConnected() bool { return d.tr.IsConnected() }

// send 组件共用的下发入口
func (d *Droid) send(ctx context.Context, did, cid uint8, payload []byte) ([]byte, error) {
	return d.cmd.Send(ctx, did, cid, payload, d.timeout)
}

// Wake 从软休眠唤醒
func (d *Droid) Wake(ctx context.Context) error {
	_, err := d.send(ctx, DevicePower, cmdWake, nil)
	return err
}

// Sleep 进入软休眠
func (d *Droid) Sleep(ctx context.Context) error {
	_, err := d.send(ctx, DevicePower, cmdSleep, nil)
	return err
}

// DeepSleep 进入深度休眠（需物理充电唤醒）
func (d *Droid) DeepSleep(ctx context.Context) error {
	_, err := d.send(ctx, DevicePower, cmdEnterDeepSleep, nil)
	return err
}

// Ping 核心设备探活
func (d *Droid) Ping(ctx context.Context) error {
	_, err := d.send(ctx, DeviceCore, cmdPing, nil)
	return err
}

// APIProtocolVersion 固件 API 协议版本 "major.minor"
func (d *Droid) APIProtocolVersion(ctx context.Context) (string, error) {
	resp, err := d.send(ctx, DeviceCore, cmdGetAPIProtocolVersion, nil)
	if err != nil {
		return "", err
	}
	if len(resp) < 2 {
		return "", fmt.Errorf("protocol version response too short: %d bytes", len(resp))
	}
	return fmt.Sprintf("%d.%d", resp[0], resp[1]), nil
}

// PlayAnimation 播放内置动画
func (d *Droid) PlayAnimation(ctx context.Context, animationID uint16) error {
	payload := binary.BigEndian.AppendUint16(nil, animationID)
	_, err := d.send(ctx, DeviceAnimatronic, cmdPlayAnimation, payload)
	return err
}

// StopAnimation 停止当前动画
func (d *Droid) StopAnimation(ctx context.Context) error {
	_, err := d.send(ctx, DeviceAnimatronic, cmdStopAnimation, nil)
	return err
}

// BatteryVoltage 电池电压（伏）
func (d *Droid) BatteryVoltage(ctx context.Context) (float64, error) {
	resp, err := d.send(ctx, DevicePower, cmdGetBatteryVoltage, nil)
	if err != nil {
		return 0, err
	}
	if len(resp) < 2 {
		return 0, fmt.Errorf("battery voltage response too short: %d bytes", len(resp))
	}
	return float64(binary.BigEndian.Uint16(resp)) / 100.0, nil
}

// BatteryState 电池充放电状态
func (d *Droid) BatteryState(ctx context.Context) (BatteryState, error) {
	resp, err := d.send(ctx, DevicePower, cmdGetBatteryState, nil)
	if err != nil {
		return BatteryUnknown, err
	}
	if len(resp) < 1 {
		return BatteryUnknown, fmt.Errorf("empty battery state response")
	}
	return BatteryState(resp[0]), nil
}

// BatteryPercentage 电量百分比 (0-100)
func (d *Droid) BatteryPercentage(ctx context.Context) (int, error) {
	resp, err := d.send(ctx, DevicePower, cmdGetBatteryPercentage, nil)
	if err != nil {
		return 0, err
	}
	if len(resp) < 1 {
		return 0, fmt.Errorf("empty battery percentage response")
	}
	return int(resp[0]), nil
}

// FirmwareVersion 主固件版本 "major.minor.patch"
func (d *Droid) FirmwareVersion(ctx context.Context) (string, error) {
	resp, err := d.send(ctx, DeviceSystemInfo, cmdGetMainAppVersion, nil)
	if err != nil {
		return "", err
	}
	if len(resp) < 6 {
		return "", fmt.Errorf("firmware version response too short: %d bytes", len(resp))
	}
	major := binary.BigEndian.Uint16(resp[0:2])
	minor := binary.BigEndian.Uint16(resp[2:4])
	patch := binary.BigEndian.Uint16(resp[4:6])
	return fmt.Sprintf("%d.%d.%d", major, minor, patch), nil
}

// MACAddress 主控 MAC 地址
func (d *Droid) MACAddress(ctx context.Context) (string, error) {
	resp, err := d.send(ctx, DeviceSystemInfo, cmdGetMACAddress, nil)
	if err != nil {
		return "", err
	}
	return string(resp), nil
}

// SKU 商品型号编码
func (d *Droid) SKU(ctx context.Context) (string, error) {
	resp, err := d.send(ctx, DeviceSystemInfo, cmdGetSKU, nil)
	if err != nil {
		return "", err
	}
	return string(resp), nil
}

// ChargerState 充电座状态
func (d *Droid) ChargerState(ctx context.Context) (uint8, error) {
	resp, err := d.send(ctx, DevicePower, cmdGetChargerState, nil)
	if err != nil {
		return 0, err
	}
	if len(resp) < 1 {
		return 0, fmt.Errorf("empty charger state response")
	}
	return resp[0], nil
}
