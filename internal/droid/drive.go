package droid

import (
	"context"
	"encoding/binary"
	"sync"
	"time"
)

// DriveComponent 行驶控制
type DriveComponent struct {
	d *Droid

	mu      sync.Mutex
	heading int // 最近一次下发的航向，Stop 复用
}

// Roll 以给定航向与速度行驶。speed 取负表示倒退（航向自动加 180°）。
// duration > 0 时行驶该时长后自动停止。
func (c *DriveComponent) Roll(ctx context.Context, heading, speed int, duration time.Duration) error {
	var flags uint8
	if speed < 0 {
		flags |= driveFlagBackward
		heading = (heading + 180) % 360
		speed = -speed
	}
	if speed > 255 {
		speed = 255
	}
	heading = ((heading % 360) + 360) % 360

	c.mu.Lock()
	c.heading = heading
	c.mu.Unlock()

	// speed(1) + heading(2, 大端) + flags(1)
	payload := make([]byte, 4)
	payload[0] = uint8(speed)
	binary.BigEndian.PutUint16(payload[1:3], uint16(heading))
	payload[3] = flags

	if _, err := c.d.send(ctx, DeviceDrive, cmdDriveWithHeading, payload); err != nil {
		return err
	}
	if duration > 0 {
		select {
		case <-time.After(duration):
		case <-ctx.Done():
			return ctx.Err()
		}
		return c.Stop(ctx)
	}
	return nil
}

// Stop 停止行驶（保持当前航向）
func (c *DriveComponent) Stop(ctx context.Context) error {
	c.mu.Lock()
	heading := c.heading
	c.mu.Unlock()
	return c.Roll(ctx, heading, 0, 0)
}

// SetHeading 原地调整航向
func (c *DriveComponent) SetHeading(ctx context.Context, heading int) error {
	return c.Roll(ctx, heading, 0, 0)
}

// ResetYaw 以当前朝向为 0° 重置航向系
func (c *DriveComponent) ResetYaw(ctx context.Context) error {
	if _, err := c.d.send(ctx, DeviceDrive, cmdResetYaw, nil); err != nil {
		return err
	}
	c.mu.Lock()
	c.heading = 0
	c.mu.Unlock()
	return nil
}

// SetRawMotors 直接控制左右电机
func (c *DriveComponent) SetRawMotors(ctx context.Context, leftMode RawMotorMode, leftSpeed int, rightMode RawMotorMode, rightSpeed int) error {
	payload := []byte{
		uint8(leftMode), clampByte(leftSpeed),
		uint8(rightMode), clampByte(rightSpeed),
	}
	_, err := c.d.send(ctx, DeviceDrive, cmdSetRawMotors, payload)
	return err
}

// Spin 原地旋转；direction >= 0 顺时针
func (c *DriveComponent) Spin(ctx context.Context, direction, speed int) error {
	if direction >= 0 {
		return c.SetRawMotors(ctx, MotorForward, speed, MotorReverse, speed)
	}
	return c.SetRawMotors(ctx, MotorReverse, speed, MotorForward, speed)
}

// SetStabilization 设置姿态稳定模式
func (c *DriveComponent) SetStabilization(ctx context.Context, mode StabilizationMode) error {
	_, err := c.d.send(ctx, DeviceDrive, cmdSetStabilization, []byte{uint8(mode)})
	return err
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
