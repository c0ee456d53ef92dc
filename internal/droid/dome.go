package droid

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
)

// 头部旋转角度范围（度）
const (
	domeMinAngle = -160.0
	domeMaxAngle = 180.0
)

// DomeComponent 头部（穹顶）旋转控制
type DomeComponent struct {
	d *Droid
}

// SetPosition 设置头部角度（度，负值向左），超界自动截断
func (c *DomeComponent) SetPosition(ctx context.Context, angle float32) error {
	if angle < domeMinAngle {
		angle = domeMinAngle
	}
	if angle > domeMaxAngle {
		angle = domeMaxAngle
	}
	payload := make([]byte, 4)
	binary.BigEndian.PutUint32(payload, math.Float32bits(angle))
	_, err := c.d.send(ctx, DeviceAnimatronic, cmdSetHeadPosition, payload)
	return err
}

// Position 读取当前头部角度
func (c *DomeComponent) Position(ctx context.Context) (float32, error) {
	resp, err := c.d.send(ctx, DeviceAnimatronic, cmdGetHeadPosition, nil)
	if err != nil {
		return 0, err
	}
	if len(resp) < 4 {
		return 0, fmt.Errorf("head position response too short: %d bytes", len(resp))
	}
	return math.Float32frombits(binary.BigEndian.Uint32(resp)), nil
}

// Center 头部回正
func (c *DomeComponent) Center(ctx context.Context) error { return c.SetPosition(ctx, 0) }

// LookLeft 向左转头
func (c *DomeComponent) LookLeft(ctx context.Context, angle float32) error {
	if angle < 0 {
		angle = -angle
	}
	return c.SetPosition(ctx, -angle)
}

// LookRight 向右转头
func (c *DomeComponent) LookRight(ctx context.Context, angle float32) error {
	if angle < 0 {
		angle = -angle
	}
	return c.SetPosition(ctx, angle)
}
