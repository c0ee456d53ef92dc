package droid

import (
	"context"
	"fmt"
)

// StanceComponent 腿部姿态控制（两足/三足/摇摆）
type StanceComponent struct {
	d *Droid
}

// Set 下发腿部动作
func (c *StanceComponent) Set(ctx context.Context, action LegAction) error {
	_, err := c.d.send(ctx, DeviceAnimatronic, cmdPerformLegAction, []byte{uint8(action)})
	return err
}

// State 读取当前腿部状态
func (c *StanceComponent) State(ctx context.Context) (LegState, error) {
	resp, err := c.d.send(ctx, DeviceAnimatronic, cmdGetLegAction, nil)
	if err != nil {
		return LegStateUnknown, err
	}
	if len(resp) < 1 {
		return LegStateUnknown, fmt.Errorf("empty leg state response")
	}
	return LegState(resp[0]), nil
}

// Tripod 展开第三条腿
func (c *StanceComponent) Tripod(ctx context.Context) error { return c.Set(ctx, LegActionTripod) }

// Bipod 收起第三条腿
func (c *StanceComponent) Bipod(ctx context.Context) error { return c.Set(ctx, LegActionBipod) }

// Waddle 进入摇摆步态
func (c *StanceComponent) Waddle(ctx context.Context) error { return c.Set(ctx, LegActionWaddle) }

// StopWaddle 停止摇摆
func (c *StanceComponent) StopWaddle(ctx context.Context) error { return c.Set(ctx, LegActionStop) }
