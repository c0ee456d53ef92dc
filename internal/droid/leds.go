package droid

import (
	"context"
	"encoding/binary"
)

// LEDComponent LED 灯组控制。每个可寻址通道在 32 位掩码中占一位，
// 掩码之后按位序附带各通道的亮度值。
type LEDComponent struct {
	d *Droid
}

// setChannels 按掩码设置若干通道亮度。values 的顺序与掩码置位的低位到高位一致。
func (c *LEDComponent) setChannels(ctx context.Context, mask uint32, values []byte) error {
	payload := make([]byte, 0, 4+len(values))
	payload = binary.BigEndian.AppendUint32(payload, mask)
	payload = append(payload, values...)
	_, err := c.d.send(ctx, DeviceIO, cmdSetAllLEDs32Bit, payload)
	return err
}

// SetFront 设置前灯 RGB 颜色
func (c *LEDComponent) SetFront(ctx context.Context, r, g, b uint8) error {
	mask := uint32(1<<ledFrontRed | 1<<ledFrontGreen | 1<<ledFrontBlue)
	return c.setChannels(ctx, mask, []byte{r, g, b})
}

// SetBack 设置后灯 RGB 颜色
func (c *LEDComponent) SetBack(ctx context.Context, r, g, b uint8) error {
	mask := uint32(1<<ledBackRed | 1<<ledBackGreen | 1<<ledBackBlue)
	return c.setChannels(ctx, mask, []byte{r, g, b})
}

// SetLogicDisplays 设置逻辑显示屏亮度
func (c *LEDComponent) SetLogicDisplays(ctx context.Context, brightness uint8) error {
	return c.setChannels(ctx, 1<<ledLogicDisplays, []byte{brightness})
}

// SetHoloProjector 设置全息投影灯亮度
func (c *LEDComponent) SetHoloProjector(ctx context.Context, brightness uint8) error {
	return c.setChannels(ctx, 1<<ledHoloProjector, []byte{brightness})
}

// SetChannel 单通道设置（旧式命令，逐通道寻址）
func (c *LEDComponent) SetChannel(ctx context.Context, channel uint8, brightness uint8) error {
	_, err := c.d.send(ctx, DeviceIO, cmdSetLED, []byte{channel, brightness})
	return err
}

// Release 释放对 LED 的占用，交还固件默认灯效
func (c *LEDComponent) Release(ctx context.Context) error {
	_, err := c.d.send(ctx, DeviceIO, cmdReleaseLEDRequests, nil)
	return err
}

// Off 熄灭全部 LED
func (c *LEDComponent) Off(ctx context.Context) error {
	mask := uint32(1<<ledFrontRed | 1<<ledFrontGreen | 1<<ledFrontBlue |
		1<<ledLogicDisplays |
		1<<ledBackRed | 1<<ledBackGreen | 1<<ledBackBlue |
		1<<ledHoloProjector)
	return c.setChannels(ctx, mask, make([]byte, 8))
}
