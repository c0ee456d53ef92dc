package droid

import (
	"context"
	"encoding/binary"
	"fmt"
)

// AudioComponent 内置音频播放与音量控制
type AudioComponent struct {
	d *Droid
}

// Play 播放指定编号的内置音效
func (c *AudioComponent) Play(ctx context.Context, soundID uint16, mode AudioPlaybackMode) error {
	payload := make([]byte, 0, 3)
	payload = binary.BigEndian.AppendUint16(payload, soundID)
	payload = append(payload, uint8(mode))
	_, err := c.d.send(ctx, DeviceIO, cmdPlayAudioFile, payload)
	return err
}

// StopAll 停止全部音频播放
func (c *AudioComponent) StopAll(ctx context.Context) error {
	_, err := c.d.send(ctx, DeviceIO, cmdStopAllAudio, nil)
	return err
}

// SetVolume 设置系统音量（0-255）
func (c *AudioComponent) SetVolume(ctx context.Context, volume uint8) error {
	_, err := c.d.send(ctx, DeviceIO, cmdSetAudioVolume, []byte{volume})
	return err
}

// Volume 读取当前系统音量
func (c *AudioComponent) Volume(ctx context.Context) (uint8, error) {
	resp, err := c.d.send(ctx, DeviceIO, cmdGetAudioVolume, nil)
	if err != nil {
		return 0, err
	}
	if len(resp) < 1 {
		return 0, fmt.Errorf("empty volume response")
	}
	return resp[0], nil
}
