package ble

import (
	"context"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"
)

// DroidInfo 搜索结果：一台广播中的机器人
type DroidInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	RSSI    int16  `json:"rssi"`
}

// Discover 在给定时长内收集所有 "D2-" 前缀的广播设备（按地址去重）
func Discover(ctx context.Context, timeout time.Duration) ([]DroidInfo, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	go func() {
		<-scanCtx.Done()
		_ = adapter.StopScan()
	}()

	var (
		mu   sync.Mutex
		seen = map[string]struct{}{}
		out  []DroidInfo
	)
	err := adapter.Scan(func(_ *bluetooth.Adapter, res bluetooth.ScanResult) {
		name := res.LocalName()
		if len(name) < len(NamePrefix) || name[:len(NamePrefix)] != NamePrefix {
			return
		}
		addr := res.Address.String()
		mu.Lock()
		if _, dup := seen[addr]; !dup {
			seen[addr] = struct{}{}
			out = append(out, DroidInfo{Name: name, Address: addr, RSSI: res.RSSI})
		}
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
