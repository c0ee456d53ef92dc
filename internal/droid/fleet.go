package droid

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Fleet 多机编队：按名字登记控制句柄，支持并行/顺序群发
type Fleet struct {
	mu     sync.RWMutex
	droids map[string]*Droid
	log    *zap.Logger
}

// NewFleet 创建空编队
func NewFleet(logger *zap.Logger) *Fleet {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fleet{droids: make(map[string]*Droid), log: logger}
}

// Add 登记一台机器人，重名将覆盖
func (f *Fleet) Add(name string, d *Droid) {
	f.mu.Lock()
	f.droids[name] = d
	f.mu.Unlock()
}

// Remove 移除登记（不主动断链）
func (f *Fleet) Remove(name string) {
	f.mu.Lock()
	delete(f.droids, name)
	f.mu.Unlock()
}

// Get 按名字取句柄
func (f *Fleet) Get(name string) (*Droid, bool) {
	f.mu.RLock()
	d, ok := f.droids[name]
	f.mu.RUnlock()
	return d, ok
}

// Names 返回当前登记的全部名字
func (f *Fleet) Names() []string {
	f.mu.RLock()
	names := make([]string, 0, len(f.droids))
	for name := range f.droids {
		names = append(names, name)
	}
	f.mu.RUnlock()
	return names
}

// Size 编队规模
func (f *Fleet) Size() int {
	f.mu.RLock()
	n := len(f.droids)
	f.mu.RUnlock()
	return n
}

// snapshot 复制一份成员表，避免回调期间持锁
func (f *Fleet) snapshot() map[string]*Droid {
	f.mu.RLock()
	out := make(map[string]*Droid, len(f.droids))
	for name, d := range f.droids {
		out[name] = d
	}
	f.mu.RUnlock()
	return out
}

// All 对每台机器人并行执行 fn，聚合所有错误
func (f *Fleet) All(ctx context.Context, fn func(ctx context.Context, name string, d *Droid) error) error {
	members := f.snapshot()
	var wg sync.WaitGroup
	errCh := make(chan error, len(members))
	for name, d := range members {
		wg.Add(1)
		go func(name string, d *Droid) {
			defer wg.Done()
			if err := fn(ctx, name, d); err != nil {
				f.log.Warn("fleet op failed", zap.String("droid", name), zap.Error(err))
				errCh <- err
			}
		}(name, d)
	}
	wg.Wait()
	close(errCh)
	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Sequential 对每台机器人依次执行 fn，首个错误即中止
func (f *Fleet) Sequential(ctx context.Context, fn func(ctx context.Context, name string, d *Droid) error) error {
	members := f.snapshot()
	for name, d := range members {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, name, d); err != nil {
			return err
		}
	}
	return nil
}

// DisconnectAll 并行断开全部链路
func (f *Fleet) DisconnectAll() {
	members := f.snapshot()
	var wg sync.WaitGroup
	for name, d := range members {
		wg.Add(1)
		go func(name string, d *Droid) {
			defer wg.Done()
			if err := d.Disconnect(); err != nil {
				f.log.Warn("disconnect failed", zap.String("droid", name), zap.Error(err))
			}
		}(name, d)
	}
	wg.Wait()
}
