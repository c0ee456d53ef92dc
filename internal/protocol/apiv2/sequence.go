package apiv2

import "sync"

// SeqAllocator 出站命令序号发号器：0 起步，模 256 静默回绕。
// 序号冲突由上层限制在飞请求数（<256）规避，发号器本身不做去重。
type SeqAllocator struct {
	mu   sync.Mutex
	next uint8
}

// Next 返回当前序号并自增
func (a *SeqAllocator) Next() uint8 {
	a.mu.Lock()
	s := a.next
	a.next++
	a.mu.Unlock()
	return s
}

// Reset 连接重建时归零
func (a *SeqAllocator) Reset() {
	a.mu.Lock()
	a.next = 0
	a.mu.Unlock()
}
