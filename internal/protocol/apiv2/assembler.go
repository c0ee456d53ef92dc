package apiv2

import "sync"

// Assembler 处理半包/粘包的流式重组器：逐字节累积，见到 EOP 即尝试解码。
// 解码失败时静默丢弃缓冲（坏帧只污染自身，流在下一对 SOP/EOP 处自同步），
// 可选的 onError 回调仅用于诊断计数。
type Assembler struct {
	mu      sync.Mutex
	buf     []byte
	emit    func(*Packet)
	onError func(error)
}

// NewAssembler 创建重组器；emit 在每个完整帧解码成功后被调用（调用方线程）
func NewAssembler(emit func(*Packet), onError func(error)) *Assembler {
	return &Assembler{emit: emit, onError: onError}
}

// Feed 追加一段入站字节，边界任意（链路层不保证消息边界）
func (a *Assembler) Feed(p []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, b := range p {
		a.buf = append(a.buf, b)
		if b != EOP {
			continue
		}
		pkt, err := Decode(a.buf)
		if err == nil {
			a.emit(pkt)
		} else if a.onError != nil {
			a.onError(err)
		}
		a.buf = a.buf[:0]
	}
}

// Reset 清空缓冲（连接重建时调用）
func (a *Assembler) Reset() {
	a.mu.Lock()
	a.buf = a.buf[:0]
	a.mu.Unlock()
}
