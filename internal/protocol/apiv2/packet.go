// Package apiv2 实现 API v2 帧协议：字节转义、校验和、包编解码与流式重组。
//
// 帧结构（转义前）：
//
//	SOP | flags | [tid] | [sid] | did | cid | seq | [err] | data... | chk | EOP
//
// tid/sid/err 三个字段是否存在由 flags 决定；chk 覆盖 SOP/EOP 之外的全部帧体。
package apiv2

// Packet 一帧协议报文的逻辑表示
type Packet struct {
	Flags     Flags
	TargetID  uint8 // 仅当 FlagHasTargetID 置位时有效
	SourceID  uint8 // 仅当 FlagHasSourceID 置位时有效
	DeviceID  uint8
	CommandID uint8
	Seq       uint8
	Err       ErrorCode // 仅响应帧有效
	Payload   []byte
}

// Identity 请求/响应配对键：同一命令的请求与响应三元组完全一致
type Identity struct {
	DeviceID  uint8
	CommandID uint8
	Seq       uint8
}

// Identity 返回报文的配对键
func (p *Packet) Identity() Identity {
	return Identity{DeviceID: p.DeviceID, CommandID: p.CommandID, Seq: p.Seq}
}

// IsResponse 判断是否为响应帧
func (p *Packet) IsResponse() bool { return p.Flags.Has(FlagIsResponse) }

// Encode 编码为线上字节序列：组体、追加校验和、转义、加定界
func (p *Packet) Encode() []byte {
	body := make([]byte, 0, 8+len(p.Payload))
	body = append(body, byte(p.Flags))
	if p.Flags.Has(FlagHasTargetID) {
		body = append(body, p.TargetID)
	}
	if p.Flags.Has(FlagHasSourceID) {
		body = append(body, p.SourceID)
	}
	body = append(body, p.DeviceID, p.CommandID, p.Seq)
	if p.Flags.Has(FlagIsResponse) {
		body = append(body, byte(p.Err))
	}
	body = append(body, p.Payload...)
	body = append(body, Checksum(body))

	out := make([]byte, 0, len(body)+2)
	out = append(out, SOP)
	out = append(out, EscapeData(body)...)
	out = append(out, EOP)
	return out
}

// Decode 从一段完整帧字节解码（严格按序校验：长度、SOP、EOP、转义、校验和、字段越界）
func Decode(raw []byte) (*Packet, error) {
	if len(raw) < minFrameLen {
		return nil, ErrShortFrame
	}
	if raw[0] != SOP {
		return nil, ErrBadSOP
	}
	if raw[len(raw)-1] != EOP {
		return nil, ErrBadEOP
	}
	body, err := UnescapeData(raw[1 : len(raw)-1])
	if err != nil {
		return nil, err
	}
	if len(body) < 2 {
		return nil, ErrShortFrame
	}
	chk := body[len(body)-1]
	fields := body[:len(body)-1]
	if !VerifyChecksum(fields, chk) {
		return nil, ErrBadChecksum
	}

	p := &Packet{Flags: Flags(fields[0])}
	off := 1
	// flags 宣告的可选字段不得越过帧体边界
	need := 3 // did + cid + seq
	if p.Flags.Has(FlagHasTargetID) {
		need++
	}
	if p.Flags.Has(FlagHasSourceID) {
		need++
	}
	if p.Flags.Has(FlagIsResponse) {
		need++
	}
	if off+need > len(fields) {
		return nil, ErrTruncated
	}
	if p.Flags.Has(FlagHasTargetID) {
		p.TargetID = fields[off]
		off++
	}
	if p.Flags.Has(FlagHasSourceID) {
		p.SourceID = fields[off]
		off++
	}
	p.DeviceID = fields[off]
	p.CommandID = fields[off+1]
	p.Seq = fields[off+2]
	off += 3
	if p.Flags.Has(FlagIsResponse) {
		p.Err = ErrorCode(fields[off])
		off++
	}
	p.Payload = append([]byte(nil), fields[off:]...)
	return p, nil
}
