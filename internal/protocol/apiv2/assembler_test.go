package apiv2

import (
	"bytes"
	"testing"
)

func collect(t *testing.T) (*Assembler, *[]*Packet, *[]error) {
	t.Helper()
	var pkts []*Packet
	var errs []error
	a := NewAssembler(
		func(p *Packet) { pkts = append(pkts, p) },
		func(err error) { errs = append(errs, err) },
	)
	return a, &pkts, &errs
}

func TestAssembler_SingleFrame(t *testing.T) {
	a, pkts, _ := collect(t)
	p := &Packet{Flags: FlagRequestsResponse, DeviceID: 0x13, CommandID: 0x10, Seq: 0x01}
	a.Feed(p.Encode())
	if len(*pkts) != 1 {
		t.Fatalf("emitted %d packets, want 1", len(*pkts))
	}
	if (*pkts)[0].Identity() != p.Identity() {
		t.Fatalf("identity mismatch")
	}
}

func TestAssembler_FragmentedFeed(t *testing.T) {
	// 模拟链路按任意小块投递：逐字节喂入也必须重组出完整帧
	a, pkts, _ := collect(t)
	p := &Packet{
		Flags: FlagRequestsResponse | FlagIsActivity,
		DeviceID: 0x16, CommandID: 0x07, Seq: 0x05,
		Payload: []byte{SOP, EOP, Escape, 0x64},
	}
	raw := p.Encode()
	for _, b := range raw {
		a.Feed([]byte{b})
	}
	if len(*pkts) != 1 {
		t.Fatalf("emitted %d packets, want 1", len(*pkts))
	}
	if !bytes.Equal((*pkts)[0].Payload, p.Payload) {
		t.Fatalf("payload mismatch after fragmented reassembly")
	}
}

func TestAssembler_BackToBackFrames(t *testing.T) {
	a, pkts, _ := collect(t)
	p1 := &Packet{Flags: FlagIsResponse, DeviceID: 0x13, CommandID: 0x04, Seq: 0x01, Err: CodeSuccess}
	p2 := &Packet{Flags: FlagIsResponse, DeviceID: 0x13, CommandID: 0x04, Seq: 0x02, Err: CodeSuccess, Payload: []byte{0x02}}
	joined := append(p1.Encode(), p2.Encode()...)
	a.Feed(joined)
	if len(*pkts) != 2 {
		t.Fatalf("emitted %d packets, want 2", len(*pkts))
	}
	if (*pkts)[0].Seq != 0x01 || (*pkts)[1].Seq != 0x02 {
		t.Fatalf("frames emitted out of order")
	}
}

func TestAssembler_BadChecksumThenValid(t *testing.T) {
	// 坏帧被静默丢弃，后续合法帧正常产出，流不中断
	a, pkts, errs := collect(t)
	good := (&Packet{Flags: FlagIsResponse, DeviceID: 0x17, CommandID: 0x14, Seq: 0x03, Err: CodeSuccess}).Encode()
	bad := append([]byte(nil), good...)
	bad[2] ^= 0xFF // 破坏帧体但保留定界
	if bad[2] == SOP || bad[2] == EOP || bad[2] == Escape {
		bad[2] ^= 0x01
	}
	a.Feed(bad)
	a.Feed(good)
	if len(*pkts) != 1 {
		t.Fatalf("emitted %d packets, want exactly the valid one", len(*pkts))
	}
	if len(*errs) != 1 {
		t.Fatalf("diagnostic callback fired %d times, want 1", len(*errs))
	}
}

func TestAssembler_NoiseResync(t *testing.T) {
	// EOP 噪声触发一次失败解码后，缓冲清空并在下一帧自同步
	a, pkts, _ := collect(t)
	a.Feed([]byte{0x00, 0x01, EOP})
	good := (&Packet{Flags: FlagIsResponse, DeviceID: 0x13, CommandID: 0x03, Seq: 0x00, Err: CodeSuccess}).Encode()
	a.Feed(good)
	if len(*pkts) != 1 {
		t.Fatalf("emitted %d packets, want 1", len(*pkts))
	}
}
