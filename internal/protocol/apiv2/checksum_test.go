package apiv2

import "testing"

func TestChecksum_KnownValues(t *testing.T) {
	cases := []struct {
		in   []byte
		want byte
	}{
		{nil, 0xFF},
		{[]byte{0xFF}, 0x00},
		{[]byte{0x80, 0x90}, 0xEF},
		{[]byte{0x00}, 0xFF},
		{[]byte{0x01, 0x02, 0x03}, 0xF9},
	}
	for _, c := range cases {
		if got := Checksum(c.in); got != c.want {
			t.Errorf("Checksum(% 02X) = 0x%02X, want 0x%02X", c.in, got, c.want)
		}
	}
}

func TestChecksum_SumProperty(t *testing.T) {
	// 对任意字节序列：sum(b) + Checksum(b) ≡ 0xFF (mod 256)
	seqs := [][]byte{
		{},
		{0x8D, 0xD8, 0xAB},
		{0xFF, 0xFF, 0xFF, 0xFF},
	}
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	seqs = append(seqs, all)

	for _, b := range seqs {
		var sum byte
		for _, v := range b {
			sum += v
		}
		if sum+Checksum(b) != 0xFF {
			t.Errorf("sum property violated for % 02X", b)
		}
	}
}

func TestVerifyChecksum(t *testing.T) {
	b := []byte{0x0A, 0x18, 0x03, 0x07}
	if !VerifyChecksum(b, Checksum(b)) {
		t.Fatalf("verify should accept own checksum")
	}
	if VerifyChecksum(b, Checksum(b)+1) {
		t.Fatalf("verify should reject wrong checksum")
	}
}
