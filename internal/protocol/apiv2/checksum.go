package apiv2

// Checksum 计算帧体校验和：0xFF 减去逐字节累加和的低 8 位。
// 性质：sum(b) + Checksum(b) ≡ 0xFF (mod 256)。
func Checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return 0xFF - sum
}

// VerifyChecksum 重算并比对校验和
func VerifyChecksum(b []byte, want byte) bool {
	return Checksum(b) == want
}
