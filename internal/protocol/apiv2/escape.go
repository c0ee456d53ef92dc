package apiv2

// EscapeData 对帧体做单趟转义：三个保留字节各替换为 Escape + 替代码。
// 转义后的序列中不再出现裸的 SOP/EOP/Escape。
func EscapeData(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, v := range b {
		switch v {
		case Escape:
			out = append(out, Escape, escapedEscape)
		case SOP:
			out = append(out, Escape, escapedSOP)
		case EOP:
			out = append(out, Escape, escapedEOP)
		default:
			out = append(out, v)
		}
	}
	return out
}

// UnescapeData 逆转义：遇到 Escape 时消费后一个字节并映射回保留值。
// 尾部悬挂的 Escape 或未识别的替代码视为畸形输入，返回 ErrBadEscape。
func UnescapeData(b []byte) ([]byte, error) {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != Escape {
			out = append(out, b[i])
			continue
		}
		i++
		if i >= len(b) {
			return nil, ErrBadEscape
		}
		switch b[i] {
		case escapedEscape:
			out = append(out, Escape)
		case escapedSOP:
			out = append(out, SOP)
		case escapedEOP:
			out = append(out, EOP)
		default:
			return nil, ErrBadEscape
		}
	}
	return out, nil
}
