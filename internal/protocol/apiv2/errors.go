package apiv2

import "errors"

var (
	ErrShortFrame  = errors.New("frame too short")
	ErrBadSOP      = errors.New("invalid start of packet")
	ErrBadEOP      = errors.New("invalid end of packet")
	ErrBadEscape   = errors.New("invalid escape sequence")
	ErrBadChecksum = errors.New("bad checksum")
	ErrTruncated   = errors.New("body shorter than flags declare")
)
