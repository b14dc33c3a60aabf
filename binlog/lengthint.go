package binlog

import (
	"encoding/binary"
	"fmt"
)

// ReadLengthEncodedInt decodes a MySQL length-encoded integer from the
// start of b, returning its value and the number of bytes consumed (1, 3,
// 4, or 9 depending on the discriminating first byte). It does not mutate
// an ambient cursor; callers advance their own position by n.
func ReadLengthEncodedInt(b []byte) (value uint64, n int, err error) {
	if len(b) == 0 {
		return 0, 0, fmt.Errorf("binlog: length-encoded int: empty buffer")
	}

	switch first := b[0]; {
	case first < 0xfb:
		return uint64(first), 1, nil
	case first == 0xfb:
		// 0xfb means SQL NULL in the protocol's column-value context; in
		// a column-count or length context it never appears, but we
		// decode it as zero-length rather than erroring so a malformed
		// stream fails later, at a more informative point.
		return 0, 1, nil
	case first == 0xfc:
		if len(b) < 3 {
			return 0, 0, fmt.Errorf("binlog: length-encoded int: truncated 2-byte form")
		}
		return uint64(binary.LittleEndian.Uint16(b[1:3])), 3, nil
	case first == 0xfd:
		if len(b) < 4 {
			return 0, 0, fmt.Errorf("binlog: length-encoded int: truncated 3-byte form")
		}
		v := uint64(b[1]) | uint64(b[2])<<8 | uint64(b[3])<<16
		return v, 4, nil
	case first == 0xfe:
		if len(b) < 9 {
			return 0, 0, fmt.Errorf("binlog: length-encoded int: truncated 8-byte form")
		}
		return binary.LittleEndian.Uint64(b[1:9]), 9, nil
	default:
		return 0, 0, fmt.Errorf("binlog: length-encoded int: invalid prefix 0x%02x", first)
	}
}

// FixedLengthInt decodes a little-endian unsigned integer of exactly
// len(b) bytes (1 to 8), used for the table id field which is 4 or 6
// bytes depending on format-description post-header length.
func FixedLengthInt(b []byte) uint64 {
	var v uint64
	for i, c := range b {
		v |= uint64(c) << (uint(i) * 8)
	}
	return v
}
