package world

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// decodeRLE expands base64(varint pairs) of (block_id, run_len) into
// exactly want palette ids.
func decodeRLE(b64 string, want int) ([]uint16, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("voxels: %w", err)
	}
	out := make([]uint16, 0, want)
	for i := 0; i < len(raw); {
		b, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("voxels: bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("voxels: bad varint at %d", i)
		}
		i += n
		if b > 0xFFFF {
			return nil, fmt.Errorf("voxels: block id too large: %d", b)
		}
		if run > uint64(want-len(out)) {
			return nil, fmt.Errorf("voxels: run overflows window (%d > %d)", run, want-len(out))
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, uint16(b))
		}
	}
	if len(out) != want {
		return nil, fmt.Errorf("voxels: got %d cells, want %d", len(out), want)
	}
	return out, nil
}
