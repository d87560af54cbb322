package sqlite

import (
	"encoding/binary"
	"fmt"
)

// encodeVector packs v as little-endian float32s.
func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	b, _ := binary.Append(make([]byte, 0, 4*len(v)), binary.LittleEndian, v)
	return b
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("embedding blob of %d bytes is not a float32 vector", len(b))
	}
	v := make([]float32, len(b)/4)
	if _, err := binary.Decode(b, binary.LittleEndian, v); err != nil {
		return nil, err
	}
	return v, nil
}
