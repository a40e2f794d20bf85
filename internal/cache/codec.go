package cache

import (
	"fmt"

	"github.com/golang/snappy"
)

// Algorithm tags the encoding of a stored payload
type Algorithm uint8

const (
	None   Algorithm = 0
	Snappy Algorithm = 1
)

// encode prefixes data with its algorithm tag, compressing it when asked.
// Entries written with either setting stay readable after a config change.
func encode(data []byte, compress bool) []byte {
	if !compress {
		out := make([]byte, 0, len(data)+1)
		out = append(out, byte(None))
		return append(out, data...)
	}

	compressed := snappy.Encode(nil, data)
	out := make([]byte, 0, len(compressed)+1)
	out = append(out, byte(Snappy))
	return append(out, compressed...)
}

// decode reverses encode
func decode(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty cache payload")
	}

	switch Algorithm(payload[0]) {
	case None:
		return payload[1:], nil
	case Snappy:
		data, err := snappy.Decode(nil, payload[1:])
		if err != nil {
			return nil, fmt.Errorf("snappy decompress failed: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %d", payload[0])
	}
}
