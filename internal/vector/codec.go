// Package vector provides the fixed-width binary embedding codec and the
// distance metrics shared by the store's accelerated and fallback paths.
package vector

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ludic-labs/gamerec/internal/domain"
)

// Encode serializes a vector as consecutive IEEE-754 float32 values,
// little-endian. NaN and Inf components pass through unchanged; callers
// decide whether to treat them as sentinels or reject them up front.
func Encode(values []float32) []byte {
	buf := make([]byte, len(values)*4)
	for i, f := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode is the inverse of Encode. The blob must be exactly 4*dimension
// bytes; anything else wraps domain.ErrCorruptVector.
func Decode(blob []byte, dimension int) ([]float32, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", domain.ErrCorruptVector, dimension)
	}
	if len(blob) != dimension*4 {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", domain.ErrCorruptVector, len(blob), dimension*4)
	}
	values := make([]float32, dimension)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return values, nil
}
