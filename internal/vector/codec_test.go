package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/ludic-labs/gamerec/internal/domain"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		values []float32
	}{
		{"single", []float32{0.5}},
		{"typical", []float32{0.1, -0.2, 0.33, 1.5e-7}},
		{"extremes", []float32{math.MaxFloat32, -math.MaxFloat32, math.SmallestNonzeroFloat32}},
		{"zeros", make([]float32, 768)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			blob := Encode(tc.values)
			if len(blob) != len(tc.values)*4 {
				t.Fatalf("blob length = %d, want %d", len(blob), len(tc.values)*4)
			}
			decoded, err := Decode(blob, len(tc.values))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			for i := range tc.values {
				if decoded[i] != tc.values[i] {
					t.Errorf("value[%d] = %v, want %v", i, decoded[i], tc.values[i])
				}
			}
		})
	}
}

func TestDecodeNaNAndInfPassThrough(t *testing.T) {
	values := []float32{float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1))}
	decoded, err := Decode(Encode(values), len(values))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !math.IsNaN(float64(decoded[0])) {
		t.Errorf("decoded[0] = %v, want NaN", decoded[0])
	}
	if !math.IsInf(float64(decoded[1]), 1) || !math.IsInf(float64(decoded[2]), -1) {
		t.Errorf("infinities not preserved: %v", decoded)
	}
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	cases := []struct {
		name string
		blob []byte
		dim  int
	}{
		{"truncated", make([]byte, 7), 2},
		{"too long", make([]byte, 12), 2},
		{"empty blob", nil, 3},
		{"zero dimension", make([]byte, 4), 0},
		{"negative dimension", make([]byte, 4), -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.blob, tc.dim); !errors.Is(err, domain.ErrCorruptVector) {
				t.Fatalf("Decode error = %v, want ErrCorruptVector", err)
			}
		})
	}
}
