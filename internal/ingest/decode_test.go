package ingest

import (
	"testing"

	"github.com/ludic-labs/gamerec/internal/domain"
)

func TestDecodeTagNumber(t *testing.T) {
	tests := []struct {
		name   string
		number int64
		want   TagRef
		ok     bool
	}{
		{
			name:   "theme",
			number: 17,
			want:   TagRef{Number: 17, IGDBID: 17, Class: domain.TagClassTheme},
			ok:     true,
		},
		{
			name:   "genre",
			number: (1 << 28) | 12,
			want:   TagRef{Number: (1 << 28) | 12, IGDBID: 12, Class: domain.TagClassGenre},
			ok:     true,
		},
		{
			name:   "keyword",
			number: (2 << 28) | 1024,
			want:   TagRef{Number: (2 << 28) | 1024, IGDBID: 1024, Class: domain.TagClassKeyword},
			ok:     true,
		},
		{
			name:   "player perspective",
			number: (4 << 28) | 3,
			want:   TagRef{Number: (4 << 28) | 3, IGDBID: 3, Class: domain.TagClassPlayerPerspective},
			ok:     true,
		},
		{name: "unknown type", number: (3 << 28) | 5, ok: false},
		{name: "zero id", number: 1 << 28, ok: false},
		{name: "negative", number: -1, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeTagNumber(tt.number)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("DecodeTagNumber(%d) = %+v, want %+v", tt.number, got, tt.want)
			}
		})
	}
}
