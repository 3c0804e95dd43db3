// Package ingest turns raw catalog API records into stored games with
// resolved tags and embedding vectors.
package ingest

import "github.com/ludic-labs/gamerec/internal/domain"

// Packed tag numbers carry the tag type in the high bits and the record id
// in the low 28 bits.
const tagIDMask = (1 << 28) - 1

var tagClassByType = map[int64]string{
	0: domain.TagClassTheme,
	1: domain.TagClassGenre,
	2: domain.TagClassKeyword,
	4: domain.TagClassPlayerPerspective,
}

// TagRef is one decoded tag reference.
type TagRef struct {
	Number int64
	IGDBID int64
	Class  string
}

// DecodeTagNumber unpacks a tag number. Unknown tag types and non-positive
// ids are reported as not ok.
func DecodeTagNumber(number int64) (TagRef, bool) {
	if number < 0 {
		return TagRef{}, false
	}
	class, ok := tagClassByType[number>>28]
	id := number & tagIDMask
	if !ok || id <= 0 {
		return TagRef{}, false
	}
	return TagRef{Number: number, IGDBID: id, Class: class}, true
}
