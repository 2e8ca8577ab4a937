package vu

import (
	"github.com/way-platform/tachoparse/internal/cursor"
	"github.com/way-platform/tachoparse/internal/dd"
)

// maxIdentificationPrefix is the largest candidate prefix length the
// locator tries before a VuIdentification block, per spec.md §4.6.
const maxIdentificationPrefix = 12

// LocateIdentification scans every Technical-data segment (TREP in
// {0x05, 0x25, 0x35}) for the byte offset where a [dd.VuIdentification]
// plausibly starts.
//
// Different manufacturers pad the technical-data block differently, so
// the exact offset is not fixed: this heuristic tries every prefix
// length from 0 to 12 bytes and accepts the first decode whose text
// fields look like real manufacturer data (spec.md §4.6).
func LocateIdentification(segments []Segment) (dd.VuIdentification, bool) {
	for _, seg := range segments {
		if seg.TREP != 0x05 && seg.TREP != 0x25 && seg.TREP != 0x35 {
			continue
		}
		for p := 0; p <= maxIdentificationPrefix; p++ {
			if p+dd.LenVuIdentificationGen1 > len(seg.Payload) {
				break
			}
			c := cursor.New(seg.Payload[p:])
			ident, err := dd.UnmarshalVuIdentification(c)
			if err != nil {
				continue
			}
			if dd.LooksLikeVuIdentification(ident) {
				return ident, true
			}
		}
	}
	return dd.VuIdentification{}, false
}
