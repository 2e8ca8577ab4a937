package vu

import "github.com/way-platform/tachoparse/internal/cursor"

// Gen2RecordTriple is one `(recordType, recordSize, recordCount)` entry
// in a Gen2 segment's record array, with its payload bytes sliced into
// an independent sub-cursor (spec.md §4.5).
type Gen2RecordTriple struct {
	RecordType  uint8
	RecordSize  uint16
	RecordCount uint16
	Data        *cursor.Cursor
}

// gen2RecordTypeSignature is the record type that terminates every Gen2
// segment (spec.md §6.1: "The final record in each segment has
// recordType=0x08").
const gen2RecordTypeSignature uint8 = 0x08

// ReadGen2Triple reads one triple header from c and slices its
// `recordSize*recordCount` bytes of data into an independent sub-cursor,
// advancing c past them. A truncated triple — header or data running
// past the end of c — surfaces as a wrapped [cursor.ErrExhausted]; §4.5
// calls this the Truncated outcome.
func ReadGen2Triple(c *cursor.Cursor) (Gen2RecordTriple, error) {
	recordType, err := c.ReadU8()
	if err != nil {
		return Gen2RecordTriple{}, err
	}
	size, err := c.ReadU16BE()
	if err != nil {
		return Gen2RecordTriple{}, err
	}
	count, err := c.ReadU16BE()
	if err != nil {
		return Gen2RecordTriple{}, err
	}
	data, err := c.Slice(int(size) * int(count))
	if err != nil {
		return Gen2RecordTriple{}, err
	}
	return Gen2RecordTriple{RecordType: recordType, RecordSize: size, RecordCount: count, Data: data}, nil
}

// WalkGen2Triples reads triples from c, in file order, until a signature
// record (recordType 0x08) is consumed or c runs out of bytes. This
// generalises spec.md §4.4's Gen2v2 TREP 0x32/0x35 rule — "accepts any
// extension record until a signature record is encountered" — to every
// Gen2 TREP, since the structural validator never needs to know the
// full allowed-record-type table to confirm a segment is well-formed.
//
// The returned slice holds every triple seen, including the signature.
// The bool reports whether a signature record was found before c was
// exhausted.
func WalkGen2Triples(c *cursor.Cursor) ([]Gen2RecordTriple, bool) {
	var triples []Gen2RecordTriple
	for !c.AtEnd() {
		triple, err := ReadGen2Triple(c)
		if err != nil {
			return triples, false
		}
		triples = append(triples, triple)
		if triple.RecordType == gen2RecordTypeSignature {
			return triples, true
		}
	}
	return triples, false
}

// RecordsOfType returns the individual `recordSize`-wide records inside
// every triple of the given type, as independent sub-cursors ready for a
// domain decoder. A triple whose declared recordSize cannot hold a full
// record of the decoder's expected shape is the decoder's problem, not
// the walker's: this method only slices on the triple's own recordSize.
func RecordsOfType(triples []Gen2RecordTriple, recordType uint8) []*cursor.Cursor {
	var out []*cursor.Cursor
	for _, t := range triples {
		if t.RecordType != recordType {
			continue
		}
		for i := 0; i < int(t.RecordCount); i++ {
			sub, err := t.Data.Slice(int(t.RecordSize))
			if err != nil {
				break
			}
			out = append(out, sub)
		}
	}
	return out
}
