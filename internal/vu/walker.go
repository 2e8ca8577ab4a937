package vu

import (
	"github.com/way-platform/tachoparse/internal/cursor"
	"github.com/way-platform/tachoparse/internal/report"
)

// Generation is the tachograph generation a VU stream segment belongs
// to.
type Generation string

const (
	Gen1   Generation = "gen1"
	Gen2V1 Generation = "gen2_v1"
	Gen2V2 Generation = "gen2_v2"
)

// Segment is one successfully structurally-validated `0x76 TREP payload`
// block from a VU download stream. Payload holds exactly the bytes the
// structural validator consumed, excluding the 2-byte SID/TREP prefix;
// downstream record extraction re-parses it independently (spec.md
// §4.12 step 3: "independent passes over the already-walked segment
// map").
type Segment struct {
	TREP    uint8
	Gen     Generation
	Payload []byte
}

// WalkResult is the outcome of walking a VU download stream: the
// per-part status summary plus every structurally-valid segment found.
type WalkResult struct {
	Parts    []report.Part
	Segments []Segment
}

// partOrder fixes the iteration order of the base VU parts so Parts is
// deterministic regardless of map iteration (spec.md §8 property 6).
var partOrder = []string{
	"Overview",
	"Activities",
	"Events and faults",
	"Detailed speed",
	"Technical data",
}

// Walk parses a VU download stream: a concatenation of `0x76 TREP
// payload` segments (spec.md §4.4).
func Walk(data []byte) WalkResult {
	c := cursor.New(data)
	accs := make(map[string]*report.Accumulator)
	acc := func(name string) *report.Accumulator {
		a, ok := accs[name]
		if !ok {
			a = report.NewAccumulator(name)
			accs[name] = a
		}
		return a
	}

	var segments []Segment

	for !c.AtEnd() {
		segStart := c.Tell()
		sid, err := c.ReadU8()
		if err != nil {
			break
		}
		if sid != 0x76 {
			acc("Overview").AddNote("Out-of-band bytes")
			next, found := resyncToValidStart(data, segStart+1)
			if !found {
				break
			}
			_ = c.Seek(next)
			continue
		}
		trep, err := c.ReadU8()
		if err != nil {
			acc("Overview").AddNote("Out-of-band bytes")
			break
		}
		gen, known := trepGeneration(trep)
		if !known {
			acc("Overview").AddNote("Out-of-band bytes")
			next, found := resyncToValidStart(data, c.Tell())
			if !found {
				break
			}
			_ = c.Seek(next)
			continue
		}

		payloadStart := c.Tell()
		name := partName(trep)
		var invalidNote string
		switch {
		case trep == 0x00:
			if err := c.Skip(2); err != nil {
				invalidNote = "Truncated download interface version"
			}
		case gen == Gen1:
			invalidNote = validateGen1Segment(c, trep)
		default:
			invalidNote = validateGen2Segment(c, trep)
		}
		payload := data[payloadStart:c.Tell()]

		if invalidNote != "" {
			acc(name).AddInvalid(invalidNote)
		} else {
			acc(name).AddValid()
			segments = append(segments, Segment{TREP: trep, Gen: gen, Payload: payload})
		}

		if !c.AtEnd() {
			b, err := c.PeekBytes(1)
			if err != nil || b[0] != 0x76 {
				acc(name).AddInvalid("Unexpected bytes after part")
				next, found := resyncToValidStart(data, c.Tell())
				if !found {
					break
				}
				_ = c.Seek(next)
			}
		}
	}

	result := WalkResult{Segments: segments}
	for _, name := range partOrder {
		if a, ok := accs[name]; ok {
			result.Parts = append(result.Parts, a.Part())
		}
	}
	return result
}

// trepGeneration maps a TREP byte to its generation, per the disjoint
// sets of spec.md §4.3 and §6.1. 0x24 is genuinely ambiguous at the
// header-classifier level (Gen2v1 or Gen2v2); inside the stream walker
// it is only reachable as a Gen2v1 Detailed-speed TREP; if a Gen2v2
// stream ever emits a bare 0x24 it parses identically since the Gen2
// structural validator does not distinguish v1 from v2.
func trepGeneration(trep uint8) (Generation, bool) {
	switch {
	case trep == 0x00:
		return Gen2V2, true
	case trep >= 0x01 && trep <= 0x05:
		return Gen1, true
	case trep >= 0x21 && trep <= 0x25:
		return Gen2V1, true
	case trep >= 0x31 && trep <= 0x35 && trep != 0x34:
		return Gen2V2, true
	default:
		return "", false
	}
}

// partName maps a TREP byte to the logical part name it belongs to
// (spec.md §3, §6.1).
func partName(trep uint8) string {
	switch trep {
	case 0x00:
		return "Download interface version"
	case 0x01, 0x21, 0x31:
		return "Overview"
	case 0x02, 0x22, 0x32:
		return "Activities"
	case 0x03, 0x23, 0x33:
		return "Events and faults"
	case 0x04, 0x24:
		return "Detailed speed"
	case 0x05, 0x25, 0x35:
		return "Technical data"
	default:
		return "Unknown"
	}
}

// resyncToValidStart scans data from offset `from` for the next
// `(0x76, validTREP)` pair, per spec.md §4.4 step 1 and 3.
func resyncToValidStart(data []byte, from int) (int, bool) {
	for i := from; i < len(data)-1; i++ {
		if data[i] != 0x76 {
			continue
		}
		if _, ok := trepGeneration(data[i+1]); ok {
			return i, true
		}
	}
	return 0, false
}
