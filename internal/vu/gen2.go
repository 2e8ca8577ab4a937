package vu

import "github.com/way-platform/tachoparse/internal/cursor"

// Gen2 record types. Appendix 7 reserves a much larger, manufacturer-
// extensible table; this module only needs to distinguish the record
// kinds the summary composes (spec.md §9 Open Questions notes the full
// ordered allowed-record-type sequence per TREP is not reproduced here —
// see DESIGN.md).
const (
	gen2RecTypeOverview           uint8 = 0x0A
	gen2RecTypeActivityDay        uint8 = 0x0B
	gen2RecTypeEvent              uint8 = 0x0C
	gen2RecTypeFault              uint8 = 0x0D
	gen2RecTypeDetailedSpeedBlock uint8 = 0x0E
	gen2RecTypeOverspeedControl   uint8 = 0x0F
)

// validateGen2Segment structurally validates a Gen2 segment by walking
// its record array to the mandatory trailing signature record
// (spec.md §4.4, §4.5).
func validateGen2Segment(c *cursor.Cursor, trep uint8) string {
	_, ok := WalkGen2Triples(c)
	if !ok {
		return "Missing signature record"
	}
	return ""
}
