package dd

import "github.com/way-platform/tachoparse/internal/cursor"

// TimeReal is the Appendix 1 `TimeReal` type: a 32-bit count of seconds
// since the Unix epoch, decoded from a 4-byte big-endian field.
//
// The Data Dictionary, Section 2.162, defines the raw wire encoding; this
// type concentrates the "what counts as a real timestamp" policy (see
// Data Dictionary §2.162 and spec.md §3) so that every caller downstream
// sees an option type instead of a raw uint32 and a family of sentinel
// values.
type TimeReal struct {
	// Seconds is the raw seconds-since-epoch value as read from the wire.
	Seconds uint32
	// Valid reports whether Seconds falls within the plausible window
	// [2000-01-01, 2030-01-01] UTC, both ends inclusive. A TimeReal with Valid == false is
	// "absent" for every purpose except where NotYet is consulted.
	Valid bool
	// NotYet reports whether the raw value was the all-ones sentinel
	// 0xFFFFFFFF, meaning "not yet" (e.g. an open-ended lock-out). NotYet
	// implies Valid == false.
	NotYet bool
}

// minTimeReal and maxTimeReal bound the plausible window:
// 2000-01-01T00:00:00Z .. 2030-01-01T00:00:00Z.
const (
	minTimeReal uint32 = 946_684_800
	maxTimeReal uint32 = 1_893_456_000
	notYetValue uint32 = 0xFFFFFFFF
)

// NewTimeReal classifies a raw seconds-since-epoch value per the rules
// in spec.md §3: values outside [946684800, 1893456000] are absent
// except 0xFFFFFFFF, which is the explicit "not yet" sentinel.
func NewTimeReal(raw uint32) TimeReal {
	if raw == notYetValue {
		return TimeReal{Seconds: raw, NotYet: true}
	}
	if raw < minTimeReal || raw > maxTimeReal {
		return TimeReal{Seconds: raw}
	}
	return TimeReal{Seconds: raw, Valid: true}
}

// Absent reports whether this TimeReal carries no usable timestamp,
// regardless of whether that is because the value was implausible or
// because it was the explicit "not yet" sentinel.
func (t TimeReal) Absent() bool {
	return !t.Valid
}

// UnmarshalTimeReal reads a raw 4-byte TimeReal from c and classifies it.
func UnmarshalTimeReal(c *cursor.Cursor) (TimeReal, error) {
	raw, err := c.ReadTimeRealRaw()
	if err != nil {
		return TimeReal{}, err
	}
	return NewTimeReal(raw), nil
}

// LooksLikeTimeReal reports whether raw falls within the plausible
// TimeReal window, per spec.md §4.13.
func LooksLikeTimeReal(raw uint32) bool {
	return raw >= minTimeReal && raw <= maxTimeReal
}
