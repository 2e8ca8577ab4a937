package dd

// LooksLikeDriverCardRecord reports whether the given event/fault type
// byte and 13-byte registration-number field plausibly belong to a real
// card event/fault record, per spec.md §4.13: the event type must be in
// a known small whitelist or <= 0x40, and every registration-number byte
// must be a space, printable ASCII, or NUL.
//
// spec.md §9 Open Questions flags that Appendix 1 actually defines a
// sparser event-type set than "<= 0x40"; this implementation keeps the
// documented superset deliberately (see DESIGN.md).
func LooksLikeDriverCardRecord(eventType uint8, registrationNumber []byte) bool {
	if !plausibleEventType(eventType) {
		return false
	}
	for _, b := range registrationNumber {
		if !(b == ' ' || b == 0x00 || (b >= 0x20 && b < 0x7F)) {
			return false
		}
	}
	return true
}

// knownEventFaultTypes is the small whitelist of event/fault type codes
// that are always accepted regardless of the <= 0x40 rule (Data
// Dictionary, Section 2.70, `EventFaultType`).
var knownEventFaultTypes = map[uint8]bool{
	0x00: true, // no further details
	0x01: true, // insertion of a non-valid card
	0x02: true, // card conflict
	0x03: true, // time overlap
	0x04: true, // driving without an appropriate card
	0x09: true, // motion data error
	0x0E: true, // card communication fault
	0x0F: true, // printer fault
	0x44: true, // control device fault
}

func plausibleEventType(eventType uint8) bool {
	return knownEventFaultTypes[eventType] || eventType <= 0x40
}
