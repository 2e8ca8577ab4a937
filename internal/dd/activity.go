package dd

import "github.com/way-platform/tachoparse/internal/cursor"

// ActivityChangeInfo is a single decoded 16-bit activity-change word, per
// spec.md §3 and §4.9.
//
// Wire layout (big-endian 16-bit word, MSB to LSB):
//
//	slot:1 | drivingStatus:1 | cardStatus:1 | activity:2 | minutes:11
//
// Activity values follow the Data Dictionary's `CardActivity` coding:
// 0=Rest, 1=Availability, 2=Work, 3=Driving. The core never labels these;
// the renderer owns localisation (spec.md §4.13 DESIGN NOTES).
type ActivityChangeInfo struct {
	Slot          uint8
	DrivingStatus uint8
	CardStatus    uint8
	Activity      uint8
	Minutes       uint16
}

// UnmarshalActivityChangeInfo reads a 16-bit activity-change word from c
// and decodes its bitfields.
func UnmarshalActivityChangeInfo(c *cursor.Cursor) (ActivityChangeInfo, error) {
	word, err := c.ReadU16BE()
	if err != nil {
		return ActivityChangeInfo{}, err
	}
	return DecodeActivityChangeInfo(word), nil
}

// DecodeActivityChangeInfo splits a 16-bit activity-change word into its
// bitfields.
func DecodeActivityChangeInfo(word uint16) ActivityChangeInfo {
	return ActivityChangeInfo{
		Slot:          uint8(word>>15) & 0x1,
		DrivingStatus: uint8(word>>14) & 0x1,
		CardStatus:    uint8(word>>13) & 0x1,
		Activity:      uint8(word>>11) & 0x3,
		Minutes:       word & 0x7FF,
	}
}

// Encode packs the fields back into a 16-bit activity-change word. It is
// the exact inverse of [DecodeActivityChangeInfo].
func (a ActivityChangeInfo) Encode() uint16 {
	return uint16(a.Slot&0x1)<<15 |
		uint16(a.DrivingStatus&0x1)<<14 |
		uint16(a.CardStatus&0x1)<<13 |
		uint16(a.Activity&0x3)<<11 |
		a.Minutes&0x7FF
}
