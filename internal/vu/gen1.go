package vu

import (
	"github.com/way-platform/tachoparse/internal/cursor"
	"github.com/way-platform/tachoparse/internal/dd"
)

// lenGen1Signature is the trailing RSA-1024 signature every Gen1 segment
// carries; it is skipped but not cryptographically verified here
// (spec.md §4.4).
const lenGen1Signature = 128

// lenGen1OverviewHeader is the fixed-size prefix of a Gen1 Overview
// segment: two 194-byte certificates plus the 103-byte VU+vehicle header
// (spec.md §6.1).
const lenGen1OverviewHeader = 194 + 194 + 17 + 15 + 4 + 8 + 1 + 58

// validateGen1Segment dispatches to the structural validator for a Gen1
// TREP and returns "" on success or the first diagnostic note on
// failure (spec.md §4.4).
func validateGen1Segment(c *cursor.Cursor, trep uint8) string {
	switch trep {
	case 0x01:
		return validateGen1Overview(c)
	case 0x02:
		return validateGen1Activities(c)
	case 0x03:
		return validateGen1EventsFaults(c)
	case 0x04:
		return validateGen1DetailedSpeed(c)
	case 0x05:
		return validateGen1TechnicalData(c)
	default:
		return "Unknown Gen1 TREP"
	}
}

func validateGen1Overview(c *cursor.Cursor) string {
	if err := c.Skip(lenGen1OverviewHeader); err != nil {
		return "Overview header truncated"
	}
	if note := skipCountedSection(c, 1, 98, "Company locks"); note != "" {
		return note
	}
	if note := skipCountedSection(c, 1, 31, "Control activity"); note != "" {
		return note
	}
	if err := c.Skip(lenGen1Signature); err != nil {
		return "Overview signature truncated"
	}
	return ""
}

// validateGen1Activities walks a Gen1 `VuActivitiesData` transfer value
// in its Appendix 7 field order: date of day + odometer, the inline
// VuCardIWData section, the activity changes, VuPlaceDailyWorkPeriodData,
// VuSpecificConditionData, then the trailing signature (teacher's
// internal/vu/activities.go fixes this order and each section's count
// width).
func validateGen1Activities(c *cursor.Cursor) string {
	if err := c.Skip(4 + 3); err != nil { // dateOfDay TimeReal + odometer
		return "Activities header truncated"
	}
	if note := skipCountedSection(c, 2, lenCardIWRecordGen1, "Card insertion/withdrawal"); note != "" {
		return note
	}
	count, err := c.ReadU16BE()
	if err != nil {
		return "Activities change count missing"
	}
	if err := c.Skip(int(count) * 2); err != nil {
		return "Activities changes truncated"
	}
	if note := skipCountedSection(c, 1, lenPlaceDailyWorkPeriodRecordGen1, "Places"); note != "" {
		return note
	}
	if note := skipCountedSection(c, 2, lenActivitiesSpecificConditionRecord, "Specific conditions"); note != "" {
		return note
	}
	if err := c.Skip(lenGen1Signature); err != nil {
		return "Activities signature truncated"
	}
	return ""
}

// validateGen1EventsFaults walks a Gen1 `VuEventsAndFaultsFirstGen`
// transfer value in its Appendix 7 §2.2.6.4/2.2.6.5 field order:
// faults, events, the fixed-size overspeed control data, overspeed
// events, time adjustment records, then the trailing signature
// (teacher's internal/vu/events_faults_gen1.go fixes this order and
// each section's 1-byte count prefix).
func validateGen1EventsFaults(c *cursor.Cursor) string {
	if note := skipCountedSection(c, 1, lenFaultRecord, "Faults"); note != "" {
		return note
	}
	if note := skipCountedSection(c, 1, lenEventRecord, "Events"); note != "" {
		return note
	}
	if err := c.Skip(lenOverspeedControlData); err != nil {
		return "Overspeed control data truncated"
	}
	if note := skipCountedSection(c, 1, lenOverspeedEventRecord, "Overspeed events"); note != "" {
		return note
	}
	if note := skipCountedSection(c, 1, lenTimeAdjustmentRecord, "Time adjustment"); note != "" {
		return note
	}
	if err := c.Skip(lenGen1Signature); err != nil {
		return "Events and faults signature truncated"
	}
	return ""
}

func validateGen1DetailedSpeed(c *cursor.Cursor) string {
	count, err := c.ReadU16BE()
	if err != nil {
		return "Detailed speed block count missing"
	}
	if err := c.Skip(int(count) * lenDetailedSpeedBlock); err != nil {
		return "Detailed speed truncated"
	}
	if err := c.Skip(lenGen1Signature); err != nil {
		return "Detailed speed signature truncated"
	}
	return ""
}

func validateGen1TechnicalData(c *cursor.Cursor) string {
	if err := c.Skip(dd.LenVuIdentificationGen1); err != nil {
		return "Technical data identification truncated"
	}
	if note := skipCountedSection(c, 1, lenCalibrationRecord, "Calibration"); note != "" {
		return note
	}
	if err := c.Skip(lenGen1Signature); err != nil {
		return "Technical data signature truncated"
	}
	return ""
}

// skipCountedSection reads a countWidth-byte (1 or 2) big-endian count
// prefix and skips count*recordSize bytes, returning "" on success or a
// label-prefixed diagnostic note (spec.md §4.4: "computing section sizes
// from embedded counters before skipping count*recordSize bytes").
func skipCountedSection(c *cursor.Cursor, countWidth, recordSize int, label string) string {
	var count int
	switch countWidth {
	case 1:
		v, err := c.ReadU8()
		if err != nil {
			return label + " count missing"
		}
		count = int(v)
	case 2:
		v, err := c.ReadU16BE()
		if err != nil {
			return label + " count missing"
		}
		count = int(v)
	}
	if err := c.Skip(count * recordSize); err != nil {
		return label + " truncated"
	}
	return ""
}

// lenEventRecord, lenFaultRecord and lenDetailedSpeedBlock are the fixed
// Gen1 wire lengths of the corresponding record decoders in records.go.
const (
	lenEventRecord        = 1 + 1 + 4 + 4 + 18*4 + 1
	lenFaultRecord        = 1 + 1 + 4 + 4 + 18*4
	lenDetailedSpeedBlock = 4 + 120
)

// lenOverspeedControlData, lenOverspeedEventRecord and
// lenTimeAdjustmentRecord are the fixed Gen1 wire lengths of the
// corresponding VuOverSpeedingControlData, VuOverSpeedingEventRecord
// and VuTimeAdjustmentRecord shapes (Appendix 1; teacher's
// events_faults_gen1.go pins 9, 31 and 98 bytes respectively). Time
// adjustment records are structurally skipped only: spec.md's §3
// Summary shape has no field for them.
const (
	lenOverspeedControlData = 4 + 4 + 1
	lenOverspeedEventRecord = 1 + 1 + 4 + 4 + 1 + 1 + 18 + 1
	lenTimeAdjustmentRecord = 98
)
