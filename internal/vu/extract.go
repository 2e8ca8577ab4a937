package vu

import (
	"github.com/way-platform/tachoparse/internal/cursor"
	"github.com/way-platform/tachoparse/internal/dd"
)

// Extraction is every VU domain record recovered from a set of
// structurally-valid segments, independent of per-part status
// (spec.md §4.12 step 3).
type Extraction struct {
	Overview            *Overview
	ActivitiesDays      []ActivitiesDay
	Events              []EventRecord
	Faults              []FaultRecord
	DetailedSpeedBlocks []DetailedSpeedBlock
	Calibrations        []CalibrationRecord
	OverspeedControl    *OverspeedControlData
	OverspeedEvents     []OverspeedingEventRecord
}

// Extract decodes domain records from the segments a [Walk] already
// validated structurally. Each segment is decoded independently and a
// decode failure on one segment never drops records already recovered
// from another (spec.md §4.12 "Failure semantics").
func Extract(segments []Segment) Extraction {
	var out Extraction
	for _, seg := range segments {
		switch {
		case seg.Gen == Gen1:
			extractGen1Segment(seg, &out)
		default:
			extractGen2Segment(seg, &out)
		}
	}
	return out
}

func extractGen1Segment(seg Segment, out *Extraction) {
	c := cursor.New(seg.Payload)
	switch seg.TREP {
	case 0x01:
		overview, err := unmarshalOverview(c)
		if err == nil {
			out.Overview = &overview
		}
	case 0x02:
		day, err := extractGen1ActivitiesDay(c)
		if err == nil {
			out.ActivitiesDays = append(out.ActivitiesDays, day)
		}
	case 0x03:
		extractGen1EventsFaults(c, out)
	case 0x04:
		extractGen1DetailedSpeed(c, out)
	case 0x05:
		extractGen1Calibrations(c, out)
	}
}

// extractGen1ActivitiesDay decodes a Gen1 `VuActivitiesData` transfer
// value in Appendix 7's field order: date of day, odometer at
// midnight, the inline `VuCardIWData` section, then the activity
// changes (teacher's internal/vu/activities.go). The trailing
// VuPlaceDailyWorkPeriodData, VuSpecificConditionData and signature
// carry no field on spec.md §3's ActivityDay and are left unread.
func extractGen1ActivitiesDay(c *cursor.Cursor) (ActivitiesDay, error) {
	dateRaw, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return ActivitiesDay{}, err
	}
	odometer, err := c.ReadU24BE()
	if err != nil {
		return ActivitiesDay{}, err
	}
	iwCount, err := c.ReadU16BE()
	if err != nil {
		return ActivitiesDay{}, err
	}
	records := make([]CardIWRecord, 0, iwCount)
	for i := 0; i < int(iwCount); i++ {
		record, err := unmarshalCardIWRecord(c)
		if err != nil {
			return ActivitiesDay{}, err
		}
		records = append(records, record)
	}
	changeCount, err := c.ReadU16BE()
	if err != nil {
		return ActivitiesDay{}, err
	}
	changes := make([]dd.ActivityChangeInfo, 0, changeCount)
	for i := 0; i < int(changeCount); i++ {
		change, err := dd.UnmarshalActivityChangeInfo(c)
		if err != nil {
			return ActivitiesDay{}, err
		}
		changes = append(changes, change)
	}
	return ActivitiesDay{DateRaw: dateRaw, OdometerMidnight: odometer, Changes: changes, CardIWRecords: records}, nil
}

// extractGen1EventsFaults decodes a Gen1 events-and-faults transfer
// value in Appendix 7's field order: faults, events, overspeed control
// data, overspeed events (teacher's events_faults_gen1.go). Time
// adjustment records and the trailing signature carry no domain value
// this module extracts and are left for the structural validator.
func extractGen1EventsFaults(c *cursor.Cursor, out *Extraction) {
	faultCount, err := c.ReadU8()
	if err != nil {
		return
	}
	for i := 0; i < int(faultCount); i++ {
		fault, err := unmarshalFaultRecord(c)
		if err != nil {
			return
		}
		out.Faults = append(out.Faults, fault)
	}
	eventCount, err := c.ReadU8()
	if err != nil {
		return
	}
	for i := 0; i < int(eventCount); i++ {
		event, err := unmarshalEventRecord(c)
		if err != nil {
			return
		}
		out.Events = append(out.Events, event)
	}
	control, err := unmarshalOverspeedControlData(c)
	if err != nil {
		return
	}
	out.OverspeedControl = &control
	overspeedCount, err := c.ReadU8()
	if err != nil {
		return
	}
	for i := 0; i < int(overspeedCount); i++ {
		event, err := unmarshalOverspeedingEventRecord(c)
		if err != nil {
			return
		}
		out.OverspeedEvents = append(out.OverspeedEvents, event)
	}
}

func extractGen1DetailedSpeed(c *cursor.Cursor, out *Extraction) {
	count, err := c.ReadU16BE()
	if err != nil {
		return
	}
	for i := 0; i < int(count); i++ {
		block, err := unmarshalDetailedSpeedBlock(c)
		if err != nil {
			return
		}
		out.DetailedSpeedBlocks = append(out.DetailedSpeedBlocks, block)
	}
}

func extractGen1Calibrations(c *cursor.Cursor, out *Extraction) {
	if err := c.Skip(116); err != nil { // VuIdentification; recovered separately by the locator
		return
	}
	count, err := c.ReadU8()
	if err != nil {
		return
	}
	for i := 0; i < int(count); i++ {
		record, err := unmarshalCalibrationRecord(c)
		if err != nil {
			return
		}
		out.Calibrations = append(out.Calibrations, record)
	}
}

func extractGen2Segment(seg Segment, out *Extraction) {
	c := cursor.New(seg.Payload)
	triples, _ := WalkGen2Triples(c)
	switch seg.TREP {
	case 0x21, 0x31:
		for _, sub := range RecordsOfType(triples, gen2RecTypeOverview) {
			overview, err := unmarshalOverview(sub)
			if err == nil {
				out.Overview = &overview
			}
		}
	case 0x22, 0x32:
		for _, sub := range RecordsOfType(triples, gen2RecTypeActivityDay) {
			day, err := unmarshalActivitiesDay(sub)
			if err == nil {
				out.ActivitiesDays = append(out.ActivitiesDays, day)
			}
		}
	case 0x23, 0x33:
		for _, sub := range RecordsOfType(triples, gen2RecTypeEvent) {
			event, err := unmarshalEventRecord(sub)
			if err == nil {
				out.Events = append(out.Events, event)
			}
		}
		for _, sub := range RecordsOfType(triples, gen2RecTypeFault) {
			fault, err := unmarshalFaultRecord(sub)
			if err == nil {
				out.Faults = append(out.Faults, fault)
			}
		}
		for _, sub := range RecordsOfType(triples, gen2RecTypeOverspeedControl) {
			control, err := unmarshalOverspeedControlData(sub)
			if err == nil {
				out.OverspeedControl = &control
			}
		}
	case 0x24:
		for _, sub := range RecordsOfType(triples, gen2RecTypeDetailedSpeedBlock) {
			block, err := unmarshalDetailedSpeedBlock(sub)
			if err == nil {
				out.DetailedSpeedBlocks = append(out.DetailedSpeedBlocks, block)
			}
		}
	}
}
