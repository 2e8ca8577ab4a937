package card

import (
	"github.com/way-platform/tachoparse/internal/cursor"
	"github.com/way-platform/tachoparse/internal/dd"
)

// pickRecordLength returns the first candidate that evenly divides
// dataLen, per spec.md §4.10: "the walker divides the payload by
// candidate record lengths ... and picks the one that evenly divides."
func pickRecordLength(dataLen int, candidates []int) (int, bool) {
	for _, n := range candidates {
		if n > 0 && dataLen%n == 0 {
			return n, true
		}
	}
	return 0, false
}

// discoverPlausibleRun scans every alignment offset `0..recordLen-1` and
// returns the byte offset and record count of the longest contiguous run
// of records for which plausible returns true, per spec.md §4.10's
// block-discovery heuristic. This tolerates manufacturer-specific header
// padding that the declared record count does not account for.
func discoverPlausibleRun(data []byte, recordLen int, plausible func([]byte) bool) (offset, count int) {
	if recordLen <= 0 {
		return 0, 0
	}
	bestOffset, bestCount := 0, 0
	for align := 0; align < recordLen && align < len(data); align++ {
		runStart, runLen := -1, 0
		pos := align
		for pos+recordLen <= len(data) {
			rec := data[pos : pos+recordLen]
			if plausible(rec) {
				if runStart < 0 {
					runStart = pos
				}
				runLen++
				if runLen > bestCount {
					bestCount = runLen
					bestOffset = runStart
				}
			} else {
				runStart, runLen = -1, 0
			}
			pos += recordLen
		}
	}
	return bestOffset, bestCount
}

func plausibleEventFaultRecord(rec []byte) bool {
	if len(rec) != lenCardEventFaultRecord {
		return false
	}
	return dd.LooksLikeDriverCardRecord(rec[0], rec[11:24])
}

// decodeEvents (and decodeFaults below) runs the block-discovery
// heuristic over an EF Events (EF Faults) data buffer and decodes the
// longest plausible run.
func decodeEvents(data []byte) []EventRecord {
	offset, count := discoverPlausibleRun(data, lenCardEventFaultRecord, plausibleEventFaultRecord)
	if count == 0 {
		return nil
	}
	c := cursor.New(data[offset : offset+count*lenCardEventFaultRecord])
	var events []EventRecord
	for i := 0; i < count; i++ {
		event, err := unmarshalCardEventRecord(c)
		if err != nil {
			break
		}
		events = append(events, event)
	}
	return events
}

func decodeFaults(data []byte) []FaultRecord {
	offset, count := discoverPlausibleRun(data, lenCardEventFaultRecord, plausibleEventFaultRecord)
	if count == 0 {
		return nil
	}
	c := cursor.New(data[offset : offset+count*lenCardEventFaultRecord])
	var faults []FaultRecord
	for i := 0; i < count; i++ {
		fault, err := unmarshalCardFaultRecord(c)
		if err != nil {
			break
		}
		faults = append(faults, fault)
	}
	return faults
}

// decodeVehiclesUsed strips the 2-byte newest-record pointer and decodes
// whichever of the Gen1 (31-byte) or Gen2 (48-byte) record shapes evenly
// divides the remainder (spec.md §4.10).
func decodeVehiclesUsed(data []byte) []VehicleUsedRecord {
	if len(data) < 2 {
		return nil
	}
	body := data[2:]
	recordLen, ok := pickRecordLength(len(body), []int{lenVehicleUsedRecordGen1, lenVehicleUsedRecordGen2})
	if !ok {
		return nil
	}
	c := cursor.New(body)
	var records []VehicleUsedRecord
	for !c.AtEnd() {
		sub, err := c.Slice(recordLen)
		if err != nil {
			break
		}
		record, err := unmarshalVehicleUsedRecord(sub)
		if err != nil {
			continue
		}
		records = append(records, record)
	}
	return records
}

// decodePlaces picks between the Gen1 (10-byte) and Gen2 GNSS-extended
// (21-byte) place-record shapes, preferring the GNSS shape when it
// evenly divides since it is the superset (spec.md §4.10).
func decodePlaces(data []byte) []PlaceRecord {
	recordLen, withGNSS := lenPlaceRecordGen2, true
	if len(data)%recordLen != 0 {
		recordLen, withGNSS = lenPlaceRecordGen1, false
		if len(data)%recordLen != 0 {
			return nil
		}
	}
	c := cursor.New(data)
	var places []PlaceRecord
	for !c.AtEnd() {
		record, err := unmarshalPlaceRecord(c, withGNSS)
		if err != nil {
			break
		}
		places = append(places, record)
	}
	return places
}

func decodeSpecificConditions(data []byte) []SpecificConditionRecord {
	if len(data)%lenSpecificConditionRecord != 0 {
		return nil
	}
	c := cursor.New(data)
	var records []SpecificConditionRecord
	for !c.AtEnd() {
		record, err := unmarshalSpecificConditionRecord(c)
		if err != nil {
			break
		}
		records = append(records, record)
	}
	return records
}
