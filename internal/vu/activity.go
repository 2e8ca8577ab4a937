package vu

import (
	"sort"

	"github.com/way-platform/tachoparse/internal/dd"
)

// ActivitySegment is a contiguous, same-activity span within one day on
// one card slot (spec.md §3).
type ActivitySegment struct {
	DateRaw       dd.TimeReal
	Slot          uint8
	StartMinute   uint16
	EndMinute     uint16
	Activity      uint8
	CardStatus    uint8
	DrivingStatus uint8
}

// ReconstructActivityDay turns a day's packed activity-change words into
// per-slot, non-overlapping segments covering [0, 1440) minutes
// (spec.md §4.9).
func ReconstructActivityDay(day ActivitiesDay) []ActivitySegment {
	var segments []ActivitySegment
	for slot := uint8(0); slot < 2; slot++ {
		segments = append(segments, reconstructSlot(day.DateRaw, day.Changes, slot)...)
	}
	return segments
}

// reconstructSlot sorts one slot's changes by minute (stably, so ties
// preserve input order) and emits `[thisMinute, nextMinute)` segments,
// dropping any empty interval. Because the sort is stable, two changes
// at the same minute produce a zero-width segment for the earlier one —
// which is dropped — so the later-in-input change is the one that wins
// the segment start, exactly as spec.md §4.9 requires.
func reconstructSlot(dateRaw dd.TimeReal, changes []dd.ActivityChangeInfo, slot uint8) []ActivitySegment {
	var slotChanges []dd.ActivityChangeInfo
	for _, ch := range changes {
		if ch.Slot == slot {
			slotChanges = append(slotChanges, ch)
		}
	}
	if len(slotChanges) == 0 {
		return nil
	}
	sort.SliceStable(slotChanges, func(i, j int) bool {
		return slotChanges[i].Minutes < slotChanges[j].Minutes
	})
	var segments []ActivitySegment
	for i, ch := range slotChanges {
		start := ch.Minutes
		end := uint16(1440)
		if i+1 < len(slotChanges) {
			end = slotChanges[i+1].Minutes
		}
		if end <= start {
			continue
		}
		segments = append(segments, ActivitySegment{
			DateRaw:       dateRaw,
			Slot:          slot,
			StartMinute:   start,
			EndMinute:     end,
			Activity:      ch.Activity,
			CardStatus:    ch.CardStatus,
			DrivingStatus: ch.DrivingStatus,
		})
	}
	return segments
}
