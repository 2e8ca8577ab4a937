package tachoparse

import (
	"github.com/way-platform/tachoparse/internal/card"
	"github.com/way-platform/tachoparse/internal/dd"
	"github.com/way-platform/tachoparse/internal/report"
	"github.com/way-platform/tachoparse/internal/vu"
)

// ActivityDay is a reconstructed day of VU activity: the raw change
// words plus the contiguous segments the activity reconstructor
// derives from them (spec.md §3).
type ActivityDay struct {
	DateRaw          dd.TimeReal
	OdometerMidnight uint32
	Changes          []dd.ActivityChangeInfo
	Segments         []vu.ActivitySegment
	CardIWRecords    []vu.CardIWRecord
}

// Summary is the immutable, position-independent result of parsing a
// download file: the root entity of spec.md §3.
type Summary struct {
	Header           Header
	Parts            []report.Part
	VuIdentification *dd.VuIdentification
	Overview         *vu.Overview
	ActivityDays     []ActivityDay
	Events           []vu.EventRecord
	Faults           []vu.FaultRecord
	OverspeedControl *vu.OverspeedControlData
	OverspeedEvents  []vu.OverspeedingEventRecord
	DriverCard       *card.Summary
}

// partByName returns the first Part with the given name, if present.
func partByName(parts []report.Part, name string) (report.Part, bool) {
	for _, p := range parts {
		if p.Name == name {
			return p, true
		}
	}
	return report.Part{}, false
}

// ParseSummary parses a complete download file and returns its
// immutable summary (spec.md §4.12).
func ParseSummary(data []byte) Summary {
	header := ParseHeader(data)
	summary := Summary{Header: header}

	if !header.IsValid {
		summary.Parts = notApplicableParts(header.DetectedType)
		return summary
	}

	switch header.DetectedType {
	case FileTypeVU:
		parseVUSummary(data, &summary)
	case FileTypeDriverCard:
		parseDriverCardSummary(data, &summary)
	default:
		summary.Parts = notApplicableParts(header.DetectedType)
	}
	return summary
}

func parseVUSummary(data []byte, summary *Summary) {
	walk := vu.Walk(data)
	summary.Parts = walk.Parts

	if ident, ok := vu.LocateIdentification(walk.Segments); ok {
		summary.VuIdentification = &ident
	}

	extraction := vu.Extract(walk.Segments)
	summary.Overview = extraction.Overview
	summary.Events = extraction.Events
	summary.Faults = extraction.Faults
	summary.OverspeedControl = extraction.OverspeedControl
	summary.OverspeedEvents = extraction.OverspeedEvents

	for _, day := range extraction.ActivitiesDays {
		summary.ActivityDays = append(summary.ActivityDays, ActivityDay{
			DateRaw:          day.DateRaw,
			OdometerMidnight: day.OdometerMidnight,
			Changes:          day.Changes,
			Segments:         vu.ReconstructActivityDay(day),
			CardIWRecords:    day.CardIWRecords,
		})
	}

	if technical, ok := partByName(summary.Parts, "Technical data"); ok {
		summary.Parts = append(summary.Parts, report.Proxy("Company locks", technical))
	}
	if eventsFaults, ok := partByName(summary.Parts, "Events and faults"); ok {
		summary.Parts = append(summary.Parts, report.Proxy("Overspeeding", eventsFaults))
		summary.Parts = append(summary.Parts, report.Proxy("Faults", eventsFaults))
	}
}

func parseDriverCardSummary(data []byte, summary *Summary) {
	cardSummary, parts, _ := card.Parse(data)
	summary.Parts = parts
	summary.DriverCard = &cardSummary
}

// notApplicableParts produces the degenerate part list for a file whose
// header failed to classify, or whose type the summary has no parts
// for (spec.md §4.12 step 1: "a Summary that carries only the invalid
// header plus NotApplicable parts").
func notApplicableParts(detectedType FileType) []report.Part {
	var names []string
	switch detectedType {
	case FileTypeVU:
		names = []string{"Overview", "Activities", "Events and faults", "Detailed speed", "Technical data", "Company locks", "Overspeeding", "Faults"}
	default:
		names = []string{"File structure"}
	}
	parts := make([]report.Part, 0, len(names))
	for _, name := range names {
		parts = append(parts, report.Part{Name: name, Status: report.StatusNotApplicable})
	}
	return parts
}
