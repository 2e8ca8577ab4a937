package vu

import (
	"testing"

	"github.com/way-platform/tachoparse/internal/dd"
	"github.com/way-platform/tachoparse/internal/report"
)

func mustPart(t *testing.T, parts []report.Part, name string) report.Part {
	t.Helper()
	for _, p := range parts {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("no part named %q in %+v", name, parts)
	return report.Part{}
}

// TestWalkGen2OverviewWithSignature is spec.md §8 scenario S3: a single
// empty Gen2 Overview segment followed by a mandatory signature record.
func TestWalkGen2OverviewWithSignature(t *testing.T) {
	data := []byte{
		0x76, 0x21, // SID, TREP (Gen2v1 Overview)
		0x0A, 0x00, 0x01, 0x00, 0x00, // overview triple: type 0x0A, size 1, count 0
		0x08, 0x00, 0x40, 0x00, 0x01, // signature triple: type 0x08, size 64, count 1
	}
	data = append(data, make([]byte, 64)...)
	result := Walk(data)
	overview := mustPart(t, result.Parts, "Overview")
	if overview.Status != report.StatusValid {
		t.Fatalf("Overview status = %v, want Valid", overview.Status)
	}
}

// TestWalkGen2OverviewMissingSignature confirms the same segment without
// its trailing signature record is Invalid.
func TestWalkGen2OverviewMissingSignature(t *testing.T) {
	data := []byte{
		0x76, 0x21,
		0x0A, 0x00, 0x01, 0x00, 0x00,
	}
	result := Walk(data)
	overview := mustPart(t, result.Parts, "Overview")
	if overview.Status != report.StatusInvalid {
		t.Fatalf("Overview status = %v, want Invalid", overview.Status)
	}
	if overview.Note != "Missing signature record" {
		t.Fatalf("Overview note = %q, want %q", overview.Note, "Missing signature record")
	}
}

func TestWalkResyncsAfterOutOfBandBytes(t *testing.T) {
	gen1Overview := make([]byte, lenGen1OverviewHeader+1+1+128) // header + 0 locks + 0 controls + sig
	data := append([]byte{0xFF, 0xFF, 0xFF}, append([]byte{0x76, 0x01}, gen1Overview...)...)
	result := Walk(data)
	overview := mustPart(t, result.Parts, "Overview")
	if overview.Status != report.StatusValid {
		t.Fatalf("Overview status = %v, want Valid after resync", overview.Status)
	}
	if len(result.Segments) != 1 {
		t.Fatalf("Segments = %d, want 1", len(result.Segments))
	}
}

func TestWalkTruncatedGen1OverviewIsInvalid(t *testing.T) {
	data := append([]byte{0x76, 0x01}, make([]byte, 10)...)
	result := Walk(data)
	overview := mustPart(t, result.Parts, "Overview")
	if overview.Status != report.StatusInvalid {
		t.Fatalf("Overview status = %v, want Invalid", overview.Status)
	}
}

func TestWalkMissingActivitiesChangeCount(t *testing.T) {
	// Header (date+odometer = 7 bytes) and an empty VuCardIWData count (2
	// bytes) present, but truncated before the 2-byte activity-change
	// count.
	data := append([]byte{0x76, 0x02}, make([]byte, 7+2)...)
	result := Walk(data)
	activities := mustPart(t, result.Parts, "Activities")
	if activities.Note != "Activities change count missing" {
		t.Fatalf("note = %q, want %q", activities.Note, "Activities change count missing")
	}
}

func TestLocateIdentificationFindsPaddedBlock(t *testing.T) {
	name := dd.Name{CodePage: 1, Text: "ACME Corp"}
	address := dd.Address{CodePage: 1, Text: "1 Main Street"}
	payload := make([]byte, 0, 64+dd.LenVuIdentificationGen1)
	payload = append(payload, make([]byte, 5)...) // padding prefix before the identification block
	payload = append(payload, encodeNameForTest(name)...)
	payload = append(payload, encodeAddressForTest(address)...)
	payload = append(payload, []byte("PARTNUMBER123456")[:16]...)
	payload = append(payload, make([]byte, 8)...)    // ExtendedSerialNumber
	payload = append(payload, make([]byte, 8)...)    // SoftwareIdentification
	payload = append(payload, make([]byte, 4)...)    // ManufacturingDate
	payload = append(payload, []byte("APPR0001")...) // ApprovalNumber

	segments := []Segment{{TREP: 0x05, Gen: Gen1, Payload: payload}}
	ident, ok := LocateIdentification(segments)
	if !ok {
		t.Fatalf("LocateIdentification did not find the padded block")
	}
	if ident.ManufacturerName.Text != "ACME Corp" {
		t.Fatalf("ManufacturerName = %q, want %q", ident.ManufacturerName.Text, "ACME Corp")
	}
}

func encodeNameForTest(n dd.Name) []byte {
	b := make([]byte, 36)
	b[0] = n.CodePage
	copy(b[1:], []byte(n.Text))
	return b
}

func encodeAddressForTest(a dd.Address) []byte {
	b := make([]byte, 36)
	b[0] = a.CodePage
	copy(b[1:], []byte(a.Text))
	return b
}

func TestReconstructActivityDaySingleChangeCoversToMidnight(t *testing.T) {
	day := ActivitiesDay{
		Changes: []dd.ActivityChangeInfo{
			{Slot: 1, DrivingStatus: 0, CardStatus: 0, Activity: 3, Minutes: 510},
		},
	}
	segments := ReconstructActivityDay(day)
	if len(segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(segments))
	}
	seg := segments[0]
	if seg.Slot != 1 || seg.StartMinute != 510 || seg.EndMinute != 1440 {
		t.Fatalf("segment = %+v, want slot 1 [510, 1440)", seg)
	}
}

// TestReconstructActivityDayOverlapAcrossSlots is spec.md §8 scenario S6.
func TestReconstructActivityDayOverlapAcrossSlots(t *testing.T) {
	day := ActivitiesDay{
		Changes: []dd.ActivityChangeInfo{
			{Slot: 0, Activity: 0, Minutes: 0}, // Rest
			{Slot: 1, Activity: 2, Minutes: 0}, // Work
		},
	}
	segments := ReconstructActivityDay(day)
	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(segments))
	}
	for _, seg := range segments {
		if seg.StartMinute != 0 || seg.EndMinute != 1440 {
			t.Fatalf("segment = %+v, want [0, 1440)", seg)
		}
	}
}

// TestExtractGen1EventsFaultsPopulatesOverspeedFields covers the
// overspeed-control and overspeed-event sections of a Gen1
// events-and-faults transfer, wired in after the reviewer found them
// dead.
func TestExtractGen1EventsFaultsPopulatesOverspeedFields(t *testing.T) {
	var payload []byte
	payload = append(payload, 0x00) // fault count
	payload = append(payload, 0x00) // event count
	payload = append(payload, make([]byte, lenOverspeedControlData)...)
	payload = append(payload, 0x01) // overspeed event count
	payload = append(payload, make([]byte, lenOverspeedEventRecord)...)

	segments := []Segment{{TREP: 0x03, Gen: Gen1, Payload: payload}}
	extraction := Extract(segments)
	if extraction.OverspeedControl == nil {
		t.Fatalf("OverspeedControl = nil, want populated")
	}
	if len(extraction.OverspeedEvents) != 1 {
		t.Fatalf("OverspeedEvents = %d, want 1", len(extraction.OverspeedEvents))
	}
}

// TestExtractGen1ActivitiesDayPopulatesCardIWRecords covers the inline
// VuCardIWData section of a Gen1 Activities transfer (records.go's
// corrected CardIWRecord shape).
func TestExtractGen1ActivitiesDayPopulatesCardIWRecords(t *testing.T) {
	var payload []byte
	payload = append(payload, make([]byte, 4+3)...) // date + odometer
	payload = append(payload, 0x00, 0x01)           // 1 CardIWRecord
	payload = append(payload, make([]byte, lenCardIWRecordGen1)...)
	payload = append(payload, 0x00, 0x00) // 0 activity changes

	segments := []Segment{{TREP: 0x02, Gen: Gen1, Payload: payload}}
	extraction := Extract(segments)
	if len(extraction.ActivitiesDays) != 1 {
		t.Fatalf("ActivitiesDays = %d, want 1", len(extraction.ActivitiesDays))
	}
	if len(extraction.ActivitiesDays[0].CardIWRecords) != 1 {
		t.Fatalf("CardIWRecords = %d, want 1", len(extraction.ActivitiesDays[0].CardIWRecords))
	}
}

func TestReconstructActivityDayTieBreakLaterWins(t *testing.T) {
	day := ActivitiesDay{
		Changes: []dd.ActivityChangeInfo{
			{Slot: 0, Activity: 0, Minutes: 0},   // Rest, overwritten
			{Slot: 0, Activity: 2, Minutes: 0},   // Work, wins
			{Slot: 0, Activity: 3, Minutes: 600}, // Driving
		},
	}
	segments := ReconstructActivityDay(day)
	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2 (zero-width tie dropped): %+v", len(segments), segments)
	}
	if segments[0].Activity != 2 || segments[0].StartMinute != 0 || segments[0].EndMinute != 600 {
		t.Fatalf("first segment = %+v, want Work [0, 600)", segments[0])
	}
	if segments[1].Activity != 3 || segments[1].StartMinute != 600 || segments[1].EndMinute != 1440 {
		t.Fatalf("second segment = %+v, want Driving [600, 1440)", segments[1])
	}
}
