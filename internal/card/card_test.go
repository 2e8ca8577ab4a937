package card

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/way-platform/tachoparse/internal/report"
)

func appendEntry(data []byte, fileID uint16, appendix uint8, payload []byte) []byte {
	data = append(data, byte(fileID>>8), byte(fileID))
	data = append(data, appendix)
	data = append(data, byte(len(payload)>>8), byte(len(payload)))
	return append(data, payload...)
}

func mustPart(t *testing.T, parts []report.Part, name string) report.Part {
	t.Helper()
	for _, p := range parts {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("no part named %q", name)
	return report.Part{}
}

func TestWalkEFRecognisesKnownFileIDs(t *testing.T) {
	var data []byte
	data = appendEntry(data, FileApplicationIdentification, 0, make([]byte, lenApplicationIdentification))
	result := WalkEF(data)
	if result.StructurePart.Status != report.StatusValid {
		t.Fatalf("structure status = %v, want Valid", result.StructurePart.Status)
	}
	if len(result.Entries[FileApplicationIdentification]) != 1 {
		t.Fatalf("expected one Application Identification entry")
	}
}

func TestWalkEFNotesUnknownFileID(t *testing.T) {
	var data []byte
	data = appendEntry(data, 0xFFFF, 0, []byte{0x01})
	result := WalkEF(data)
	if result.StructurePart.Note == "" {
		t.Fatalf("expected a note about the unknown file ID")
	}
}

func TestWalkEFFlagsTruncatedEntry(t *testing.T) {
	data := []byte{0x05, 0x01, 0x00, 0x00, 0x10} // declares 16 bytes, provides none
	result := WalkEF(data)
	if result.StructurePart.Status != report.StatusInvalid {
		t.Fatalf("structure status = %v, want Invalid", result.StructurePart.Status)
	}
}

func TestEvaluatePartMissingWhenAbsent(t *testing.T) {
	part := evaluatePart("Driving licence", nil, gen1Gen2Schemes(lengthConstraint{exact: lenDrivingLicenceInfo}), true)
	if part.Status != report.StatusMissing {
		t.Fatalf("status = %v, want Missing", part.Status)
	}
}

func TestEvaluatePartValidWhenGen1SchemeComplete(t *testing.T) {
	entries := []Entry{
		{FileID: FileDrivingLicence, Appendix: 0, Data: make([]byte, lenDrivingLicenceInfo)},
		{FileID: FileDrivingLicence, Appendix: 1, Data: make([]byte, 128)},
	}
	part := evaluatePart("Driving licence", entries, gen1Gen2Schemes(lengthConstraint{exact: lenDrivingLicenceInfo}), true)
	if part.Status != report.StatusValid {
		t.Fatalf("status = %v, want Valid, note=%q", part.Status, part.Note)
	}
}

func TestEvaluatePartInvalidWhenSignatureMissing(t *testing.T) {
	entries := []Entry{
		{FileID: FileDrivingLicence, Appendix: 0, Data: make([]byte, lenDrivingLicenceInfo)},
	}
	part := evaluatePart("Driving licence", entries, gen1Gen2Schemes(lengthConstraint{exact: lenDrivingLicenceInfo}), true)
	if part.Status != report.StatusInvalid {
		t.Fatalf("status = %v, want Invalid", part.Status)
	}
}

func TestDiscoverPlausibleRunFindsAlignedEvents(t *testing.T) {
	pad := []byte{0xAA, 0xAA, 0xAA} // manufacturer padding not aligned to the record size
	rec := make([]byte, lenCardEventFaultRecord)
	rec[0] = 0x01 // a small whitelisted event type
	data := append(append([]byte{}, pad...), rec...)
	data = append(data, rec...)
	offset, count := discoverPlausibleRun(data, lenCardEventFaultRecord, plausibleEventFaultRecord)
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if offset != len(pad) {
		t.Fatalf("offset = %d, want %d", offset, len(pad))
	}
}

func TestPickRecordLengthPrefersFirstEvenDivisor(t *testing.T) {
	n, ok := pickRecordLength(96, []int{lenVehicleUsedRecordGen1, lenVehicleUsedRecordGen2})
	if !ok || n != lenVehicleUsedRecordGen2 {
		t.Fatalf("pickRecordLength(96) = (%d, %v), want (48, true)", n, ok)
	}
	n, ok = pickRecordLength(62, []int{lenVehicleUsedRecordGen1, lenVehicleUsedRecordGen2})
	if !ok || n != lenVehicleUsedRecordGen1 {
		t.Fatalf("pickRecordLength(62) = (%d, %v), want (31, true)", n, ok)
	}
}

func TestParseMarksMissingPartsAbsentFileIDs(t *testing.T) {
	summary, parts, certs := Parse(nil)
	if summary.CardIdentification != nil {
		t.Fatalf("expected no card identification from an empty image")
	}
	if mustPart(t, parts, "Card identification").Status != report.StatusMissing {
		t.Fatalf("expected Card identification part to be Missing")
	}
	if certs.CACertificate != nil || certs.CardCertificate != nil {
		t.Fatalf("expected no certificate bytes from an empty image")
	}
}

func TestParseDecodesApplicationIdentification(t *testing.T) {
	payload := []byte{
		0x00,       // TypeOfTachographCardID
		0x01, 0x00, // CardStructureVersion (BCD)
		12, 12, // events/faults per type
		0x00, 0x78, // activity structure length
		0x00, 0x08, // vehicle records
		0x50, // place records
	}
	var data []byte
	data = appendEntry(data, FileApplicationIdentification, 0, payload)
	summary, parts, _ := Parse(data)
	if summary.ApplicationIdentification == nil {
		t.Fatalf("expected Application Identification to decode")
	}
	if summary.ApplicationIdentification.NoOfCardVehicleRecords != 8 {
		t.Fatalf("NoOfCardVehicleRecords = %d, want 8", summary.ApplicationIdentification.NoOfCardVehicleRecords)
	}
	if mustPart(t, parts, "Application identification").Status != report.StatusValid {
		t.Fatalf("expected Application identification part to be Valid")
	}
}

// The minor-part loop in Parse used to range over a map, which Go
// iterates in randomized order; this asserts the returned Parts slice
// is byte-for-byte identical across repeated calls on the same input
// (spec.md §8 universal invariant 6).
func TestParsePartsOrderIsDeterministic(t *testing.T) {
	var data []byte
	data = appendEntry(data, FileApplicationIdentification, 0, make([]byte, lenApplicationIdentification))
	data = appendEntry(data, FileCurrentUsage, 0, []byte{0x01})
	data = appendEntry(data, FileControlActivity, 0, []byte{0x01})
	data = appendEntry(data, FileCardDownload, 0, []byte{0x01})
	data = appendEntry(data, FileBorderCrossings, 0, []byte{0x01})
	data = appendEntry(data, FileICC, 0, []byte{0x01})
	data = appendEntry(data, FileIC, 0, []byte{0x01})

	_, first, _ := Parse(data)
	for i := 0; i < 20; i++ {
		_, next, _ := Parse(data)
		if diff := cmp.Diff(first, next); diff != "" {
			t.Fatalf("Parts order differs across identical calls (-first +next):\n%s", diff)
		}
	}
}
