package card

import (
	"fmt"
	"strings"

	"github.com/way-platform/tachoparse/internal/cursor"
	"github.com/way-platform/tachoparse/internal/report"
)

// Entry is one `{fileID, appendix, length, data}` entry from a driver-
// card image (spec.md §4.7).
type Entry struct {
	FileID   uint16
	Appendix uint8
	Data     []byte
}

// EFWalkResult is the outcome of walking a card image's flat entry
// concatenation.
type EFWalkResult struct {
	Entries       map[uint16][]Entry
	StructurePart report.Part
}

// Known card elementary file IDs (spec.md §6.1 container variant 2).
const (
	FileApplicationIdentification uint16 = 0x0501
	FileEvents                    uint16 = 0x0502
	FileFaults                    uint16 = 0x0503
	FileActivities                uint16 = 0x0504
	FileVehiclesUsed              uint16 = 0x0505
	FilePlaces                    uint16 = 0x0506
	FileCurrentUsage              uint16 = 0x0507
	FileControlActivity           uint16 = 0x0508
	FileCardDownload              uint16 = 0x050E
	FileCardIdentification        uint16 = 0x0520
	FileDrivingLicence            uint16 = 0x0521
	FileSpecificConditions        uint16 = 0x0522
	FileGNSSPlaces                uint16 = 0x0523
	FileBorderCrossings           uint16 = 0x0524
	FileCardCertificateGen1       uint16 = 0xC100
	FileCardCertificateGen2       uint16 = 0xC101
	FileCACertificateGen1         uint16 = 0xC108
	FileCACertificateGen2         uint16 = 0xC109
	FileICC                       uint16 = 0x0002
	FileIC                        uint16 = 0x0005
)

var knownFileIDs = map[uint16]bool{
	FileApplicationIdentification: true,
	FileEvents:                    true,
	FileFaults:                    true,
	FileActivities:                true,
	FileVehiclesUsed:              true,
	FilePlaces:                    true,
	FileCurrentUsage:              true,
	FileControlActivity:           true,
	FileCardDownload:              true,
	FileCardIdentification:        true,
	FileDrivingLicence:            true,
	FileSpecificConditions:        true,
	FileGNSSPlaces:                true,
	FileBorderCrossings:           true,
	FileCardCertificateGen1:       true,
	FileCardCertificateGen2:       true,
	FileCACertificateGen1:         true,
	FileCACertificateGen2:         true,
	FileICC:                       true,
	FileIC:                        true,
}

// WalkEF walks a flat concatenation of `{fileID:u16BE, appendix:u8,
// length:u16BE, data[length]}` entries (spec.md §4.7).
func WalkEF(data []byte) EFWalkResult {
	c := cursor.New(data)
	entries := make(map[uint16][]Entry)
	acc := report.NewAccumulator("File structure")
	for !c.AtEnd() {
		if c.Remaining() < 5 {
			acc.AddNote("Trailing bytes")
			break
		}
		fileID, err := c.ReadU16BE()
		if err != nil {
			acc.AddInvalid("Trailing bytes")
			break
		}
		appendix, err := c.ReadU8()
		if err != nil {
			acc.AddInvalid("Truncated entry")
			break
		}
		length, err := c.ReadU16BE()
		if err != nil {
			acc.AddInvalid("Truncated entry")
			break
		}
		entryData, err := c.ReadBytes(int(length))
		if err != nil {
			acc.AddInvalid("Truncated entry")
			break
		}
		if !knownFileIDs[fileID] {
			acc.AddNote(fmt.Sprintf("Unknown file ID 0x%04X", fileID))
		}
		entries[fileID] = append(entries[fileID], Entry{FileID: fileID, Appendix: appendix, Data: entryData})
	}
	acc.AddValid()
	return EFWalkResult{Entries: entries, StructurePart: acc.Part()}
}

// lengthConstraint describes the acceptable data lengths for one
// logical card part's data appendix (spec.md §4.7).
type lengthConstraint struct {
	exact      int // length must equal exactly this, if > 0
	recordSize int // length (minus header) must be a non-negative multiple of this, if > 0
	header     int // bytes to strip before the recordSize check (e.g. a 2-byte pointer)
	min        int // otherwise, length must be >= min
}

func (lc lengthConstraint) satisfies(n int) bool {
	if lc.exact > 0 {
		return n == lc.exact
	}
	if lc.recordSize > 0 {
		n -= lc.header
		return n >= 0 && n%lc.recordSize == 0
	}
	return n >= lc.min
}

// efScheme pairs a data appendix with its signature appendix and
// expected signature length, per spec.md §4.7's `{Gen1, Gen2}` table.
type efScheme struct {
	label          string
	dataAppendix   uint8
	sigAppendix    uint8
	sigLen         int
	dataConstraint lengthConstraint
}

// evaluatePart applies the spec.md §4.7 status rule to one logical card
// part: it is Valid if any of the given schemes is internally
// consistent, Invalid if data or signature entries exist but no scheme
// validates, and Missing if neither data nor signature ever appeared.
func evaluatePart(name string, entries []Entry, schemes []efScheme, requireSignature bool) report.Part {
	byAppendix := make(map[uint8][]Entry)
	for _, e := range entries {
		byAppendix[e.Appendix] = append(byAppendix[e.Appendix], e)
	}
	var notes []string
	anyPresent := len(entries) > 0
	validSchemeFound := false
	for _, s := range schemes {
		dataEntries := byAppendix[s.dataAppendix]
		if len(dataEntries) == 0 {
			continue
		}
		if len(dataEntries) > 1 {
			notes = append(notes, s.label+": duplicate data entry")
		}
		if !s.dataConstraint.satisfies(len(dataEntries[0].Data)) {
			notes = append(notes, s.label+": unexpected data length")
			continue
		}
		if requireSignature {
			sigEntries := byAppendix[s.sigAppendix]
			if len(sigEntries) == 0 {
				notes = append(notes, s.label+": missing signature")
				continue
			}
			if len(sigEntries) > 1 {
				notes = append(notes, s.label+": duplicate signature entry")
			}
			if len(sigEntries[0].Data) != s.sigLen {
				notes = append(notes, s.label+": invalid signature length")
				continue
			}
		}
		validSchemeFound = true
	}
	status := report.StatusInvalid
	switch {
	case validSchemeFound:
		status = report.StatusValid
	case !anyPresent:
		status = report.StatusMissing
	}
	return report.Part{Name: name, Status: status, Note: strings.Join(notes, "; ")}
}

func firstData(entries []Entry, appendix uint8) ([]byte, bool) {
	for _, e := range entries {
		if e.Appendix == appendix {
			return e.Data, true
		}
	}
	return nil, false
}
