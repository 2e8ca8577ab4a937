// Package report defines the shared per-part status vocabulary that the
// VU stream walker, the driver-card EF walker, and the root orchestrator
// all populate (spec.md §3, §4.4, §4.7).
package report

import "strconv"

// Status is a logical section's validation outcome.
type Status string

const (
	// StatusValid means the section parsed with no structural errors.
	StatusValid Status = "Valid"
	// StatusInvalid means the section was present but failed structural
	// validation; Part.Note starts with the first diagnostic.
	StatusInvalid Status = "Invalid"
	// StatusMissing means the section never appeared in the input.
	StatusMissing Status = "Missing"
	// StatusNotApplicable means the section does not apply to this file
	// (e.g. VU-only parts on a driver-card file).
	StatusNotApplicable Status = "NotApplicable"
)

// Part is one logical section of a Summary: an Overview, an Activities
// block, a card elementary file, and so on (spec.md §3).
type Part struct {
	Name   string
	Status Status
	Note   string
}

// Accumulator aggregates repeated occurrences of one named part across a
// stream walk, following the status rule of spec.md §4.4: invalid>0 wins
// over count=0 wins over Valid; count>1 appends "Segments: N".
type Accumulator struct {
	Name    string
	Count   int
	Invalid int
	Notes   []string
}

// NewAccumulator returns an empty Accumulator for the named part.
func NewAccumulator(name string) *Accumulator {
	return &Accumulator{Name: name}
}

// AddValid records one more successfully structurally-validated
// occurrence of this part.
func (a *Accumulator) AddValid() {
	a.Count++
}

// AddInvalid records a failed occurrence, attaching note as the
// diagnostic. Every note is kept, and [Accumulator.Part] joins them all
// into the Part's Note in the order they were recorded.
func (a *Accumulator) AddInvalid(note string) {
	a.Count++
	a.Invalid++
	if note != "" {
		a.Notes = append(a.Notes, note)
	}
}

// AddNote attaches an informational note that does not by itself make
// the part invalid (e.g. an unknown TREP or file ID).
func (a *Accumulator) AddNote(note string) {
	if note != "" {
		a.Notes = append(a.Notes, note)
	}
}

// Part resolves the accumulated state into a [Part] per the spec.md §4.4
// status rule.
func (a *Accumulator) Part() Part {
	p := Part{Name: a.Name}
	switch {
	case a.Invalid > 0:
		p.Status = StatusInvalid
	case a.Count == 0:
		p.Status = StatusMissing
	default:
		p.Status = StatusValid
	}
	if a.Count > 1 {
		a.Notes = append(a.Notes, segmentsNote(a.Count))
	}
	if len(a.Notes) > 0 {
		p.Note = a.Notes[0]
		if len(a.Notes) > 1 {
			p.Note = joinNotes(a.Notes)
		}
	}
	return p
}

func segmentsNote(count int) string {
	return "Segments: " + strconv.Itoa(count)
}

func joinNotes(notes []string) string {
	out := notes[0]
	for _, n := range notes[1:] {
		out += "; " + n
	}
	return out
}

// Proxy copies the status and note of src onto a new Part named name,
// per the proxy-part rule of spec.md §3 (e.g. "Company locks" mirrors
// "Technical data").
func Proxy(name string, src Part) Part {
	return Part{Name: name, Status: src.Status, Note: src.Note}
}
