package dd

import (
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/way-platform/tachoparse/internal/cursor"
)

// Name is the Appendix 1 `Name` type: a code page byte followed by
// 35 bytes of text in that code page (Data Dictionary, Section 2.116).
type Name struct {
	CodePage uint8
	Text     string
}

// Address is the Appendix 1 `Address` type: shares Name's wire shape but
// is modelled as its own type (spec.md §9 DESIGN NOTES) so the renderer
// never conflates a manufacturer name with a manufacturer address.
type Address struct {
	CodePage uint8
	Text     string
}

// codePageCharmap maps a tachograph code page byte to its character map,
// mirroring the teacher's code-page table. Unrecognised code pages fall
// back to ISO-8859-1, and code page 0xFF means "no string" (handled by
// the caller before a charmap lookup is needed).
func codePageCharmap(codePage uint8) *charmap.Charmap {
	switch codePage {
	case 1:
		return charmap.ISO8859_1
	case 2:
		return charmap.ISO8859_2
	case 3:
		return charmap.ISO8859_3
	case 5:
		return charmap.ISO8859_5
	case 7:
		return charmap.ISO8859_7
	case 9:
		return charmap.ISO8859_9
	case 13:
		return charmap.ISO8859_13
	case 15:
		return charmap.ISO8859_15
	case 16:
		return charmap.ISO8859_16
	case 80:
		return charmap.KOI8R
	case 85:
		return charmap.KOI8U
	default:
		return charmap.ISO8859_1
	}
}

// decodeCodePageText decodes data under codePage, trimming padding and
// whitespace. Code page 0xFF means "empty/unassigned string" per the
// Data Dictionary and always decodes to "".
func decodeCodePageText(codePage uint8, data []byte) string {
	if codePage == 0xFF {
		return ""
	}
	hasContent := false
	for _, b := range data {
		if b > 0 && b < 0xFF {
			hasContent = true
			break
		}
	}
	if !hasContent {
		return ""
	}
	decoded, err := codePageCharmap(codePage).NewDecoder().Bytes(data)
	if err != nil {
		// Fall back to the Latin-1 trimming the cursor already applies
		// to plain fixed strings.
		c := cursor.New(data)
		s, _ := c.ReadFixedStr(len(data))
		return s
	}
	return strings.TrimFunc(trimPadding(decoded), isPaddingRune)
}

func trimPadding(b []byte) []byte {
	end := len(b)
	for end > 0 && (b[end-1] == 0x00 || b[end-1] == 0xFF) {
		end--
	}
	return b[:end]
}

func isPaddingRune(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r', 0x00, 0xFF:
		return true
	}
	return false
}

// UnmarshalName reads a 36-byte Name field (1 code page byte + 35 text
// bytes) from c.
func UnmarshalName(c *cursor.Cursor) (Name, error) {
	codePage, err := c.ReadU8()
	if err != nil {
		return Name{}, err
	}
	data, err := c.ReadBytes(35)
	if err != nil {
		return Name{}, err
	}
	return Name{CodePage: codePage, Text: decodeCodePageText(codePage, data)}, nil
}

// UnmarshalAddress reads a 36-byte Address field (1 code page byte + 35
// text bytes) from c.
func UnmarshalAddress(c *cursor.Cursor) (Address, error) {
	codePage, err := c.ReadU8()
	if err != nil {
		return Address{}, err
	}
	data, err := c.ReadBytes(35)
	if err != nil {
		return Address{}, err
	}
	return Address{CodePage: codePage, Text: decodeCodePageText(codePage, data)}, nil
}

// LooksLikeText reports whether b plausibly contains human-readable
// text, per spec.md §4.13: non-empty after trim, at least 90% printable
// bytes, at least minAlnum alphanumerics, and an alphanumeric first
// character.
func LooksLikeText(b []byte, minAlnum int) bool {
	trimmed := trimPadding(b)
	trimmed = []byte(strings.TrimSpace(string(trimmed)))
	if len(trimmed) == 0 {
		return false
	}
	if !isAlnum(trimmed[0]) {
		return false
	}
	printable := 0
	alnum := 0
	for _, b := range trimmed {
		if b >= 0x20 && b < 0x7F {
			printable++
		}
		if isAlnum(b) {
			alnum++
		}
	}
	if float64(printable) < 0.9*float64(len(trimmed)) {
		return false
	}
	return alnum >= minAlnum
}

func isAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// LooksLikeCardNumber reports whether b plausibly contains a card
// number: at least 6 bytes after trimming and at least 4 alphanumerics
// (spec.md §4.13).
func LooksLikeCardNumber(b []byte) bool {
	trimmed := []byte(strings.TrimSpace(string(trimPadding(b))))
	if len(trimmed) < 6 {
		return false
	}
	alnum := 0
	for _, b := range trimmed {
		if isAlnum(b) {
			alnum++
		}
	}
	return alnum >= 4
}
