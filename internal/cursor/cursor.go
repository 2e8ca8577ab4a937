// Package cursor provides a positioned, bounds-checked view over an
// immutable byte buffer.
//
// Every decoder in this module reads through a [Cursor] instead of
// indexing a byte slice directly: each read advances the position by
// exactly the number of bytes it consumed, and a read that would run
// past the end of the buffer fails explicitly with [ErrExhausted]
// rather than panicking or silently truncating.
package cursor

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// ErrExhausted is returned when a read requires more bytes than remain
// in the cursor.
var ErrExhausted = errors.New("cursor: exhausted")

// Cursor is a positioned view over an immutable byte buffer.
//
// The zero value is not usable; construct one with [New]. A Cursor is not
// safe for concurrent use — callers that need concurrent access should
// take independent cursors via [Cursor.Slice].
type Cursor struct {
	data []byte
	pos  int
}

// New returns a Cursor positioned at the start of data.
//
// The Cursor never copies or mutates data; callers must not mutate it
// for the lifetime of the Cursor.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Len returns the total length of the underlying buffer.
func (c *Cursor) Len() int {
	return len(c.data)
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// AtEnd reports whether the cursor has no unread bytes left.
func (c *Cursor) AtEnd() bool {
	return c.Remaining() == 0
}

// Tell returns the current read position.
func (c *Cursor) Tell() int {
	return c.pos
}

// Seek moves the read position to an absolute offset.
//
// Seeking outside [0, Len()] fails with [ErrExhausted] and leaves the
// position unchanged.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.data) {
		return fmt.Errorf("cursor: seek to %d out of range [0, %d]: %w", pos, len(c.data), ErrExhausted)
	}
	c.pos = pos
	return nil
}

// Skip advances the read position by n bytes without returning them.
func (c *Cursor) Skip(n int) error {
	_, err := c.readBytes(n)
	return err
}

// readBytes is the single bounds-checked primitive every other read
// builds on.
func (c *Cursor) readBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("cursor: negative read length %d", n)
	}
	if n > c.Remaining() {
		return nil, fmt.Errorf("cursor: need %d bytes, have %d: %w", n, c.Remaining(), ErrExhausted)
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadBytes reads and returns the next n bytes, advancing the position.
//
// The returned slice aliases the underlying buffer; callers that need an
// independent copy must clone it.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	return c.readBytes(n)
}

// PeekBytes returns the next n bytes without advancing the position.
func (c *Cursor) PeekBytes(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, fmt.Errorf("cursor: need %d bytes, have %d: %w", n, c.Remaining(), ErrExhausted)
	}
	return c.data[c.pos : c.pos+n], nil
}

// Slice returns an independent sub-cursor over the next n bytes and
// advances the receiver past them.
//
// This is used by the Gen2 record-array walker to hand each
// (recordType, recordSize, recordCount) payload to record decoders as
// its own bounded view, so a decoder bug in one record can never read
// into the next.
func (c *Cursor) Slice(n int) (*Cursor, error) {
	b, err := c.readBytes(n)
	if err != nil {
		return nil, err
	}
	return &Cursor{data: b}, nil
}

// ReadU8 reads a single byte.
func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.readBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16BE reads a big-endian 16-bit unsigned integer.
func (c *Cursor) ReadU16BE() (uint16, error) {
	b, err := c.readBytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// ReadU16LE reads a little-endian 16-bit unsigned integer.
func (c *Cursor) ReadU16LE() (uint16, error) {
	b, err := c.readBytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[1])<<8 | uint16(b[0]), nil
}

// ReadU24BE reads a big-endian 24-bit unsigned integer into a uint32.
func (c *Cursor) ReadU24BE() (uint32, error) {
	b, err := c.readBytes(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// ReadU32BE reads a big-endian 32-bit unsigned integer.
func (c *Cursor) ReadU32BE() (uint32, error) {
	b, err := c.readBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// ReadU32LE reads a little-endian 32-bit unsigned integer.
func (c *Cursor) ReadU32LE() (uint32, error) {
	b, err := c.readBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[3])<<24 | uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0]), nil
}

// ReadTimeRealRaw reads a raw 32-bit TimeReal (seconds since the Unix
// epoch) without applying any absence/sentinel interpretation; that
// interpretation belongs to internal/dd so the rest of the code never
// sees a raw TimeReal integer.
func (c *Cursor) ReadTimeRealRaw() (uint32, error) {
	return c.ReadU32BE()
}

// ReadFixedStr reads n bytes and decodes them as ISO-8859-1 (Latin-1),
// trimming a trailing NUL run and surrounding whitespace.
//
// Malformed bytes never fail the read: ISO-8859-1 maps every byte value
// to a rune, so decoding cannot fail; this method exists to centralise
// the trim-then-decode behaviour that every fixed-width text field in
// Appendix 7 shares.
func (c *Cursor) ReadFixedStr(n int) (string, error) {
	b, err := c.readBytes(n)
	if err != nil {
		return "", err
	}
	return decodeLatin1Trimmed(b), nil
}

// decodeLatin1Trimmed decodes b as ISO-8859-1, strips a trailing NUL
// run, and trims surrounding whitespace.
func decodeLatin1Trimmed(b []byte) string {
	trimmed := trimTrailingNUL(b)
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(trimmed)
	if err != nil {
		// ISO-8859-1 decoding of arbitrary bytes cannot fail in practice;
		// fall back to a byte-for-byte Latin-1 mapping if it ever does.
		runes := make([]rune, len(trimmed))
		for i, b := range trimmed {
			runes[i] = rune(b)
		}
		return trimSpaceRunes(string(runes))
	}
	return trimSpaceRunes(string(s))
}

func trimTrailingNUL(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == 0x00 {
		end--
	}
	return b[:end]
}

func trimSpaceRunes(s string) string {
	start, end := 0, len(s)
	for start < end && isTrimmable(s[start]) {
		start++
	}
	for end > start && isTrimmable(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isTrimmable(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r', 0x00, 0xFF:
		return true
	}
	return false
}

// ReadBcd reads n bytes and decodes them as packed binary-coded decimal,
// returning a digit string of length 2*n. Any nibble >= 10 is rendered
// as '?' rather than failing the read.
func (c *Cursor) ReadBcd(n int) (string, error) {
	b, err := c.readBytes(n)
	if err != nil {
		return "", err
	}
	digits := make([]byte, 0, 2*n)
	for _, v := range b {
		digits = append(digits, bcdDigit(v>>4), bcdDigit(v&0x0F))
	}
	return string(digits), nil
}

func bcdDigit(nibble byte) byte {
	if nibble > 9 {
		return '?'
	}
	return '0' + nibble
}
