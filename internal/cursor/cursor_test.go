package cursor

import (
	"errors"
	"testing"
)

func TestReadU32BE(t *testing.T) {
	c := New([]byte{0x00, 0x00, 0x03, 0xB2, 0xFF})
	got, err := c.ReadU32BE()
	if err != nil {
		t.Fatalf("ReadU32BE: %v", err)
	}
	if got != 0x03B2 {
		t.Fatalf("ReadU32BE = %d, want %d", got, 0x03B2)
	}
	if c.Tell() != 4 {
		t.Fatalf("Tell() = %d, want 4", c.Tell())
	}
	if c.Remaining() != 1 {
		t.Fatalf("Remaining() = %d, want 1", c.Remaining())
	}
}

func TestExhausted(t *testing.T) {
	c := New([]byte{0x01, 0x02})
	if _, err := c.ReadU32BE(); !errors.Is(err, ErrExhausted) {
		t.Fatalf("ReadU32BE error = %v, want ErrExhausted", err)
	}
	// A failed read must not advance the position.
	if c.Tell() != 0 {
		t.Fatalf("Tell() after failed read = %d, want 0", c.Tell())
	}
}

func TestReadFixedStrTrimsNULAndWhitespace(t *testing.T) {
	c := New([]byte("ACME Ltd \x00\x00\x00\x00\x00\x00"))
	got, err := c.ReadFixedStr(c.Remaining())
	if err != nil {
		t.Fatalf("ReadFixedStr: %v", err)
	}
	if got != "ACME Ltd" {
		t.Fatalf("ReadFixedStr = %q, want %q", got, "ACME Ltd")
	}
}

func TestReadFixedStrAllPadding(t *testing.T) {
	c := New(make([]byte, 40))
	got, err := c.ReadFixedStr(40)
	if err != nil {
		t.Fatalf("ReadFixedStr: %v", err)
	}
	if got != "" {
		t.Fatalf("ReadFixedStr = %q, want empty", got)
	}
}

func TestReadBcd(t *testing.T) {
	c := New([]byte{0x12, 0x3F})
	got, err := c.ReadBcd(2)
	if err != nil {
		t.Fatalf("ReadBcd: %v", err)
	}
	if got != "123?" {
		t.Fatalf("ReadBcd = %q, want %q", got, "123?")
	}
}

func TestSliceIsIndependent(t *testing.T) {
	c := New([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	sub, err := c.Slice(2)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if sub.Remaining() != 2 {
		t.Fatalf("sub.Remaining() = %d, want 2", sub.Remaining())
	}
	if c.Tell() != 2 {
		t.Fatalf("parent Tell() = %d, want 2", c.Tell())
	}
	b, _ := sub.ReadBytes(2)
	if b[0] != 0x01 || b[1] != 0x02 {
		t.Fatalf("sub bytes = %v, want [1 2]", b)
	}
	// Advancing the sub-cursor must not affect the parent.
	if c.Tell() != 2 {
		t.Fatalf("parent Tell() after sub read = %d, want 2", c.Tell())
	}
}

func TestSeekOutOfRange(t *testing.T) {
	c := New([]byte{0x01, 0x02})
	if err := c.Seek(3); !errors.Is(err, ErrExhausted) {
		t.Fatalf("Seek(3) error = %v, want ErrExhausted", err)
	}
}
