package tachoparse

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// S1 — empty input (spec.md §8).
func TestParseSummaryEmptyInput(t *testing.T) {
	summary := ParseSummary(nil)
	if summary.Header.IsValid {
		t.Fatalf("IsValid = true, want false")
	}
	if summary.Header.InvalidReason != "Header (empty)" {
		t.Fatalf("InvalidReason = %q, want %q", summary.Header.InvalidReason, "Header (empty)")
	}
	if summary.DriverCard != nil {
		t.Fatalf("DriverCard = %+v, want nil", summary.DriverCard)
	}
	for _, part := range summary.Parts {
		if part.Status != "NotApplicable" {
			t.Fatalf("part %q status = %v, want NotApplicable", part.Name, part.Status)
		}
	}
}

// S2 — Gen2v2 download-interface-version header (spec.md §8).
func TestParseSummaryDownloadInterfaceVersionHeader(t *testing.T) {
	summary := ParseSummary([]byte{0x76, 0x00, 0x01, 0x01})
	if !summary.Header.IsValid {
		t.Fatalf("IsValid = false, want true")
	}
	if summary.Header.DownloadInterfaceVersion != "gen2_v2 (0x01 0x01)" {
		t.Fatalf("DownloadInterfaceVersion = %q, want %q", summary.Header.DownloadInterfaceVersion, "gen2_v2 (0x01 0x01)")
	}
}

// Universal invariant 2: Summary.Header.FileSize == len(b).
func TestParseSummaryFileSizeMatchesInputLength(t *testing.T) {
	inputs := [][]byte{
		nil,
		{0x76},
		{0x76, 0x21, 0x01, 0x00},
		bytes.Repeat([]byte{0xAA}, 257),
	}
	for _, in := range inputs {
		summary := ParseSummary(in)
		if summary.Header.FileSize != len(in) {
			t.Fatalf("FileSize = %d, want %d for input of length %d", summary.Header.FileSize, len(in), len(in))
		}
	}
}

// Universal invariant 1: ParseSummary never panics, for any input.
func TestParseSummaryNeverPanics(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		n := rng.Intn(512)
		data := make([]byte, n)
		rng.Read(data)
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("ParseSummary panicked on random input (len=%d, seed round=%d): %v", n, i, r)
				}
			}()
			_ = ParseSummary(data)
		}()
	}

	// A few structured near-misses that have tripped length-prefix
	// bugs in similar decoders before: truncated TREP headers,
	// driver-card EF entries declaring more data than is present, and
	// a lone SID byte.
	edgeCases := [][]byte{
		{},
		{0x76},
		{0x76, 0x00},
		{0x76, 0x00, 0x01},
		{0x76, 0x24},
		{0x00, 0x02, 0x00, 0x00, 0x19, 0x00},
		{0x05, 0x01, 0x00, 0x00, 0xFF},
	}
	for _, data := range edgeCases {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("ParseSummary panicked on %x: %v", data, r)
				}
			}()
			_ = ParseSummary(data)
		}()
	}
}

// Universal invariant 6: ParseSummary is deterministic and pure.
func TestParseSummaryDeterministic(t *testing.T) {
	data := []byte{0x76, 0x21, 0x0A, 0x00, 0x01, 0x00, 0x00, 0x08, 0x00, 0x40, 0x00, 0x01}
	data = append(data, make([]byte, 0x40)...)
	first := ParseSummary(data)
	second := ParseSummary(data)
	if first.Header.DetectedType != second.Header.DetectedType ||
		first.Header.DetectedGeneration != second.Header.DetectedGeneration ||
		first.Header.IsValid != second.Header.IsValid ||
		first.Header.HeaderHex != second.Header.HeaderHex {
		t.Fatalf("Header differs across identical calls: %+v vs %+v", first.Header, second.Header)
	}
	if diff := cmp.Diff(first.Parts, second.Parts); diff != "" {
		t.Fatalf("Parts differ across identical calls (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.ActivityDays, second.ActivityDays); diff != "" {
		t.Fatalf("ActivityDays differ across identical calls (-first +second):\n%s", diff)
	}
}
