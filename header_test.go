package tachoparse

import "testing"

func TestParseHeaderEmptyInput(t *testing.T) {
	h := ParseHeader(nil)
	if h.IsValid {
		t.Fatalf("IsValid = true, want false")
	}
	if h.InvalidReason != "Header (empty)" {
		t.Fatalf("InvalidReason = %q, want %q", h.InvalidReason, "Header (empty)")
	}
	if h.FileSize != 0 {
		t.Fatalf("FileSize = %d, want 0", h.FileSize)
	}
}

func TestParseHeaderMissingTREP(t *testing.T) {
	h := ParseHeader([]byte{0x76})
	if h.IsValid {
		t.Fatalf("IsValid = true, want false")
	}
	if h.InvalidReason != "missing TREP#2" {
		t.Fatalf("InvalidReason = %q, want %q", h.InvalidReason, "missing TREP#2")
	}
}

func TestParseHeaderUnknownTREP(t *testing.T) {
	h := ParseHeader([]byte{0x76, 0xAB})
	if h.IsValid {
		t.Fatalf("IsValid = true, want false")
	}
	if h.InvalidReason != "unknown TREP#2 0xAB" {
		t.Fatalf("InvalidReason = %q, want %q", h.InvalidReason, "unknown TREP#2 0xAB")
	}
}

func TestParseHeaderGen2V2DownloadInterfaceVersion(t *testing.T) {
	h := ParseHeader([]byte{0x76, 0x00, 0x01, 0x01})
	if !h.IsValid {
		t.Fatalf("IsValid = false, want true")
	}
	if h.ServiceID == nil || *h.ServiceID != 0x76 {
		t.Fatalf("ServiceID = %v, want 0x76", h.ServiceID)
	}
	if h.TREP == nil || *h.TREP != 0x00 {
		t.Fatalf("TREP = %v, want 0x00", h.TREP)
	}
	if h.TREPGeneration != GenerationGen2V2 {
		t.Fatalf("TREPGeneration = %v, want %v", h.TREPGeneration, GenerationGen2V2)
	}
	if h.TREPDataType != "Download interface version" {
		t.Fatalf("TREPDataType = %q, want %q", h.TREPDataType, "Download interface version")
	}
	if h.DownloadInterfaceVersion != "gen2_v2 (0x01 0x01)" {
		t.Fatalf("DownloadInterfaceVersion = %q, want %q", h.DownloadInterfaceVersion, "gen2_v2 (0x01 0x01)")
	}
}

func TestParseHeaderAmbiguousGen2TREP(t *testing.T) {
	h := ParseHeader([]byte{0x76, 0x24, 0x00, 0x00})
	if !h.IsValid {
		t.Fatalf("IsValid = false, want true")
	}
	if h.DetectedGeneration != GenerationGen2V1OrV2 {
		t.Fatalf("DetectedGeneration = %v, want %v", h.DetectedGeneration, GenerationGen2V1OrV2)
	}
}

func TestParseHeaderDriverCardPrefix(t *testing.T) {
	h := ParseHeader([]byte{0x00, 0x02, 0x00, 0x00, 0x19, 0x00, 0xFF})
	if !h.IsValid {
		t.Fatalf("IsValid = false, want true")
	}
	if h.DetectedType != FileTypeDriverCard {
		t.Fatalf("DetectedType = %v, want %v", h.DetectedType, FileTypeDriverCard)
	}
}

func TestParseHeaderUnknownSignature(t *testing.T) {
	h := ParseHeader([]byte{0x01, 0x02, 0x03, 0x04})
	if h.IsValid {
		t.Fatalf("IsValid = true, want false")
	}
	if h.InvalidReason != "unknown signature" {
		t.Fatalf("InvalidReason = %q, want %q", h.InvalidReason, "unknown signature")
	}
	if h.DetectedType != FileTypeUnknown {
		t.Fatalf("DetectedType = %v, want %v", h.DetectedType, FileTypeUnknown)
	}
}
