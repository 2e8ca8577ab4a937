// Package tachoparse parses EU smart-tachograph Annex 1C Appendix 7
// binary download files: Vehicle Unit downloads and Driver Card images.
package tachoparse

import (
	"bytes"
	"fmt"
)

// FileType classifies the top-level shape of a download file.
type FileType string

const (
	FileTypeVU         FileType = "VU"
	FileTypeDriverCard FileType = "DriverCard"
	FileTypeUnknown    FileType = "Unknown"
)

// Generation is the tachograph generation a VU segment or download file
// belongs to.
type Generation string

const (
	GenerationGen1       Generation = "Gen1"
	GenerationGen2V1     Generation = "Gen2v1"
	GenerationGen2V2     Generation = "Gen2v2"
	GenerationGen2V1OrV2 Generation = "Gen2v1OrV2"
	GenerationUnknown    Generation = "Unknown"
)

// Header is the result of classifying a download file's first bytes
// (spec.md §4.3).
type Header struct {
	FileSize                 int
	DetectedType             FileType
	DetectedGeneration       Generation
	IsValid                  bool
	InvalidReason            string
	Signature                [6]byte
	HeaderHex                string
	ServiceID                *uint8
	TREP                     *uint8
	TREPGeneration           Generation
	TREPDataType             string
	DownloadInterfaceVersion string
}

var (
	driverCardPrefix = [6]byte{0x00, 0x02, 0x00, 0x00, 0x19, 0x00}
	vuPrefix         = [6]byte{0x76, 0x21, 0x04, 0x00, 0xCD, 0x00}
)

const headerPeekLen = 32

// classifyTREP maps a TREP byte to its generation, per the disjoint
// sets of spec.md §4.3. `0x24` is intentionally ambiguous between
// Gen2v1 and Gen2v2.
func classifyTREP(trep uint8) (Generation, bool) {
	switch {
	case trep == 0x24:
		return GenerationGen2V1OrV2, true
	case trep >= 0x01 && trep <= 0x05:
		return GenerationGen1, true
	case trep >= 0x21 && trep <= 0x25:
		return GenerationGen2V1, true
	case trep == 0x00 || trep == 0x31 || trep == 0x32 || trep == 0x33 || trep == 0x35:
		return GenerationGen2V2, true
	default:
		return GenerationUnknown, false
	}
}

// ParseHeader classifies a download file from its leading bytes
// (spec.md §4.3).
func ParseHeader(data []byte) Header {
	h := Header{FileSize: len(data)}
	peek := data
	if len(peek) > headerPeekLen {
		peek = peek[:headerPeekLen]
	}
	h.HeaderHex = fmt.Sprintf("%X", peek)
	if len(data) == 0 {
		h.DetectedType = FileTypeUnknown
		h.DetectedGeneration = GenerationUnknown
		h.InvalidReason = "Header (empty)"
		return h
	}

	var sig [6]byte
	copy(sig[:], data)
	h.Signature = sig

	if data[0] == 0x76 {
		sid := uint8(0x76)
		h.ServiceID = &sid
		h.DetectedType = FileTypeVU
		if len(data) < 2 {
			h.DetectedGeneration = GenerationUnknown
			h.InvalidReason = "missing TREP#2"
			return h
		}
		trep := data[1]
		h.TREP = &trep
		gen, known := classifyTREP(trep)
		if !known {
			h.DetectedGeneration = GenerationUnknown
			h.InvalidReason = fmt.Sprintf("unknown TREP#2 0x%02X", trep)
			return h
		}
		h.DetectedGeneration = gen
		h.TREPGeneration = gen
		h.TREPDataType = trepDataType(trep)
		if trep == 0x00 {
			if len(data) < 4 {
				h.InvalidReason = "missing TREP#2"
				return h
			}
			h.DownloadInterfaceVersion = decodeDownloadInterfaceVersion(data[2], data[3])
		}
		h.IsValid = true
		return h
	}

	if bytes.Equal(sig[:], driverCardPrefix[:]) {
		h.DetectedType = FileTypeDriverCard
		h.DetectedGeneration = GenerationUnknown
		h.IsValid = true
		return h
	}

	if bytes.Equal(sig[:], vuPrefix[:]) {
		h.DetectedType = FileTypeVU
		h.DetectedGeneration = GenerationUnknown
		h.IsValid = true
		return h
	}

	h.DetectedType = FileTypeUnknown
	h.DetectedGeneration = GenerationUnknown
	h.InvalidReason = "unknown signature"
	return h
}

// trepDataType maps a TREP byte to the logical part name it belongs
// to (spec.md §3, §6.1, §8 S2). Mirrors internal/vu's partName since
// the VU package's segment-level part naming and the header's
// classification both describe the same TREP table.
func trepDataType(trep uint8) string {
	switch trep {
	case 0x00:
		return "Download interface version"
	case 0x01, 0x21, 0x31:
		return "Overview"
	case 0x02, 0x22, 0x32:
		return "Activities"
	case 0x03, 0x23, 0x33:
		return "Events and faults"
	case 0x04, 0x24:
		return "Detailed speed"
	case 0x05, 0x25, 0x35:
		return "Technical data"
	default:
		return "Unknown"
	}
}

// decodeDownloadInterfaceVersion renders a TREP `0x00` download
// interface version per spec.md §4.3.
func decodeDownloadInterfaceVersion(major, minor byte) string {
	switch {
	case major == 0x01 && minor == 0x01:
		return fmt.Sprintf("gen2_v2 (0x%02X 0x%02X)", major, minor)
	case major == 0x01:
		return fmt.Sprintf("gen2 v? (0x%02X 0x%02X)", major, minor)
	default:
		return fmt.Sprintf("%02X%02X", major, minor)
	}
}
