package dd

import (
	"strings"

	"github.com/way-platform/tachoparse/internal/cursor"
)

// FullCardNumber is the Appendix 1 `FullCardNumber` type (Data
// Dictionary, Section 2.73): an 18-byte `{cardType, issuingNation,
// cardNumber}` triple, plus a generation tag threaded in by the caller
// when the enclosing record distinguishes Gen1 from Gen2 (spec.md §3).
type FullCardNumber struct {
	CardType       uint8
	IssuingNation  uint8
	CardNumber     string
	CardGeneration uint8 // 0 for Gen1; the wire generation byte for Gen2.
}

// Missing reports whether this FullCardNumber represents "no card
// present", per spec.md §3: cardType and nation are both 0xFF, or the
// card number text is empty or all-0xFF.
func (f FullCardNumber) Missing() bool {
	if f.CardType == 0xFF && f.IssuingNation == 0xFF {
		return true
	}
	// 0xFF bytes decode to U+00FF under Latin-1 and survive the trim.
	if strings.Trim(f.CardNumber, "ÿ") == "" {
		return true
	}
	return false
}

// UnmarshalFullCardNumber reads the 18-byte Gen1 FullCardNumber shape
// from c: 1 byte card type, 1 byte issuing nation, 16 bytes of card
// number text.
func UnmarshalFullCardNumber(c *cursor.Cursor) (FullCardNumber, error) {
	cardType, err := c.ReadU8()
	if err != nil {
		return FullCardNumber{}, err
	}
	nation, err := c.ReadU8()
	if err != nil {
		return FullCardNumber{}, err
	}
	number, err := c.ReadFixedStr(16)
	if err != nil {
		return FullCardNumber{}, err
	}
	return FullCardNumber{CardType: cardType, IssuingNation: nation, CardNumber: number}, nil
}

// UnmarshalFullCardNumberAndGeneration reads the Gen2
// FullCardNumberAndGeneration shape: the 18-byte FullCardNumber followed
// by a 1-byte generation tag (20 bytes total).
func UnmarshalFullCardNumberAndGeneration(c *cursor.Cursor) (FullCardNumber, error) {
	fcn, err := UnmarshalFullCardNumber(c)
	if err != nil {
		return FullCardNumber{}, err
	}
	gen, err := c.ReadU8()
	if err != nil {
		return FullCardNumber{}, err
	}
	fcn.CardGeneration = gen
	return fcn, nil
}

// ExtendedSerialNumber is the Appendix 1 `ExtendedSerialNumber` type
// (Data Dictionary, Section 2.72): a 4-byte serial number, a 2-byte
// month/year, a 1-byte equipment type, and a 1-byte manufacturer code
// (8 bytes total).
type ExtendedSerialNumber struct {
	SerialNumber     uint32
	MonthYear        string // BCD "MMYY"
	EquipmentType    uint8
	ManufacturerCode uint8
}

// UnmarshalExtendedSerialNumber reads an 8-byte ExtendedSerialNumber
// from c.
func UnmarshalExtendedSerialNumber(c *cursor.Cursor) (ExtendedSerialNumber, error) {
	serial, err := c.ReadU32BE()
	if err != nil {
		return ExtendedSerialNumber{}, err
	}
	monthYear, err := c.ReadBcd(2)
	if err != nil {
		return ExtendedSerialNumber{}, err
	}
	equipmentType, err := c.ReadU8()
	if err != nil {
		return ExtendedSerialNumber{}, err
	}
	manufacturerCode, err := c.ReadU8()
	if err != nil {
		return ExtendedSerialNumber{}, err
	}
	return ExtendedSerialNumber{
		SerialNumber:     serial,
		MonthYear:        monthYear,
		EquipmentType:    equipmentType,
		ManufacturerCode: manufacturerCode,
	}, nil
}

// RegistrationNumber is the Appendix 1
// `VehicleRegistrationIdentification` type (Data Dictionary, Section
// 2.166): a 1-byte nation code followed by a 14-byte code-paged string
// (15 bytes total).
type RegistrationNumber struct {
	Nation uint8
	Number string
}

// UnmarshalRegistrationNumber reads a 15-byte RegistrationNumber from c.
func UnmarshalRegistrationNumber(c *cursor.Cursor) (RegistrationNumber, error) {
	nation, err := c.ReadU8()
	if err != nil {
		return RegistrationNumber{}, err
	}
	codePage, err := c.ReadU8()
	if err != nil {
		return RegistrationNumber{}, err
	}
	data, err := c.ReadBytes(13)
	if err != nil {
		return RegistrationNumber{}, err
	}
	return RegistrationNumber{Nation: nation, Number: decodeCodePageText(codePage, data)}, nil
}

// SoftwareIdentification is the Appendix 1 `VuSoftwareIdentification`
// type (Data Dictionary, Section 2.225): a 4-byte version string followed
// by a 4-byte TimeReal installation date (8 bytes total).
type SoftwareIdentification struct {
	Version          string
	InstallationDate TimeReal
}

// UnmarshalSoftwareIdentification reads an 8-byte SoftwareIdentification
// from c.
func UnmarshalSoftwareIdentification(c *cursor.Cursor) (SoftwareIdentification, error) {
	version, err := c.ReadFixedStr(4)
	if err != nil {
		return SoftwareIdentification{}, err
	}
	installDate, err := UnmarshalTimeReal(c)
	if err != nil {
		return SoftwareIdentification{}, err
	}
	return SoftwareIdentification{Version: version, InstallationDate: installDate}, nil
}
