package dd

import "github.com/way-platform/tachoparse/internal/cursor"

// VuIdentification is the Appendix 1 `VuIdentification` type (Data
// Dictionary, Section 2.205).
//
// Binary layout (Generation 1, fixed length 116 bytes):
//
//	manufacturerName    Name     36 bytes
//	manufacturerAddress Address  36 bytes
//	partNumber          IA5      16 bytes
//	serialNumber        ESN       8 bytes
//	softwareIdentification        8 bytes
//	manufacturingDate   TimeReal  4 bytes
//	approvalNumber      IA5       8 bytes
type VuIdentification struct {
	ManufacturerName    Name
	ManufacturerAddress Address
	PartNumber          string
	SerialNumber        ExtendedSerialNumber
	Software            SoftwareIdentification
	ManufacturingDate   TimeReal
	ApprovalNumber      string
}

// LenVuIdentificationGen1 is the fixed wire length of a Gen1
// VuIdentification block.
const LenVuIdentificationGen1 = 116

// UnmarshalVuIdentification reads a Gen1-shaped VuIdentification (116
// bytes) from c.
func UnmarshalVuIdentification(c *cursor.Cursor) (VuIdentification, error) {
	name, err := UnmarshalName(c)
	if err != nil {
		return VuIdentification{}, err
	}
	address, err := UnmarshalAddress(c)
	if err != nil {
		return VuIdentification{}, err
	}
	partNumber, err := c.ReadFixedStr(16)
	if err != nil {
		return VuIdentification{}, err
	}
	serial, err := UnmarshalExtendedSerialNumber(c)
	if err != nil {
		return VuIdentification{}, err
	}
	software, err := UnmarshalSoftwareIdentification(c)
	if err != nil {
		return VuIdentification{}, err
	}
	manufacturingDate, err := UnmarshalTimeReal(c)
	if err != nil {
		return VuIdentification{}, err
	}
	approvalNumber, err := c.ReadFixedStr(8)
	if err != nil {
		return VuIdentification{}, err
	}
	return VuIdentification{
		ManufacturerName:    name,
		ManufacturerAddress: address,
		PartNumber:          partNumber,
		SerialNumber:        serial,
		Software:            software,
		ManufacturingDate:   manufacturingDate,
		ApprovalNumber:      approvalNumber,
	}, nil
}

// LooksLikeVuIdentification reports whether a decoded VuIdentification's
// text fields plausibly look like real manufacturer data, per spec.md
// §4.6 step 4: the manufacturer name, manufacturer address, part number
// and approval number must each pass [LooksLikeText].
func LooksLikeVuIdentification(v VuIdentification) bool {
	return LooksLikeText([]byte(v.ManufacturerName.Text), 3) &&
		LooksLikeText([]byte(v.ManufacturerAddress.Text), 3) &&
		LooksLikeText([]byte(v.PartNumber), 2) &&
		LooksLikeText([]byte(v.ApprovalNumber), 1)
}
