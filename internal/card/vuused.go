package card

import "github.com/way-platform/tachoparse/internal/dd"

const lenVehicleUnitWindow = 10

// plausibleVehicleUnitWindow reports whether a 10-byte window looks
// like a VU-seen record: a plausible TimeReal followed by a
// manufacturer-code byte and a 5-byte device ID whose last four bytes
// are ASCII digits (spec.md §4.11).
func plausibleVehicleUnitWindow(b []byte) (VehicleUnitRecord, bool) {
	if len(b) != lenVehicleUnitWindow {
		return VehicleUnitRecord{}, false
	}
	raw := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	if !dd.LooksLikeTimeReal(raw) {
		return VehicleUnitRecord{}, false
	}
	for _, d := range b[6:10] {
		if d < '0' || d > '9' {
			return VehicleUnitRecord{}, false
		}
	}
	return VehicleUnitRecord{
		Timestamp:        dd.NewTimeReal(raw),
		ManufacturerCode: b[4],
		DeviceID:         string(b[5:10]),
	}, true
}

// ExtractVehicleUnitsUsed recovers the VUs seen by this card. It prefers
// aligned 10-byte windows from the GNSS places EF (`0x0523`, Gen2
// appendix 2); if none are found, it falls back to a sliding byte-by-
// byte scan of the given fallback buffer (spec.md §4.11).
func ExtractVehicleUnitsUsed(gnssPlacesData, fallbackData []byte) []VehicleUnitRecord {
	var out []VehicleUnitRecord
	for pos := 0; pos+lenVehicleUnitWindow <= len(gnssPlacesData); pos += lenVehicleUnitWindow {
		if rec, ok := plausibleVehicleUnitWindow(gnssPlacesData[pos : pos+lenVehicleUnitWindow]); ok {
			out = append(out, rec)
		}
	}
	if len(out) > 0 {
		return out
	}
	pos := 0
	for pos+lenVehicleUnitWindow <= len(fallbackData) {
		if rec, ok := plausibleVehicleUnitWindow(fallbackData[pos : pos+lenVehicleUnitWindow]); ok {
			out = append(out, rec)
			pos += lenVehicleUnitWindow
			continue
		}
		pos++
	}
	return out
}
