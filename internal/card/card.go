package card

import (
	"github.com/way-platform/tachoparse/internal/cert"
	"github.com/way-platform/tachoparse/internal/cursor"
	"github.com/way-platform/tachoparse/internal/report"
)

// Summary is every driver-card domain record this module can recover
// from a card image (spec.md §3 `DriverCardSummary`).
type Summary struct {
	ApplicationIdentification *ApplicationIdentification
	DrivingLicence            *DrivingLicenceInfo
	CardIdentification        *Identification
	Events                    []EventRecord
	Faults                    []FaultRecord
	VehiclesUsed              []VehicleUsedRecord
	Places                    []PlaceRecord
	SpecificConditions        []SpecificConditionRecord
	VehicleUnits              []VehicleUnitRecord
}

// CertificateBytes holds the raw Gen1 certificate entries a card image
// carries, ready for [github.com/way-platform/tachoparse/internal/cert]
// (spec.md §4.8 applies only to the Gen1 shape).
type CertificateBytes struct {
	CACertificate   []byte
	CardCertificate []byte
}

// gen1Gen2Schemes is the shared `{Gen1, Gen2}` appendix pairing of
// spec.md §4.7.
func gen1Gen2Schemes(constraint lengthConstraint) []efScheme {
	return []efScheme{
		{label: "Gen1", dataAppendix: 0, sigAppendix: 1, sigLen: 128, dataConstraint: constraint},
		{label: "Gen2", dataAppendix: 2, sigAppendix: 3, sigLen: 64, dataConstraint: constraint},
	}
}

// Parse walks a driver-card image and decodes its domain records
// (spec.md §4.7, §4.10, §4.11).
func Parse(data []byte) (Summary, []report.Part, CertificateBytes) {
	walk := WalkEF(data)
	var parts []report.Part
	parts = append(parts, walk.StructurePart)

	var summary Summary
	var certs CertificateBytes

	if entries, ok := walk.Entries[FileCardIdentification]; ok {
		parts = append(parts, evaluatePart("Card identification", entries, gen1Gen2Schemes(lengthConstraint{exact: lenIdentification}), true))
		if data, ok := firstDataEither(entries); ok {
			if ident, err := unmarshalIdentification(cursor.New(data)); err == nil {
				summary.CardIdentification = &ident
			}
		}
	} else {
		parts = append(parts, report.Part{Name: "Card identification", Status: report.StatusMissing})
	}

	if entries, ok := walk.Entries[FileApplicationIdentification]; ok {
		parts = append(parts, evaluatePart("Application identification", entries, gen1Gen2Schemes(lengthConstraint{min: lenApplicationIdentification}), false))
		if data, ok := firstDataEither(entries); ok && len(data) >= lenApplicationIdentification {
			if appID, err := unmarshalApplicationIdentification(cursor.New(data[:lenApplicationIdentification])); err == nil {
				summary.ApplicationIdentification = &appID
			}
		}
	} else {
		parts = append(parts, report.Part{Name: "Application identification", Status: report.StatusMissing})
	}

	if entries, ok := walk.Entries[FileDrivingLicence]; ok {
		parts = append(parts, evaluatePart("Driving licence", entries, gen1Gen2Schemes(lengthConstraint{exact: lenDrivingLicenceInfo}), true))
		if data, ok := firstDataEither(entries); ok {
			if licence, err := unmarshalDrivingLicenceInfo(cursor.New(data)); err == nil {
				summary.DrivingLicence = &licence
			}
		}
	} else {
		parts = append(parts, report.Part{Name: "Driving licence", Status: report.StatusMissing})
	}

	if entries, ok := walk.Entries[FileEvents]; ok {
		parts = append(parts, evaluatePart("Events", entries, gen1Gen2Schemes(lengthConstraint{recordSize: lenCardEventFaultRecord}), true))
		if data, ok := firstDataEither(entries); ok {
			summary.Events = decodeEvents(data)
		}
	} else {
		parts = append(parts, report.Part{Name: "Events", Status: report.StatusMissing})
	}

	if entries, ok := walk.Entries[FileFaults]; ok {
		parts = append(parts, evaluatePart("Faults", entries, gen1Gen2Schemes(lengthConstraint{recordSize: lenCardEventFaultRecord}), true))
		if data, ok := firstDataEither(entries); ok {
			summary.Faults = decodeFaults(data)
		}
	} else {
		parts = append(parts, report.Part{Name: "Faults", Status: report.StatusMissing})
	}

	if entries, ok := walk.Entries[FileVehiclesUsed]; ok {
		parts = append(parts, evaluatePart("Vehicles used", entries, gen1Gen2Schemes(lengthConstraint{recordSize: lenVehicleUsedRecordGen1, header: 2}), true))
		if data, ok := firstDataEither(entries); ok {
			summary.VehiclesUsed = decodeVehiclesUsed(data)
		}
	} else {
		parts = append(parts, report.Part{Name: "Vehicles used", Status: report.StatusMissing})
	}

	if entries, ok := walk.Entries[FilePlaces]; ok {
		parts = append(parts, evaluatePart("Places", entries, gen1Gen2Schemes(lengthConstraint{recordSize: lenPlaceRecordGen1}), true))
		if data, ok := firstDataEither(entries); ok {
			summary.Places = decodePlaces(data)
		}
	} else {
		parts = append(parts, report.Part{Name: "Places", Status: report.StatusMissing})
	}

	if entries, ok := walk.Entries[FileSpecificConditions]; ok {
		parts = append(parts, evaluatePart("Specific conditions", entries, gen1Gen2Schemes(lengthConstraint{recordSize: lenSpecificConditionRecord}), false))
		if data, ok := firstDataEither(entries); ok {
			summary.SpecificConditions = decodeSpecificConditions(data)
		}
	} else {
		parts = append(parts, report.Part{Name: "Specific conditions", Status: report.StatusMissing})
	}

	var gnssData, fallbackData []byte
	if entries, ok := walk.Entries[FileGNSSPlaces]; ok {
		parts = append(parts, evaluatePart("GNSS places", entries, gen1Gen2Schemes(lengthConstraint{min: 0}), false))
		gnssData, _ = firstDataEither(entries)
	} else {
		parts = append(parts, report.Part{Name: "GNSS places", Status: report.StatusMissing})
	}
	if entries, ok := walk.Entries[FileBorderCrossings]; ok {
		fallbackData, _ = firstDataEither(entries)
	}
	summary.VehicleUnits = ExtractVehicleUnitsUsed(gnssData, fallbackData)

	minorParts := []struct {
		name   string
		fileID uint16
	}{
		{"Current usage", FileCurrentUsage},
		{"Control activity", FileControlActivity},
		{"Card download", FileCardDownload},
		{"Border crossings", FileBorderCrossings},
		{"ICC", FileICC},
		{"IC", FileIC},
	}
	for _, mp := range minorParts {
		if entries, ok := walk.Entries[mp.fileID]; ok {
			parts = append(parts, evaluatePart(mp.name, entries, gen1Gen2Schemes(lengthConstraint{min: 0}), false))
		} else {
			parts = append(parts, report.Part{Name: mp.name, Status: report.StatusMissing})
		}
	}

	_, hasGen2CA := walk.Entries[FileCACertificateGen2]
	_, hasGen2Card := walk.Entries[FileCardCertificateGen2]
	if hasGen2CA || hasGen2Card {
		parts = append(parts, report.Part{Name: "CA certificate", Status: report.StatusValid, Note: "not verified"})
		parts = append(parts, report.Part{Name: "Card certificate", Status: report.StatusValid, Note: "not verified"})
		return summary, parts, certs
	}

	caEntries, hasCA := walk.Entries[FileCACertificateGen1]
	cardEntries, hasCard := walk.Entries[FileCardCertificateGen1]
	if !hasCA || !hasCard {
		if !hasCA {
			parts = append(parts, report.Part{Name: "CA certificate", Status: report.StatusMissing})
		}
		if !hasCard {
			parts = append(parts, report.Part{Name: "Card certificate", Status: report.StatusMissing})
		}
		return summary, parts, certs
	}
	caData, _ := firstData(caEntries, 0)
	cardData, _ := firstData(cardEntries, 0)
	certs.CACertificate = caData
	certs.CardCertificate = cardData
	switch err := cert.VerifyChain(caData, cardData); err {
	case nil:
		parts = append(parts, report.Part{Name: "CA certificate", Status: report.StatusValid})
		parts = append(parts, report.Part{Name: "Card certificate", Status: report.StatusValid})
	case cert.ErrCardCertificateInvalid:
		parts = append(parts, report.Part{Name: "CA certificate", Status: report.StatusValid})
		parts = append(parts, report.Part{Name: "Card certificate", Status: report.StatusInvalid, Note: "Card certificate invalid"})
	default:
		parts = append(parts, report.Part{Name: "CA certificate", Status: report.StatusInvalid, Note: "CA certificate invalid"})
		parts = append(parts, report.Part{Name: "Card certificate", Status: report.StatusInvalid, Note: "CA certificate invalid"})
	}

	return summary, parts, certs
}

// firstDataEither returns the first Gen1 (appendix 0) data entry, or
// else the first Gen2 (appendix 2) one.
func firstDataEither(entries []Entry) ([]byte, bool) {
	if data, ok := firstData(entries, 0); ok {
		return data, true
	}
	return firstData(entries, 2)
}
