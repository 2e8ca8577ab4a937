// Package card implements the driver-card side of the parser: the
// elementary-file walker, the Gen1/Gen2 scheme selection per logical
// part, the card record decoders, and the VU-seen fallback scanner
// (spec.md §4.7, §4.10, §4.11).
package card

import (
	"github.com/way-platform/tachoparse/internal/cursor"
	"github.com/way-platform/tachoparse/internal/dd"
)

// Identification is the Appendix 1 `CardIdentification` +
// `DriverCardHolderIdentification` combination decoded from EF
// Identification (`0x0520`), Data Dictionary Sections 2.24 and 2.62.
type Identification struct {
	IssuingMemberState   uint8
	DriverIdentification string
	ReplacementIndex     string
	RenewalIndex         string
	IssuingAuthorityName dd.Name
	IssueDate            dd.TimeReal
	ValidityBegin        dd.TimeReal
	ExpiryDate           dd.TimeReal
	HolderSurname        dd.Name
	HolderFirstNames     dd.Name
	HolderBirthDate      string
	PreferredLanguage    string
}

// lenIdentification is the fixed wire length of [Identification] (65 +
// 78 bytes, per the teacher's documented layout).
const lenIdentification = 143

func unmarshalIdentification(c *cursor.Cursor) (Identification, error) {
	nation, err := c.ReadU8()
	if err != nil {
		return Identification{}, err
	}
	driverID, err := c.ReadFixedStr(14)
	if err != nil {
		return Identification{}, err
	}
	replacement, err := c.ReadFixedStr(1)
	if err != nil {
		return Identification{}, err
	}
	renewal, err := c.ReadFixedStr(1)
	if err != nil {
		return Identification{}, err
	}
	authorityName, err := dd.UnmarshalName(c)
	if err != nil {
		return Identification{}, err
	}
	issueDate, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return Identification{}, err
	}
	validityBegin, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return Identification{}, err
	}
	expiryDate, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return Identification{}, err
	}
	surname, err := dd.UnmarshalName(c)
	if err != nil {
		return Identification{}, err
	}
	firstNames, err := dd.UnmarshalName(c)
	if err != nil {
		return Identification{}, err
	}
	birthDate, err := c.ReadFixedStr(4)
	if err != nil {
		return Identification{}, err
	}
	language, err := c.ReadFixedStr(2)
	if err != nil {
		return Identification{}, err
	}
	return Identification{
		IssuingMemberState:   nation,
		DriverIdentification: driverID,
		ReplacementIndex:     replacement,
		RenewalIndex:         renewal,
		IssuingAuthorityName: authorityName,
		IssueDate:            issueDate,
		ValidityBegin:        validityBegin,
		ExpiryDate:           expiryDate,
		HolderSurname:        surname,
		HolderFirstNames:     firstNames,
		HolderBirthDate:      birthDate,
		PreferredLanguage:    language,
	}, nil
}

// ApplicationIdentification is the Appendix 1 `ApplicationIdentification`
// type decoded from EF Application_Identification (`0x0501`), Data
// Dictionary Section 2.2 (Gen1 shape, 10 bytes).
type ApplicationIdentification struct {
	TypeOfTachographCardID  uint8
	CardStructureVersion    string
	NoOfEventsPerType       uint8
	NoOfFaultsPerType       uint8
	ActivityStructureLength uint16
	NoOfCardVehicleRecords  uint16
	NoOfCardPlaceRecords    uint8
}

const lenApplicationIdentification = 10

func unmarshalApplicationIdentification(c *cursor.Cursor) (ApplicationIdentification, error) {
	cardType, err := c.ReadU8()
	if err != nil {
		return ApplicationIdentification{}, err
	}
	structureVersion, err := c.ReadBcd(2)
	if err != nil {
		return ApplicationIdentification{}, err
	}
	eventsPerType, err := c.ReadU8()
	if err != nil {
		return ApplicationIdentification{}, err
	}
	faultsPerType, err := c.ReadU8()
	if err != nil {
		return ApplicationIdentification{}, err
	}
	activityLength, err := c.ReadU16BE()
	if err != nil {
		return ApplicationIdentification{}, err
	}
	vehicleRecords, err := c.ReadU16BE()
	if err != nil {
		return ApplicationIdentification{}, err
	}
	placeRecords, err := c.ReadU8()
	if err != nil {
		return ApplicationIdentification{}, err
	}
	return ApplicationIdentification{
		TypeOfTachographCardID:  cardType,
		CardStructureVersion:    structureVersion,
		NoOfEventsPerType:       eventsPerType,
		NoOfFaultsPerType:       faultsPerType,
		ActivityStructureLength: activityLength,
		NoOfCardVehicleRecords:  vehicleRecords,
		NoOfCardPlaceRecords:    placeRecords,
	}, nil
}

// DrivingLicenceInfo is the Appendix 1 `CardDrivingLicenceInformation`
// type decoded from EF Driving_Licence_Info (`0x0521`), Data Dictionary
// Section 2.18 (36-byte issuing authority name + 1-byte nation + 36-byte
// licence number, 73 bytes).
type DrivingLicenceInfo struct {
	IssuingAuthority dd.Name
	IssuingNation    uint8
	LicenceNumber    dd.Name
}

const lenDrivingLicenceInfo = 73

func unmarshalDrivingLicenceInfo(c *cursor.Cursor) (DrivingLicenceInfo, error) {
	authority, err := dd.UnmarshalName(c)
	if err != nil {
		return DrivingLicenceInfo{}, err
	}
	nation, err := c.ReadU8()
	if err != nil {
		return DrivingLicenceInfo{}, err
	}
	number, err := dd.UnmarshalName(c)
	if err != nil {
		return DrivingLicenceInfo{}, err
	}
	return DrivingLicenceInfo{IssuingAuthority: authority, IssuingNation: nation, LicenceNumber: number}, nil
}

// EventRecord is the Appendix 1 `CardEventRecord` type, Data Dictionary
// Section 2.19 (24 bytes).
type EventRecord struct {
	EventType           uint8
	BeginTime           dd.TimeReal
	EndTime             dd.TimeReal
	VehicleRegistration dd.RegistrationNumber
}

const lenCardEventFaultRecord = 24

func unmarshalCardEventRecord(c *cursor.Cursor) (EventRecord, error) {
	eventType, err := c.ReadU8()
	if err != nil {
		return EventRecord{}, err
	}
	begin, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return EventRecord{}, err
	}
	end, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return EventRecord{}, err
	}
	reg, err := dd.UnmarshalRegistrationNumber(c)
	if err != nil {
		return EventRecord{}, err
	}
	return EventRecord{EventType: eventType, BeginTime: begin, EndTime: end, VehicleRegistration: reg}, nil
}

// FaultRecord is the Appendix 1 `CardFaultRecord` type, Data Dictionary
// Section 2.20 (24 bytes; the same shape as [EventRecord]).
type FaultRecord struct {
	FaultType           uint8
	BeginTime           dd.TimeReal
	EndTime             dd.TimeReal
	VehicleRegistration dd.RegistrationNumber
}

func unmarshalCardFaultRecord(c *cursor.Cursor) (FaultRecord, error) {
	faultType, err := c.ReadU8()
	if err != nil {
		return FaultRecord{}, err
	}
	begin, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return FaultRecord{}, err
	}
	end, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return FaultRecord{}, err
	}
	reg, err := dd.UnmarshalRegistrationNumber(c)
	if err != nil {
		return FaultRecord{}, err
	}
	return FaultRecord{FaultType: faultType, BeginTime: begin, EndTime: end, VehicleRegistration: reg}, nil
}

// VehicleUsedRecord is the Appendix 1 `CardVehicleRecord` type, Data
// Dictionary Section 2.30 (Gen1 shape, 31 bytes).
type VehicleUsedRecord struct {
	OdometerBegin      uint32
	OdometerEnd        uint32
	FirstUse           dd.TimeReal
	LastUse            dd.TimeReal
	Registration       dd.RegistrationNumber
	VuDataBlockCounter uint16
}

const lenVehicleUsedRecordGen1 = 31
const lenVehicleUsedRecordGen2 = 48

func unmarshalVehicleUsedRecord(c *cursor.Cursor) (VehicleUsedRecord, error) {
	odometerBegin, err := c.ReadU24BE()
	if err != nil {
		return VehicleUsedRecord{}, err
	}
	odometerEnd, err := c.ReadU24BE()
	if err != nil {
		return VehicleUsedRecord{}, err
	}
	firstUse, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return VehicleUsedRecord{}, err
	}
	lastUse, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return VehicleUsedRecord{}, err
	}
	registration, err := dd.UnmarshalRegistrationNumber(c)
	if err != nil {
		return VehicleUsedRecord{}, err
	}
	counter, err := c.ReadU16BE()
	if err != nil {
		return VehicleUsedRecord{}, err
	}
	return VehicleUsedRecord{
		OdometerBegin:      odometerBegin,
		OdometerEnd:        odometerEnd,
		FirstUse:           firstUse,
		LastUse:            lastUse,
		Registration:       registration,
		VuDataBlockCounter: counter,
	}, nil
}

// PlaceRecord is the Appendix 1 `PlaceRecord` type, Data Dictionary
// Section 2.117: a 10-byte Gen1 shape, optionally extended to 21 bytes
// with an embedded GNSS position (spec.md §4.10).
type PlaceRecord struct {
	EntryTime              dd.TimeReal
	EntryTypeOfActivity    uint8
	DailyWorkPeriodCountry uint8
	DailyWorkPeriodRegion  uint8
	OdometerValue          uint32
	GNSS                   *GNSSPosition
}

// GNSSPosition is the 11-byte `GNSSPlaceRecord` extension appended to a
// Gen2 place record.
type GNSSPosition struct {
	Timestamp dd.TimeReal
	Accuracy  uint8
	Latitude  int32
	Longitude int32
}

const lenPlaceRecordGen1 = 10
const lenPlaceRecordGen2 = 21

func unmarshalPlaceRecord(c *cursor.Cursor, withGNSS bool) (PlaceRecord, error) {
	entryTime, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return PlaceRecord{}, err
	}
	activity, err := c.ReadU8()
	if err != nil {
		return PlaceRecord{}, err
	}
	country, err := c.ReadU8()
	if err != nil {
		return PlaceRecord{}, err
	}
	region, err := c.ReadU8()
	if err != nil {
		return PlaceRecord{}, err
	}
	odometer, err := c.ReadU24BE()
	if err != nil {
		return PlaceRecord{}, err
	}
	record := PlaceRecord{
		EntryTime:              entryTime,
		EntryTypeOfActivity:    activity,
		DailyWorkPeriodCountry: country,
		DailyWorkPeriodRegion:  region,
		OdometerValue:          odometer,
	}
	if withGNSS {
		gnss, err := unmarshalGNSSPosition(c)
		if err != nil {
			return PlaceRecord{}, err
		}
		record.GNSS = &gnss
	}
	return record, nil
}

func unmarshalGNSSPosition(c *cursor.Cursor) (GNSSPosition, error) {
	timestamp, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return GNSSPosition{}, err
	}
	accuracy, err := c.ReadU8()
	if err != nil {
		return GNSSPosition{}, err
	}
	latBytes, err := c.ReadBytes(3)
	if err != nil {
		return GNSSPosition{}, err
	}
	lonBytes, err := c.ReadBytes(3)
	if err != nil {
		return GNSSPosition{}, err
	}
	return GNSSPosition{
		Timestamp: timestamp,
		Accuracy:  accuracy,
		Latitude:  sign24(latBytes),
		Longitude: sign24(lonBytes),
	}, nil
}

// sign24 sign-extends a 3-byte big-endian two's-complement integer.
func sign24(b []byte) int32 {
	v := int32(b[0])<<16 | int32(b[1])<<8 | int32(b[2])
	if b[0]&0x80 != 0 {
		v -= 1 << 24
	}
	return v
}

// SpecificConditionRecord is the Appendix 1 `SpecificConditionRecord`
// type, Data Dictionary Section 2.154 (5 bytes).
type SpecificConditionRecord struct {
	EntryTime     dd.TimeReal
	ConditionType uint8
}

const lenSpecificConditionRecord = 5

func unmarshalSpecificConditionRecord(c *cursor.Cursor) (SpecificConditionRecord, error) {
	entryTime, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return SpecificConditionRecord{}, err
	}
	conditionType, err := c.ReadU8()
	if err != nil {
		return SpecificConditionRecord{}, err
	}
	return SpecificConditionRecord{EntryTime: entryTime, ConditionType: conditionType}, nil
}

// VehicleUnitRecord is a VU seen by the card, recovered either from the
// GNSS places EF or the fallback scan of spec.md §4.11.
type VehicleUnitRecord struct {
	Timestamp        dd.TimeReal
	ManufacturerCode uint8
	DeviceID         string
}
