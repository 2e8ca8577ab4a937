// Package vu implements the VU-download side of the parser: the
// TREP-prefixed stream walker, the Gen1/Gen2 structural validators, the
// Gen2 record-array walker, the VU identification locator, and the
// activity reconstructor (spec.md §4.4-§4.6, §4.9).
package vu

import (
	"github.com/way-platform/tachoparse/internal/cursor"
	"github.com/way-platform/tachoparse/internal/dd"
)

// Overview is the Appendix 7 `VuOverview` record: the fixed VU/vehicle
// header plus the variable-length company-lock and control-activity
// arrays that accompany every Overview transfer (Data Dictionary,
// Section 2.2.6.2; spec.md §6.1).
type Overview struct {
	VehicleIdentificationNumber string
	RegistrationNumber          dd.RegistrationNumber
	CurrentDateTime             dd.TimeReal
	DownloadablePeriodBegin     dd.TimeReal
	DownloadablePeriodEnd       dd.TimeReal
	CardSlotsStatus             uint8
	DownloadActivity            DownloadActivityData
	CompanyLocks                []CompanyLock
	ControlActivities           []ControlActivity
}

// DownloadActivityData is the Appendix 1 `VuDownloadActivityData` type:
// the time, card number, and company/workshop name recorded at the last
// download (Data Dictionary, Section 2.179).
type DownloadActivityData struct {
	DownloadingTime       dd.TimeReal
	FullCardNumber        dd.FullCardNumber
	CompanyOrWorkshopName dd.Name
}

// CompanyLock is the Appendix 1 `VuCompanyLocksRecord` type (Data
// Dictionary, Section 2.176).
type CompanyLock struct {
	LockInTime        dd.TimeReal
	LockOutTime       dd.TimeReal
	CompanyName       dd.Name
	CompanyAddress    dd.Address
	CompanyCardNumber dd.FullCardNumber
}

// ControlActivity is the Appendix 1 `VuControlActivityRecord` type (Data
// Dictionary, Section 2.178).
type ControlActivity struct {
	ControlType             uint8
	ControlTime             dd.TimeReal
	ControlCardNumber       dd.FullCardNumber
	DownloadPeriodBeginTime dd.TimeReal
	DownloadPeriodEndTime   dd.TimeReal
}

// ActivitiesDay is the Appendix 1 `VuActivitiesData` record for a single
// calendar day: an odometer reading plus the packed activity-change
// words the reconstructor turns into [ActivitySegment]s (spec.md §4.9).
// CardIWRecords is populated from the Gen1 ACTIVITIES transfer's inline
// `VuCardIWData` section; it is always empty for Gen2, since this
// package does not decode the Gen2 VuCardIWRecordArray (DESIGN.md).
type ActivitiesDay struct {
	DateRaw          dd.TimeReal
	OdometerMidnight uint32
	Changes          []dd.ActivityChangeInfo
	CardIWRecords    []CardIWRecord
}

// EventRecord is the Appendix 1 `VuEventRecord` type (Data Dictionary,
// Section 2.198).
type EventRecord struct {
	EventType                   uint8
	RecordPurpose               uint8
	BeginTime                   dd.TimeReal
	EndTime                     dd.TimeReal
	CardNumberDriverSlotBegin   dd.FullCardNumber
	CardNumberCodriverSlotBegin dd.FullCardNumber
	CardNumberDriverSlotEnd     dd.FullCardNumber
	CardNumberCodriverSlotEnd   dd.FullCardNumber
	SimilarEventsNumber         uint8
}

// FaultRecord is the Appendix 1 `VuFaultRecord` type (Data Dictionary,
// Section 2.201).
type FaultRecord struct {
	FaultType                   uint8
	RecordPurpose               uint8
	BeginTime                   dd.TimeReal
	EndTime                     dd.TimeReal
	CardNumberDriverSlotBegin   dd.FullCardNumber
	CardNumberCodriverSlotBegin dd.FullCardNumber
	CardNumberDriverSlotEnd     dd.FullCardNumber
	CardNumberCodriverSlotEnd   dd.FullCardNumber
}

// DetailedSpeedBlock is the Appendix 1 `VuDetailedSpeedBlock` type: a
// 4-byte start time followed by 120 one-byte speed samples, one per
// second (Data Dictionary, Section 2.182).
type DetailedSpeedBlock struct {
	BeginDate dd.TimeReal
	Speeds    [120]uint8
}

// CalibrationRecord is the Appendix 1 `VuCalibrationRecord` type (Data
// Dictionary, Section 2.174).
type CalibrationRecord struct {
	CalibrationPurpose             uint8
	WorkshopName                   dd.Name
	WorkshopAddress                dd.Address
	WorkshopCardNumber             dd.FullCardNumber
	WorkshopCardExpiryDate         dd.TimeReal
	VehicleIdentificationNumber    string
	RegistrationNumber             dd.RegistrationNumber
	WVehicleCharacteristicConstant uint16
	KConstantOfRecordingEquipment  uint16
	LTyreCircumference             uint16
	TyreSize                       string
	AuthorisedSpeed                uint8
	OldOdometerValue               uint32
	NewOdometerValue               uint32
	OldTimeValue                   dd.TimeReal
	NewTimeValue                   dd.TimeReal
	NextCalibrationDate            dd.TimeReal
}

// lenCalibrationRecord is the fixed Gen1 wire length of a
// [CalibrationRecord] (167 bytes).
const lenCalibrationRecord = 167

// OverspeedControlData is the Appendix 1 `VuOverSpeedingControlData`
// type (Data Dictionary, Section 2.212).
type OverspeedControlData struct {
	LastOverspeedControlTime dd.TimeReal
	FirstOverspeedSince      dd.TimeReal
	NumberOfOverspeedSince   uint8
}

// OverspeedingEventRecord is the Appendix 1 `VuOverSpeedingEventRecord`
// type (Data Dictionary, Section 2.215).
type OverspeedingEventRecord struct {
	EventType                 uint8
	RecordPurpose             uint8
	BeginTime                 dd.TimeReal
	EndTime                   dd.TimeReal
	MaxSpeedValue             uint8
	AverageSpeedValue         uint8
	CardNumberDriverSlotBegin dd.FullCardNumber
	SimilarEventsNumber       uint8
}

// CardIWRecord is the Gen1 `VuCardIWRecordFirstGen` type summarising
// one card-insertion/withdrawal cycle observed by the VU (Appendix 1,
// Data Dictionary Section 2.177; 129 bytes: 36+36+18+4+4+3+1+4+3+19+1).
type CardIWRecord struct {
	HolderSurname        dd.Name
	HolderFirstNames     dd.Name
	FullCardNumber       dd.FullCardNumber
	CardExpiryDate       dd.TimeReal
	CardInsertionTime    dd.TimeReal
	OdometerAtInsertion  uint32
	CardSlotNumber       uint8
	CardWithdrawalTime   dd.TimeReal
	OdometerAtWithdrawal uint32
	PreviousVehicleInfo  PreviousVehicleInfo
	ManualInputFlag      uint8
}

// PreviousVehicleInfo is the Appendix 1 `PreviousVehicleInfo` type (19
// bytes: 15-byte registration number + 4-byte TimeReal).
type PreviousVehicleInfo struct {
	VehicleRegistration dd.RegistrationNumber
	CardWithdrawalTime  dd.TimeReal
}

func unmarshalOverview(c *cursor.Cursor) (Overview, error) {
	if err := c.Skip(194 + 194); err != nil { // member-state + VU certificates
		return Overview{}, err
	}
	vin, err := c.ReadFixedStr(17)
	if err != nil {
		return Overview{}, err
	}
	reg, err := dd.UnmarshalRegistrationNumber(c)
	if err != nil {
		return Overview{}, err
	}
	currentDateTime, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return Overview{}, err
	}
	periodBegin, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return Overview{}, err
	}
	periodEnd, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return Overview{}, err
	}
	slotsStatus, err := c.ReadU8()
	if err != nil {
		return Overview{}, err
	}
	downloadActivity, err := unmarshalDownloadActivityData(c)
	if err != nil {
		return Overview{}, err
	}
	lockCount, err := c.ReadU8()
	if err != nil {
		return Overview{}, err
	}
	locks := make([]CompanyLock, 0, lockCount)
	for i := 0; i < int(lockCount); i++ {
		lock, err := unmarshalCompanyLock(c)
		if err != nil {
			return Overview{}, err
		}
		locks = append(locks, lock)
	}
	controlCount, err := c.ReadU8()
	if err != nil {
		return Overview{}, err
	}
	controls := make([]ControlActivity, 0, controlCount)
	for i := 0; i < int(controlCount); i++ {
		control, err := unmarshalControlActivity(c)
		if err != nil {
			return Overview{}, err
		}
		controls = append(controls, control)
	}
	return Overview{
		VehicleIdentificationNumber: vin,
		RegistrationNumber:          reg,
		CurrentDateTime:             currentDateTime,
		DownloadablePeriodBegin:     periodBegin,
		DownloadablePeriodEnd:       periodEnd,
		CardSlotsStatus:             slotsStatus,
		DownloadActivity:            downloadActivity,
		CompanyLocks:                locks,
		ControlActivities:           controls,
	}, nil
}

func unmarshalDownloadActivityData(c *cursor.Cursor) (DownloadActivityData, error) {
	downloadingTime, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return DownloadActivityData{}, err
	}
	fcn, err := dd.UnmarshalFullCardNumber(c)
	if err != nil {
		return DownloadActivityData{}, err
	}
	name, err := dd.UnmarshalName(c)
	if err != nil {
		return DownloadActivityData{}, err
	}
	return DownloadActivityData{DownloadingTime: downloadingTime, FullCardNumber: fcn, CompanyOrWorkshopName: name}, nil
}

func unmarshalCompanyLock(c *cursor.Cursor) (CompanyLock, error) {
	lockIn, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return CompanyLock{}, err
	}
	lockOut, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return CompanyLock{}, err
	}
	name, err := dd.UnmarshalName(c)
	if err != nil {
		return CompanyLock{}, err
	}
	address, err := dd.UnmarshalAddress(c)
	if err != nil {
		return CompanyLock{}, err
	}
	cardNumber, err := dd.UnmarshalFullCardNumber(c)
	if err != nil {
		return CompanyLock{}, err
	}
	return CompanyLock{LockInTime: lockIn, LockOutTime: lockOut, CompanyName: name, CompanyAddress: address, CompanyCardNumber: cardNumber}, nil
}

func unmarshalControlActivity(c *cursor.Cursor) (ControlActivity, error) {
	controlType, err := c.ReadU8()
	if err != nil {
		return ControlActivity{}, err
	}
	controlTime, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return ControlActivity{}, err
	}
	cardNumber, err := dd.UnmarshalFullCardNumber(c)
	if err != nil {
		return ControlActivity{}, err
	}
	periodBegin, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return ControlActivity{}, err
	}
	periodEnd, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return ControlActivity{}, err
	}
	return ControlActivity{
		ControlType:             controlType,
		ControlTime:             controlTime,
		ControlCardNumber:       cardNumber,
		DownloadPeriodBeginTime: periodBegin,
		DownloadPeriodEndTime:   periodEnd,
	}, nil
}

func unmarshalActivitiesDay(c *cursor.Cursor) (ActivitiesDay, error) {
	dateRaw, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return ActivitiesDay{}, err
	}
	odometer, err := c.ReadU24BE()
	if err != nil {
		return ActivitiesDay{}, err
	}
	count, err := c.ReadU16BE()
	if err != nil {
		return ActivitiesDay{}, err
	}
	changes := make([]dd.ActivityChangeInfo, 0, count)
	for i := 0; i < int(count); i++ {
		change, err := dd.UnmarshalActivityChangeInfo(c)
		if err != nil {
			return ActivitiesDay{}, err
		}
		changes = append(changes, change)
	}
	return ActivitiesDay{DateRaw: dateRaw, OdometerMidnight: odometer, Changes: changes}, nil
}

func unmarshalEventRecord(c *cursor.Cursor) (EventRecord, error) {
	eventType, err := c.ReadU8()
	if err != nil {
		return EventRecord{}, err
	}
	purpose, err := c.ReadU8()
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
	driverBegin, err := dd.UnmarshalFullCardNumber(c)
	if err != nil {
		return EventRecord{}, err
	}
	codriverBegin, err := dd.UnmarshalFullCardNumber(c)
	if err != nil {
		return EventRecord{}, err
	}
	driverEnd, err := dd.UnmarshalFullCardNumber(c)
	if err != nil {
		return EventRecord{}, err
	}
	codriverEnd, err := dd.UnmarshalFullCardNumber(c)
	if err != nil {
		return EventRecord{}, err
	}
	similar, err := c.ReadU8()
	if err != nil {
		return EventRecord{}, err
	}
	return EventRecord{
		EventType:                   eventType,
		RecordPurpose:               purpose,
		BeginTime:                   begin,
		EndTime:                     end,
		CardNumberDriverSlotBegin:   driverBegin,
		CardNumberCodriverSlotBegin: codriverBegin,
		CardNumberDriverSlotEnd:     driverEnd,
		CardNumberCodriverSlotEnd:   codriverEnd,
		SimilarEventsNumber:         similar,
	}, nil
}

func unmarshalFaultRecord(c *cursor.Cursor) (FaultRecord, error) {
	faultType, err := c.ReadU8()
	if err != nil {
		return FaultRecord{}, err
	}
	purpose, err := c.ReadU8()
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
	driverBegin, err := dd.UnmarshalFullCardNumber(c)
	if err != nil {
		return FaultRecord{}, err
	}
	codriverBegin, err := dd.UnmarshalFullCardNumber(c)
	if err != nil {
		return FaultRecord{}, err
	}
	driverEnd, err := dd.UnmarshalFullCardNumber(c)
	if err != nil {
		return FaultRecord{}, err
	}
	codriverEnd, err := dd.UnmarshalFullCardNumber(c)
	if err != nil {
		return FaultRecord{}, err
	}
	return FaultRecord{
		FaultType:                   faultType,
		RecordPurpose:               purpose,
		BeginTime:                   begin,
		EndTime:                     end,
		CardNumberDriverSlotBegin:   driverBegin,
		CardNumberCodriverSlotBegin: codriverBegin,
		CardNumberDriverSlotEnd:     driverEnd,
		CardNumberCodriverSlotEnd:   codriverEnd,
	}, nil
}

func unmarshalDetailedSpeedBlock(c *cursor.Cursor) (DetailedSpeedBlock, error) {
	begin, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return DetailedSpeedBlock{}, err
	}
	samples, err := c.ReadBytes(120)
	if err != nil {
		return DetailedSpeedBlock{}, err
	}
	var block DetailedSpeedBlock
	block.BeginDate = begin
	copy(block.Speeds[:], samples)
	return block, nil
}

func unmarshalCalibrationRecord(c *cursor.Cursor) (CalibrationRecord, error) {
	purpose, err := c.ReadU8()
	if err != nil {
		return CalibrationRecord{}, err
	}
	workshopName, err := dd.UnmarshalName(c)
	if err != nil {
		return CalibrationRecord{}, err
	}
	workshopAddress, err := dd.UnmarshalAddress(c)
	if err != nil {
		return CalibrationRecord{}, err
	}
	workshopCard, err := dd.UnmarshalFullCardNumber(c)
	if err != nil {
		return CalibrationRecord{}, err
	}
	expiryDate, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return CalibrationRecord{}, err
	}
	vin, err := c.ReadFixedStr(17)
	if err != nil {
		return CalibrationRecord{}, err
	}
	reg, err := dd.UnmarshalRegistrationNumber(c)
	if err != nil {
		return CalibrationRecord{}, err
	}
	w, err := c.ReadU16BE()
	if err != nil {
		return CalibrationRecord{}, err
	}
	k, err := c.ReadU16BE()
	if err != nil {
		return CalibrationRecord{}, err
	}
	l, err := c.ReadU16BE()
	if err != nil {
		return CalibrationRecord{}, err
	}
	tyreSize, err := c.ReadFixedStr(15)
	if err != nil {
		return CalibrationRecord{}, err
	}
	authorisedSpeed, err := c.ReadU8()
	if err != nil {
		return CalibrationRecord{}, err
	}
	oldOdometer, err := c.ReadU24BE()
	if err != nil {
		return CalibrationRecord{}, err
	}
	newOdometer, err := c.ReadU24BE()
	if err != nil {
		return CalibrationRecord{}, err
	}
	oldTime, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return CalibrationRecord{}, err
	}
	newTime, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return CalibrationRecord{}, err
	}
	nextCalibration, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return CalibrationRecord{}, err
	}
	return CalibrationRecord{
		CalibrationPurpose:             purpose,
		WorkshopName:                   workshopName,
		WorkshopAddress:                workshopAddress,
		WorkshopCardNumber:             workshopCard,
		WorkshopCardExpiryDate:         expiryDate,
		VehicleIdentificationNumber:    vin,
		RegistrationNumber:             reg,
		WVehicleCharacteristicConstant: w,
		KConstantOfRecordingEquipment:  k,
		LTyreCircumference:             l,
		TyreSize:                       tyreSize,
		AuthorisedSpeed:                authorisedSpeed,
		OldOdometerValue:               oldOdometer,
		NewOdometerValue:               newOdometer,
		OldTimeValue:                   oldTime,
		NewTimeValue:                   newTime,
		NextCalibrationDate:            nextCalibration,
	}, nil
}

func unmarshalOverspeedControlData(c *cursor.Cursor) (OverspeedControlData, error) {
	last, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return OverspeedControlData{}, err
	}
	first, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return OverspeedControlData{}, err
	}
	number, err := c.ReadU8()
	if err != nil {
		return OverspeedControlData{}, err
	}
	return OverspeedControlData{LastOverspeedControlTime: last, FirstOverspeedSince: first, NumberOfOverspeedSince: number}, nil
}

func unmarshalOverspeedingEventRecord(c *cursor.Cursor) (OverspeedingEventRecord, error) {
	eventType, err := c.ReadU8()
	if err != nil {
		return OverspeedingEventRecord{}, err
	}
	purpose, err := c.ReadU8()
	if err != nil {
		return OverspeedingEventRecord{}, err
	}
	begin, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return OverspeedingEventRecord{}, err
	}
	end, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return OverspeedingEventRecord{}, err
	}
	maxSpeed, err := c.ReadU8()
	if err != nil {
		return OverspeedingEventRecord{}, err
	}
	avgSpeed, err := c.ReadU8()
	if err != nil {
		return OverspeedingEventRecord{}, err
	}
	driver, err := dd.UnmarshalFullCardNumber(c)
	if err != nil {
		return OverspeedingEventRecord{}, err
	}
	similar, err := c.ReadU8()
	if err != nil {
		return OverspeedingEventRecord{}, err
	}
	return OverspeedingEventRecord{
		EventType:                 eventType,
		RecordPurpose:             purpose,
		BeginTime:                 begin,
		EndTime:                   end,
		MaxSpeedValue:             maxSpeed,
		AverageSpeedValue:         avgSpeed,
		CardNumberDriverSlotBegin: driver,
		SimilarEventsNumber:       similar,
	}, nil
}

func unmarshalCardIWRecord(c *cursor.Cursor) (CardIWRecord, error) {
	surname, err := dd.UnmarshalName(c)
	if err != nil {
		return CardIWRecord{}, err
	}
	firstNames, err := dd.UnmarshalName(c)
	if err != nil {
		return CardIWRecord{}, err
	}
	fcn, err := dd.UnmarshalFullCardNumber(c)
	if err != nil {
		return CardIWRecord{}, err
	}
	expiry, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return CardIWRecord{}, err
	}
	insertion, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return CardIWRecord{}, err
	}
	odoIn, err := c.ReadU24BE()
	if err != nil {
		return CardIWRecord{}, err
	}
	slot, err := c.ReadU8()
	if err != nil {
		return CardIWRecord{}, err
	}
	withdrawal, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return CardIWRecord{}, err
	}
	odoOut, err := c.ReadU24BE()
	if err != nil {
		return CardIWRecord{}, err
	}
	previousVehicle, err := unmarshalPreviousVehicleInfo(c)
	if err != nil {
		return CardIWRecord{}, err
	}
	manualInput, err := c.ReadU8()
	if err != nil {
		return CardIWRecord{}, err
	}
	return CardIWRecord{
		HolderSurname:        surname,
		HolderFirstNames:     firstNames,
		FullCardNumber:       fcn,
		CardExpiryDate:       expiry,
		CardInsertionTime:    insertion,
		OdometerAtInsertion:  odoIn,
		CardSlotNumber:       slot,
		CardWithdrawalTime:   withdrawal,
		OdometerAtWithdrawal: odoOut,
		PreviousVehicleInfo:  previousVehicle,
		ManualInputFlag:      manualInput,
	}, nil
}

func unmarshalPreviousVehicleInfo(c *cursor.Cursor) (PreviousVehicleInfo, error) {
	reg, err := dd.UnmarshalRegistrationNumber(c)
	if err != nil {
		return PreviousVehicleInfo{}, err
	}
	withdrawal, err := dd.UnmarshalTimeReal(c)
	if err != nil {
		return PreviousVehicleInfo{}, err
	}
	return PreviousVehicleInfo{VehicleRegistration: reg, CardWithdrawalTime: withdrawal}, nil
}

// lenCardIWRecordGen1 is the fixed wire length of [CardIWRecord]
// (36+36+18+4+4+3+1+4+3+19+1 = 129 bytes, per Appendix 1 and teacher's
// internal/vu/activities.go).
const lenCardIWRecordGen1 = 129

// lenPlaceDailyWorkPeriodRecordGen1 and lenActivitiesSpecificConditionRecord
// are the fixed Gen1 wire lengths of the VuPlaceDailyWorkPeriodRecordFirstGen
// (18-byte FullCardNumber + 10-byte PlaceRecordFirstGen) and
// SpecificConditionRecord (4-byte TimeReal + 1-byte type) sections that
// follow the activity changes in a `VuActivitiesData` transfer value
// (teacher's internal/vu/activities.go). Neither carries a field on
// spec.md §3's ActivityDay shape, so these sections are structurally
// skipped only.
const (
	lenPlaceDailyWorkPeriodRecordGen1    = 28
	lenActivitiesSpecificConditionRecord = 5
)
