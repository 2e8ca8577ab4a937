package dd

import (
	"testing"

	"github.com/way-platform/tachoparse/internal/cursor"
)

func TestTimeRealAbsentOutsideWindow(t *testing.T) {
	tr := NewTimeReal(0)
	if !tr.Absent() {
		t.Fatalf("TimeReal(0).Absent() = false, want true")
	}
	tr = NewTimeReal(1_893_456_000 + 1)
	if !tr.Absent() {
		t.Fatalf("TimeReal(future).Absent() = false, want true")
	}
}

func TestTimeRealNotYetSentinel(t *testing.T) {
	tr := NewTimeReal(0xFFFFFFFF)
	if !tr.NotYet {
		t.Fatalf("NotYet = false, want true")
	}
	if !tr.Absent() {
		t.Fatalf("Absent() = false, want true for the not-yet sentinel")
	}
}

func TestTimeRealValidWindow(t *testing.T) {
	tr := NewTimeReal(1_700_000_000)
	if tr.Absent() {
		t.Fatalf("Absent() = true, want false for a plausible timestamp")
	}
}

func TestActivityChangeInfoRoundTrip(t *testing.T) {
	info := ActivityChangeInfo{Slot: 1, DrivingStatus: 0, CardStatus: 0, Activity: 3, Minutes: 510}
	word := info.Encode()
	got := DecodeActivityChangeInfo(word)
	if got != info {
		t.Fatalf("round-trip = %+v, want %+v", got, info)
	}
	if got.Minutes >= 1440 {
		t.Fatalf("Minutes = %d, want < 1440", got.Minutes)
	}
}

func TestFullCardNumberMissing(t *testing.T) {
	missing := FullCardNumber{CardType: 0xFF, IssuingNation: 0xFF, CardNumber: ""}
	if !missing.Missing() {
		t.Fatalf("Missing() = false, want true for all-0xFF card")
	}
	present := FullCardNumber{CardType: 1, IssuingNation: 2, CardNumber: "DRV0001"}
	if present.Missing() {
		t.Fatalf("Missing() = true, want false for a populated card number")
	}
}

func TestUnmarshalFullCardNumber(t *testing.T) {
	data := append([]byte{0x01, 0x0A}, []byte("DRV00001        ")...)
	c := cursor.New(data)
	fcn, err := UnmarshalFullCardNumber(c)
	if err != nil {
		t.Fatalf("UnmarshalFullCardNumber: %v", err)
	}
	if fcn.CardType != 0x01 || fcn.IssuingNation != 0x0A {
		t.Fatalf("fcn = %+v, unexpected header bytes", fcn)
	}
	if fcn.CardNumber != "DRV00001" {
		t.Fatalf("CardNumber = %q, want %q", fcn.CardNumber, "DRV00001")
	}
}

func TestLooksLikeText(t *testing.T) {
	if !LooksLikeText([]byte("ACME Corp"), 3) {
		t.Fatalf("LooksLikeText(%q) = false, want true", "ACME Corp")
	}
	if LooksLikeText([]byte{0x00, 0x00, 0x00}, 1) {
		t.Fatalf("LooksLikeText(all-NUL) = true, want false")
	}
	if LooksLikeText([]byte("-leading dash"), 3) {
		t.Fatalf("LooksLikeText with non-alnum first char = true, want false")
	}
}

func TestLooksLikeDriverCardRecord(t *testing.T) {
	reg := []byte("ABC 1234     ")
	if !LooksLikeDriverCardRecord(0x01, reg) {
		t.Fatalf("LooksLikeDriverCardRecord = false, want true")
	}
	if LooksLikeDriverCardRecord(0xFE, reg) {
		t.Fatalf("LooksLikeDriverCardRecord with implausible type = true, want false")
	}
	if LooksLikeDriverCardRecord(0x01, []byte{0x01, 0x02}) {
		t.Fatalf("LooksLikeDriverCardRecord with non-printable reg bytes = true, want false")
	}
}
