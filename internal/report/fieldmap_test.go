package report

import (
	"reflect"
	"testing"

	"github.com/dgallion1/asapgest/internal/asap"
)

func TestMergeFieldMaps_LastWriteWins(t *testing.T) {
	sections := []asap.Section{
		asap.DecodeSection("PAT*first*keep"),
		asap.DecodeSection("PAT*second"),
	}
	values := MergeFieldMaps(sections)
	if got := values.Get("PAT01"); got != "second" {
		t.Errorf("PAT01 = %q, want %q (later section overwrites)", got, "second")
	}
	// The later section did not carry PAT02, so the earlier value survives.
	if got := values.Get("PAT02"); got != "keep" {
		t.Errorf("PAT02 = %q, want %q", got, "keep")
	}
}

func TestFieldValues_GetMissing(t *testing.T) {
	values := MergeFieldMaps([]asap.Section{asap.DecodeSection("TH*4")})
	if got := values.Get("TH09"); got != asap.MissingValue {
		t.Errorf("Get(TH09) = %q, want %q", got, asap.MissingValue)
	}
}

func TestFieldValues_CodesSorted(t *testing.T) {
	values := MergeFieldMaps([]asap.Section{
		asap.DecodeSection("PRE*a*b"),
		asap.DecodeSection("DSP*c"),
	})
	want := []string{"DSP01", "PRE01", "PRE02"}
	if got := values.Codes(); !reflect.DeepEqual(got, want) {
		t.Errorf("Codes() = %v, want %v", got, want)
	}
}

func TestRedact(t *testing.T) {
	values := MergeFieldMaps([]asap.Section{
		asap.DecodeSection("PAT*1*2*3*4*5*6*Doe*John"),
	})
	Redact(values)
	if got := values.Get("PAT07"); got != PHIReplacement {
		t.Errorf("PAT07 = %q, want %q", got, PHIReplacement)
	}
	// Redaction covers the full PHI list even when the document did not
	// populate the address.
	if got := values.Get("PAT17"); got != PHIReplacement {
		t.Errorf("PAT17 = %q, want %q", got, PHIReplacement)
	}
	// Non-PHI patient fields are untouched.
	if got := values.Get("PAT01"); got != "1" {
		t.Errorf("PAT01 = %q, want %q", got, "1")
	}
}

func TestIsPHI(t *testing.T) {
	if !IsPHI("PAT07") || !IsPHI("PAT17") {
		t.Error("PAT07 and PAT17 must be PHI")
	}
	if IsPHI("PAT18") || IsPHI("DSP02") || IsPHI("PAT06") {
		t.Error("PAT18, DSP02, PAT06 must not be PHI")
	}
}
