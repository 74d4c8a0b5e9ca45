package asap

import (
	"errors"
	"reflect"
	"testing"
)

const sampleReport = "TH*4*01*~IS*99*Acme~PHA*1234567893*~PAT*1**555*~DSP*~PRE*1801093810*FC0350152*~TP*1~TT*1*7~"

func TestParse_InvalidFormat(t *testing.T) {
	inputs := []string{
		"",
		"garbage",
		"IS*99*Acme~TH*4",
		"TH~IS*99", // header code without the field separator
		" TH*4",
	}
	for _, in := range inputs {
		doc, err := Parse(in)
		if !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidFormat", in, err)
		}
		if doc != nil {
			t.Errorf("Parse(%q) returned a partial document", in)
		}
	}
}

func TestParse_Sample(t *testing.T) {
	doc, err := Parse(sampleReport)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := len(doc.Sections()); got != 8 {
		t.Fatalf("section count = %d, want 8", got)
	}
	wantHeaders := []string{"TH", "IS", "PHA", "PAT", "DSP", "PRE", "TP", "TT"}
	for i, s := range doc.Sections() {
		if s.Header() != wantHeaders[i] {
			t.Errorf("section[%d] header = %q, want %q", i, s.Header(), wantHeaders[i])
		}
	}
}

func TestParse_CollapsesDoubledRecordSeparator(t *testing.T) {
	// A TH09 alternate-delimiter declaration leaves ~~ in the text. The
	// pre-pass collapses it so segmentation yields two fragments, not three.
	doc, err := Parse("TH*1~~IS*2~")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := len(doc.Sections()); got != 2 {
		t.Fatalf("section count = %d, want 2", got)
	}
	if doc.Sections()[0].Header() != "TH" || doc.Sections()[1].Header() != "IS" {
		t.Errorf("headers = %q, %q; want TH, IS", doc.Sections()[0].Header(), doc.Sections()[1].Header())
	}
}

func TestParse_DiscardsNoiseFragments(t *testing.T) {
	// Fragments without a field separator are not sections.
	doc, err := Parse("TH*4~noise~IS*99~\n~")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := len(doc.Sections()); got != 2 {
		t.Fatalf("section count = %d, want 2", got)
	}
}

func TestLookupField(t *testing.T) {
	doc, err := Parse(sampleReport)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tests := []struct {
		addr string
		want string
	}{
		{"TH01", "4"},
		{"PRE02", "FC0350152"},
		{"IS02", "Acme"},
		{"PAT02", ""},         // present but empty
		{"PAT09", MissingValue}, // index beyond the PAT field count
		{"CDI01", MissingValue}, // header absent from the document
		{"th01", MissingValue},  // malformed: lower case
		{"TH", MissingValue},    // malformed: no index
		{"TOOLONG01", MissingValue},
		{"", MissingValue},
	}
	for _, tt := range tests {
		if got := doc.LookupField(tt.addr); got != tt.want {
			t.Errorf("LookupField(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestLookupField_FirstDocumentOrderMatch(t *testing.T) {
	doc, err := Parse("TH*4~PAT*first~PAT*second~")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := doc.LookupField("PAT01"); got != "first" {
		t.Errorf("LookupField(PAT01) = %q, want %q", got, "first")
	}
}

func TestLookupField_SkipsShortSections(t *testing.T) {
	// The first PAT section does not cover index 3; the scan continues to
	// the next PAT section that does.
	doc, err := Parse("TH*4~PAT*a~PAT*x*y*z~")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := doc.LookupField("PAT03"); got != "z" {
		t.Errorf("LookupField(PAT03) = %q, want %q", got, "z")
	}
}

func TestFieldCodeRoundTrip(t *testing.T) {
	// Composing a field code and looking it up must address the same value.
	doc, err := Parse(sampleReport)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for _, s := range doc.Sections() {
		for i := 1; i < s.Len(); i++ {
			want := s.Field(i)
			if got := doc.LookupField(s.FieldCode(i)); got != want {
				// Earlier same-header sections legitimately shadow later
				// ones; the sample has unique headers so this must hold.
				t.Errorf("LookupField(%s) = %q, want %q", s.FieldCode(i), got, want)
			}
		}
	}
}

func TestMissingRequiredSections(t *testing.T) {
	complete, err := Parse(sampleReport)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := complete.MissingRequiredSections(); len(got) != 0 {
		t.Errorf("MissingRequiredSections() = %v, want empty", got)
	}

	sparse, err := Parse("TH*4~IS*99~PAT*1~DSP*1~PAT*2~")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"PHA", "PRE", "TP", "TT"}
	if got := sparse.MissingRequiredSections(); !reflect.DeepEqual(got, want) {
		t.Errorf("MissingRequiredSections() = %v, want %v", got, want)
	}
}

func TestSummarize(t *testing.T) {
	doc, err := Parse("TH*4*01~IS*99*Acme~PHA*1~PAT*1~DSP*1~PRE*1~PAT*2~DSP*2~PRE*2~ZZZ*9~TP*1~TT*1*11~")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sum := doc.Summarize()
	if sum.Version != "4" {
		t.Errorf("Version = %q, want %q", sum.Version, "4")
	}
	if sum.SectionCount != 12 {
		t.Errorf("SectionCount = %d, want 12", sum.SectionCount)
	}
	// Two dispense sub-runs: only the first is sealed.
	if sum.DispenseCount != 1 {
		t.Errorf("DispenseCount = %d, want 1", sum.DispenseCount)
	}
	if len(sum.MissingRequired) != 0 {
		t.Errorf("MissingRequired = %v, want empty", sum.MissingRequired)
	}
	if !reflect.DeepEqual(sum.UnknownHeaders, []string{"ZZZ"}) {
		t.Errorf("UnknownHeaders = %v, want [ZZZ]", sum.UnknownHeaders)
	}
}

func TestParse_DispenseGroupingThroughEnvelope(t *testing.T) {
	// Full-document check of the boundary rule: two patients, each a
	// PAT/DSP/PRE run; only the first group is sealed.
	text := "TH*4*01~IS*99*Acme~PHA*1~PAT*alice~DSP*d1~PRE*p1~PAT*bob~DSP*d2~PRE*p2~TP*1~TT*1*9~"
	doc, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	groups := doc.Dispenses()
	if len(groups) != 1 {
		t.Fatalf("dispense count = %d, want 1", len(groups))
	}
	if got := groups[0].Sections()[0].Field(1); got != "alice" {
		t.Errorf("sealed group PAT01 = %q, want %q", got, "alice")
	}
}
