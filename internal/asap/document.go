package asap

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidFormat is returned by Parse when the input does not begin with
// the transaction header marker. It is the only fatal condition in the
// package; every other irregularity is tolerated and surfaced as data.
var ErrInvalidFormat = errors.New("asap: input does not begin with a transaction header")

// verificationHeader is the literal the first record must start with.
const verificationHeader = "TH" + FieldSep

// KnownHeaders is the declared ASAP section vocabulary. Decoding does not
// enforce it; it is consulted only when summarizing, so variant documents
// from exchange partners still parse.
var KnownHeaders = map[string]bool{
	"TH":  true,
	"IS":  true,
	"PHA": true,
	"PAT": true,
	"DSP": true,
	"PRE": true,
	"CDI": true,
	"AIR": true,
	"TP":  true,
	"TT":  true,
}

// RequiredHeaders lists the sections every complete report must carry at
// least once.
var RequiredHeaders = []string{"TH", "IS", "PHA", "PAT", "DSP", "PRE", "TP", "TT"}

// fieldCodeRe splits an address like TH03 or AIR12 into header and index.
var fieldCodeRe = regexp.MustCompile(`^([A-Z]{2,3})([0-9]{1,2})$`)

// Document is a fully parsed ASAP report: the ordered section sequence and
// the dispense groups derived from it. A Document is built once by Parse and
// never mutated, so concurrent reads need no locking.
type Document struct {
	sections  []Section
	dispenses []DispenseGroup
}

// Parse builds a Document from a complete report text. It fails only with
// ErrInvalidFormat, when the text does not start with the TH* marker; in
// that case no partial document is returned.
func Parse(text string) (*Document, error) {
	if !strings.HasPrefix(text, verificationHeader) {
		return nil, ErrInvalidFormat
	}
	sections := decode(segment(text))
	return &Document{
		sections:  sections,
		dispenses: groupDispenses(sections),
	}, nil
}

// segment splits report text into section fragments. A TH09 alternate
// delimiter declaration leaves a doubled record separator in the text, so a
// pre-pass collapses ~~ to ~ before splitting; the declared delimiters
// themselves are not honored (custom delimiters are unsupported). Fragments
// containing no field separator are noise and are dropped.
func segment(text string) []string {
	text = strings.ReplaceAll(text, RecordSep+RecordSep, RecordSep)
	var fragments []string
	for _, f := range strings.Split(text, RecordSep) {
		if strings.Contains(f, FieldSep) {
			fragments = append(fragments, f)
		}
	}
	return fragments
}

func decode(fragments []string) []Section {
	sections := make([]Section, 0, len(fragments))
	for _, f := range fragments {
		sections = append(sections, DecodeSection(f))
	}
	return sections
}

// Sections returns the document's sections in original file order.
func (d *Document) Sections() []Section {
	out := make([]Section, len(d.sections))
	copy(out, d.sections)
	return out
}

// Dispenses returns the derived dispense groups. See groupDispenses for the
// boundary rule and the unsealed trailing group.
func (d *Document) Dispenses() []DispenseGroup {
	out := make([]DispenseGroup, len(d.dispenses))
	copy(out, d.dispenses)
	return out
}

// MissingRequiredSections returns the required headers that appear nowhere
// in the document, in RequiredHeaders order. The check is presence-only;
// repeats do not matter. An empty result means the report is structurally
// complete.
func (d *Document) MissingRequiredSections() []string {
	present := make(map[string]bool, len(d.sections))
	for _, s := range d.sections {
		present[s.header] = true
	}
	missing := []string{}
	for _, h := range RequiredHeaders {
		if !present[h] {
			missing = append(missing, h)
		}
	}
	return missing
}

// LookupField resolves a field address like PRE02 against the document. It
// scans sections in document order and returns the value from the first
// section whose header matches and whose field list covers the parsed index.
// Any miss, including a malformed address, yields MissingValue; it never
// fails.
func (d *Document) LookupField(addr string) string {
	m := fieldCodeRe.FindStringSubmatch(addr)
	if m == nil {
		return MissingValue
	}
	header := m[1]
	index, _ := strconv.Atoi(m[2])
	for _, s := range d.sections {
		if s.header == header && index < len(s.fields) {
			return s.fields[index]
		}
	}
	return MissingValue
}

// Version returns the report version from the transaction header.
func (d *Document) Version() string {
	return d.LookupField("TH01")
}

// Summary is a pure derivation of document statistics for reporting.
type Summary struct {
	Version         string   `json:"version"`
	SectionCount    int      `json:"section_count"`
	DispenseCount   int      `json:"dispense_count"`
	MissingRequired []string `json:"missing_required"`
	UnknownHeaders  []string `json:"unknown_headers,omitempty"`
}

// Summarize derives report statistics. It has no side effects on the
// document.
func (d *Document) Summarize() Summary {
	seen := make(map[string]bool)
	var unknown []string
	for _, s := range d.sections {
		if KnownHeaders[s.header] || seen[s.header] {
			continue
		}
		seen[s.header] = true
		unknown = append(unknown, s.header)
	}
	return Summary{
		Version:         d.Version(),
		SectionCount:    len(d.sections),
		DispenseCount:   len(d.dispenses),
		MissingRequired: d.MissingRequiredSections(),
		UnknownHeaders:  unknown,
	}
}
