package asap

import (
	"fmt"
	"strings"
)

// FieldSep separates fields within one section record.
const FieldSep = "*"

// RecordSep separates section records within a report.
const RecordSep = "~"

// MissingValue is returned by every lookup that cannot resolve a field.
// Exchange partners routinely send sparse documents, so absent values are
// data, not errors.
const MissingValue = "X"

// Section is one decoded record of an ASAP report: a short header code plus
// its ordered fields. Index 0 holds the header token itself; fields are
// addressed by 1-based position. A Section is immutable once decoded.
type Section struct {
	header string
	fields []string
}

// DecodeSection splits a field-delimited fragment into a Section.
//
// The split preserves empty trailing fields exactly:
//
//	PRE*1801093810*FC0350152*******
//
// decodes to a PRE section with nine addressable fields, seven of them empty.
// No fragment is rejected; a fragment without a header decodes to a
// degenerate section whose lookups all return MissingValue.
func DecodeSection(fragment string) Section {
	fields := strings.Split(fragment, FieldSep)
	return Section{header: fields[0], fields: fields}
}

// Header returns the section's header code.
func (s Section) Header() string {
	return s.header
}

// Len returns the number of split elements, including the header at index 0.
func (s Section) Len() int {
	return len(s.fields)
}

// Field returns the field at the given 1-based position, or MissingValue if
// the position is out of range. It never panics.
func (s Section) Field(i int) string {
	if i < 1 || i >= len(s.fields) {
		return MissingValue
	}
	return s.fields[i]
}

// Fields returns a copy of the raw split, header included at index 0.
func (s Section) Fields() []string {
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out
}

// FieldCode composes the address of a field position, e.g. TH + 2 -> TH02.
func (s Section) FieldCode(i int) string {
	return fmt.Sprintf("%s%02d", s.header, i)
}

// FieldMap returns a field-code -> value map for every field, skipping the
// header at index 0.
func (s Section) FieldMap() map[string]string {
	out := make(map[string]string, len(s.fields)-1)
	for i := 1; i < len(s.fields); i++ {
		out[s.FieldCode(i)] = s.fields[i]
	}
	return out
}
