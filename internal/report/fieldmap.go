package report

import (
	"sort"

	"github.com/dgallion1/asapgest/internal/asap"
)

// FieldValues resolves field codes to values for templated rendering.
// Lookups of absent codes yield the missing-value sentinel, so sparse
// documents render with placeholders instead of failing.
type FieldValues map[string]string

// Get returns the value at a field code, or asap.MissingValue if absent.
func (v FieldValues) Get(code string) string {
	if s, ok := v[code]; ok {
		return s
	}
	return asap.MissingValue
}

// Codes returns the present field codes in sorted order.
func (v FieldValues) Codes() []string {
	codes := make([]string, 0, len(v))
	for c := range v {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// MergeFieldMaps flattens the field maps of many sections into one. Sections
// are merged in the given order and a later section overwrites an earlier
// one at the same field code (last write wins). Callers that need the
// first occurrence should use Document.LookupField instead.
func MergeFieldMaps(sections []asap.Section) FieldValues {
	out := FieldValues{}
	for _, s := range sections {
		for code, value := range s.FieldMap() {
			out[code] = value
		}
	}
	return out
}
