package asap

// DispenseHeaders is the fixed set of section headers that belong to a
// single dispense event rather than the document envelope.
var DispenseHeaders = map[string]bool{
	"PAT": true,
	"DSP": true,
	"PRE": true,
	"CDI": true,
	"AIR": true,
}

// DispenseGroup is the ordered run of dispense-scoped sections describing one
// patient/prescription/dispense event. Within one group no header repeats.
type DispenseGroup struct {
	sections []Section
}

// Sections returns the group's sections in document order.
func (g DispenseGroup) Sections() []Section {
	out := make([]Section, len(g.sections))
	copy(out, g.sections)
	return out
}

// Contains reports whether the group already holds a section with the given
// header.
func (g DispenseGroup) Contains(header string) bool {
	for _, s := range g.sections {
		if s.header == header {
			return true
		}
	}
	return false
}

// groupDispenses partitions the dispense-scoped sections of a flat section
// sequence into per-dispense groups. The format carries no dispense count or
// boundary marker, so a repeated header is the sole boundary signal: seeing a
// header the open group already holds seals that group and starts a new one
// seeded with the triggering section. Envelope sections are skipped and do
// not reset the duplicate check.
//
// The open group left at end of input is not sealed and is excluded from the
// result. Downstream consumers depend on this count, so it is deliberate,
// documented behavior; do not "fix" it here without migrating them.
func groupDispenses(sections []Section) []DispenseGroup {
	var groups []DispenseGroup
	var open DispenseGroup
	for _, s := range sections {
		if !DispenseHeaders[s.header] {
			continue
		}
		if open.Contains(s.header) {
			groups = append(groups, open)
			open = DispenseGroup{sections: []Section{s}}
			continue
		}
		open.sections = append(open.sections, s)
	}
	return groups
}
