package report

import (
	"fmt"
	"strings"

	"github.com/dgallion1/asapgest/internal/asap"
)

// MarkdownRenderer produces a markdown report: envelope sections as tables,
// then one table per dispense group. The HTML renderer builds on this.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(doc *asap.Document, opts Options) ([]byte, error) {
	sum := doc.Summarize()
	envelope := MergeFieldMaps(envelopeSections(doc))

	var b strings.Builder
	fmt.Fprintf(&b, "# ASAP %s Report for %s\n\n", sum.Version, envelope.Get("IS02"))

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Version: %s\n", sum.Version)
	fmt.Fprintf(&b, "- Total sections: %d\n", sum.SectionCount)
	fmt.Fprintf(&b, "- Dispenses: %d\n", sum.DispenseCount)
	if len(sum.MissingRequired) == 0 {
		b.WriteString("- All required sections present\n")
	} else {
		fmt.Fprintf(&b, "- Missing required sections: %s\n", strings.Join(sum.MissingRequired, ", "))
	}
	if len(sum.UnknownHeaders) > 0 {
		fmt.Fprintf(&b, "- Unknown headers: %s\n", strings.Join(sum.UnknownHeaders, ", "))
	}

	b.WriteString("\n## Envelope\n")
	for _, s := range doc.Sections() {
		if asap.DispenseHeaders[s.Header()] {
			continue
		}
		writeSectionTable(&b, s, opts)
	}

	for i, g := range doc.Dispenses() {
		fmt.Fprintf(&b, "\n## Dispense %d\n\n", i+1)
		values := MergeFieldMaps(g.Sections())
		if !opts.UnsafePHIDisplay {
			Redact(values)
		}
		b.WriteString("| Field | Value |\n|-------|-------|\n")
		for _, code := range values.Codes() {
			fmt.Fprintf(&b, "| %s | %s |\n", code, values[code])
		}
	}

	return []byte(b.String()), nil
}

// envelopeSections returns the sections outside the dispense-scoped set.
func envelopeSections(doc *asap.Document) []asap.Section {
	var out []asap.Section
	for _, s := range doc.Sections() {
		if !asap.DispenseHeaders[s.Header()] {
			out = append(out, s)
		}
	}
	return out
}

func writeSectionTable(b *strings.Builder, s asap.Section, opts Options) {
	fmt.Fprintf(b, "\n### %s\n\n", s.Header())
	b.WriteString("| Field | Value |\n|-------|-------|\n")
	for i := 1; i < s.Len(); i++ {
		code := s.FieldCode(i)
		fmt.Fprintf(b, "| %s | %s |\n", code, displayValue(code, s.Field(i), opts))
	}
}
