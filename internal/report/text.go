package report

import (
	"fmt"
	"strings"

	"github.com/dgallion1/asapgest/internal/asap"
)

// TextRenderer produces the plain-text analysis listing.
type TextRenderer struct{}

func (r *TextRenderer) Render(doc *asap.Document, opts Options) ([]byte, error) {
	sum := doc.Summarize()

	var b strings.Builder
	fmt.Fprintf(&b, "Detected ASAP report version: %s\n", sum.Version)
	fmt.Fprintf(&b, "Total valid sections detected: %d\n", sum.SectionCount)
	if len(sum.MissingRequired) == 0 {
		b.WriteString("All required sections present.\n")
	} else {
		fmt.Fprintf(&b, "Required sections not present: %s\n", strings.Join(sum.MissingRequired, ", "))
	}
	fmt.Fprintf(&b, "Total dispenses: %d\n", sum.DispenseCount)
	if len(sum.UnknownHeaders) > 0 {
		fmt.Fprintf(&b, "Unknown section headers: %s\n", strings.Join(sum.UnknownHeaders, ", "))
	}

	for _, s := range doc.Sections() {
		b.WriteString("\n")
		for i := 1; i < s.Len(); i++ {
			code := s.FieldCode(i)
			fmt.Fprintf(&b, "%s: %s\n", code, displayValue(code, s.Field(i), opts))
		}
	}
	return []byte(b.String()), nil
}

// displayValue applies PHI redaction to a single field for display.
func displayValue(code, value string, opts Options) string {
	if !opts.UnsafePHIDisplay && IsPHI(code) {
		return PHIReplacement
	}
	return value
}
