package report

import (
	"fmt"
	"strings"

	"github.com/dgallion1/asapgest/internal/asap"
)

// Options controls how a report is rendered.
type Options struct {
	// UnsafePHIDisplay leaves patient PHI fields unredacted. Off by default;
	// only enable for output that stays inside the covered entity.
	UnsafePHIDisplay bool
}

// Renderer produces one output representation of a parsed report.
type Renderer interface {
	Render(doc *asap.Document, opts Options) ([]byte, error)
}

// SupportedFormats lists output formats this service can produce.
var SupportedFormats = map[string]bool{
	"text":     true,
	"markdown": true,
	"html":     true,
	"xlsx":     true,
}

// ForFormat returns the renderer for a format name.
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "text", "txt":
		return &TextRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	case "html":
		return &HTMLRenderer{}, nil
	case "xlsx":
		return &XLSXRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// IsSupportedFormat checks if a format name is supported.
func IsSupportedFormat(format string) bool {
	return SupportedFormats[strings.ToLower(format)]
}
