package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/dgallion1/asapgest/internal/asap"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// HTMLRenderer wraps the goldmark-converted markdown report in a small page
// shell. The shell only interpolates a title and inline CSS; all report
// content goes through the markdown renderer so the two formats cannot
// drift apart.
type HTMLRenderer struct{}

var pageTemplate = template.Must(template.New("report").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #999; padding: 4px 8px; font-family: monospace; }
h2 { margin-top: 1.5em; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

func (r *HTMLRenderer) Render(doc *asap.Document, opts Options) ([]byte, error) {
	md, err := (&MarkdownRenderer{}).Render(doc, opts)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	conv := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := conv.Convert(md, &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	var page bytes.Buffer
	data := struct {
		Title string
		Body  template.HTML
	}{
		Title: fmt.Sprintf("ASAP %s Report", doc.Version()),
		Body:  template.HTML(body.String()),
	}
	if err := pageTemplate.Execute(&page, data); err != nil {
		return nil, fmt.Errorf("execute page template: %w", err)
	}
	return page.Bytes(), nil
}
