package report

import (
	"fmt"
	"strings"

	"github.com/dgallion1/asapgest/internal/asap"
	"github.com/xuri/excelize/v2"
)

// XLSXRenderer writes the report as a workbook: a Summary sheet plus a
// Dispenses sheet with one row per dispense-group field.
type XLSXRenderer struct{}

const (
	summarySheet  = "Summary"
	dispenseSheet = "Dispenses"
)

func (r *XLSXRenderer) Render(doc *asap.Document, opts Options) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(dispenseSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	sum := doc.Summarize()
	w := &sheetWriter{f: f}
	w.row(summarySheet, 1, "Version", sum.Version)
	w.row(summarySheet, 2, "Total sections", sum.SectionCount)
	w.row(summarySheet, 3, "Dispenses", sum.DispenseCount)
	w.row(summarySheet, 4, "Missing required sections", strings.Join(sum.MissingRequired, ", "))
	w.row(summarySheet, 5, "Unknown headers", strings.Join(sum.UnknownHeaders, ", "))

	w.row(dispenseSheet, 1, "Dispense", "Field", "Value")
	rowNum := 2
	for i, g := range doc.Dispenses() {
		values := MergeFieldMaps(g.Sections())
		if !opts.UnsafePHIDisplay {
			Redact(values)
		}
		for _, code := range values.Codes() {
			w.row(dispenseSheet, rowNum, i+1, code, values[code])
			rowNum++
		}
	}
	if w.err != nil {
		return nil, fmt.Errorf("write workbook: %w", w.err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter accumulates the first cell-write error so the render body
// stays flat.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) row(sheet string, row int, values ...any) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values)
}
