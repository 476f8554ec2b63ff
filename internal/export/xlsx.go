package export

import (
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/tmansmann0/capsim-ml/internal/model"
)

const (
	recordsSheet     = "records"
	diagnosticsSheet = "diagnostics"
)

var diagnosticColumns = []string{"kind", "page", "segment", "criterion", "raw_line", "message"}

// WriteXLSX writes records to a "records" sheet and diagnostics to a
// "diagnostics" sheet. Cells are written as text so normalized values keep
// their exact form.
func WriteXLSX(w io.Writer, records []model.ProductRecord, diags []model.Diagnostic) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet(recordsSheet)
	if err != nil {
		return eris.Wrap(err, "export: add records sheet")
	}
	addRow(sheet, model.Columns())
	for _, r := range records {
		addRow(sheet, r.Values())
	}

	dsheet, err := f.AddSheet(diagnosticsSheet)
	if err != nil {
		return eris.Wrap(err, "export: add diagnostics sheet")
	}
	addRow(dsheet, diagnosticColumns)
	for _, d := range diags {
		page := ""
		if d.Page != 0 {
			page = strconv.Itoa(d.Page)
		}
		addRow(dsheet, []string{string(d.Kind), page, string(d.Segment), d.Criterion, d.Line, d.Message})
	}

	return eris.Wrap(f.Write(w), "export: write xlsx")
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
