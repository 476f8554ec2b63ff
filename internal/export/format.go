// Package export writes extraction output as CSV, XLSX or JSON.
package export

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/tmansmann0/capsim-ml/internal/model"
)

// Format is an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatJSON:
		return f, nil
	default:
		return "", eris.Errorf("export: unknown format %q", s)
	}
}

// FormatFromPath picks a format from a file extension, falling back to def.
func FormatFromPath(path string, def Format) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	case ".json":
		return FormatJSON
	default:
		return def
	}
}

// Write encodes records in the given format. XLSX output carries the
// diagnostics on a second sheet; CSV output carries records only.
func Write(w io.Writer, format Format, records []model.ProductRecord, diags []model.Diagnostic) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatXLSX:
		return WriteXLSX(w, records, diags)
	case FormatJSON:
		return WriteJSON(w, &model.ExtractionResult{Records: records, Diagnostics: diags})
	default:
		return eris.Errorf("export: unknown format %q", format)
	}
}

// WriteFile creates path and writes records to it.
func WriteFile(path string, format Format, records []model.ProductRecord, diags []model.Diagnostic) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create file")
	}

	if err := Write(f, format, records, diags); err != nil {
		f.Close()
		return err
	}
	return eris.Wrap(f.Close(), "export: close file")
}

// WriteDiagnosticsFile writes diagnostics alone, picking the format from the
// path's extension (CSV by default).
func WriteDiagnosticsFile(path string, diags []model.Diagnostic) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create diagnostics file")
	}

	switch FormatFromPath(path, FormatCSV) {
	case FormatXLSX:
		err = WriteXLSX(f, nil, diags)
	case FormatJSON:
		err = WriteJSON(f, diags)
	default:
		err = WriteDiagnosticsCSV(f, diags)
	}
	if err != nil {
		f.Close()
		return err
	}
	return eris.Wrap(f.Close(), "export: close diagnostics file")
}
