package export

import (
	"encoding/csv"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/tmansmann0/capsim-ml/internal/model"
)

// WriteCSV writes records under the fixed export header. The header is
// written even when there are no records.
func WriteCSV(w io.Writer, records []model.ProductRecord) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if len(records) == 0 {
		if err := enc.EncodeHeader(model.ProductRecord{}); err != nil {
			return eris.Wrap(err, "export: write header")
		}
	} else if err := enc.Encode(records); err != nil {
		return eris.Wrap(err, "export: encode records")
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteDiagnosticsCSV writes one row per diagnostic.
func WriteDiagnosticsCSV(w io.Writer, diags []model.Diagnostic) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if len(diags) == 0 {
		if err := enc.EncodeHeader(model.Diagnostic{}); err != nil {
			return eris.Wrap(err, "export: write diagnostics header")
		}
	} else if err := enc.Encode(diags); err != nil {
		return eris.Wrap(err, "export: encode diagnostics")
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush diagnostics csv")
}

// ReadCSV decodes records previously written by WriteCSV.
func ReadCSV(r io.Reader) ([]model.ProductRecord, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if eris.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "export: read header")
	}

	var records []model.ProductRecord
	for {
		var rec model.ProductRecord
		if err := dec.Decode(&rec); err != nil {
			if eris.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrap(err, "export: decode record")
		}
		records = append(records, rec)
	}
	return records, nil
}
