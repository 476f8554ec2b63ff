package fetcher

import (
	"bytes"
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// maxReportBytes bounds how much of a report source is read.
const maxReportBytes = 32 << 20

// xlsxMagic is the zip local file header every XLSX workbook starts with.
var xlsxMagic = []byte("PK\x03\x04")

// Loader resolves a report source to text. A source is "-" for stdin, an
// http(s) URL, or a local path. Workbooks are recognised by extension or
// by content and flattened with RowsToText.
type Loader struct {
	fetcher Fetcher
	stdin   io.Reader
	sheet   XLSXOptions
}

// NewLoader creates a Loader. fetcher may be nil when URLs are not needed.
func NewLoader(fetcher Fetcher, stdin io.Reader, sheet XLSXOptions) *Loader {
	return &Loader{fetcher: fetcher, stdin: stdin, sheet: sheet}
}

// Load returns the report text behind src.
func (l *Loader) Load(ctx context.Context, src string) (string, error) {
	switch {
	case src == "-" || src == "":
		if l.stdin == nil {
			return "", eris.New("fetcher: no stdin available")
		}
		data, err := readLimited(l.stdin)
		if err != nil {
			return "", eris.Wrap(err, "fetcher: read stdin")
		}
		return l.decode(data, "")

	case isURL(src):
		if l.fetcher == nil {
			return "", eris.Errorf("fetcher: no http fetcher for %s", src)
		}
		body, err := l.fetcher.Download(ctx, src)
		if err != nil {
			return "", err
		}
		defer body.Close() //nolint:errcheck
		data, err := readLimited(body)
		if err != nil {
			return "", eris.Wrap(err, "fetcher: read body")
		}
		zap.L().Debug("fetcher: downloaded report", zap.String("url", src), zap.Int("bytes", len(data)))
		return l.decode(data, urlPath(src))

	default:
		if strings.EqualFold(filepath.Ext(src), ".xlsx") {
			rows, err := ReadXLSX(src, l.sheet)
			if err != nil {
				return "", err
			}
			return RowsToText(rows), nil
		}
		data, err := os.ReadFile(src)
		if err != nil {
			return "", eris.Wrapf(err, "fetcher: read %s", src)
		}
		return l.decode(data, src)
	}
}

func (l *Loader) decode(data []byte, name string) (string, error) {
	if strings.EqualFold(path.Ext(name), ".xlsx") || bytes.HasPrefix(data, xlsxMagic) {
		rows, err := ReadXLSXBytes(data, l.sheet)
		if err != nil {
			return "", err
		}
		return RowsToText(rows), nil
	}
	return string(data), nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxReportBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxReportBytes {
		return nil, eris.Errorf("report exceeds %d bytes", maxReportBytes)
	}
	return data, nil
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func urlPath(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	return rawURL
}
