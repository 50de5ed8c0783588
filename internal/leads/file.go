package leads

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Content types recognized by FromFile.
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// FromFile converts an uploaded or local file into a Collection. Dispatch is
// fixed by declared content type first, filename extension second: CSV reads
// comma-separated, a workbook reads the first sheet, and everything else is
// treated as tab-separated text with a header row. Fixed-format files are not
// re-sniffed through the free-text tiers.
func FromFile(filename, contentType string, r io.Reader) (Collection, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case ct == ContentTypeCSV || ext == ".csv":
		return FromDelimited(r, ',')
	case ct == ContentTypeXLSX || ext == ".xlsx":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read workbook bytes: %w", err)
		}
		return ReadWorkbook(data)
	default:
		return FromDelimited(r, '\t')
	}
}
