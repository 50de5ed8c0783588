package leads

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// tabularDelimiters are the sniffing candidates, in preference order.
var tabularDelimiters = []rune{',', '\t', ';', '|'}

// parseTabular is the middle tier: delimited text with an auto-detected
// delimiter and a header row. A candidate delimiter qualifies only when it
// appears in the header line, the header has at least two columns, at least
// one data row exists, and no data row is wider than the header.
func parseTabular(input string) (Collection, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, false
	}
	headerLine, _, _ := strings.Cut(trimmed, "\n")
	for _, delim := range tabularDelimiters {
		if !strings.ContainsRune(headerLine, delim) {
			continue
		}
		if c, ok := sniffDelimited(trimmed, delim); ok {
			return c, true
		}
	}
	return nil, false
}

func sniffDelimited(input string, delim rune) (Collection, bool) {
	cr := csv.NewReader(strings.NewReader(input))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	// Free text is full of stray quotes; sniffing is about the delimiter,
	// not quoting discipline.
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil || len(rows) < 2 {
		return nil, false
	}

	header := trimAll(rows[0])
	if len(header) < 2 {
		return nil, false
	}
	for _, row := range rows[1:] {
		if len(row) > len(header) {
			return nil, false
		}
	}

	out := make(Collection, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, rowRecord(header, row))
	}
	return out, true
}

// FromDelimited reads a delimited file with a header row. Unlike the text
// tiers this is allowed to fail outward: uploads with a fixed format are not
// re-sniffed, and a malformed file is the operator's problem to fix.
func FromDelimited(r io.Reader, delim rune) (Collection, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty table: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = trimAll(header)

	out := Collection{}
	rowNum := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", rowNum+1, err)
		}
		rowNum++
		if len(row) > len(header) {
			return nil, fmt.Errorf("row %d has %d columns, header has %d", rowNum, len(row), len(header))
		}
		out = append(out, rowRecord(header, row))
	}
	return out, nil
}

// rowRecord keys a data row by header names, padding missing trailing fields
// with empty strings so every record carries exactly the header's width.
func rowRecord(header, row []string) Record {
	rec := make(Record, len(header))
	for i, name := range header {
		val := ""
		if i < len(row) {
			val = row[i]
		}
		rec[name] = val
	}
	return rec
}

func trimAll(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}
