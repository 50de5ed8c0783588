package leads

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ReadWorkbook converts the first worksheet of an OpenXML workbook into a
// Collection: the first row is the header, each following row becomes one
// record. Shared-string, inline-string, boolean, and plain (numeric/formula)
// cells are supported; cell values keep their stored string form.
func ReadWorkbook(data []byte) (Collection, error) {
	if !isZip(data) {
		return nil, fmt.Errorf("not a workbook: missing zip container signature")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open workbook container: %w", err)
	}

	shared, err := readSharedStrings(zr)
	if err != nil {
		return nil, err
	}

	sheetName, err := firstWorksheetName(zr)
	if err != nil {
		return nil, err
	}
	rows, err := readWorksheetRows(zr, sheetName, shared)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("workbook sheet %s has no rows", sheetName)
	}

	header := trimAll(rows[0])
	if len(header) == 0 {
		return nil, fmt.Errorf("workbook sheet %s has no header row", sheetName)
	}

	out := Collection{}
	for i, row := range rows[1:] {
		for j := len(header); j < len(row); j++ {
			if strings.TrimSpace(row[j]) != "" {
				return nil, fmt.Errorf("row %d has a value in column %d beyond the header width %d", i+2, j+1, len(header))
			}
		}
		out = append(out, rowRecord(header, row))
	}
	return out, nil
}

// isZip checks for the ZIP local file header: PK\x03\x04.
func isZip(b []byte) bool {
	return len(b) >= 4 && b[0] == 'P' && b[1] == 'K' && b[2] == 0x03 && b[3] == 0x04
}

func firstWorksheetName(zr *zip.Reader) (string, error) {
	var names []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "xl/worksheets/") && strings.HasSuffix(f.Name, ".xml") {
			names = append(names, f.Name)
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("workbook contains no worksheets")
	}
	// sheet1.xml is the conventional first sheet; fall back to lexical order.
	for _, n := range names {
		if n == "xl/worksheets/sheet1.xml" {
			return n, nil
		}
	}
	sort.Strings(names)
	return names[0], nil
}

type xlsxSST struct {
	XMLName xml.Name `xml:"sst"`
	Items   []xlsxSI `xml:"si"`
}

type xlsxSI struct {
	T    *string   `xml:"t"`
	Runs []xlsxRun `xml:"r"`
}

type xlsxRun struct {
	T string `xml:"t"`
}

func (si xlsxSI) text() string {
	if si.T != nil {
		return *si.T
	}
	var b strings.Builder
	for _, r := range si.Runs {
		b.WriteString(r.T)
	}
	return b.String()
}

func readSharedStrings(zr *zip.Reader) ([]string, error) {
	f := findZipFile(zr, "xl/sharedStrings.xml")
	if f == nil {
		return nil, nil
	}
	b, err := readZipFile(f)
	if err != nil {
		return nil, fmt.Errorf("read shared strings: %w", err)
	}
	var sst xlsxSST
	if err := xml.Unmarshal(b, &sst); err != nil {
		return nil, fmt.Errorf("parse shared strings: %w", err)
	}
	out := make([]string, len(sst.Items))
	for i, si := range sst.Items {
		out[i] = si.text()
	}
	return out, nil
}

type xlsxWorksheet struct {
	XMLName xml.Name  `xml:"worksheet"`
	Rows    []xlsxRow `xml:"sheetData>row"`
}

type xlsxRow struct {
	Cells []xlsxCell `xml:"c"`
}

type xlsxCell struct {
	Ref    string      `xml:"r,attr"`
	Type   string      `xml:"t,attr"`
	Value  string      `xml:"v"`
	Inline *xlsxInline `xml:"is"`
}

type xlsxInline struct {
	T    string    `xml:"t"`
	Runs []xlsxRun `xml:"r"`
}

func readWorksheetRows(zr *zip.Reader, name string, shared []string) ([][]string, error) {
	f := findZipFile(zr, name)
	if f == nil {
		return nil, fmt.Errorf("worksheet %s missing from workbook", name)
	}
	b, err := readZipFile(f)
	if err != nil {
		return nil, fmt.Errorf("read worksheet: %w", err)
	}
	var ws xlsxWorksheet
	if err := xml.Unmarshal(b, &ws); err != nil {
		return nil, fmt.Errorf("parse worksheet: %w", err)
	}

	rows := make([][]string, 0, len(ws.Rows))
	for _, row := range ws.Rows {
		var fields []string
		for i, cell := range row.Cells {
			val, err := cellValue(cell, shared)
			if err != nil {
				return nil, err
			}
			// Cell refs place values in their true columns; sparse rows
			// keep gaps as empty fields.
			col := columnIndex(cell.Ref)
			if col < 0 {
				col = i
			}
			for len(fields) <= col {
				fields = append(fields, "")
			}
			fields[col] = val
		}
		rows = append(rows, fields)
	}
	return rows, nil
}

func cellValue(c xlsxCell, shared []string) (string, error) {
	switch c.Type {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || idx < 0 || idx >= len(shared) {
			return "", fmt.Errorf("cell %s references shared string %q out of range", c.Ref, c.Value)
		}
		return shared[idx], nil
	case "inlineStr":
		if c.Inline == nil {
			return "", nil
		}
		if c.Inline.T != "" {
			return c.Inline.T, nil
		}
		var b strings.Builder
		for _, r := range c.Inline.Runs {
			b.WriteString(r.T)
		}
		return b.String(), nil
	case "b":
		if strings.TrimSpace(c.Value) == "1" {
			return "true", nil
		}
		return "false", nil
	default:
		// Numbers, formula results, and dates keep their stored form.
		return c.Value, nil
	}
}

// columnIndex converts a cell reference like "B3" to a zero-based column.
// Returns -1 when the reference is absent or malformed.
func columnIndex(ref string) int {
	letters := strings.TrimRight(strings.ToUpper(ref), "0123456789")
	if letters == "" {
		return -1
	}
	idx := 0
	for _, ch := range letters {
		if ch < 'A' || ch > 'Z' {
			return -1
		}
		idx = idx*26 + int(ch-'A') + 1
	}
	return idx - 1
}

func findZipFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
