// Package table reads the uploaded spreadsheet-like files (csv, tsv, xlsx)
// into a plain header + string-cell table. Typing is left to the consumers:
// coordinate and matrix files interpret the same cells very differently.
package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/yumyai/genegraph/logger"
	"github.com/yumyai/genegraph/pkg/errs"
)

// Role is the declared purpose of an uploaded file.
type Role string

const (
	RoleCoordinate Role = "coordinate"
	RoleMatrix     Role = "matrix"
)

type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatTSV
	FormatXLSX
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatTSV:
		return ".tsv"
	case FormatXLSX:
		return ".xlsx"
	default:
		return "unknown"
	}
}

// Supported extensions per role.
var supportedFormats = map[Role][]Format{
	RoleCoordinate: {FormatXLSX, FormatCSV, FormatTSV},
	RoleMatrix:     {FormatXLSX, FormatCSV, FormatTSV},
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a trimmed, rectangular view of the first sheet of a file.
// Every record has exactly len(Header) cells; empty string means missing.
type Table struct {
	Header  []string
	Records [][]string
}

// NumRows returns the number of data rows (header excluded).
func (t *Table) NumRows() int {
	return len(t.Records)
}

// ColumnIndex returns the position of the first column called name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Column returns a copy of the named column's cells.
func (t *Table) Column(name string) ([]string, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(t.Records))
	for i, rec := range t.Records {
		out[i] = rec[idx]
	}
	return out, true
}

// Float interprets one cell as a number. Empty and non-numeric cells report false.
func (t *Table) Float(row, col int) (float64, bool) {
	cell := t.Records[row][col]
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NumericColumn reports whether every non-empty cell of column col parses
// as a number.
func (t *Table) NumericColumn(col int) bool {
	for row := range t.Records {
		if t.Records[row][col] == "" {
			continue
		}
		if _, ok := t.Float(row, col); !ok {
			return false
		}
	}
	return true
}

// DetectFormat maps a filename to a parser by extension.
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) {
	case ".csv":
		return FormatCSV
	case ".tsv":
		return FormatTSV
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatUnknown
	}
}

func validateExtension(filename string, role Role) (Format, error) {
	format := DetectFormat(filename)
	allowed := supportedFormats[role]
	for _, f := range allowed {
		if f == format {
			return format, nil
		}
	}
	names := make([]string, 0, len(allowed))
	for _, f := range allowed {
		names = append(names, strings.ToUpper(f.String()))
	}
	return FormatUnknown, errs.Format(errs.ErrUnsupportedFormat,
		"Invalid %s file format (%s). Supported formats are: %s", role, filename, strings.Join(names, ", "))
}

// Load parses r according to filename's extension and trims every header
// and cell. role is only used to check the extension.
func Load(r io.Reader, filename string, role Role) (*Table, error) {

	format, err := validateExtension(filename, role)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Format(fmt.Errorf("%w: %v", errs.ErrParse, err), "failed to read %s file %s", role, filename)
	}

	var raw [][]string

	switch format {
	case FormatCSV, FormatTSV:
		raw, err = readDelimited(data, format)
	case FormatXLSX:
		raw, err = readXLSX(data)
	}
	if err != nil {
		return nil, err
	}

	t, err := rectangular(raw, format)
	if err != nil {
		return nil, err
	}
	clean(t)

	logger.Debug("Loaded table",
		zap.String("file", filename),
		zap.String("role", string(role)),
		zap.Int("columns", len(t.Header)),
		zap.Int("rows", t.NumRows()))

	return t, nil
}

func readDelimited(data []byte, format Format) ([][]string, error) {

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, errs.Format(errs.ErrEncoding, "File encoding error. Please ensure the file is UTF-8 encoded.")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // ragged rows are padded later
	if format == FormatTSV {
		reader.Comma = '\t'
		reader.LazyQuotes = true
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errs.Format(fmt.Errorf("%w: %v", errs.ErrParse, err), "%s", delimitedHint(format))
	}
	return records, nil
}

func delimitedHint(format Format) string {
	if format == FormatTSV {
		return "TSV parsing error. Please ensure the file is properly formatted with tab separators."
	}
	return "CSV parsing error. Please ensure the file is properly formatted with comma separators."
}

func readXLSX(data []byte) ([][]string, error) {

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errs.Format(fmt.Errorf("%w: %v", errs.ErrParse, err), "Excel parsing error")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errs.Format(errs.ErrParse, "Excel parsing error: workbook has no sheets")
	}

	// Raw values, so numbers are not rendered through the cell number format.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errs.Format(fmt.Errorf("%w: %v", errs.ErrParse, err), "Excel parsing error")
	}
	return rows, nil
}

// rectangular takes the first row as the header and pads every record to
// the header width. Records wider than the header are rejected, blank
// lines are skipped.
func rectangular(raw [][]string, format Format) (*Table, error) {

	if len(raw) == 0 || isBlank(raw[0]) {
		return nil, errs.Format(errs.ErrParse, "The file is empty or cannot be read")
	}

	header := raw[0]
	width := len(header)
	records := make([][]string, 0, len(raw)-1)

	for i, rec := range raw[1:] {
		if isBlank(rec) {
			continue
		}
		if len(rec) > width {
			// Spreadsheets report trailing formatted-but-empty cells; only
			// real content beyond the header is an error.
			if format == FormatXLSX && isBlank(rec[width:]) {
				rec = rec[:width]
			} else {
				return nil, errs.Format(errs.ErrParse,
					"%s: row %d has %d fields, header has %d", parseHint(format), i+2, len(rec), width)
			}
		}
		padded := make([]string, width)
		copy(padded, rec)
		records = append(records, padded)
	}

	return &Table{Header: header, Records: records}, nil
}

func parseHint(format Format) string {
	if format == FormatXLSX {
		return "Excel parsing error"
	}
	return delimitedHint(format)
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// clean strips whitespace from column names and cell values in place.
func clean(t *Table) {
	for i := range t.Header {
		t.Header[i] = strings.TrimSpace(t.Header[i])
	}
	for _, rec := range t.Records {
		for j := range rec {
			rec[j] = strings.TrimSpace(rec[j])
		}
	}
}

// IsFormatError reports whether err came from reading the file itself.
func IsFormatError(err error) bool {
	var e *errs.Error
	return errors.As(err, &e) && e.Kind == errs.KindFormat
}
