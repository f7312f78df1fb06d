package model

import (
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/yumyai/genegraph/logger"
	"github.com/yumyai/genegraph/pkg/errs"
	"github.com/yumyai/genegraph/pkg/table"
)

// MatrixTable is a loaded similarity matrix before the cutoff is applied.
// Rows and Cols are the labels; Cells[i][j] is the raw text of the score.
type MatrixTable struct {
	Filename string
	cfg      Config

	Rows  []string
	Cols  []string
	Cells [][]string
}

// LoadMatrix reads a matrix file. The first column holds the row labels,
// the header of that column is discarded. Rows and columns without any
// value are dropped.
func LoadMatrix(r io.Reader, filename string, cfg Config) (*MatrixTable, error) {

	data, err := table.Load(r, filename, table.RoleMatrix)
	if err != nil {
		return nil, err
	}

	m := NewMatrixTable(data, cfg)
	m.Filename = filename
	return m, nil
}

// NewMatrixTable builds the labelled view of an already loaded table.
func NewMatrixTable(data *table.Table, cfg Config) *MatrixTable {

	m := &MatrixTable{cfg: cfg}
	if len(data.Header) == 0 {
		return m
	}

	m.Cols = append([]string(nil), data.Header[1:]...)
	for _, rec := range data.Records {
		m.Rows = append(m.Rows, rec[0])
		m.Cells = append(m.Cells, append([]string(nil), rec[1:]...))
	}

	m.dropEmpty()
	return m
}

func (m *MatrixTable) dropEmpty() {

	// rows
	keptRows := m.Rows[:0]
	keptCells := m.Cells[:0]
	for i, row := range m.Cells {
		if isBlankRow(row) {
			continue
		}
		keptRows = append(keptRows, m.Rows[i])
		keptCells = append(keptCells, row)
	}
	m.Rows, m.Cells = keptRows, keptCells

	// columns
	keep := make([]int, 0, len(m.Cols))
	for j := range m.Cols {
		for i := range m.Cells {
			if m.Cells[i][j] != "" {
				keep = append(keep, j)
				break
			}
		}
	}
	if len(keep) == len(m.Cols) {
		return
	}

	cols := make([]string, len(keep))
	for k, j := range keep {
		cols[k] = m.Cols[j]
	}
	for i, row := range m.Cells {
		out := make([]string, len(keep))
		for k, j := range keep {
			out[k] = row[j]
		}
		m.Cells[i] = out
	}
	m.Cols = cols
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

// Validate checks size, label uniqueness, numeric content and label lengths.
func (m *MatrixTable) Validate() []*errs.Error {

	var issues []*errs.Error

	if len(m.Rows) < m.cfg.MinMatrixRows {
		issues = append(issues, errs.Structural("Matrix must have at least %d rows", m.cfg.MinMatrixRows))
	}
	if len(m.Cols) < m.cfg.MinMatrixCols {
		issues = append(issues, errs.Structural("Matrix must have at least %d columns", m.cfg.MinMatrixCols))
	}

	for _, r := range m.Rows {
		if r == "" {
			issues = append(issues, errs.Structural("Matrix contains empty row identifiers"))
			break
		}
	}
	for _, c := range m.Cols {
		if c == "" {
			issues = append(issues, errs.Structural("Matrix contains empty column names"))
			break
		}
	}

	if dups := duplicates(m.Rows); len(dups) > 0 {
		issues = append(issues, errs.Structural("Matrix contains duplicate row identifiers: %s", strings.Join(dups, ", ")))
	}
	if dups := duplicates(m.Cols); len(dups) > 0 {
		issues = append(issues, errs.Structural("Matrix contains duplicate column names: %s", strings.Join(dups, ", ")))
	}

	if len(m.Rows) == 0 || len(m.Cols) == 0 {
		issues = append(issues, errs.Structural("Matrix is empty after removing NA values"))
	}

	var nonNumeric []string
	for j, col := range m.Cols {
		for i := range m.Cells {
			if _, ok := parseScore(m.Cells[i][j]); !ok {
				nonNumeric = append(nonNumeric, col)
				break
			}
		}
	}
	if len(nonNumeric) > 0 {
		issues = append(issues, errs.Schema("Matrix contains non-numeric values in columns: %s", strings.Join(nonNumeric, ", ")))
	}

	maxLen := m.cfg.MaxLabelLength
	if maxLen > 0 {
		if longer(m.Rows, maxLen) {
			issues = append(issues, errs.Schema("Matrix contains row identifiers longer than %d characters", maxLen))
		}
		if longer(m.Cols, maxLen) {
			issues = append(issues, errs.Schema("Matrix contains column names longer than %d characters", maxLen))
		}
	}

	return issues
}

// parseScore accepts empty cells as absent values.
func parseScore(cell string) (float64, bool) {
	if cell == "" {
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func longer(labels []string, n int) bool {
	for _, l := range labels {
		if len([]rune(l)) > n {
			return true
		}
	}
	return false
}

// Clean parses the scores and applies the cutoff threshold.
func (m *MatrixTable) Clean() (*CutoffMatrix, error) {

	out := &CutoffMatrix{
		Rows:   make([]string, len(m.Rows)),
		Cols:   make([]string, len(m.Cols)),
		Values: make([][]float64, len(m.Rows)),
	}
	for i, r := range m.Rows {
		out.Rows[i] = m.label(r)
	}
	for j, c := range m.Cols {
		out.Cols[j] = m.label(c)
	}

	kept := 0
	for i, row := range m.Cells {
		values := make([]float64, len(row))
		for j, cell := range row {
			v, ok := parseScore(cell)
			if !ok {
				return nil, errs.Schema("Matrix contains non-numeric value %q at %s/%s", cell, m.Rows[i], m.Cols[j])
			}
			values[j] = v
		}
		kept += applyCutoff(values, m.cfg.CutoffThreshold)
		out.Values[i] = values
	}

	logger.Debug("Applied cutoff",
		zap.String("file", m.Filename),
		zap.Float64("cutoff", m.cfg.CutoffThreshold),
		zap.Int("rows", len(out.Rows)),
		zap.Int("cols", len(out.Cols)),
		zap.Int("cells_kept", kept))

	return out, nil
}

func (m *MatrixTable) label(s string) string {
	if m.cfg.CleanWhitespace {
		return strings.TrimSpace(s)
	}
	return s
}

// applyCutoff blanks every value below threshold and returns how many survived.
func applyCutoff(values []float64, threshold float64) int {
	kept := 0
	for j, v := range values {
		if math.IsNaN(v) || v < threshold {
			values[j] = math.NaN()
			continue
		}
		kept++
	}
	return kept
}

// CutoffMatrix is a similarity matrix whose cells below the cutoff are NaN.
// Labels are kept even when none of their cells survived.
type CutoffMatrix struct {
	Rows   []string
	Cols   []string
	Values [][]float64
}

// Has reports whether cell (i, j) survived the cutoff.
func (m *CutoffMatrix) Has(i, j int) bool {
	return !math.IsNaN(m.Values[i][j])
}

// Labels returns the set of row and column labels.
func (m *CutoffMatrix) Labels() map[string]bool {
	set := make(map[string]bool, len(m.Rows)+len(m.Cols))
	for _, r := range m.Rows {
		set[r] = true
	}
	for _, c := range m.Cols {
		set[c] = true
	}
	return set
}

// CheckIdentifiers makes sure every matrix label names a gene of the
// coordinate table.
func CheckIdentifiers(m *CutoffMatrix, coords *Coordinates) error {

	names := coords.Names()
	var missing []string
	for label := range m.Labels() {
		if !names[label] {
			missing = append(missing, label)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	sort.Strings(missing)
	return errs.Referential(errs.ErrUnmappedIdentifiers,
		"Matrix contains %d identifiers not found in coordinate file: %s", len(missing), strings.Join(missing, ", "))
}
