package model

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/yumyai/genegraph/logger"
	"github.com/yumyai/genegraph/pkg/errs"
	"github.com/yumyai/genegraph/pkg/table"
)

// Coordinate column names.
const (
	ColName        = "name"
	ColProteinName = "protein_name"
	ColGenome      = "genome"
	ColGeneType    = "gene_type"
	ColOrientation = "orientation"
	ColPosition    = "position"
)

type columnKind int

const (
	kindString columnKind = iota
	kindNumeric
	kindCategorical
)

type columnSpec struct {
	name      string
	kind      columnKind
	maxLength int
	minValue  float64
}

var coordinateColumns = []columnSpec{
	{name: ColName, kind: kindString, maxLength: 100},
	{name: ColProteinName, kind: kindString, maxLength: 100},
	{name: ColGenome, kind: kindString, maxLength: 100},
	{name: ColGeneType, kind: kindString, maxLength: 50},
	{name: ColPosition, kind: kindNumeric, minValue: 0},
	{name: ColOrientation, kind: kindCategorical},
}

var orientationAliases = map[string]Orientation{
	"plus":     OrientationPlus,
	"+":        OrientationPlus,
	"positive": OrientationPlus,
	"minus":    OrientationMinus,
	"-":        OrientationMinus,
	"negative": OrientationMinus,
}

// NormalizeOrientation maps the accepted aliases onto plus/minus. Unknown
// values come back lower-cased and trimmed.
func NormalizeOrientation(value string) Orientation {
	v := strings.ToLower(strings.TrimSpace(value))
	if o, ok := orientationAliases[v]; ok {
		return o
	}
	return Orientation(v)
}

func validOrientation(value string) bool {
	_, ok := orientationAliases[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

func requiredCoordinateColumns(mode Mode) []string {
	cols := []string{ColName, ColProteinName, ColGenome, ColOrientation, ColPosition}
	if mode == ModeDomain {
		cols = append(cols, ColGeneType)
	}
	return cols
}

// CoordinateTable wraps a loaded coordinate file through validation and cleaning.
type CoordinateTable struct {
	Filename string
	cfg      Config
	data     *table.Table

	DomainColumns []DomainColumn
	Warnings      []string
}

// LoadCoordinates reads a coordinate file.
func LoadCoordinates(r io.Reader, filename string, cfg Config) (*CoordinateTable, error) {

	data, err := table.Load(r, filename, table.RoleCoordinate)
	if err != nil {
		return nil, err
	}

	return &CoordinateTable{
		Filename: filename,
		cfg:      cfg,
		data:     data,
	}, nil
}

// NewCoordinateTable wraps an already loaded table.
func NewCoordinateTable(data *table.Table, cfg Config) *CoordinateTable {
	return &CoordinateTable{cfg: cfg, data: data}
}

// Validate returns every problem found; an empty result means the table can be cleaned.
func (c *CoordinateTable) Validate() []*errs.Error {

	var issues []*errs.Error

	var missing []string
	for _, col := range requiredCoordinateColumns(c.cfg.Mode) {
		if !c.data.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		issues = append(issues, errs.Schema("Missing required columns: %s", strings.Join(missing, ", ")))
	}

	if c.cfg.Mode == ModeDomain {
		c.DomainColumns = ExtractDomainColumns(c.data.Header)
		issues = append(issues, ValidateDomainColumns(c.DomainColumns)...)
		issues = append(issues, c.validateDomainValues()...)
	}

	for _, spec := range coordinateColumns {
		if !c.data.HasColumn(spec.name) {
			continue
		}
		// gene_type is optional in general mode and filled in later.
		if spec.name == ColGeneType && c.cfg.Mode == ModeGeneral {
			continue
		}
		issues = append(issues, c.validateColumn(spec)...)
	}

	if c.data.HasColumn(ColName) {
		if dups := duplicates(mustColumn(c.data, ColName)); len(dups) > 0 {
			issues = append(issues, errs.Structural("name column contains duplicate values: %s", strings.Join(dups, ", ")))
		}
	}

	if c.data.NumRows() == 0 {
		issues = append(issues, errs.Structural("Coordinate file has no rows"))
	}

	return issues
}

func (c *CoordinateTable) validateColumn(spec columnSpec) []*errs.Error {

	var issues []*errs.Error
	values := mustColumn(c.data, spec.name)

	for _, v := range values {
		if v == "" {
			issues = append(issues, errs.Schema("Found empty values in %s column", spec.name))
			break
		}
	}

	switch spec.kind {
	case kindNumeric:
		bad, negative := false, false
		for _, v := range values {
			if v == "" {
				continue
			}
			n, ok := c.parseNumber(v)
			if !ok {
				bad = true
				continue
			}
			if n < spec.minValue {
				negative = true
			}
		}
		if bad {
			issues = append(issues, errs.Schema("%s column contains non-numeric values (including invalid comma-separated formats)", spec.name))
		}
		if negative {
			issues = append(issues, errs.Schema("%s column contains values below %v", spec.name, spec.minValue))
		}
	case kindCategorical:
		var invalid []string
		for _, v := range values {
			if v != "" && !validOrientation(v) {
				invalid = append(invalid, v)
			}
		}
		if len(invalid) > 0 {
			issues = append(issues, errs.Schema("%s column contains invalid values: %s", spec.name, strings.Join(unique(invalid), ", ")))
		}
	}

	if spec.maxLength > 0 {
		for _, v := range values {
			if len([]rune(v)) > spec.maxLength {
				issues = append(issues, errs.Schema("%s column contains values longer than %d characters", spec.name, spec.maxLength))
				break
			}
		}
	}

	return issues
}

func (c *CoordinateTable) validateDomainValues() []*errs.Error {
	var issues []*errs.Error
	for _, dc := range c.DomainColumns {
		if !dc.IsSpan() {
			continue
		}
		for _, v := range mustColumn(c.data, dc.Name) {
			if v == "" {
				continue
			}
			if _, ok := c.parseNumber(v); !ok {
				issues = append(issues, errs.Schema("%s column contains non-numeric values", dc.Name))
				break
			}
		}
	}
	return issues
}

func (c *CoordinateTable) parseNumber(v string) (float64, bool) {
	if c.cfg.ParseCommaNumbers {
		return table.ParseNumber(v)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Clean builds the gene records: positions parsed, orientations normalized,
// gene_type defaulted and rel_position ranked per genome.
func (c *CoordinateTable) Clean() (*Coordinates, error) {

	for _, col := range requiredCoordinateColumns(ModeGeneral) {
		if !c.data.HasColumn(col) {
			return nil, errs.Schema("Missing required columns: %s", col)
		}
	}

	nameIdx := c.data.ColumnIndex(ColName)
	genomeIdx := c.data.ColumnIndex(ColGenome)
	proteinIdx := c.data.ColumnIndex(ColProteinName)
	orientIdx := c.data.ColumnIndex(ColOrientation)
	posIdx := c.data.ColumnIndex(ColPosition)
	typeIdx := c.data.ColumnIndex(ColGeneType)

	genes := make([]GeneRecord, 0, c.data.NumRows())
	failed := 0

	for _, rec := range c.data.Records {

		cell := func(i int) string {
			if c.cfg.CleanWhitespace {
				return strings.TrimSpace(rec[i])
			}
			return rec[i]
		}

		pos, ok := c.parseNumber(cell(posIdx))
		if !ok {
			failed++
			pos = math.NaN()
		}

		orientation := Orientation(cell(orientIdx))
		if c.cfg.NormalizeOrientations {
			orientation = NormalizeOrientation(cell(orientIdx))
		}

		geneType := ""
		if typeIdx >= 0 {
			geneType = cell(typeIdx)
		}
		if geneType == "" && c.cfg.HandleMissingValues {
			geneType = DefaultGeneType
		}

		genes = append(genes, GeneRecord{
			Name:        cell(nameIdx),
			Genome:      cell(genomeIdx),
			ProteinName: cell(proteinIdx),
			Position:    pos,
			Orientation: orientation,
			GeneType:    geneType,
		})
	}

	if failed > 0 {
		msg := fmt.Sprintf("Could not parse %d values in %s column as comma-separated numbers", failed, ColPosition)
		c.Warnings = append(c.Warnings, msg)
		logger.Warn("Coordinate cleaning", zap.String("file", c.Filename), zap.String("warning", msg))
	}

	assignRelativePositions(genes)

	return &Coordinates{Genes: genes}, nil
}

// CleanWithDomains runs Clean and attaches the domain columns, if the file has any.
func (c *CoordinateTable) CleanWithDomains() (*Coordinates, error) {

	coords, err := c.Clean()
	if err != nil {
		return nil, err
	}

	if !hasDomainColumns(c.data.Header) {
		return coords, nil
	}

	if c.DomainColumns == nil {
		c.DomainColumns = ExtractDomainColumns(c.data.Header)
	}
	if issues := ValidateDomainColumns(c.DomainColumns); len(issues) > 0 {
		return nil, errs.Join("Error processing domain field", issues)
	}
	if !c.data.HasColumn(ColGeneType) && !c.cfg.HandleMissingValues {
		return nil, errs.Schema("Missing one or more required columns after processing: %s", ColGeneType)
	}

	coords.DomainColumns = c.DomainColumns
	idx := make([]int, len(c.DomainColumns))
	for i, dc := range c.DomainColumns {
		idx[i] = c.data.ColumnIndex(dc.Name)
	}

	for row := range coords.Genes {
		values := make([]float64, len(idx))
		for i, col := range idx {
			v, ok := c.parseNumber(c.data.Records[row][col])
			if !ok {
				v = math.NaN()
			}
			values[i] = v
		}
		coords.Genes[row].DomainValues = values
	}

	return coords, nil
}

func hasDomainColumns(header []string) bool {
	for _, h := range header {
		if isDomainColumnName(h) {
			return true
		}
	}
	return false
}

// assignRelativePositions ranks genes by position inside each genome,
// starting at 1. Equal positions keep their row order.
func assignRelativePositions(genes []GeneRecord) {

	byGenome := make(map[string][]int)
	for i, g := range genes {
		byGenome[g.Genome] = append(byGenome[g.Genome], i)
	}

	for _, idx := range byGenome {
		slices.SortStableFunc(idx, func(a, b int) int {
			return comparePositions(genes[a].Position, genes[b].Position)
		})
		for rank, i := range idx {
			genes[i].RelPosition = rank + 1
		}
	}
}

// NaN positions sort last.
func comparePositions(a, b float64) int {
	switch {
	case math.IsNaN(a) && math.IsNaN(b):
		return 0
	case math.IsNaN(a):
		return 1
	case math.IsNaN(b):
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Coordinates is the cleaned coordinate table.
type Coordinates struct {
	Genes         []GeneRecord
	DomainColumns []DomainColumn
}

// Genomes lists the distinct genomes in first-seen order.
func (c *Coordinates) Genomes() []string {
	genomes := make([]string, len(c.Genes))
	for i, g := range c.Genes {
		genomes[i] = g.Genome
	}
	return unique(genomes)
}

// GenomeOf maps gene name to genome.
func (c *Coordinates) GenomeOf() map[string]string {
	m := make(map[string]string, len(c.Genes))
	for _, g := range c.Genes {
		m[g.Name] = g.Genome
	}
	return m
}

// Names returns the set of gene names.
func (c *Coordinates) Names() map[string]bool {
	m := make(map[string]bool, len(c.Genes))
	for _, g := range c.Genes {
		m[g.Name] = true
	}
	return m
}

func mustColumn(t *table.Table, name string) []string {
	col, _ := t.Column(name)
	return col
}

func duplicates(values []string) []string {
	count := make(map[string]int)
	var dups []string
	for _, v := range values {
		if v == "" {
			continue
		}
		count[v]++
		if count[v] == 2 {
			dups = append(dups, v)
		}
	}
	return dups
}

func unique(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
