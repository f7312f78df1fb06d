package model

// Mode selects which coordinate columns are required and how graphs are built.
type Mode string

const (
	ModeGeneral Mode = "general"
	ModeDomain  Mode = "domain"
)

const (
	DefaultCutoffThreshold = 25.0
	DefaultMaxLabelLength  = 100
	DefaultGeneType        = "unknown"
)

// Config drives every pipeline stage. It is passed by value; stages never
// modify it.
type Config struct {
	Mode Mode

	// Cells strictly below the threshold are treated as absent.
	CutoffThreshold float64

	CleanWhitespace       bool
	NormalizeOrientations bool
	// Fill missing gene_type with DefaultGeneType.
	HandleMissingValues bool
	// Accept "1,253,689" style positions.
	ParseCommaNumbers bool

	// Log validation issues as warnings and keep going instead of failing.
	AllowPartialProcessing bool

	MinMatrixRows  int
	MinMatrixCols  int
	MaxLabelLength int

	MinDomains int
	MaxDomains int
	// Run each domain's matrix pipeline in its own goroutine.
	ParallelDomains bool
}

func DefaultConfig() Config {
	return Config{
		Mode:                  ModeGeneral,
		CutoffThreshold:       DefaultCutoffThreshold,
		CleanWhitespace:       true,
		NormalizeOrientations: true,
		HandleMissingValues:   true,
		ParseCommaNumbers:     true,
		MinMatrixRows:         2,
		MinMatrixCols:         2,
		MaxLabelLength:        DefaultMaxLabelLength,
		MinDomains:            2,
		MaxDomains:            3,
		ParallelDomains:       true,
	}
}

// WithMode returns a copy of c using mode m.
func (c Config) WithMode(m Mode) Config {
	c.Mode = m
	return c
}
