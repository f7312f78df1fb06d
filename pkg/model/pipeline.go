package model

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yumyai/genegraph/logger"
	"github.com/yumyai/genegraph/pkg/errs"
)

// GenerateGeneral builds the general graph from a coordinate file and one
// matrix file.
func GenerateGeneral(ctx context.Context, coord Upload, matrix Upload, cfg Config) (graph *Graph, err error) {

	defer recoverInternal(&err)
	cfg = cfg.WithMode(ModeGeneral)

	coords, err := loadCoordinates(coord, cfg)
	if err != nil {
		return nil, boundary(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cutoff, err := loadCutoffMatrix(matrix, coords, cfg)
	if err != nil {
		return nil, boundary(err)
	}

	hits := FindBestHits(cutoff, coords.GenomeOf())
	graph = BuildGeneralGraph(coords, hits)

	logger.Debug("Generated general graph",
		zap.Int("genes", len(graph.Nodes)),
		zap.Int("links", len(graph.Links)),
		zap.Int("genomes", len(graph.Genomes)))

	return graph, nil
}

// GenerateDomain builds one graph per domain matrix plus the combined graph.
// Domain names and their order come from the matrix filenames.
func GenerateDomain(ctx context.Context, coord Upload, matrices []Upload, cfg Config) (result *DomainResult, err error) {

	defer recoverInternal(&err)
	cfg = cfg.WithMode(ModeDomain)

	if len(matrices) < cfg.MinDomains || len(matrices) > cfg.MaxDomains {
		return nil, errs.Structural("Domain-specific graphs need %d to %d matrix files, got %d",
			cfg.MinDomains, cfg.MaxDomains, len(matrices))
	}

	names := make([]string, len(matrices))
	for i, m := range matrices {
		names[i] = m.Filename
	}
	files, err := ParseDomainFilenames(names)
	if err != nil {
		return nil, err
	}

	ordered := make([]Upload, len(files))
	for i, f := range files {
		ordered[i] = matrices[f.Source]
	}

	coords, err := loadCoordinates(coord, cfg)
	if err != nil {
		return nil, boundary(err)
	}

	result, err = BuildDomainGraphs(ctx, coords, files, ordered, cfg)
	if err != nil {
		return nil, boundary(err)
	}

	logger.Debug("Generated domain graphs",
		zap.Int("domains", len(result.Domains)),
		zap.Int("genes", result.NumGenes()),
		zap.Int("links", len(result.Combined.Links)))

	return result, nil
}

func loadCoordinates(upload Upload, cfg Config) (*Coordinates, error) {

	table, err := LoadCoordinates(upload.Reader, upload.Filename, cfg)
	if err != nil {
		return nil, err
	}
	if err := checkIssues(fmt.Sprintf("Coordinate file validation failed (%s)", upload.Filename), table.Validate(), cfg); err != nil {
		return nil, err
	}

	if cfg.Mode == ModeDomain {
		return table.CleanWithDomains()
	}
	return table.Clean()
}

func loadCutoffMatrix(upload Upload, coords *Coordinates, cfg Config) (*CutoffMatrix, error) {

	table, err := LoadMatrix(upload.Reader, upload.Filename, cfg)
	if err != nil {
		return nil, err
	}
	if err := checkIssues(fmt.Sprintf("Matrix file validation failed (%s)", upload.Filename), table.Validate(), cfg); err != nil {
		return nil, err
	}

	cutoff, err := table.Clean()
	if err != nil {
		return nil, err
	}
	if err := CheckIdentifiers(cutoff, coords); err != nil {
		return nil, err
	}
	return cutoff, nil
}

// checkIssues joins validation issues into one error, or only logs them when
// partial processing is allowed.
func checkIssues(prefix string, issues []*errs.Error, cfg Config) error {
	if len(issues) == 0 {
		return nil
	}
	if !cfg.AllowPartialProcessing {
		return errs.Join(prefix, issues)
	}
	msgs := make([]string, len(issues))
	for i, is := range issues {
		msgs[i] = is.Error()
	}
	logger.Warn("Continuing despite validation issues",
		zap.String("stage", prefix),
		zap.String("issues", strings.Join(msgs, "; ")))
	return nil
}

// boundary passes classified errors and cancellations through and hides
// anything else behind a generic message.
func boundary(err error) error {
	if errs.IsInput(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	logger.Error("Pipeline failure", zap.Error(err))
	return errs.Internal(err)
}

func recoverInternal(err *error) {
	if r := recover(); r != nil {
		logger.Error("Pipeline panic", zap.Any("panic", r))
		*err = errs.Internal(fmt.Errorf("panic: %v", r))
	}
}
