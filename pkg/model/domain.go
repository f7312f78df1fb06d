package model

import (
	"context"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yumyai/genegraph/logger"
	"github.com/yumyai/genegraph/pkg/errs"
)

// DomainFile is a matrix upload together with the domain it describes.
type DomainFile struct {
	Index int
	Name  string
	// Position of the file in the caller's list.
	Source int
}

// ParseDomainFilename reads "<anything>domain<N>_<NAME>.<ext>".
func ParseDomainFilename(filename string) (DomainFile, error) {

	base := filepath.Base(filename)
	pos := strings.Index(strings.ToLower(base), "domain")
	if pos < 0 {
		return DomainFile{}, errs.Schema("Matrix filename %s does not contain a domain (expected domain<N>_<NAME>)", base)
	}

	rest := strings.TrimSuffix(base[pos+len("domain"):], filepath.Ext(base))
	parts := strings.Split(rest, "_")
	if len(parts) < 2 {
		return DomainFile{}, errs.Schema("Matrix filename %s does not follow domain<N>_<NAME>", base)
	}

	index, err := strconv.Atoi(parts[0])
	if err != nil {
		return DomainFile{}, errs.Schema("Matrix filename %s has no numeric domain index", base)
	}
	name := strings.Join(parts[1:], "_")
	if name == "" {
		return DomainFile{}, errs.Schema("Matrix filename %s has an empty domain name", base)
	}

	return DomainFile{Index: index, Name: name}, nil
}

// ParseDomainFilenames parses every filename and orders the result by domain
// index. Source keeps the position in filenames so the matrices can follow.
func ParseDomainFilenames(filenames []string) ([]DomainFile, error) {

	var issues []*errs.Error
	files := make([]DomainFile, 0, len(filenames))
	seen := make(map[string]bool)

	for i, f := range filenames {
		df, err := ParseDomainFilename(f)
		if err != nil {
			issues = append(issues, err.(*errs.Error))
			continue
		}
		if seen[df.Name] {
			issues = append(issues, errs.Schema("Domain %s is given by more than one matrix file", df.Name))
			continue
		}
		seen[df.Name] = true
		df.Source = i
		files = append(files, df)
	}
	if len(issues) > 0 {
		return nil, errs.Join("Invalid matrix filenames", issues)
	}

	sort.SliceStable(files, func(a, b int) bool { return files[a].Index < files[b].Index })
	return files, nil
}

// domainOutput is what one iteration of the domain loop hands to the join.
type domainOutput struct {
	graph       DomainGraph
	connections Connections
	genes       map[string]bool
}

// BuildDomainGraphs runs the matrix pipeline once per domain and reconciles
// the results into the combined graph. matrices must already be ordered like
// files.
func BuildDomainGraphs(ctx context.Context, coords *Coordinates, files []DomainFile, matrices []Upload, cfg Config) (*DomainResult, error) {

	outputs := make([]domainOutput, len(files))
	genomeOf := coords.GenomeOf()

	g, gctx := errgroup.WithContext(ctx)
	if !cfg.ParallelDomains {
		g.SetLimit(1)
	}

	for i := range files {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := runDomain(files[i].Name, coords, genomeOf, matrices[i], cfg)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &DomainResult{Domains: make([]DomainGraph, len(outputs))}
	names := make([]string, len(outputs))
	connections := make([]Connections, len(outputs))
	genes := make([]map[string]bool, len(outputs))
	present := make(map[string]bool)

	for i, out := range outputs {
		result.Domains[i] = out.graph
		names[i] = out.graph.DomainName
		connections[i] = out.connections
		genes[i] = out.genes
		for gene := range out.genes {
			present[gene] = true
		}
	}

	result.Combined = CombinedGraph{
		DomainName: CombinedDomainName,
		Genomes:    nonNil(coords.Genomes()),
		Nodes:      buildNodes(coords, nodeOptions{geneType: true, domains: true, present: present}),
		Links:      Reconcile(names, connections, genes),
	}

	return result, nil
}

func runDomain(name string, coords *Coordinates, genomeOf map[string]string, upload Upload, cfg Config) (domainOutput, error) {

	logger.Debug("Processing domain", zap.String("domain", name), zap.String("file", upload.Filename))

	cutoff, err := loadCutoffMatrix(upload, coords, cfg)
	if err != nil {
		return domainOutput{}, errs.Wrap(err, "Matrix file for domain %s", name)
	}

	hits := FindBestHits(cutoff, genomeOf)
	genes := cutoff.Labels()

	return domainOutput{
		graph:       BuildDomainGraph(name, coords, hits, genes),
		connections: NewConnections(CrossGenome(hits, genomeOf)),
		genes:       genes,
	}, nil
}

// Upload is a named input stream.
type Upload struct {
	Filename string
	Reader   io.Reader
}
