// Command genegraph builds best reciprocal hit graphs from local files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/genegraph/logger"
	"github.com/yumyai/genegraph/pkg/model"
)

// Set with -ldflags "-X main.Version=...".
var Version = "dev"

type options struct {
	coords   string
	matrices []string
	output   string
	cutoff   float64
	parallel bool
	partial  bool
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "genegraph",
		Short:         "Build gene graphs from a coordinate file and similarity matrices",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.InitLogger(logger.ParseLevel(opts.logLevel))
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(generalCommand(opts), domainCommand(opts), versionCommand())
	return root
}

func addPipelineFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVarP(&opts.coords, "coords", "c", "", "Coordinate file (.csv or .xlsx)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output JSON file (default stdout)")
	cmd.Flags().Float64Var(&opts.cutoff, "cutoff", model.DefaultCutoffThreshold, "Scores below this value are ignored")
	cmd.Flags().BoolVar(&opts.partial, "allow-partial", false, "Log validation issues instead of failing")
	cmd.MarkFlagRequired("coords")
	cmd.MarkFlagRequired("matrix")
}

func generalCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "general",
		Short: "Build the general graph from one matrix file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.matrices) != 1 {
				return fmt.Errorf("exactly one --matrix is required for the general graph")
			}

			var graph *model.Graph
			err := withUploads(opts, func(coord model.Upload, matrices []model.Upload) error {
				var err error
				graph, err = model.GenerateGeneral(cmd.Context(), coord, matrices[0], opts.config())
				return err
			})
			if err != nil {
				return err
			}

			logger.Info("Generated general graph",
				zap.Int("nodes", len(graph.Nodes)), zap.Int("links", len(graph.Links)))
			return writeOutput(cmd.OutOrStdout(), opts.output, graph)
		},
	}
	cmd.Flags().StringSliceVarP(&opts.matrices, "matrix", "m", nil, "Matrix file (.csv or .xlsx)")
	addPipelineFlags(cmd, opts)
	return cmd
}

func domainCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domain",
		Short: "Build per-domain graphs and the combined graph",
		Long: "Build one graph per domain matrix plus the combined graph. Matrix files\n" +
			"are named <prefix>domain<N>_<NAME>.<ext>; N orders the domains.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result *model.DomainResult
			err := withUploads(opts, func(coord model.Upload, matrices []model.Upload) error {
				var err error
				result, err = model.GenerateDomain(cmd.Context(), coord, matrices, opts.config())
				return err
			})
			if err != nil {
				return err
			}

			logger.Info("Generated domain graphs",
				zap.Int("domains", len(result.Domains)), zap.Int("links", len(result.Combined.Links)))
			return writeOutput(cmd.OutOrStdout(), opts.output, result)
		},
	}
	cmd.Flags().StringSliceVarP(&opts.matrices, "matrix", "m", nil, "Domain matrix file, repeat for each domain")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", true, "Process domains concurrently")
	addPipelineFlags(cmd, opts)
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "genegraph %s\n", Version)
		},
	}
}

func (o *options) config() model.Config {
	cfg := model.DefaultConfig()
	cfg.CutoffThreshold = o.cutoff
	cfg.ParallelDomains = o.parallel
	cfg.AllowPartialProcessing = o.partial
	return cfg
}

// withUploads opens the coordinate and matrix files for the duration of fn.
func withUploads(opts *options, fn func(coord model.Upload, matrices []model.Upload) error) error {

	var files []*os.File
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	open := func(path string) (model.Upload, error) {
		f, err := os.Open(path)
		if err != nil {
			return model.Upload{}, fmt.Errorf("open %s: %w", path, err)
		}
		files = append(files, f)
		return model.Upload{Filename: filepath.Base(path), Reader: f}, nil
	}

	coord, err := open(opts.coords)
	if err != nil {
		return err
	}
	matrices := make([]model.Upload, 0, len(opts.matrices))
	for _, path := range opts.matrices {
		m, err := open(path)
		if err != nil {
			return err
		}
		matrices = append(matrices, m)
	}

	return fn(coord, matrices)
}

func writeOutput(stdout io.Writer, path string, v any) error {

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
