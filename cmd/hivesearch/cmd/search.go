package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/beebytez/hivesearch/internal/output"
	"github.com/beebytez/hivesearch/pkg/hive"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	path    string
	top     int
	ext     []string
	exclude []string
	workers int
	backend string
	format  string // "text", "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <term> [term...]",
		Short: "Index a source tree and rank pieces against keywords",
		Long: `Index the tree under --path and rank its pieces against 1-4 keywords.

Examples:
  hivesearch search auth password
  hivesearch search handleRequest --path ./services/api --top 5
  hivesearch search "fetch" "error" --ext go,py --format json`,
		Args: cobra.RangeArgs(1, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.path, "path", "p", ".", "Root path to index")
	cmd.Flags().IntVarP(&opts.top, "top", "n", 0, "Maximum number of results (default from config)")
	cmd.Flags().StringSliceVarP(&opts.ext, "ext", "e", nil, "File extension allowlist (e.g. --ext go,py)")
	cmd.Flags().StringSliceVarP(&opts.exclude, "exclude", "x", nil, "Extra exclusion patterns")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Worker pool size (default: CPU cores)")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "Compute backend: auto, cpu, blas")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(cmd *cobra.Command, terms []string, opts searchOptions) error {
	slog.Info("search_started",
		slog.String("path", opts.path),
		slog.Any("terms", terms))

	callOpts := []hive.Option{}
	if opts.top > 0 {
		callOpts = append(callOpts, hive.WithTopK(opts.top))
	}
	if len(opts.ext) > 0 {
		callOpts = append(callOpts, hive.WithExtensions(opts.ext))
	}
	if len(opts.exclude) > 0 {
		callOpts = append(callOpts, hive.WithExclude(opts.exclude))
	}
	if opts.workers > 0 {
		callOpts = append(callOpts, hive.WithWorkers(opts.workers))
	}
	if opts.backend != "" {
		callOpts = append(callOpts, hive.WithBackendMode(opts.backend))
	}

	resp, err := hive.BuildAndQuery(cmd.Context(), opts.path, terms, callOpts...)
	if err != nil {
		return err
	}

	switch opts.format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "text":
		renderText(cmd, resp)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", opts.format)
	}
}

func renderText(cmd *cobra.Command, resp *hive.QueryResponse) {
	out := output.New(cmd.OutOrStdout())

	if resp.TotalPieces == 0 {
		out.Statusf("no indexable files under the given path")
		return
	}
	if len(resp.Results) == 0 {
		out.Statusf("no pieces matched %q", resp.Query)
		out.Summary(resp.TotalPieces, 0, resp.BuildTimeMS, resp.QueryTimeUS)
		return
	}

	for _, r := range resp.Results {
		out.Result(r.Rank, r.Score, r.File, r.StartLine, r.Preview)
		out.Newline()
	}
	out.Summary(resp.TotalPieces, len(resp.Results), resp.BuildTimeMS, resp.QueryTimeUS)
}
