package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finewiki/finewiki-mcp/internal/query"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	field  string // "title" or "content"
	limit  int
	format string // "text" or "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed corpus",
		Long: `Search the committed index and print ranked matches.

Examples:
  finewiki-mcp search "glass harmonica"
  finewiki-mcp search volcano --field content --limit 5
  finewiki-mcp search volcano --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.field, "field", "F", "title", "Field to search: title, content")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (0 uses the configured default)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(cmd *cobra.Command, q string, opts searchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.limit <= 0 {
		opts.limit = cfg.Search.MaxResults
	}

	resolver, err := query.NewResolver(cfg.Paths.IndexDir)
	if err != nil {
		return err
	}
	defer resolver.Close()

	var results []query.SearchResult
	switch opts.field {
	case "title":
		results, err = resolver.SearchByTitle(cmd.Context(), q, opts.limit)
	case "content":
		results, err = resolver.SearchByContent(cmd.Context(), q, opts.limit)
	default:
		return fmt.Errorf("unknown field %q (use title or content)", opts.field)
	}
	if err != nil {
		return err
	}

	return formatResults(cmd, q, results, opts.format)
}

func formatResults(cmd *cobra.Command, q string, results []query.SearchResult, format string) error {
	w := cmd.OutOrStdout()

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		_, err := fmt.Fprintf(w, "No results for %q\n", q)
		return err
	}

	for i, r := range results {
		if _, err := fmt.Fprintf(w, "%2d. %s (id=%d, score=%.3f)\n", i+1, r.Title, r.ID, r.Score); err != nil {
			return err
		}
	}
	return nil
}
