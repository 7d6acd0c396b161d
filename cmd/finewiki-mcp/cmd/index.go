package cmd

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/finewiki/finewiki-mcp/internal/corpus"
	"github.com/finewiki/finewiki-mcp/internal/index"
	"github.com/finewiki/finewiki-mcp/internal/output"
)

func newIndexCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build or refresh the search index",
		Long: `Build the search index from the corpus directory.

Unchanged corpus files are skipped based on their content hash; only new,
changed, or removed files trigger indexing work. The previous index stays
readable until the new one is committed.

Use --force to re-index every file regardless of stored hashes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())

			out.Statusf("scan", "Indexing corpus %s into %s", cfg.Paths.CorpusDir, cfg.Paths.IndexDir)

			result, err := index.Build(cmd.Context(), index.BuildOptions{
				CorpusDir: cfg.Paths.CorpusDir,
				IndexDir:  cfg.Paths.IndexDir,
				Force:     force,
			})
			if err != nil {
				var held *index.LockHeldError
				switch {
				case errors.Is(err, corpus.ErrCorpusNotFound):
					out.Errorf("corpus directory not found: %s", cfg.Paths.CorpusDir)
				case errors.As(err, &held):
					out.Errorf("another build is running (pid %d)", held.PID)
				default:
					out.Errorf("build failed: %v", err)
				}
				return err
			}

			slog.Info("index build finished",
				slog.Int("total_docs", result.TotalDocs),
				slog.Int("total_files", result.TotalFiles),
				slog.Int("files_indexed", result.FilesIndexed))

			if result.FilesIndexed == 0 {
				out.Successf("Index up to date: %d documents across %d files",
					result.TotalDocs, result.TotalFiles)
				return nil
			}
			out.Successf("Indexed %d of %d files, %d documents total",
				result.FilesIndexed, result.TotalFiles, result.TotalDocs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-index every file regardless of stored hashes")

	return cmd
}
