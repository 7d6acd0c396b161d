package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/finewiki/finewiki-mcp/internal/query"
)

func newFetchCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "fetch <id>",
		Short: "Fetch the full content of a document by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid document id %q: %w", args[0], err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			resolver, err := query.NewResolver(cfg.Paths.IndexDir)
			if err != nil {
				return err
			}
			defer resolver.Close()

			doc, err := resolver.FetchByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if doc == nil {
				return fmt.Errorf("document %d not found", id)
			}

			w := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}

			_, err = fmt.Fprintf(w, "%s (id=%d)\n\n%s\n", doc.Title, doc.ID, doc.Content)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the document as JSON")

	return cmd
}
