package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/finewiki/finewiki-mcp/internal/engine"
	"github.com/finewiki/finewiki-mcp/internal/index"
	"github.com/finewiki/finewiki-mcp/internal/query"
)

// statusInfo is the machine-readable status report.
type statusInfo struct {
	CorpusDir    string           `json:"corpus_dir"`
	IndexDir     string           `json:"index_dir"`
	IndexExists  bool             `json:"index_exists"`
	DocCount     uint64           `json:"doc_count"`
	IndexedFiles []fileStatusInfo `json:"indexed_files"`
}

type fileStatusInfo struct {
	Name     string `json:"name"`
	DocCount int    `json:"doc_count"`
	Hash     string `json:"hash"`
}

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index status",
		Long: `Display information about the committed index: document count,
the corpus files it covers, and their stored content hashes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			info, err := collectStatus(cfg.Paths.CorpusDir, cfg.Paths.IndexDir)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			if !info.IndexExists {
				_, err := fmt.Fprintf(w, "No index at %s. Run 'finewiki-mcp index' first.\n", info.IndexDir)
				return err
			}

			fmt.Fprintf(w, "Index:     %s\n", info.IndexDir)
			fmt.Fprintf(w, "Corpus:    %s\n", info.CorpusDir)
			fmt.Fprintf(w, "Documents: %d\n", info.DocCount)
			fmt.Fprintf(w, "Files:     %d\n", len(info.IndexedFiles))
			for _, f := range info.IndexedFiles {
				fmt.Fprintf(w, "  %-30s %6d docs  %s\n", f.Name, f.DocCount, shortHash(f.Hash))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func collectStatus(corpusDir, indexDir string) (*statusInfo, error) {
	layout := index.NewLayout(indexDir)
	info := &statusInfo{
		CorpusDir:    corpusDir,
		IndexDir:     indexDir,
		IndexedFiles: []fileStatusInfo{},
	}

	if !engine.Exists(layout.ActivePath()) {
		return info, nil
	}
	info.IndexExists = true

	resolver, err := query.NewResolver(indexDir)
	if err != nil {
		return nil, err
	}
	defer resolver.Close()

	docs, err := resolver.DocCount()
	if err != nil {
		return nil, err
	}
	info.DocCount = docs

	meta := index.NewMetadataStore(layout.MetadataPath()).Load()
	for name, entry := range meta.IndexedFiles {
		info.IndexedFiles = append(info.IndexedFiles, fileStatusInfo{
			Name:     name,
			DocCount: entry.DocCount,
			Hash:     entry.Hash,
		})
	}
	sort.Slice(info.IndexedFiles, func(i, j int) bool {
		return info.IndexedFiles[i].Name < info.IndexedFiles[j].Name
	})

	return info, nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
