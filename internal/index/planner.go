package index

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/finewiki/finewiki-mcp/internal/corpus"
)

// Plan is the outcome of diffing the scanned corpus against metadata.
type Plan struct {
	// Files is every scanned corpus file, in scan order, with hashes filled.
	Files []corpus.SourceFile

	// Work is the subset of Files that needs (re)indexing, preserving
	// corpus scan order.
	Work []corpus.SourceFile

	// Removed names metadata entries whose corpus file no longer exists.
	// Their documents are dropped during the next swap.
	Removed []string
}

// Dirty reports whether the build has anything to do. An empty work list
// with no removals short-circuits the whole pipeline: no lock, no staging.
func (p *Plan) Dirty() bool {
	return len(p.Work) > 0 || len(p.Removed) > 0
}

// BuildPlan hashes each scanned file and decides which need indexing.
//
// A file needs indexing when it is absent from metadata, its hash differs
// from the committed one, or force is set. Metadata is trusted only while
// activeExists: after an interrupted promotion there is no committed index,
// so every file is replanned regardless of what metadata claims. That makes
// a crashed build idempotent rather than silently under-indexed.
func BuildPlan(files []corpus.SourceFile, meta *Metadata, activeExists, force bool) (*Plan, error) {
	plan := &Plan{Files: make([]corpus.SourceFile, 0, len(files))}

	trust := activeExists && !force
	for _, f := range files {
		hash, err := corpus.HashFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s: %w", f.Name, err)
		}
		f.ContentHash = hash
		plan.Files = append(plan.Files, f)

		if trust {
			if entry, ok := meta.IndexedFiles[f.Name]; ok && entry.Hash == hash {
				continue
			}
		}
		plan.Work = append(plan.Work, f)
	}

	if trust {
		present := make(map[string]struct{}, len(files))
		for _, f := range plan.Files {
			present[f.Name] = struct{}{}
		}
		for name := range meta.IndexedFiles {
			if _, ok := present[name]; !ok {
				plan.Removed = append(plan.Removed, name)
			}
		}
		sort.Strings(plan.Removed)
	}

	slog.Debug("build plan computed",
		slog.Int("files", len(plan.Files)),
		slog.Int("work", len(plan.Work)),
		slog.Int("removed", len(plan.Removed)),
		slog.Bool("force", force))

	return plan, nil
}
