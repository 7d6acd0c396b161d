package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/finewiki/finewiki-mcp/internal/corpus"
	"github.com/finewiki/finewiki-mcp/internal/engine"
)

// BuildOptions configures one build invocation.
type BuildOptions struct {
	// CorpusDir is the directory holding the source data files.
	CorpusDir string

	// IndexDir is the index root directory.
	IndexDir string

	// Force re-indexes every corpus file regardless of stored hashes.
	Force bool

	// Alive overrides the process liveness probe. Nil means ProcessAlive.
	Alive AlivenessFunc
}

// BuildResult reports what a build left behind.
type BuildResult struct {
	// TotalDocs is the document total across the whole corpus as it exists
	// now, not just the files touched by this build.
	TotalDocs int

	// TotalFiles is the number of corpus files.
	TotalFiles int

	// FilesIndexed is the number of files (re)indexed by this invocation.
	// Zero means the build short-circuited with nothing to do.
	FilesIndexed int
}

// Build runs the full pipeline: scan, plan, and, when there is work,
// lock, stage, ingest, and atomically swap in the new index.
//
// All failures after staging begins discard the staging area and leave the
// previously committed index and metadata untouched. The caller sees a
// single error, never a partially applied index.
func Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	files, err := corpus.Scan(opts.CorpusDir)
	if err != nil {
		return nil, err
	}

	layout := NewLayout(opts.IndexDir)
	store := NewMetadataStore(layout.MetadataPath())
	meta := store.Load()
	activeExists := engine.Exists(layout.ActivePath())

	// A leftover staging directory means an earlier build died somewhere
	// between ingest and promotion. Its metadata may describe an index that
	// never became active, so the plan must not trust it.
	_, statErr := os.Stat(layout.StagingPath())
	stagingLeftover := statErr == nil

	trust := activeExists && !stagingLeftover && !opts.Force
	plan, err := BuildPlan(files, meta, activeExists && !stagingLeftover, opts.Force)
	if err != nil {
		return nil, err
	}
	if !trust {
		// Everything is being re-ingested into a fresh index; entries for
		// files that vanished from the corpus must not survive the rebuild.
		meta = NewMetadata()
	}

	if !plan.Dirty() {
		// Nothing to do: no lock, no staging. The document total is
		// recomputed from the corpus as it exists right now, not from
		// cached metadata counts.
		total := 0
		for _, f := range plan.Files {
			n, err := corpus.CountRows(f.Path)
			if err != nil {
				return nil, err
			}
			total += n
		}
		slog.Info("index up to date",
			slog.Int("files", len(plan.Files)),
			slog.Int("docs", total))
		return &BuildResult{TotalDocs: total, TotalFiles: len(plan.Files)}, nil
	}

	lock, err := AcquireLock(layout, opts.Alive)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := lock.Release(); rerr != nil {
			slog.Warn("failed to release build lock", slog.String("error", rerr.Error()))
		}
	}()

	if err := purgeStaging(layout); err != nil {
		return nil, err
	}

	// Seed staging from the committed index only when the plan trusted the
	// metadata that describes it; otherwise every document is re-ingested
	// into a fresh index and no stale state can survive.
	counts, err := ingest(ctx, layout, meta, plan, trust)
	if err != nil {
		_ = os.RemoveAll(layout.StagingPath())
		return nil, fmt.Errorf("ingest failed, previous index untouched: %w", err)
	}

	if err := swap(layout, store, meta, plan, counts); err != nil {
		_ = os.RemoveAll(layout.StagingPath())
		return nil, err
	}

	result := &BuildResult{
		TotalFiles:   len(plan.Files),
		FilesIndexed: len(plan.Work),
	}
	for _, f := range plan.Files {
		result.TotalDocs += meta.IndexedFiles[f.Name].DocCount
	}

	slog.Info("build complete",
		slog.Int("files_indexed", result.FilesIndexed),
		slog.Int("total_docs", result.TotalDocs),
		slog.Int("total_files", result.TotalFiles))

	return result, nil
}

// ingest writes the staging index: seed it from the committed index (or
// create it fresh when none exists), drop the previous documents of every
// file being re-indexed or removed, and add one document per row of every
// work-list file. One batch, one commit; any error aborts the whole build
// so a partial ingest can never look complete.
func ingest(ctx context.Context, layout Layout, meta *Metadata, plan *Plan, seedFromActive bool) (counts map[string]int, err error) {
	var ix *engine.Index
	if seedFromActive {
		if err := seedStaging(layout); err != nil {
			return nil, err
		}
		ix, err = engine.Open(layout.StagingPath())
	} else {
		ix, err = engine.Create(layout.StagingPath())
	}
	if err != nil {
		return nil, err
	}
	// Closed exactly once; bleve does not tolerate a double Close.
	defer func() {
		cerr := ix.Close()
		if cerr != nil && err == nil {
			counts = nil
			err = fmt.Errorf("failed to close staging index: %w", cerr)
		}
	}()

	w := ix.Writer()

	deletePrevious := func(name string) {
		entry, ok := meta.IndexedFiles[name]
		if !ok {
			return
		}
		for i := 0; i < entry.DocCount; i++ {
			w.Delete(engine.DocKey(name, i))
		}
	}

	for _, name := range plan.Removed {
		deletePrevious(name)
	}

	counts = make(map[string]int, len(plan.Work))
	for _, f := range plan.Work {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		deletePrevious(f.Name)

		table, err := corpus.OpenTable(f.Path)
		if err != nil {
			return nil, err
		}
		for i, row := range table.Rows() {
			doc := engine.Document{
				ID:             row.ID,
				Title:          row.Title,
				Content:        row.Text,
				RowIndex:       i,
				SourceFilePath: f.Path,
			}
			if err := w.Add(doc); err != nil {
				return nil, err
			}
		}
		counts[f.Name] = table.RowCount()
		slog.Debug("file staged",
			slog.String("file", f.Name),
			slog.Int("docs", table.RowCount()))
	}

	if err := w.Commit(); err != nil {
		return nil, err
	}
	return counts, nil
}

// swap is the post-ingest commit sequence. Metadata is persisted before
// promotion: a crash in the gap leaves no active index, and the planner
// then recomputes everything metadata claims, which is safe. Pruning runs
// after promotion and its failure is not fatal; the new index is already
// committed and the debris goes away on the next successful build.
func swap(layout Layout, store *MetadataStore, meta *Metadata, plan *Plan, counts map[string]int) error {
	previous := store.Load()

	marker := NewBuildMarker()
	for _, f := range plan.Work {
		meta.IndexedFiles[f.Name] = FileEntry{
			Hash:        f.ContentHash,
			DocCount:    counts[f.Name],
			BuildMarker: marker,
		}
	}
	for _, name := range plan.Removed {
		delete(meta.IndexedFiles, name)
	}

	if err := store.Save(meta); err != nil {
		return err
	}
	if err := promote(layout); err != nil {
		// The previous index is still active (promote rolls its rename
		// back), so the persisted metadata must describe it again.
		if rerr := store.Save(previous); rerr != nil {
			slog.Warn("failed to restore previous metadata", slog.String("error", rerr.Error()))
		}
		return err
	}
	if err := prune(layout); err != nil {
		slog.Warn("failed to prune index root", slog.String("error", err.Error()))
	}
	return nil
}
