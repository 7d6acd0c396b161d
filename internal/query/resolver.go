// Package query is the lock-free read path: ranked search over the
// committed index and locator-based fetch back into the corpus. It never
// touches build-side state and never blocks on the build lock.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/finewiki/finewiki-mcp/internal/corpus"
	"github.com/finewiki/finewiki-mcp/internal/engine"
	"github.com/finewiki/finewiki-mcp/internal/index"
)

// tableCacheSize bounds the number of memoized source tables. Corpora are
// sharded into a modest number of files, so this is rarely reached.
const tableCacheSize = 64

// DefaultLimit is the search hit cap used when the caller passes none.
const DefaultLimit = 10

// ErrIndexNotFound is returned when no committed index exists yet.
var ErrIndexNotFound = errors.New("index not found")

// SearchResult is one projected search hit.
type SearchResult struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// FetchResult is the full document resolved through its locator.
type FetchResult struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Resolver answers searches and fetches against the last committed index.
// Each Resolver owns a private source-table cache; instances need no
// cross-instance coordination.
type Resolver struct {
	ix     *engine.Index
	tables *lru.Cache[string, *corpus.Table]
	group  singleflight.Group
}

// NewResolver opens the committed index under indexDir.
func NewResolver(indexDir string) (*Resolver, error) {
	layout := index.NewLayout(indexDir)
	if !engine.Exists(layout.ActivePath()) {
		return nil, fmt.Errorf("%w at %s, run a build first", ErrIndexNotFound, indexDir)
	}
	ix, err := engine.Open(layout.ActivePath())
	if err != nil {
		return nil, err
	}

	cache, err := lru.New[string, *corpus.Table](tableCacheSize)
	if err != nil {
		_ = ix.Close()
		return nil, fmt.Errorf("failed to create table cache: %w", err)
	}

	return &Resolver{ix: ix, tables: cache}, nil
}

// Close releases the index handle.
func (r *Resolver) Close() error {
	return r.ix.Close()
}

// DocCount returns the number of documents in the committed index.
func (r *Resolver) DocCount() (uint64, error) {
	return r.ix.DocCount()
}

// SearchByTitle runs a ranked search of the title field.
func (r *Resolver) SearchByTitle(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	return r.search(ctx, engine.FieldTitle, query, limit)
}

// SearchByContent runs a ranked search of the content field.
func (r *Resolver) SearchByContent(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	return r.search(ctx, engine.FieldContent, query, limit)
}

func (r *Resolver) search(ctx context.Context, field, query string, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	hits, err := r.ix.SearchField(ctx, field, query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, SearchResult{ID: h.ID, Title: h.Title, Score: h.Score})
	}
	return results, nil
}

// FetchByID resolves the document with the given id to its full content by
// reading the locator's row out of the original corpus file. Returns
// (nil, nil) when no document matches, or when the locator no longer
// resolves to a readable row. Locator drift is reported as not-found,
// never as stale content.
func (r *Resolver) FetchByID(ctx context.Context, id int64) (*FetchResult, error) {
	doc, err := r.ix.FetchStored(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	table, err := r.table(doc.SourceFilePath)
	if err != nil {
		slog.Warn("locator source unreadable",
			slog.Int64("id", id),
			slog.String("path", doc.SourceFilePath),
			slog.String("error", err.Error()))
		return nil, nil
	}

	row, ok := table.Row(doc.RowIndex)
	if !ok {
		slog.Warn("locator row out of range",
			slog.Int64("id", id),
			slog.String("path", doc.SourceFilePath),
			slog.Int("row_index", doc.RowIndex),
			slog.Int("row_count", table.RowCount()))
		return nil, nil
	}

	return &FetchResult{ID: doc.ID, Title: row.Title, Content: row.Text}, nil
}

// table returns the memoized parsed table for path, loading it at most
// once even under concurrent fetches.
func (r *Resolver) table(path string) (*corpus.Table, error) {
	if t, ok := r.tables.Get(path); ok {
		return t, nil
	}

	v, err, _ := r.group.Do(path, func() (interface{}, error) {
		if t, ok := r.tables.Get(path); ok {
			return t, nil
		}
		t, err := corpus.OpenTable(path)
		if err != nil {
			return nil, err
		}
		r.tables.Add(path, t)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*corpus.Table), nil
}
