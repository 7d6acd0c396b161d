// Package engine adapts the bleve full-text engine to the index schema used
// by the build pipeline and the query resolver. Tokenization, scoring, and
// the on-disk segment format are bleve's business; nothing above this
// package imports bleve directly.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Schema field names. id and title are stored and searchable, content is
// searchable only, the locator fields are stored only.
const (
	FieldID             = "id"
	FieldTitle          = "title"
	FieldContent        = "content"
	FieldRowIndex       = "row_index"
	FieldSourceFilePath = "source_file_path"
)

// Document is the unit ingested into the engine. The locator fields let a
// search hit be resolved back to an exact row of the original corpus file
// without rescanning it.
type Document struct {
	ID             int64
	Title          string
	Content        string
	RowIndex       int
	SourceFilePath string
}

// Hit is a projected ranked search result.
type Hit struct {
	ID    int64
	Title string
	Score float64
}

// StoredDoc is the stored-field view of a single document, as returned by
// FetchStored. Content is not stored in the index and is absent here.
type StoredDoc struct {
	ID             int64
	Title          string
	RowIndex       int
	SourceFilePath string
}

// Index wraps an open bleve index.
type Index struct {
	idx  bleve.Index
	path string
}

// DocKey returns the engine document key for row rowIndex of the named
// corpus file. Keys are stable across rebuilds of an unchanged file, which
// is what makes per-file deletion and re-ingest possible.
func DocKey(fileName string, rowIndex int) string {
	return fmt.Sprintf("%s#%d", fileName, rowIndex)
}

// buildMapping constructs the index mapping for the corpus schema.
func buildMapping() *mapping.IndexMappingImpl {
	idField := bleve.NewNumericFieldMapping()
	idField.Store = true
	idField.Index = true
	idField.IncludeInAll = false

	titleField := bleve.NewTextFieldMapping()
	titleField.Store = true
	titleField.Index = true
	titleField.IncludeInAll = false

	contentField := bleve.NewTextFieldMapping()
	contentField.Store = false
	contentField.Index = true
	contentField.IncludeInAll = false

	rowIndexField := bleve.NewNumericFieldMapping()
	rowIndexField.Store = true
	rowIndexField.Index = false
	rowIndexField.IncludeInAll = false

	sourcePathField := bleve.NewTextFieldMapping()
	sourcePathField.Store = true
	sourcePathField.Index = false
	sourcePathField.IncludeInAll = false

	doc := bleve.NewDocumentStaticMapping()
	doc.AddFieldMappingsAt(FieldID, idField)
	doc.AddFieldMappingsAt(FieldTitle, titleField)
	doc.AddFieldMappingsAt(FieldContent, contentField)
	doc.AddFieldMappingsAt(FieldRowIndex, rowIndexField)
	doc.AddFieldMappingsAt(FieldSourceFilePath, sourcePathField)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	im.DefaultAnalyzer = standard.Name
	return im
}

// Create creates a new empty index at path.
func Create(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index parent directory: %w", err)
	}
	idx, err := bleve.New(path, buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index at %s: %w", path, err)
	}
	return &Index{idx: idx, path: path}, nil
}

// Open opens the committed index at path.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index at %s: %w", path, err)
	}
	return &Index{idx: idx, path: path}, nil
}

// Exists reports whether path holds an index that can plausibly be opened.
// A directory without the bleve meta file is treated as absent; the build
// planner uses this to distinguish a committed index from debris left by an
// interrupted promotion.
func Exists(path string) bool {
	info, err := os.Stat(filepath.Join(path, "index_meta.json"))
	return err == nil && info.Size() > 0
}

// Path returns the index directory path.
func (ix *Index) Path() string {
	return ix.path
}

// DocCount returns the number of documents in the index.
func (ix *Index) DocCount() (uint64, error) {
	return ix.idx.DocCount()
}

// Close releases the index.
func (ix *Index) Close() error {
	return ix.idx.Close()
}

// Writer accumulates document adds and deletes into a single batch whose
// Commit is the durability point for a staging index.
type Writer struct {
	idx   bleve.Index
	batch *bleve.Batch
}

// Writer returns a new write batch over the index.
func (ix *Index) Writer() *Writer {
	return &Writer{idx: ix.idx, batch: ix.idx.NewBatch()}
}

// Add stages one document for ingestion.
func (w *Writer) Add(doc Document) error {
	fields := map[string]interface{}{
		FieldID:             doc.ID,
		FieldTitle:          doc.Title,
		FieldContent:        doc.Content,
		FieldRowIndex:       doc.RowIndex,
		FieldSourceFilePath: doc.SourceFilePath,
	}
	key := DocKey(filepath.Base(doc.SourceFilePath), doc.RowIndex)
	if err := w.batch.Index(key, fields); err != nil {
		return fmt.Errorf("failed to stage document %s: %w", key, err)
	}
	return nil
}

// Delete stages removal of the given document key.
func (w *Writer) Delete(key string) {
	w.batch.Delete(key)
}

// Commit executes the accumulated batch.
func (w *Writer) Commit() error {
	if err := w.idx.Batch(w.batch); err != nil {
		return fmt.Errorf("failed to commit write batch: %w", err)
	}
	return nil
}

// SearchField parses query against the given searchable field and executes
// a ranked search capped at limit hits. Ranking and tie-breaking are
// entirely bleve's; no additional ordering is imposed.
func (ix *Index) SearchField(ctx context.Context, field, query string, limit int) ([]Hit, error) {
	q := bleve.NewMatchQuery(query)
	q.SetField(field)

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{FieldID, FieldTitle}

	res, err := ix.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search on %s failed: %w", field, err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{
			ID:    storedInt64(h.Fields[FieldID]),
			Title: storedString(h.Fields[FieldTitle]),
			Score: h.Score,
		})
	}
	return hits, nil
}

// FetchStored retrieves the stored fields of the document with the exact
// numeric id. Returns nil when no document matches.
func (ix *Index) FetchStored(ctx context.Context, id int64) (*StoredDoc, error) {
	val := float64(id)
	incl := true
	q := bleve.NewNumericRangeInclusiveQuery(&val, &val, &incl, &incl)
	q.SetField(FieldID)

	req := bleve.NewSearchRequest(q)
	req.Size = 1
	req.Fields = []string{FieldID, FieldTitle, FieldRowIndex, FieldSourceFilePath}

	res, err := ix.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch of id %d failed: %w", id, err)
	}
	if len(res.Hits) == 0 {
		return nil, nil
	}

	h := res.Hits[0]
	return &StoredDoc{
		ID:             storedInt64(h.Fields[FieldID]),
		Title:          storedString(h.Fields[FieldTitle]),
		RowIndex:       int(storedInt64(h.Fields[FieldRowIndex])),
		SourceFilePath: storedString(h.Fields[FieldSourceFilePath]),
	}, nil
}

// Bleve returns stored numerics as float64 and may wrap single values in a
// slice depending on the field; normalize both here.

func storedInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case []interface{}:
		if len(n) > 0 {
			return storedInt64(n[0])
		}
	}
	return 0
}

func storedString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []interface{}:
		if len(s) > 0 {
			return storedString(s[0])
		}
	}
	return ""
}
