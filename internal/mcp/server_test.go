package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finewiki/finewiki-mcp/internal/index"
	"github.com/finewiki/finewiki-mcp/internal/query"
)

// newTestServer builds a small two-file corpus, indexes it, and returns a
// Server wired to a live resolver.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	corpusDir := t.TempDir()
	indexDir := t.TempDir()

	writeFile(t, corpusDir, "a.csv",
		"id,title,text\n"+
			"1,Stained Glass,Colored glass used in windows.\n"+
			"2,Glass Harmonica,An instrument of rotating glass bowls.\n")
	writeFile(t, corpusDir, "b.csv",
		"id,title,text\n"+
			"10,Basalt,A fine-grained volcanic rock.\n"+
			"11,Obsidian,Natural volcanic glass formed from lava.\n")

	_, err := index.Build(context.Background(), index.BuildOptions{
		CorpusDir: corpusDir,
		IndexDir:  indexDir,
	})
	require.NoError(t, err)

	resolver, err := query.NewResolver(indexDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resolver.Close() })

	srv, err := NewServer(resolver, corpusDir, indexDir)
	require.NoError(t, err)
	return srv
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestNewServerRequiresResolver(t *testing.T) {
	_, err := NewServer(nil, "corpus", "index")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolver")
}

func TestSearchByTitleHandler(t *testing.T) {
	srv := newTestServer(t)

	_, out, err := srv.searchByTitleHandler(context.Background(), nil, SearchInput{Query: "harmonica"})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, int64(2), out.Results[0].ID)
	assert.Equal(t, "Glass Harmonica", out.Results[0].Title)
	assert.Greater(t, out.Results[0].Score, 0.0)
}

func TestSearchByTitleHandlerRejectsEmptyQuery(t *testing.T) {
	srv := newTestServer(t)

	_, _, err := srv.searchByTitleHandler(context.Background(), nil, SearchInput{Query: ""})
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)
}

func TestSearchByContentHandler(t *testing.T) {
	srv := newTestServer(t)

	// "volcanic" appears only in document bodies, never in a title.
	_, out, err := srv.searchByContentHandler(context.Background(), nil, SearchInput{Query: "volcanic"})
	require.NoError(t, err)
	require.Len(t, out.Results, 2)

	ids := []int64{out.Results[0].ID, out.Results[1].ID}
	assert.ElementsMatch(t, []int64{10, 11}, ids)
}

func TestSearchByContentHandlerRejectsEmptyQuery(t *testing.T) {
	srv := newTestServer(t)

	_, _, err := srv.searchByContentHandler(context.Background(), nil, SearchInput{Query: ""})
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)
}

func TestSearchHandlerHonorsLimit(t *testing.T) {
	srv := newTestServer(t)

	_, out, err := srv.searchByContentHandler(context.Background(), nil, SearchInput{Query: "glass", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, out.Results, 1)
}

func TestFetchContentHandler(t *testing.T) {
	srv := newTestServer(t)

	_, out, err := srv.fetchContentHandler(context.Background(), nil, FetchContentInput{DocID: 11})
	require.NoError(t, err)
	require.True(t, out.Found)
	require.NotNil(t, out.Document)
	assert.Equal(t, int64(11), out.Document.ID)
	assert.Equal(t, "Obsidian", out.Document.Title)
	assert.Equal(t, "Natural volcanic glass formed from lava.", out.Document.Content)
}

func TestFetchContentHandlerUnknownID(t *testing.T) {
	srv := newTestServer(t)

	_, out, err := srv.fetchContentHandler(context.Background(), nil, FetchContentInput{DocID: 999})
	require.NoError(t, err)
	assert.False(t, out.Found)
	assert.Nil(t, out.Document)
}

func TestIndexStatusHandler(t *testing.T) {
	srv := newTestServer(t)

	_, out, err := srv.indexStatusHandler(context.Background(), nil, IndexStatusInput{})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), out.DocCount)
	assert.Equal(t, 2, out.FileCount)
	assert.Equal(t, srv.corpusDir, out.CorpusDir)
	assert.Equal(t, srv.indexDir, out.IndexDir)
}
