package index

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finewiki/finewiki-mcp/internal/corpus"
)

// writeCorpusFile writes a csv source file and returns its descriptor.
func writeCorpusFile(t *testing.T, dir, name, body string) corpus.SourceFile {
	t.Helper()
	path := filepath.Join(dir, name)
	content := "id,title,text\n" + body
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return corpus.SourceFile{Name: name, Path: path}
}

func TestBuildPlan_AllNewFiles(t *testing.T) {
	dir := t.TempDir()
	files := []corpus.SourceFile{
		writeCorpusFile(t, dir, "a.csv", "1,alpha,first\n"),
		writeCorpusFile(t, dir, "b.csv", "2,beta,second\n"),
	}

	plan, err := BuildPlan(files, NewMetadata(), true, false)
	require.NoError(t, err)

	assert.Len(t, plan.Work, 2)
	assert.True(t, plan.Dirty())
	for _, f := range plan.Files {
		assert.Len(t, f.ContentHash, 64)
	}
}

func TestBuildPlan_UnchangedFileSkipped(t *testing.T) {
	dir := t.TempDir()
	f := writeCorpusFile(t, dir, "a.csv", "1,alpha,first\n")
	hash, err := corpus.HashFile(f.Path)
	require.NoError(t, err)

	meta := NewMetadata()
	meta.IndexedFiles["a.csv"] = FileEntry{Hash: hash, DocCount: 1}

	plan, err := BuildPlan([]corpus.SourceFile{f}, meta, true, false)
	require.NoError(t, err)

	assert.Empty(t, plan.Work)
	assert.False(t, plan.Dirty())
}

func TestBuildPlan_ChangedFileQueued(t *testing.T) {
	dir := t.TempDir()
	f := writeCorpusFile(t, dir, "a.csv", "1,alpha,first\n")

	meta := NewMetadata()
	meta.IndexedFiles["a.csv"] = FileEntry{Hash: "different", DocCount: 1}

	plan, err := BuildPlan([]corpus.SourceFile{f}, meta, true, false)
	require.NoError(t, err)

	require.Len(t, plan.Work, 1)
	assert.Equal(t, "a.csv", plan.Work[0].Name)
}

func TestBuildPlan_ForceRebuildsEverything(t *testing.T) {
	dir := t.TempDir()
	f := writeCorpusFile(t, dir, "a.csv", "1,alpha,first\n")
	hash, err := corpus.HashFile(f.Path)
	require.NoError(t, err)

	meta := NewMetadata()
	meta.IndexedFiles["a.csv"] = FileEntry{Hash: hash, DocCount: 1}

	plan, err := BuildPlan([]corpus.SourceFile{f}, meta, true, true)
	require.NoError(t, err)
	assert.Len(t, plan.Work, 1)
}

func TestBuildPlan_DistrustsMetadataWithoutActiveIndex(t *testing.T) {
	dir := t.TempDir()
	f := writeCorpusFile(t, dir, "a.csv", "1,alpha,first\n")
	hash, err := corpus.HashFile(f.Path)
	require.NoError(t, err)

	meta := NewMetadata()
	meta.IndexedFiles["a.csv"] = FileEntry{Hash: hash, DocCount: 1}

	// Metadata claims a.csv is indexed, but no committed index exists:
	// the claim must not be trusted.
	plan, err := BuildPlan([]corpus.SourceFile{f}, meta, false, false)
	require.NoError(t, err)
	assert.Len(t, plan.Work, 1)
	assert.Empty(t, plan.Removed)
}

func TestBuildPlan_DetectsRemovedFiles(t *testing.T) {
	dir := t.TempDir()
	f := writeCorpusFile(t, dir, "a.csv", "1,alpha,first\n")
	hash, err := corpus.HashFile(f.Path)
	require.NoError(t, err)

	meta := NewMetadata()
	meta.IndexedFiles["a.csv"] = FileEntry{Hash: hash, DocCount: 1}
	meta.IndexedFiles["gone.csv"] = FileEntry{Hash: "h", DocCount: 5}

	plan, err := BuildPlan([]corpus.SourceFile{f}, meta, true, false)
	require.NoError(t, err)

	assert.Empty(t, plan.Work)
	assert.Equal(t, []string{"gone.csv"}, plan.Removed)
	assert.True(t, plan.Dirty())
}

func TestBuildPlan_PreservesScanOrder(t *testing.T) {
	dir := t.TempDir()
	var files []corpus.SourceFile
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("f%d.csv", i)
		files = append(files, writeCorpusFile(t, dir, name, fmt.Sprintf("%d,t,x\n", i)))
	}

	plan, err := BuildPlan(files, NewMetadata(), true, false)
	require.NoError(t, err)

	require.Len(t, plan.Work, 5)
	for i, f := range plan.Work {
		assert.Equal(t, fmt.Sprintf("f%d.csv", i), f.Name)
	}
}
