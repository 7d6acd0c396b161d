package index

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/renameio"
	"github.com/google/uuid"
)

// MetadataVersion is the current metadata format version.
const MetadataVersion = 1

// FileEntry records what is committed for one corpus file.
type FileEntry struct {
	// Hash is the hex SHA-256 of the file's bytes as last indexed.
	Hash string `json:"hash"`

	// DocCount is the number of documents ingested from the file. It also
	// bounds the document-key space used to delete the file's previous
	// documents on re-index.
	DocCount int `json:"doc_count"`

	// BuildMarker records when/how the file was last indexed. Diagnostics
	// only; change detection relies solely on Hash.
	BuildMarker string `json:"build_marker"`
}

// Metadata is the single durable truth of what is actually committed.
type Metadata struct {
	Version      int                  `json:"version"`
	IndexedFiles map[string]FileEntry `json:"indexed_files"`
}

// NewMetadata returns empty metadata at the current format version.
func NewMetadata() *Metadata {
	return &Metadata{
		Version:      MetadataVersion,
		IndexedFiles: map[string]FileEntry{},
	}
}

// NewBuildMarker returns an opaque marker for entries written by this build.
func NewBuildMarker() string {
	return fmt.Sprintf("%s/%s", time.Now().UTC().Format(time.RFC3339), uuid.NewString())
}

// MetadataStore loads and persists the metadata file.
type MetadataStore struct {
	path string
}

// NewMetadataStore returns a store over the given metadata file path.
func NewMetadataStore(path string) *MetadataStore {
	return &MetadataStore{path: path}
}

// Load reads the metadata file. A missing or unparsable file means "no
// files indexed yet": fresh-start recovery, never an error to the caller.
func (s *MetadataStore) Load() *Metadata {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("metadata unreadable, starting fresh",
				slog.String("path", s.path),
				slog.String("error", err.Error()))
		}
		return NewMetadata()
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		slog.Warn("metadata malformed, starting fresh",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return NewMetadata()
	}
	if meta.IndexedFiles == nil {
		meta.IndexedFiles = map[string]FileEntry{}
	}
	if meta.Version == 0 {
		meta.Version = MetadataVersion
	}
	return &meta
}

// Save overwrites the metadata file atomically (write-temp-then-rename).
// Callers must invoke it only after the corresponding index state is
// durably staged: metadata must never describe an index that isn't.
func (s *MetadataStore) Save(meta *Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := renameio.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata %s: %w", s.path, err)
	}
	return nil
}
