// Package corpus provides access to the source data files being indexed:
// deterministic enumeration, content hashing, and row-level reads.
package corpus

// SourceFile describes one corpus file as seen by a single build.
// ContentHash is recomputed on every scan; it is the sole change signal.
type SourceFile struct {
	// Name is the file name within the corpus directory (e.g. "shard-00.csv").
	Name string

	// Path is the absolute path to the file.
	Path string

	// ContentHash is the hex-encoded SHA-256 digest of the file's bytes.
	ContentHash string

	// RowCount is the number of data rows in the file.
	RowCount int
}

// Row is one document-bearing row of a corpus file.
type Row struct {
	// ID is the corpus-wide numeric document identifier.
	ID int64

	// Title is the document title.
	Title string

	// Text is the full document body.
	Text string
}
