// Package index implements the incremental, crash-safe build pipeline:
// change planning against durable metadata, single-writer locking, staged
// ingestion, and atomic promotion of the staged index.
package index

import "path/filepath"

// On-disk names under the index root. Everything else found there is
// debris from an earlier run and is pruned after promotion.
const (
	activeDirName    = "active"
	stagingDirName   = "staging"
	retiredDirName   = "active.old"
	metadataFileName = "metadata.json"
	lockFileName     = "build.lock"
	flockFileName    = "build.lock.flock"
)

// Layout resolves the fixed paths under an index root directory.
type Layout struct {
	Root string
}

// NewLayout returns the layout for the given index root.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// ActivePath is the committed index directory readers open.
func (l Layout) ActivePath() string { return filepath.Join(l.Root, activeDirName) }

// StagingPath is the transient in-progress index directory.
func (l Layout) StagingPath() string { return filepath.Join(l.Root, stagingDirName) }

// RetiredPath is where the previous active index is parked during promotion.
func (l Layout) RetiredPath() string { return filepath.Join(l.Root, retiredDirName) }

// MetadataPath is the durable record of what is committed.
func (l Layout) MetadataPath() string { return filepath.Join(l.Root, metadataFileName) }

// LockPath is the plain-text build lock record.
func (l Layout) LockPath() string { return filepath.Join(l.Root, lockFileName) }

// FlockPath is the advisory lock guarding rewrites of the lock record.
func (l Layout) FlockPath() string { return filepath.Join(l.Root, flockFileName) }
