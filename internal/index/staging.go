package index

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// purgeStaging removes any staging artifact left by an aborted earlier run.
func purgeStaging(layout Layout) error {
	if err := os.RemoveAll(layout.StagingPath()); err != nil {
		return fmt.Errorf("failed to purge staging directory: %w", err)
	}
	return nil
}

// seedStaging prepares the staging directory from the committed index.
// The build lock excludes writers and committed segment files are never
// rewritten in place, so a plain file copy yields a consistent clone even
// while readers hold the active index open.
func seedStaging(layout Layout) error {
	return copyDir(layout.ActivePath(), layout.StagingPath())
}

// promote makes the staging index the active one. Each rename is atomic
// within the filesystem, so a reader sees either the fully-previous index
// or the fully-new one, never a blend. A crash between the two renames
// leaves no active index, which the planner treats as a full replan.
func promote(layout Layout) error {
	_ = os.RemoveAll(layout.RetiredPath())

	retired := false
	if _, err := os.Stat(layout.ActivePath()); err == nil {
		if err := os.Rename(layout.ActivePath(), layout.RetiredPath()); err != nil {
			return fmt.Errorf("failed to retire previous index: %w", err)
		}
		retired = true
	}

	if err := os.Rename(layout.StagingPath(), layout.ActivePath()); err != nil {
		// Put the previous index back so a failed promotion leaves the
		// committed state exactly as it was.
		if retired {
			_ = os.Rename(layout.RetiredPath(), layout.ActivePath())
		}
		return fmt.Errorf("failed to promote staging index: %w", err)
	}

	return nil
}

// prune removes everything under the index root except the metadata file,
// the lock files, and the active index. The previous committed index's
// storage is freed here, only after the new one is fully in place.
func prune(layout Layout) error {
	keep := map[string]struct{}{
		activeDirName:    {},
		metadataFileName: {},
		lockFileName:     {},
		flockFileName:    {},
	}

	entries, err := os.ReadDir(layout.Root)
	if err != nil {
		return fmt.Errorf("failed to read index root: %w", err)
	}
	for _, entry := range entries {
		if _, ok := keep[entry.Name()]; ok {
			continue
		}
		if err := os.RemoveAll(filepath.Join(layout.Root, entry.Name())); err != nil {
			return fmt.Errorf("failed to prune %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// copyDir recursively copies src into dst, preserving file modes.
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm())
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
