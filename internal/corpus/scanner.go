package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrCorpusNotFound is returned when the corpus directory does not exist.
var ErrCorpusNotFound = errors.New("corpus directory not found")

// SourceExtension is the file extension of corpus data files.
const SourceExtension = ".csv"

// Scan enumerates the corpus files under dir, sorted lexicographically by
// name. Sorting is mandatory: stored locators depend on deterministic
// file ordering across rebuilds of unchanged files.
//
// The returned descriptors carry no hash yet; see Hasher. Scan is invoked
// fresh on every build and holds no state between calls.
func Scan(dir string) ([]SourceFile, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve corpus directory: %w", err)
	}

	info, err := os.Stat(absDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, absDir)
		}
		return nil, fmt.Errorf("failed to stat corpus directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrCorpusNotFound, absDir)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	files := make([]SourceFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, SourceExtension) {
			continue
		}
		files = append(files, SourceFile{
			Name: name,
			Path: filepath.Join(absDir, name),
		})
	}

	// ReadDir already sorts by name, but the ordering contract is load-bearing
	// enough to enforce explicitly.
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	return files, nil
}
