package tree

import (
	"fmt"
	"path/filepath"
	"strings"
)

// validateTreePath rejects path traversal and empty paths before a
// tree file is ever opened — storage/mmap/security.go's
// buildSecureDataPath checks, adapted to a single already-joined file
// path instead of a base-dir-plus-filename pair.
func validateTreePath(path string) error {
	if path == "" {
		return fmt.Errorf("mailtree: tree file path cannot be empty")
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("mailtree: tree file path %q contains path traversal", path)
	}
	if _, err := filepath.Abs(path); err != nil {
		return fmt.Errorf("mailtree: invalid tree file path %q: %w", path, err)
	}
	return nil
}
