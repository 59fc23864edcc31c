package csvinfer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// validator checks inputs before an analysis starts
type validator struct{}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// validatePath validates a single file or directory path
func (v *validator) validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("path does not exist: %s", path)
		}
		return fmt.Errorf("failed to stat path %s: %w", path, err)
	}

	// For files, check if they are supported
	if !info.IsDir() && !IsSupportedFile(path) {
		return fmt.Errorf("%w: %s (supported: %s)",
			ErrUnsupportedFormat, path, strings.Join(supportedFileExtPatterns(), ", "))
	}
	return nil
}

// validateFileType rejects sources whose format cannot be tokenized
func (v *validator) validateFileType(name string, fileType FileType) error {
	if fileType == FileTypeUnsupported {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	return nil
}

// collectPaths validates every path and expands directories to the supported
// files they contain, recursively and in lexical order. Duplicates are removed.
func (v *validator) collectPaths(paths []string) ([]string, error) {
	collected := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))

	add := func(path string) {
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		collected = append(collected, clean)
	}

	for _, path := range paths {
		if err := v.validatePath(path); err != nil {
			return nil, err
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}

		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !d.IsDir() && IsSupportedFile(p) {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk directory %s: %w", path, err)
		}
		slices.Sort(found)
		for _, p := range found {
			add(p)
		}
	}

	if len(collected) == 0 {
		return nil, errors.New("no supported files found")
	}
	return collected, nil
}
