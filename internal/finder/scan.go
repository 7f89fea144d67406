package finder

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/becheran/wildmatch-go"
)

// DefaultExtensions are the file types collected from directories when no
// extensions are configured.
var DefaultExtensions = []string{".md", ".markdown", ".txt", ".rst"}

// ScanOptions configures how directory arguments are expanded.
type ScanOptions struct {
	// Pattern is a shell-style wildcard matched against file names (empty = all)
	Pattern string
	// Extensions to include, case-insensitive (empty = DefaultExtensions)
	Extensions []string
	// ExcludeDirs are directory names never entered
	ExcludeDirs []string
	// MaxDepth limits recursion (0 = unlimited, 1 = the directory itself only)
	MaxDepth int
}

// ScanResult holds the collected files and the non-fatal errors met on the
// way.
type ScanResult struct {
	Files  []string
	Errors []error
}

// Collect expands paths into doctest files. Files are kept as given;
// directories are walked, skipping hidden and excluded directories. The
// result is sorted and free of duplicates.
func Collect(paths []string, opts ScanOptions) (*ScanResult, error) {
	result := &ScanResult{}
	seen := make(map[string]bool)
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			result.Files = append(result.Files, path)
		}
	}

	var pattern *wildmatch.WildMatch
	if opts.Pattern != "" {
		pattern = wildmatch.NewWildMatch(opts.Pattern)
	}

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	extMap := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[strings.ToLower(ext)] = true
	}

	excludeMap := make(map[string]bool, len(opts.ExcludeDirs))
	for _, dir := range opts.ExcludeDirs {
		excludeMap[dir] = true
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
				return nil
			}
			if path == root {
				return nil
			}

			if d.IsDir() {
				if excludeMap[d.Name()] || strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				if opts.MaxDepth > 0 {
					rel, _ := filepath.Rel(root, path)
					depth := strings.Count(rel, string(filepath.Separator)) + 1
					if depth >= opts.MaxDepth {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if !extMap[strings.ToLower(filepath.Ext(d.Name()))] {
				return nil
			}
			if pattern != nil && !pattern.IsMatch(d.Name()) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	sort.Strings(result.Files)
	return result, nil
}
