package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolveFiles takes user-provided paths, directories and globs and returns
// the regular files they name, relative paths resolved against base.
// Hidden directories are skipped when walking a directory or a glob.
func ResolveFiles(patterns []string, base string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	var files []string
	seen := make(map[string]bool) // Deduplicate.

	for _, pattern := range patterns {
		resolved, err := resolvePattern(pattern, base)
		if err != nil {
			return nil, err
		}

		for _, f := range resolved {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no matching files found")
	}

	return files, nil
}

func resolvePattern(pattern, base string) ([]string, error) {
	absPattern := pattern
	if !filepath.IsAbs(pattern) {
		absPattern = filepath.Join(base, pattern)
	}

	info, err := os.Stat(absPattern)
	if err == nil && info.IsDir() {
		return findFilesInDir(absPattern)
	}

	if strings.ContainsAny(pattern, "*?[{") {
		return expandGlob(absPattern)
	}

	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", pattern)
	}
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", pattern)
	}

	return []string{absPattern}, nil
}

func expandGlob(absPattern string) ([]string, error) {
	// doublestar adds ** support.
	matches, err := doublestar.FilepathGlob(absPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", absPattern, err)
	}

	// Hidden directories only count below the fixed part of the pattern.
	base, _ := doublestar.SplitPattern(filepath.ToSlash(absPattern))
	base = filepath.FromSlash(base)

	var filtered []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if rel, err := filepath.Rel(base, m); err == nil && inHiddenDir(rel) {
			continue
		}
		filtered = append(filtered, m)
	}

	return filtered, nil
}

func findFilesInDir(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		files = append(files, path)
		return nil
	})

	return files, err
}

func inHiddenDir(path string) bool {
	parts := strings.Split(filepath.ToSlash(filepath.Dir(path)), "/")
	for _, part := range parts {
		if len(part) > 1 && strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
	}
	return false
}
