package batch

import (
	"fmt"
	"os"
	"path/filepath"
)

// csvPatterns is the default include set when a directory is scanned
// without explicit include patterns.
var csvPatterns = []string{"*.csv"}

// discoverListFiles finds all mailing list files for the given arguments.
// File arguments are taken as-is (subject to exclude patterns); directory
// arguments are scanned for CSV files.
func discoverListFiles(args []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var listFiles []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			include := includePatterns
			if len(include) == 0 {
				include = csvPatterns
			}
			files, err := discoverInDirectory(arg, recursive, include, excludePatterns)
			if err != nil {
				return nil, err
			}
			listFiles = append(listFiles, files...)
		} else if !matchesAnyPattern(arg, excludePatterns) {
			listFiles = append(listFiles, arg)
		}
	}

	return listFiles, nil
}

// discoverInDirectory discovers list files in a directory.
func discoverInDirectory(dir string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if shouldIncludeFile(path, includePatterns, excludePatterns) {
			files = append(files, path)
		}

		return nil
	}

	return files, filepath.Walk(dir, walkFn)
}

// shouldIncludeFile determines if a file should be included based on include/exclude patterns.
func shouldIncludeFile(path string, includePatterns, excludePatterns []string) bool {
	if matchesAnyPattern(path, excludePatterns) {
		return false
	}

	if len(includePatterns) == 0 {
		return true
	}

	return matchesAnyPattern(path, includePatterns)
}

// matchesAnyPattern checks if a file path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
