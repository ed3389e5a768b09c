// Package config loads ghtree configuration files, environment overrides and
// exclusion pattern files.
package config

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/temirov/ghtree/internal/utils"
)

const commentPrefix = "#"

// LoadExcludeFile reads gitignore-style patterns, one per line, skipping blank
// lines and comments. A missing file yields no patterns.
//
// #nosec G304
func LoadExcludeFile(excludeFilePath string) ([]string, error) {
	if excludeFilePath == "" {
		return nil, nil
	}
	fileHandle, openFileError := os.Open(excludeFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", excludeFilePath, closeError)
		}
	}()

	var patterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		patterns = append(patterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf("read exclude file %s: %w", excludeFilePath, scanError)
	}
	return patterns, nil
}

// CombineExcludePatterns deduplicates the file patterns and appends the
// explicit ones not already present, preserving order.
func CombineExcludePatterns(filePatterns []string, explicitPatterns []string) []string {
	combined := utils.DeduplicatePatterns(filePatterns)
	for _, pattern := range explicitPatterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" {
			continue
		}
		if !slices.Contains(combined, trimmedPattern) {
			combined = append(combined, trimmedPattern)
		}
	}
	return combined
}
