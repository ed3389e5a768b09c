// Package utils contains general helper functions used across the ghtree tool.
package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	pathSegmentSeparator = "/"
	gitRepositorySuffix  = ".git"
	githubHost           = "github.com"
)

var errEmptyRepositorySlug = errors.New("repository is required (owner/repo)")

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// NormalizeQuery trims surrounding whitespace and lower-cases a search query.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// ParseRepositorySlug extracts owner and repository names from "owner/repo" or a
// github.com URL such as https://github.com/owner/repo.git.
func ParseRepositorySlug(input string) (string, string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", "", errEmptyRepositorySlug
	}
	if strings.Contains(trimmed, "://") {
		parsedURL, parseError := url.Parse(trimmed)
		if parseError != nil {
			return "", "", fmt.Errorf("parse repository URL %q: %w", trimmed, parseError)
		}
		if !strings.EqualFold(strings.TrimPrefix(parsedURL.Host, "www."), githubHost) {
			return "", "", fmt.Errorf("repository URL %q is not hosted on %s", trimmed, githubHost)
		}
		trimmed = parsedURL.Path
	} else if strings.HasPrefix(strings.ToLower(trimmed), githubHost+pathSegmentSeparator) {
		trimmed = trimmed[len(githubHost)+1:]
	}
	trimmed = strings.Trim(trimmed, pathSegmentSeparator)
	trimmed = strings.TrimSuffix(trimmed, gitRepositorySuffix)
	segments := strings.Split(trimmed, pathSegmentSeparator)
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return "", "", fmt.Errorf("repository %q must look like owner/repo", input)
	}
	return segments[0], segments[1], nil
}
