package tree

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/temirov/ghtree/internal/types"
)

// Exclude drops entries matching any of the gitignore-style patterns. A pattern
// naming a directory removes everything below it as well.
func Exclude(entries []types.Entry, patterns []string) []types.Entry {
	matcher := newExclusionMatcher(patterns)
	if matcher == nil {
		return entries
	}
	kept := make([]types.Entry, 0, len(entries))
	for _, entry := range entries {
		segments := splitPath(entry.Path)
		if len(segments) > 0 && matcher.Match(segments, entry.Type == types.EntryTypeTree) {
			continue
		}
		kept = append(kept, entry)
	}
	return kept
}

func newExclusionMatcher(rawPatterns []string) gitignore.Matcher {
	var patterns []gitignore.Pattern
	for _, rawPattern := range rawPatterns {
		trimmed := strings.TrimSpace(rawPattern)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(trimmed, nil))
	}
	if len(patterns) == 0 {
		return nil
	}
	return gitignore.NewMatcher(patterns)
}
