// Package render maps trees and listings to display-ready structures.
package render

import (
	"strings"

	"github.com/temirov/ghtree/internal/types"
)

// Segment is one run of display text; Marked runs matched the query.
type Segment struct {
	Text   string
	Marked bool
}

// Split locates the first case-insensitive occurrence of query in text and
// returns the surrounding pieces with their original case.
func Split(text string, query string) (types.Highlight, bool) {
	if query == "" || text == "" {
		return types.Highlight{}, false
	}
	textRunes := []rune(text)
	queryLength := len([]rune(query))
	for start := 0; start+queryLength <= len(textRunes); start++ {
		candidate := string(textRunes[start : start+queryLength])
		if strings.EqualFold(candidate, query) {
			return types.Highlight{
				Prefix: string(textRunes[:start]),
				Match:  candidate,
				Suffix: string(textRunes[start+queryLength:]),
			}, true
		}
	}
	return types.Highlight{}, false
}

// Segments splits text for display. Without a match the whole text is one
// unmarked segment; empty prefix or suffix segments are omitted.
func Segments(text string, query string) []Segment {
	highlight, found := Split(text, query)
	if !found {
		return []Segment{{Text: text}}
	}
	return HighlightSegments(highlight)
}

// HighlightSegments converts a highlight into ordered display segments.
func HighlightSegments(highlight types.Highlight) []Segment {
	segments := make([]Segment, 0, 3)
	if highlight.Prefix != "" {
		segments = append(segments, Segment{Text: highlight.Prefix})
	}
	segments = append(segments, Segment{Text: highlight.Match, Marked: true})
	if highlight.Suffix != "" {
		segments = append(segments, Segment{Text: highlight.Suffix})
	}
	return segments
}

// Apply joins segments, passing marked runs through mark.
func Apply(segments []Segment, mark func(string) string) string {
	var builder strings.Builder
	for _, segment := range segments {
		if segment.Marked && mark != nil {
			builder.WriteString(mark(segment.Text))
			continue
		}
		builder.WriteString(segment.Text)
	}
	return builder.String()
}
