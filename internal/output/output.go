// Package output renders display trees, file lists and branch lists as raw text,
// JSON or XML.
package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/temirov/ghtree/internal/render"
	"github.com/temirov/ghtree/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	xmlHeader = xml.Header

	directorySuffix    = "/"
	emptyTreeMessage   = "(no files)"
	noMatchesFormat    = "No files match %q"
	currentBranchMark  = "* "
	otherBranchMark    = "  "
	unknownFormatError = "unsupported output format '%s'"
)

// Options controls raw rendering.
type Options struct {
	// Title is printed above a raw tree; usually the repository name and branch.
	Title          string
	Query          string
	IncludeSummary bool
	// Mark decorates highlighted matches in raw output; nil leaves them undecorated.
	Mark func(string) string
}

// RenderTree renders a display tree in the requested format.
func RenderTree(format string, root *types.TreeOutputNode, options Options) (string, error) {
	switch format {
	case types.FormatRaw:
		var buffer bytes.Buffer
		WriteTreeRaw(&buffer, root, options)
		return buffer.String(), nil
	case types.FormatJSON:
		return RenderJSON(root)
	case types.FormatXML:
		return RenderXML(root)
	default:
		return "", fmt.Errorf(unknownFormatError, format)
	}
}

// RenderList renders a flat file list in the requested format.
func RenderList(format string, items []types.ListOutputItem, options Options) (string, error) {
	switch format {
	case types.FormatRaw:
		var buffer bytes.Buffer
		WriteListRaw(&buffer, items, options)
		return buffer.String(), nil
	case types.FormatJSON:
		if items == nil {
			items = []types.ListOutputItem{}
		}
		return RenderJSON(items)
	case types.FormatXML:
		wrapper := struct {
			XMLName xml.Name               `xml:"files"`
			Items   []types.ListOutputItem `xml:"file"`
		}{Items: items}
		return RenderXML(wrapper)
	default:
		return "", fmt.Errorf(unknownFormatError, format)
	}
}

// RenderBranches renders branch names, marking the current one in raw output.
func RenderBranches(format string, branches []types.Branch, current string) (string, error) {
	switch format {
	case types.FormatRaw:
		var buffer bytes.Buffer
		for _, branch := range branches {
			marker := otherBranchMark
			if branch.Name == current {
				marker = currentBranchMark
			}
			fmt.Fprintf(&buffer, "%s%s\n", marker, branch.Name)
		}
		return buffer.String(), nil
	case types.FormatJSON:
		if branches == nil {
			branches = []types.Branch{}
		}
		return RenderJSON(branches)
	case types.FormatXML:
		wrapper := struct {
			XMLName  xml.Name       `xml:"branches"`
			Current  string         `xml:"current,attr,omitempty"`
			Branches []types.Branch `xml:"branch"`
		}{Current: current, Branches: branches}
		return RenderXML(wrapper)
	default:
		return "", fmt.Errorf(unknownFormatError, format)
	}
}

// RenderJSON marshals value as indented JSON.
func RenderJSON(value interface{}) (string, error) {
	encoded, jsonEncodeError := json.MarshalIndent(value, indentPrefix, indentSpacer)
	if jsonEncodeError != nil {
		return "", jsonEncodeError
	}
	return string(encoded), nil
}

// RenderXML marshals value as an indented XML document.
func RenderXML(value interface{}) (string, error) {
	encoded, xmlMarshalError := xml.MarshalIndent(value, indentPrefix, indentSpacer)
	if xmlMarshalError != nil {
		return "", xmlMarshalError
	}
	return xmlHeader + string(encoded), nil
}

// WriteTreeRaw renders a display tree with box-drawing connectors.
func WriteTreeRaw(writer io.Writer, root *types.TreeOutputNode, options Options) {
	if root == nil {
		return
	}
	if options.Title != "" {
		fmt.Fprintln(writer, options.Title)
	}
	if options.IncludeSummary {
		fmt.Fprintln(writer, FormatSummaryLine(render.Summarize(root)))
	}
	if len(root.Children) == 0 {
		fmt.Fprintln(writer, emptyMessage(options.Query))
		return
	}
	for _, row := range render.Rows(root, nil, true) {
		fmt.Fprintf(writer, "%s%s\n", row.Prefix(), nodeLabel(row.Node, options.Mark))
	}
}

// WriteListRaw renders one "path (size)" line per file.
func WriteListRaw(writer io.Writer, items []types.ListOutputItem, options Options) {
	if options.Title != "" {
		fmt.Fprintln(writer, options.Title)
	}
	if options.IncludeSummary {
		fmt.Fprintln(writer, FormatSummaryLine(render.SummarizeList(items)))
	}
	if len(items) == 0 {
		fmt.Fprintln(writer, emptyMessage(options.Query))
		return
	}
	for _, item := range items {
		fmt.Fprintf(writer, "%s (%s)\n", highlightedText(item.Path, item.Highlight, options.Mark), item.Size)
	}
}

func nodeLabel(node *types.TreeOutputNode, mark func(string) string) string {
	name := highlightedText(node.Name, node.Highlight, mark)
	if node.Type == types.EntryTypeTree {
		return fmt.Sprintf("%s%s [%s]", name, directorySuffix, FormatFileCount(node.TotalFiles))
	}
	return fmt.Sprintf("%s (%s)", name, node.Size)
}

func highlightedText(text string, highlight *types.Highlight, mark func(string) string) string {
	if highlight == nil || mark == nil {
		return text
	}
	return render.Apply(render.HighlightSegments(*highlight), mark)
}

func emptyMessage(query string) string {
	if query == "" {
		return emptyTreeMessage
	}
	return fmt.Sprintf(noMatchesFormat, query)
}

// FormatFileCount renders "1 file" or "N files".
func FormatFileCount(count int) string {
	if count == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", count)
}

// FormatSummaryLine formats an OutputSummary into the raw summary line.
func FormatSummaryLine(summary *types.OutputSummary) string {
	if summary == nil {
		summary = &types.OutputSummary{}
	}
	return fmt.Sprintf("Summary: %s, %s", FormatFileCount(summary.TotalFiles), summary.TotalSize)
}
