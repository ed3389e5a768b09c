package render

import (
	"strings"

	"github.com/temirov/ghtree/internal/types"
	"github.com/temirov/ghtree/internal/utils"
)

// TreeView converts a (possibly filtered) tree into display nodes carrying
// highlights, formatted sizes and per-directory file counts.
func TreeView(root *types.TreeNode, query string) *types.TreeOutputNode {
	if root == nil {
		return nil
	}
	displayRoot, _, _ := buildDisplayNode(root, query)
	return displayRoot
}

func buildDisplayNode(node *types.TreeNode, query string) (*types.TreeOutputNode, int, int64) {
	display := &types.TreeOutputNode{
		Path: node.Path,
		Name: node.Name,
		Type: node.Type,
	}
	if highlight, found := Split(node.Name, query); found {
		display.Highlight = &highlight
	}
	if !node.IsDirectory() {
		display.SizeBytes = node.Size
		display.Size = utils.FormatFileSize(node.Size)
		return display, 1, node.Size
	}
	var totalFiles int
	var totalBytes int64
	for _, child := range node.Children {
		if child == nil {
			continue
		}
		childDisplay, childFiles, childBytes := buildDisplayNode(child, query)
		display.Children = append(display.Children, childDisplay)
		totalFiles += childFiles
		totalBytes += childBytes
	}
	display.TotalFiles = totalFiles
	display.SizeBytes = totalBytes
	display.TotalSize = utils.FormatFileSize(totalBytes)
	return display, totalFiles, totalBytes
}

// ListView returns the files whose full path contains query, ignoring case, in
// listing order.
func ListView(entries []types.Entry, query string) []types.ListOutputItem {
	normalizedQuery := strings.ToLower(query)
	items := make([]types.ListOutputItem, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsBlob() || entry.Path == "" {
			continue
		}
		if normalizedQuery != "" && !strings.Contains(strings.ToLower(entry.Path), normalizedQuery) {
			continue
		}
		item := types.ListOutputItem{
			Path:      entry.Path,
			Size:      utils.FormatFileSize(entry.Size),
			SizeBytes: entry.Size,
		}
		if highlight, found := Split(entry.Path, normalizedQuery); found {
			item.Highlight = &highlight
		}
		items = append(items, item)
	}
	return items
}

// Summarize totals the files shown in a display tree.
func Summarize(root *types.TreeOutputNode) *types.OutputSummary {
	if root == nil {
		return &types.OutputSummary{TotalSize: utils.FormatFileSize(0)}
	}
	if root.Type != types.EntryTypeTree {
		return &types.OutputSummary{TotalFiles: 1, TotalSize: root.Size}
	}
	return &types.OutputSummary{TotalFiles: root.TotalFiles, TotalSize: root.TotalSize}
}

// SummarizeList totals the files of a flat list.
func SummarizeList(items []types.ListOutputItem) *types.OutputSummary {
	var totalBytes int64
	for _, item := range items {
		totalBytes += item.SizeBytes
	}
	return &types.OutputSummary{TotalFiles: len(items), TotalSize: utils.FormatFileSize(totalBytes)}
}
