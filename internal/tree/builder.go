// Package tree turns flat repository listings into a sorted hierarchy and derives
// filtered copies of it.
package tree

import (
	"strings"

	"github.com/temirov/ghtree/internal/types"
)

const pathSeparator = "/"

// Build assembles entries into a single rooted tree. Intermediate directories are
// synthesized when the listing does not name them, and every path appears once.
// Entries with an empty path or an unknown type are skipped, as are entries that
// would place children under a file.
func Build(entries []types.Entry) *types.TreeNode {
	root := &types.TreeNode{Type: types.EntryTypeTree}
	nodesByPath := map[string]*types.TreeNode{"": root}

	for _, entry := range entries {
		if entry.Type != types.EntryTypeBlob && entry.Type != types.EntryTypeTree {
			continue
		}
		segments := splitPath(entry.Path)
		if len(segments) == 0 {
			continue
		}
		insertEntry(nodesByPath, segments, entry)
	}
	return root
}

func insertEntry(nodesByPath map[string]*types.TreeNode, segments []string, entry types.Entry) {
	parent := nodesByPath[""]
	prefix := ""
	for index, segment := range segments {
		if prefix == "" {
			prefix = segment
		} else {
			prefix = prefix + pathSeparator + segment
		}
		isFinal := index == len(segments)-1
		existing, found := nodesByPath[prefix]
		if found {
			if !isFinal && !existing.IsDirectory() {
				return
			}
			parent = existing
			continue
		}
		node := &types.TreeNode{
			Name: segment,
			Path: prefix,
			Type: types.EntryTypeTree,
		}
		if isFinal {
			node.Type = entry.Type
			if entry.IsBlob() && entry.Size > 0 {
				node.Size = entry.Size
			}
		}
		parent.Children = append(parent.Children, node)
		nodesByPath[prefix] = node
		parent = node
	}
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, pathSeparator)
	if trimmed == "" {
		return nil
	}
	rawSegments := strings.Split(trimmed, pathSeparator)
	segments := rawSegments[:0]
	for _, segment := range rawSegments {
		if segment == "" {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

// CountFiles returns the number of blob nodes below node.
func CountFiles(node *types.TreeNode) int {
	if node == nil {
		return 0
	}
	if !node.IsDirectory() {
		return 1
	}
	total := 0
	for _, child := range node.Children {
		total += CountFiles(child)
	}
	return total
}
