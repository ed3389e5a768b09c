package tree

import (
	"strings"

	"github.com/temirov/ghtree/internal/types"
)

// Filter returns the subset of the tree whose names contain query, ignoring case.
// Directories are kept when their own name matches or when a descendant matches;
// a matching directory keeps only its matching descendants. The root is always
// returned. An empty query returns root itself. The input tree is never modified.
func Filter(root *types.TreeNode, query string) *types.TreeNode {
	if root == nil {
		return nil
	}
	normalizedQuery := strings.ToLower(query)
	if normalizedQuery == "" {
		return root
	}
	filteredRoot := &types.TreeNode{
		Name: root.Name,
		Path: root.Path,
		Type: root.Type,
	}
	filteredRoot.Children = filterChildren(root.Children, normalizedQuery)
	return filteredRoot
}

func filterChildren(children []*types.TreeNode, query string) []*types.TreeNode {
	var kept []*types.TreeNode
	for _, child := range children {
		if filtered := filterNode(child, query); filtered != nil {
			kept = append(kept, filtered)
		}
	}
	return kept
}

func filterNode(node *types.TreeNode, query string) *types.TreeNode {
	if node == nil {
		return nil
	}
	nameMatches := NameMatches(node.Name, query)
	if !node.IsDirectory() {
		if !nameMatches {
			return nil
		}
		copied := *node
		copied.Children = nil
		return &copied
	}
	children := filterChildren(node.Children, query)
	if len(children) == 0 && !nameMatches {
		return nil
	}
	return &types.TreeNode{
		Name:     node.Name,
		Path:     node.Path,
		Type:     node.Type,
		Size:     node.Size,
		Children: children,
	}
}

// NameMatches reports whether name contains the lower-case query, ignoring case.
func NameMatches(name string, query string) bool {
	return strings.Contains(strings.ToLower(name), query)
}
