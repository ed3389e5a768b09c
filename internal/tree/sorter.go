package tree

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/temirov/ghtree/internal/types"
)

// Sort orders every node's children in place: directories first, then files, each
// group by locale-aware name comparison. Repeated calls leave the order unchanged.
func Sort(root *types.TreeNode) {
	if root == nil {
		return
	}
	collator := collate.New(language.English)
	sortChildren(root, collator)
}

func sortChildren(node *types.TreeNode, collator *collate.Collator) {
	if len(node.Children) == 0 {
		return
	}
	slices.SortStableFunc(node.Children, func(left, right *types.TreeNode) int {
		return compareNodes(left, right, collator)
	})
	for _, child := range node.Children {
		if child.IsDirectory() {
			sortChildren(child, collator)
		}
	}
}

func compareNodes(left, right *types.TreeNode, collator *collate.Collator) int {
	leftDirectory := left.IsDirectory()
	rightDirectory := right.IsDirectory()
	if leftDirectory != rightDirectory {
		if leftDirectory {
			return -1
		}
		return 1
	}
	if order := collator.CompareString(left.Name, right.Name); order != 0 {
		return order
	}
	switch {
	case left.Name < right.Name:
		return -1
	case left.Name > right.Name:
		return 1
	}
	return 0
}
