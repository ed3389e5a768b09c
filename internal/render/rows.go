package render

import (
	"strings"

	"github.com/temirov/ghtree/internal/types"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "
)

// Row is one visible line of a display tree.
type Row struct {
	Node      *types.TreeOutputNode
	Depth     int
	Last      bool
	Collapsed bool
	// ancestorsLast records, per enclosing level, whether that ancestor was the last sibling.
	ancestorsLast []bool
}

// Prefix returns the box-drawing connector preceding the row's name.
func (row Row) Prefix() string {
	var builder strings.Builder
	for _, ancestorLast := range row.ancestorsLast {
		if ancestorLast {
			builder.WriteString(treeLastPadding)
		} else {
			builder.WriteString(treeBranchPadding)
		}
	}
	if row.Last {
		builder.WriteString(treeLastConnector)
	} else {
		builder.WriteString(treeBranchConnector)
	}
	return builder.String()
}

// Rows flattens the children of root depth-first. Directories listed in collapsed
// hide their children unless expandAll is set.
func Rows(root *types.TreeOutputNode, collapsed map[string]bool, expandAll bool) []Row {
	if root == nil {
		return nil
	}
	var rows []Row
	appendRows(&rows, root.Children, nil, collapsed, expandAll)
	return rows
}

func appendRows(rows *[]Row, children []*types.TreeOutputNode, ancestorsLast []bool, collapsed map[string]bool, expandAll bool) {
	for index, child := range children {
		isLast := index == len(children)-1
		isCollapsed := !expandAll && child.Type == types.EntryTypeTree && collapsed[child.Path]
		*rows = append(*rows, Row{
			Node:          child,
			Depth:         len(ancestorsLast),
			Last:          isLast,
			Collapsed:     isCollapsed,
			ancestorsLast: ancestorsLast,
		})
		if child.Type == types.EntryTypeTree && !isCollapsed && len(child.Children) > 0 {
			nested := append(append([]bool{}, ancestorsLast...), isLast)
			appendRows(rows, child.Children, nested, collapsed, expandAll)
		}
	}
}
