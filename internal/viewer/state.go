// Package viewer holds the state of one repository view and coordinates loads
// so that only the most recent request ever reaches it.
package viewer

import (
	"github.com/temirov/ghtree/internal/render"
	"github.com/temirov/ghtree/internal/tree"
	"github.com/temirov/ghtree/internal/types"
	"github.com/temirov/ghtree/internal/utils"
)

// State is an immutable snapshot of a loaded branch. Loads and query changes
// produce a new State rather than editing the current one.
type State struct {
	Repository types.Repository
	Branches   []types.Branch
	Branch     string
	Entries    []types.Entry
	Truncated  bool
	// Tree is the sorted, unfiltered tree of Entries.
	Tree  *types.TreeNode
	Query string
	// Filtered is Tree restricted to Query; it is Tree itself when Query is empty.
	Filtered *types.TreeNode
}

// Loaded reports whether a branch listing has been installed.
func (state State) Loaded() bool {
	return state.Tree != nil
}

// WithQuery returns a copy of the state filtered by the normalized query.
func (state State) WithQuery(query string) State {
	state.Query = utils.NormalizeQuery(query)
	state.Filtered = tree.Filter(state.Tree, state.Query)
	return state
}

// FileCount is the number of files in the unfiltered listing.
func (state State) FileCount() int {
	return tree.CountFiles(state.Tree)
}

// MatchCount is the number of files left after filtering.
func (state State) MatchCount() int {
	return tree.CountFiles(state.Filtered)
}

func (state State) TreeView() *types.TreeOutputNode {
	return render.TreeView(state.Filtered, state.Query)
}

func (state State) ListView() []types.ListOutputItem {
	return render.ListView(state.Entries, state.Query)
}
