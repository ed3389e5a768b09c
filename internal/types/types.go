// Package types defines every cross‑package data structure used by the ghtree CLI.
package types

import "encoding/xml"

const (
	EntryTypeBlob = "blob"
	EntryTypeTree = "tree"

	CommandTree     = "tree"
	CommandList     = "list"
	CommandBranches = "branches"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"

	ModeTree = "tree"
	ModeList = "list"
)

// Entry is one raw record of a repository listing.
type Entry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size,omitempty"`
}

// IsBlob reports whether the entry describes a file.
func (entry Entry) IsBlob() bool {
	return entry.Type == EntryTypeBlob
}

// Listing is the full set of entries for one branch.
type Listing struct {
	Entries   []Entry `json:"tree"`
	Truncated bool    `json:"truncated"`
}

// Repository holds the metadata shown above a listing.
type Repository struct {
	FullName      string `json:"full_name" xml:"fullName"`
	Description   string `json:"description" xml:"description"`
	DefaultBranch string `json:"default_branch" xml:"defaultBranch"`
}

// Branch is a named pointer to a commit.
type Branch struct {
	Name string `json:"name" xml:"name"`
}

// TreeNode is one node of the hierarchical repository tree.
// The root has an empty path and name.
type TreeNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Type     string      `json:"type"`
	Size     int64       `json:"size,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// IsDirectory reports whether the node may hold children.
func (node *TreeNode) IsDirectory() bool {
	return node != nil && node.Type == EntryTypeTree
}

// Highlight splits a display text around the first query match.
type Highlight struct {
	Prefix string `json:"prefix,omitempty" xml:"prefix,omitempty"`
	Match  string `json:"match,omitempty" xml:"match,omitempty"`
	Suffix string `json:"suffix,omitempty" xml:"suffix,omitempty"`
}

// TreeOutputNode represents a display-ready node of the rendered tree.
type TreeOutputNode struct {
	XMLName    xml.Name          `json:"-" xml:"node"`
	Path       string            `json:"path" xml:"path"`
	Name       string            `json:"name" xml:"name"`
	Type       string            `json:"type" xml:"type"`
	Size       string            `json:"size,omitempty" xml:"size,omitempty"`
	SizeBytes  int64             `json:"-" xml:"-"`
	Highlight  *Highlight        `json:"highlight,omitempty" xml:"highlight,omitempty"`
	TotalFiles int               `json:"totalFiles,omitempty" xml:"totalFiles,omitempty"`
	TotalSize  string            `json:"totalSize,omitempty" xml:"totalSize,omitempty"`
	Children   []*TreeOutputNode `json:"children,omitempty" xml:"children>node,omitempty"`
}

// ListOutputItem represents one file of the rendered flat list.
type ListOutputItem struct {
	XMLName   xml.Name   `json:"-" xml:"file"`
	Path      string     `json:"path" xml:"path"`
	Size      string     `json:"size" xml:"size"`
	SizeBytes int64      `json:"sizeBytes" xml:"sizeBytes"`
	Highlight *Highlight `json:"highlight,omitempty" xml:"highlight,omitempty"`
}

// OutputSummary captures aggregate information about rendered files.
type OutputSummary struct {
	TotalFiles int    `json:"totalFiles" xml:"totalFiles"`
	TotalSize  string `json:"totalSize" xml:"totalSize"`
}
