// Package gitlocal serves repository listings from a git repository on disk.
package gitlocal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/temirov/ghtree/internal/types"
)

const (
	openRepositoryFailedFormat  = "open repository %s: %w"
	resolveRevisionFailedFormat = "resolve %s: %w"
	readTreeFailedFormat        = "read tree of %s: %w"
)

var errMissingBranch = errors.New("branch name is required")

// Source reads a local repository through go-git.
type Source struct {
	repository *git.Repository
	name       string
}

// Open opens the repository at path, searching parent directories for .git.
func Open(path string) (*Source, error) {
	absolutePath, absoluteErr := filepath.Abs(path)
	if absoluteErr != nil {
		return nil, fmt.Errorf(openRepositoryFailedFormat, path, absoluteErr)
	}
	repository, openErr := git.PlainOpenWithOptions(absolutePath, &git.PlainOpenOptions{DetectDotGit: true})
	if openErr != nil {
		return nil, fmt.Errorf(openRepositoryFailedFormat, path, openErr)
	}
	return New(repository, filepath.Base(absolutePath)), nil
}

// New wraps an already opened repository displayed under name.
func New(repository *git.Repository, name string) *Source {
	return &Source{repository: repository, name: name}
}

// Repository reports the directory name and the branch HEAD points at.
func (source *Source) Repository(ctx context.Context) (types.Repository, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return types.Repository{}, ctxErr
	}
	head, headErr := source.repository.Head()
	if headErr != nil {
		return types.Repository{}, fmt.Errorf(resolveRevisionFailedFormat, plumbing.HEAD, headErr)
	}
	defaultBranch := head.Hash().String()
	if head.Name().IsBranch() {
		defaultBranch = head.Name().Short()
	}
	return types.Repository{FullName: source.name, DefaultBranch: defaultBranch}, nil
}

// Branches lists local branches by name.
func (source *Source) Branches(ctx context.Context) ([]types.Branch, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	iterator, iteratorErr := source.repository.Branches()
	if iteratorErr != nil {
		return nil, iteratorErr
	}
	var branches []types.Branch
	iterateErr := iterator.ForEach(func(reference *plumbing.Reference) error {
		branches = append(branches, types.Branch{Name: reference.Name().Short()})
		return nil
	})
	if iterateErr != nil {
		return nil, iterateErr
	}
	slices.SortFunc(branches, func(left, right types.Branch) int {
		switch {
		case left.Name < right.Name:
			return -1
		case left.Name > right.Name:
			return 1
		default:
			return 0
		}
	})
	return branches, nil
}

// Entries walks the tree of the commit that branch resolves to. Any revision
// go-git understands is accepted. Submodules are skipped.
func (source *Source) Entries(ctx context.Context, branch string) (types.Listing, error) {
	if branch == "" {
		return types.Listing{}, errMissingBranch
	}
	hash, resolveErr := source.repository.ResolveRevision(plumbing.Revision(branch))
	if resolveErr != nil {
		return types.Listing{}, fmt.Errorf(resolveRevisionFailedFormat, branch, resolveErr)
	}
	commit, commitErr := source.repository.CommitObject(*hash)
	if commitErr != nil {
		return types.Listing{}, fmt.Errorf(readTreeFailedFormat, branch, commitErr)
	}
	tree, treeErr := commit.Tree()
	if treeErr != nil {
		return types.Listing{}, fmt.Errorf(readTreeFailedFormat, branch, treeErr)
	}

	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()
	var entries []types.Entry
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.Listing{}, ctxErr
		}
		name, treeEntry, walkErr := walker.Next()
		if errors.Is(walkErr, io.EOF) {
			break
		}
		if walkErr != nil {
			return types.Listing{}, fmt.Errorf(readTreeFailedFormat, branch, walkErr)
		}
		switch {
		case treeEntry.Mode == filemode.Dir:
			entries = append(entries, types.Entry{Path: name, Type: types.EntryTypeTree})
		case treeEntry.Mode.IsFile():
			blob, blobErr := source.repository.BlobObject(treeEntry.Hash)
			if blobErr != nil {
				return types.Listing{}, fmt.Errorf(readTreeFailedFormat, branch, blobErr)
			}
			entries = append(entries, types.Entry{Path: name, Type: types.EntryTypeBlob, Size: blob.Size})
		}
	}
	return types.Listing{Entries: entries}, nil
}
