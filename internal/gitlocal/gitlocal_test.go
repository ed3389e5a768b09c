package gitlocal_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/temirov/ghtree/internal/gitlocal"
	"github.com/temirov/ghtree/internal/types"
)

const (
	repositoryName = "sample"
	developBranch  = "develop"
)

var sampleFiles = map[string]string{
	"README.md":         "hello\n",
	"src/main.go":       "package main\n",
	"src/lib/helper.go": "package lib\n",
}

func newSampleSource(testingInstance *testing.T) *gitlocal.Source {
	testingInstance.Helper()
	repository, initErr := git.Init(memory.NewStorage(), memfs.New())
	if initErr != nil {
		testingInstance.Fatalf("init: %v", initErr)
	}
	worktree, worktreeErr := repository.Worktree()
	if worktreeErr != nil {
		testingInstance.Fatalf("worktree: %v", worktreeErr)
	}
	for filePath, content := range sampleFiles {
		if writeErr := util.WriteFile(worktree.Filesystem, filePath, []byte(content), 0o644); writeErr != nil {
			testingInstance.Fatalf("write %s: %v", filePath, writeErr)
		}
		if _, addErr := worktree.Add(filePath); addErr != nil {
			testingInstance.Fatalf("add %s: %v", filePath, addErr)
		}
	}
	commitHash, commitErr := worktree.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Tester", Email: "tester@example.com", When: time.Unix(0, 0)},
	})
	if commitErr != nil {
		testingInstance.Fatalf("commit: %v", commitErr)
	}
	developReference := plumbing.NewHashReference(plumbing.NewBranchReferenceName(developBranch), commitHash)
	if setErr := repository.Storer.SetReference(developReference); setErr != nil {
		testingInstance.Fatalf("branch: %v", setErr)
	}
	return gitlocal.New(repository, repositoryName)
}

func TestSourceRepository(testingInstance *testing.T) {
	source := newSampleSource(testingInstance)
	repository, repositoryErr := source.Repository(context.Background())
	if repositoryErr != nil {
		testingInstance.Fatalf("repository: %v", repositoryErr)
	}
	if repository.FullName != repositoryName {
		testingInstance.Errorf("unexpected name %q", repository.FullName)
	}
	if repository.DefaultBranch != "master" {
		testingInstance.Errorf("unexpected default branch %q", repository.DefaultBranch)
	}
}

func TestSourceBranches(testingInstance *testing.T) {
	source := newSampleSource(testingInstance)
	branches, branchesErr := source.Branches(context.Background())
	if branchesErr != nil {
		testingInstance.Fatalf("branches: %v", branchesErr)
	}
	if len(branches) != 2 || branches[0].Name != developBranch || branches[1].Name != "master" {
		testingInstance.Fatalf("unexpected branches %+v", branches)
	}
}

func TestSourceEntries(testingInstance *testing.T) {
	source := newSampleSource(testingInstance)
	testCases := []struct {
		name   string
		branch string
	}{
		{name: "head branch", branch: "master"},
		{name: "secondary branch", branch: developBranch},
	}
	for _, testCase := range testCases {
		testCase := testCase
		testingInstance.Run(testCase.name, func(subTest *testing.T) {
			listing, entriesErr := source.Entries(context.Background(), testCase.branch)
			if entriesErr != nil {
				subTest.Fatalf("entries: %v", entriesErr)
			}
			entriesByPath := make(map[string]types.Entry, len(listing.Entries))
			for _, entry := range listing.Entries {
				entriesByPath[entry.Path] = entry
			}
			for filePath, content := range sampleFiles {
				entry, found := entriesByPath[filePath]
				if !found || !entry.IsBlob() {
					subTest.Fatalf("missing blob %s in %+v", filePath, listing.Entries)
				}
				if entry.Size != int64(len(content)) {
					subTest.Errorf("size of %s = %d, want %d", filePath, entry.Size, len(content))
				}
			}
			for _, directoryPath := range []string{"src", "src/lib"} {
				if entriesByPath[directoryPath].Type != types.EntryTypeTree {
					subTest.Errorf("expected tree entry for %s", directoryPath)
				}
			}
		})
	}
}

func TestSourceEntriesUnknownBranch(testingInstance *testing.T) {
	source := newSampleSource(testingInstance)
	if _, entriesErr := source.Entries(context.Background(), "missing"); entriesErr == nil {
		testingInstance.Fatalf("expected error for unknown branch")
	}
}

func TestSourceEntriesCancelled(testingInstance *testing.T) {
	source := newSampleSource(testingInstance)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, entriesErr := source.Entries(ctx, "master"); entriesErr == nil {
		testingInstance.Fatalf("expected context error")
	}
}
