package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/ghtree/internal/tree"
	"github.com/temirov/ghtree/internal/types"
)

const (
	fetchRepositoryFailedFormat = "fetch repository: %w"
	fetchBranchesFailedFormat   = "fetch branches: %w"
	fetchEntriesFailedFormat    = "fetch files of %s: %w"
)

var (
	// ErrSuperseded is returned when a newer load started before this one finished.
	ErrSuperseded = errors.New("request superseded by a newer one")
	// ErrNoBranch is returned when neither a branch nor a default branch is known.
	ErrNoBranch = errors.New("no branch to load")
)

// Source provides repository data for a Session.
type Source interface {
	Repository(ctx context.Context) (types.Repository, error)
	Branches(ctx context.Context) ([]types.Branch, error)
	Entries(ctx context.Context, branch string) (types.Listing, error)
}

// Ticket identifies one load. Only the ticket issued last may commit.
type Ticket struct {
	Token  uint64
	Branch string
}

// Details is the repository metadata fetched when a session opens.
type Details struct {
	Ticket     Ticket
	Repository types.Repository
	Branches   []types.Branch
}

// Result is a fetched, built and sorted branch listing waiting to be committed.
type Result struct {
	Ticket    Ticket
	Entries   []types.Entry
	Truncated bool
	Tree      *types.TreeNode
}

// Session owns the view state of one repository.
type Session struct {
	source  Source
	exclude []string
	logger  *zap.Logger

	mutex  sync.Mutex
	state  State
	token  uint64
	cancel context.CancelFunc
}

// NewSession creates a session reading from source. Entries matching any of
// the gitignore-style exclude patterns are dropped before the tree is built.
func NewSession(source Source, exclude []string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{source: source, exclude: exclude, logger: logger}
}

// State returns the current snapshot.
func (session *Session) State() State {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	return session.state
}

// Begin starts a new request, cancelling the one in flight. The returned
// context is cancelled when a later request begins or the session closes.
func (session *Session) Begin(parent context.Context, branch string) (context.Context, Ticket) {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	if session.cancel != nil {
		session.cancel()
	}
	requestCtx, cancel := context.WithCancel(parent)
	session.cancel = cancel
	session.token++
	return requestCtx, Ticket{Token: session.token, Branch: branch}
}

// Close cancels any request in flight.
func (session *Session) Close() {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	if session.cancel != nil {
		session.cancel()
		session.cancel = nil
	}
}

// IsCurrent reports whether ticket belongs to the most recent request.
func (session *Session) IsCurrent(ticket Ticket) bool {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	return session.isCurrent(ticket)
}

func (session *Session) isCurrent(ticket Ticket) bool {
	return ticket.Token == session.token
}

// FetchDetails retrieves repository metadata and branches concurrently.
func (session *Session) FetchDetails(ctx context.Context, ticket Ticket) (Details, error) {
	details := Details{Ticket: ticket}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		repository, repositoryErr := session.source.Repository(groupCtx)
		if repositoryErr != nil {
			return fmt.Errorf(fetchRepositoryFailedFormat, repositoryErr)
		}
		details.Repository = repository
		return nil
	})
	group.Go(func() error {
		branches, branchesErr := session.source.Branches(groupCtx)
		if branchesErr != nil {
			return fmt.Errorf(fetchBranchesFailedFormat, branchesErr)
		}
		details.Branches = branches
		return nil
	})
	if waitErr := group.Wait(); waitErr != nil {
		session.logger.Warn("repository details unavailable", zap.Uint64("token", ticket.Token), zap.Error(waitErr))
		return Details{}, waitErr
	}
	return details, nil
}

// CommitDetails installs metadata fetched under ticket and returns the branch
// to load first.
func (session *Session) CommitDetails(details Details) (string, error) {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	if !session.isCurrent(details.Ticket) {
		return "", ErrSuperseded
	}
	next := session.state
	next.Repository = details.Repository
	next.Branches = details.Branches
	session.state = next
	return defaultBranch(details), nil
}

func defaultBranch(details Details) string {
	if details.Repository.DefaultBranch != "" {
		return details.Repository.DefaultBranch
	}
	if len(details.Branches) > 0 {
		return details.Branches[0].Name
	}
	return ""
}

// Fetch retrieves and prepares the listing for ticket.Branch without touching the state.
func (session *Session) Fetch(ctx context.Context, ticket Ticket) (Result, error) {
	if ticket.Branch == "" {
		return Result{}, ErrNoBranch
	}
	session.logger.Debug("loading branch", zap.String("branch", ticket.Branch), zap.Uint64("token", ticket.Token))
	listing, entriesErr := session.source.Entries(ctx, ticket.Branch)
	if entriesErr != nil {
		fetchErr := fmt.Errorf(fetchEntriesFailedFormat, ticket.Branch, entriesErr)
		session.logger.Warn("branch listing unavailable", zap.String("branch", ticket.Branch), zap.Error(fetchErr))
		return Result{}, fetchErr
	}
	entries := tree.Exclude(listing.Entries, session.exclude)
	root := tree.Build(entries)
	tree.Sort(root)
	if listing.Truncated {
		session.logger.Warn("listing truncated by the server", zap.String("branch", ticket.Branch))
	}
	return Result{Ticket: ticket, Entries: entries, Truncated: listing.Truncated, Tree: root}, nil
}

// Commit installs result when its ticket is still the latest one. The active
// query is re-applied to the new tree.
func (session *Session) Commit(result Result) error {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	if !session.isCurrent(result.Ticket) {
		session.logger.Debug("discarding stale listing", zap.String("branch", result.Ticket.Branch), zap.Uint64("token", result.Ticket.Token))
		return ErrSuperseded
	}
	next := session.state
	next.Branch = result.Ticket.Branch
	next.Entries = result.Entries
	next.Truncated = result.Truncated
	next.Tree = result.Tree
	session.state = next.WithQuery(next.Query)
	session.logger.Debug("branch loaded", zap.String("branch", next.Branch), zap.Int("files", session.state.FileCount()))
	return nil
}

// Open loads repository details and then the default branch.
func (session *Session) Open(ctx context.Context) error {
	return session.OpenAt(ctx, "")
}

// OpenAt loads repository details and then branch, falling back to the
// default branch when branch is empty.
func (session *Session) OpenAt(ctx context.Context, branch string) error {
	requestCtx, ticket := session.Begin(ctx, "")
	details, detailsErr := session.FetchDetails(requestCtx, ticket)
	if detailsErr != nil {
		return detailsErr
	}
	fallback, commitErr := session.CommitDetails(details)
	if commitErr != nil {
		return commitErr
	}
	if branch == "" {
		branch = fallback
	}
	return session.Load(ctx, branch)
}

// Load fetches branch and installs it unless a newer load began meanwhile.
func (session *Session) Load(ctx context.Context, branch string) error {
	requestCtx, ticket := session.Begin(ctx, branch)
	result, fetchErr := session.Fetch(requestCtx, ticket)
	if fetchErr != nil {
		return fetchErr
	}
	return session.Commit(result)
}

// Refresh reloads the current branch.
func (session *Session) Refresh(ctx context.Context) error {
	return session.Load(ctx, session.State().Branch)
}

// SetQuery re-filters the current tree.
func (session *Session) SetQuery(query string) State {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	session.state = session.state.WithQuery(query)
	return session.state
}

// Snapshot returns the state for branch without installing it. The current
// state is returned when branch is empty or already loaded.
func (session *Session) Snapshot(ctx context.Context, branch string) (State, error) {
	current := session.State()
	if branch == "" || branch == current.Branch {
		if !current.Loaded() {
			return State{}, ErrNoBranch
		}
		return current, nil
	}
	result, fetchErr := session.Fetch(ctx, Ticket{Branch: branch})
	if fetchErr != nil {
		return State{}, fetchErr
	}
	snapshot := current
	snapshot.Branch = branch
	snapshot.Entries = result.Entries
	snapshot.Truncated = result.Truncated
	snapshot.Tree = result.Tree
	return snapshot.WithQuery(""), nil
}
