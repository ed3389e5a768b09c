// Package tui is the interactive terminal viewer: a search box that filters on
// every keystroke above a collapsible tree or flat list of the repository.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/temirov/ghtree/internal/github"
	"github.com/temirov/ghtree/internal/types"
	"github.com/temirov/ghtree/internal/viewer"
)

const (
	fetchingDetailsMessage = "Fetching repository details…"
	loadingBranchFormat    = "Loading files from %s…"
	showingFilesFormat     = "Showing %d files on %s"
	searchPlaceholder      = "Search files…"
	searchPrompt           = "> "
	// title, description and search lines above the body; status and help below it.
	chromeHeight = 5
)

// Options configures the viewer.
type Options struct {
	// Branch is loaded instead of the default branch when set.
	Branch string
	// Mode is types.ModeTree or types.ModeList.
	Mode   string
	Logger *zap.Logger
}

type detailsMsg struct {
	ticket  viewer.Ticket
	details viewer.Details
	err     error
}

type loadedMsg struct {
	ticket viewer.Ticket
	result viewer.Result
	err    error
}

// Model is the bubbletea model of the viewer.
type Model struct {
	ctx     context.Context
	session *viewer.Session
	logger  *zap.Logger
	keys    keyMap
	styles  styles
	help    help.Model

	state         viewer.State
	mode          string
	initialBranch string
	query         string
	collapsed     map[string]bool
	display       *types.TreeOutputNode
	files         []types.ListOutputItem
	rows          []row

	cursor   int
	input    textinput.Model
	viewport viewport.Model
	ready    bool

	status       string
	statusFailed bool
	loading      bool
	// listingVisible is false from the start of a load until a result is committed.
	listingVisible bool

	picking      bool
	branchCursor int
	quitting     bool
}

// New creates a viewer over session. Nothing is fetched until Init runs.
func New(ctx context.Context, session *viewer.Session, options Options) Model {
	input := textinput.New()
	input.Placeholder = searchPlaceholder
	input.Prompt = searchPrompt
	input.CharLimit = 0
	input.Focus()

	mode := options.Mode
	if mode != types.ModeList {
		mode = types.ModeTree
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return Model{
		ctx:           ctx,
		session:       session,
		logger:        logger,
		keys:          defaultKeyMap(),
		styles:        defaultStyles(),
		help:          help.New(),
		mode:          mode,
		initialBranch: options.Branch,
		collapsed:     make(map[string]bool),
		input:         input,
		viewport:      viewport.New(0, 0),
		status:        fetchingDetailsMessage,
		loading:       true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, fetchDetails(m.ctx, m.session))
}

func fetchDetails(ctx context.Context, session *viewer.Session) tea.Cmd {
	requestCtx, ticket := session.Begin(ctx, "")
	return func() tea.Msg {
		details, detailsErr := session.FetchDetails(requestCtx, ticket)
		return detailsMsg{ticket: ticket, details: details, err: detailsErr}
	}
}

func fetchBranch(ctx context.Context, session *viewer.Session, branch string) tea.Cmd {
	requestCtx, ticket := session.Begin(ctx, branch)
	return func() tea.Msg {
		result, fetchErr := session.Fetch(requestCtx, ticket)
		return loadedMsg{ticket: ticket, result: result, err: fetchErr}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case detailsMsg:
		return m.handleDetails(msg)
	case loadedMsg:
		return m.handleLoaded(msg)
	case tea.KeyMsg:
		if m.picking {
			return m.handlePickerKey(msg)
		}
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if query := m.input.Value(); query != m.query {
		m.query = query
		m.state = m.session.SetQuery(query)
		m.cursor = 0
		m.rebuild()
	}
	return m, cmd
}

func (m Model) handleDetails(msg detailsMsg) (tea.Model, tea.Cmd) {
	if !m.session.IsCurrent(msg.ticket) {
		return m, nil
	}
	if msg.err != nil {
		m.fail(msg.err)
		return m, nil
	}
	branch, commitErr := m.session.CommitDetails(msg.details)
	if commitErr != nil {
		return m, nil
	}
	m.state = m.session.State()
	if m.initialBranch != "" {
		branch = m.initialBranch
	}
	if branch == "" {
		m.fail(viewer.ErrNoBranch)
		return m, nil
	}
	return m.startLoad(branch)
}

func (m Model) startLoad(branch string) (Model, tea.Cmd) {
	m.loading = true
	m.hideListing()
	m.setStatus(fmt.Sprintf(loadingBranchFormat, branch), false)
	return m, fetchBranch(m.ctx, m.session, branch)
}

func (m Model) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	if !m.session.IsCurrent(msg.ticket) {
		return m, nil
	}
	if msg.err != nil {
		m.fail(msg.err)
		return m, nil
	}
	if commitErr := m.session.Commit(msg.result); commitErr != nil {
		return m, nil
	}
	previousBranch := m.state.Branch
	m.state = m.session.State()
	if m.state.Branch != previousBranch {
		m.collapsed = make(map[string]bool)
		m.cursor = 0
	}
	m.loading = false
	m.listingVisible = true
	m.setStatus(fmt.Sprintf(showingFilesFormat, m.state.FileCount(), m.state.Branch), false)
	m.rebuild()
	return m, nil
}

func (m *Model) fail(err error) {
	m.loading = false
	m.hideListing()
	message := err.Error()
	var requestError *github.RequestError
	if errors.As(err, &requestError) {
		message = requestError.Error()
	}
	m.logger.Debug("viewer request failed", zap.Error(err))
	m.setStatus(message, true)
}

func (m *Model) hideListing() {
	m.listingVisible = false
	m.refreshViewport()
}

func (m *Model) setStatus(message string, failed bool) {
	m.status = message
	m.statusFailed = failed
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit, true
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.pageSize())
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.pageSize())
	case key.Matches(msg, m.keys.Home):
		m.moveCursor(-len(m.rows))
	case key.Matches(msg, m.keys.End):
		m.moveCursor(len(m.rows))
	case key.Matches(msg, m.keys.Toggle):
		m.toggleCurrent()
	case key.Matches(msg, m.keys.SwitchMode):
		m.switchMode()
	case key.Matches(msg, m.keys.Refresh):
		if m.state.Branch == "" {
			m.loading = true
			m.hideListing()
			m.setStatus(fetchingDetailsMessage, false)
			return m, fetchDetails(m.ctx, m.session), true
		}
		next, cmd := m.startLoad(m.state.Branch)
		return next, cmd, true
	case key.Matches(msg, m.keys.Branches):
		m.openPicker()
	default:
		return m, nil, false
	}
	return m, nil, true
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.picking = false
	case key.Matches(msg, m.keys.Up):
		if m.branchCursor > 0 {
			m.branchCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.branchCursor < len(m.state.Branches)-1 {
			m.branchCursor++
		}
	case key.Matches(msg, m.keys.Select):
		m.picking = false
		if m.branchCursor >= len(m.state.Branches) {
			return m, nil
		}
		branch := m.state.Branches[m.branchCursor].Name
		m.logger.Debug("branch selected", zap.String("branch", branch))
		return m.startLoad(branch)
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) openPicker() {
	if len(m.state.Branches) == 0 {
		return
	}
	m.picking = true
	m.branchCursor = 0
	for index, branch := range m.state.Branches {
		if branch.Name == m.state.Branch {
			m.branchCursor = index
			break
		}
	}
}

func (m *Model) switchMode() {
	if m.mode == types.ModeTree {
		m.mode = types.ModeList
	} else {
		m.mode = types.ModeTree
	}
	m.cursor = 0
	m.rebuild()
}

func (m *Model) toggleCurrent() {
	if !m.listingVisible || m.mode != types.ModeTree || m.cursor >= len(m.rows) {
		return
	}
	current := m.rows[m.cursor]
	if !current.directory {
		return
	}
	m.collapsed[current.path] = !m.collapsed[current.path]
	m.rebuild()
}

func (m *Model) moveCursor(delta int) {
	if !m.listingVisible {
		return
	}
	m.cursor += delta
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.refreshViewport()
}

func (m Model) pageSize() int {
	if m.viewport.Height > 1 {
		return m.viewport.Height
	}
	return 1
}

func (m *Model) resize(width int, height int) {
	m.viewport.Width = width
	m.viewport.Height = max(height-chromeHeight, 1)
	m.help.Width = width
	m.input.Width = max(width-len(searchPrompt)-1, 0)
	m.ready = true
	m.refreshViewport()
}
