package tui

import (
	"fmt"
	"strings"

	"github.com/temirov/ghtree/internal/output"
	"github.com/temirov/ghtree/internal/render"
	"github.com/temirov/ghtree/internal/types"
)

const (
	noDescriptionMessage = "No description provided."
	noMatchesFormat      = "No files match %q"
	noFilesMessage       = "No files"
	cursorMarker         = "> "
	blankMarker          = "  "
	expandedIcon         = "▾ "
	collapsedIcon        = "▸ "
	directorySuffix      = "/"
)

// row is one selectable line of the body.
type row struct {
	path      string
	directory bool
	text      string
}

// rebuild recomputes the display data for the current mode, state and collapse set.
func (m *Model) rebuild() {
	m.rows = nil
	switch m.mode {
	case types.ModeList:
		m.display = nil
		m.files = m.state.ListView()
		for _, file := range m.files {
			m.rows = append(m.rows, row{
				path: file.Path,
				text: m.highlight(file.Path, file.Highlight) + " " + m.styles.meta.Render(file.Size),
			})
		}
	default:
		m.files = nil
		m.display = m.state.TreeView()
		for _, treeRow := range render.Rows(m.display, m.collapsed, m.state.Query != "") {
			m.rows = append(m.rows, m.treeRow(treeRow))
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.refreshViewport()
}

func (m Model) treeRow(treeRow render.Row) row {
	node := treeRow.Node
	name := m.highlight(node.Name, node.Highlight)
	if node.Type != types.EntryTypeTree {
		return row{
			path: node.Path,
			text: treeRow.Prefix() + name + " " + m.styles.meta.Render(node.Size),
		}
	}
	icon := expandedIcon
	if treeRow.Collapsed {
		icon = collapsedIcon
	}
	badge := m.styles.meta.Render("[" + output.FormatFileCount(node.TotalFiles) + "]")
	return row{
		path:      node.Path,
		directory: true,
		text:      treeRow.Prefix() + icon + name + directorySuffix + " " + badge,
	}
}

func (m Model) highlight(text string, highlight *types.Highlight) string {
	if highlight == nil {
		return text
	}
	return render.Apply(render.HighlightSegments(*highlight), m.styles.markText)
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.bodyContent())
	top := m.viewport.YOffset
	bottom := m.viewport.YOffset + m.viewport.Height - 1
	if m.cursor < top {
		m.viewport.SetYOffset(m.cursor)
	} else if m.cursor > bottom {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

func (m Model) bodyContent() string {
	if !m.listingVisible {
		return ""
	}
	if len(m.rows) == 0 {
		trimmedQuery := strings.TrimSpace(m.query)
		if trimmedQuery != "" {
			return m.styles.empty.Render(fmt.Sprintf(noMatchesFormat, trimmedQuery))
		}
		return m.styles.empty.Render(noFilesMessage)
	}
	lines := make([]string, 0, len(m.rows))
	for index, current := range m.rows {
		if index == m.cursor {
			lines = append(lines, m.styles.cursor.Render(cursorMarker)+current.text)
			continue
		}
		lines = append(lines, blankMarker+current.text)
	}
	return strings.Join(lines, "\n")
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var builder strings.Builder
	builder.WriteString(m.headerView())
	builder.WriteString("\n")
	builder.WriteString(m.input.View())
	builder.WriteString("\n")
	switch {
	case m.picking:
		builder.WriteString(m.pickerView())
	case m.ready:
		builder.WriteString(m.viewport.View())
	default:
		builder.WriteString(m.bodyContent())
	}
	builder.WriteString("\n")
	builder.WriteString(m.statusView())
	builder.WriteString("\n")
	if m.picking {
		builder.WriteString(m.help.ShortHelpView(m.keys.pickerHelp()))
	} else {
		builder.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return builder.String()
}

func (m Model) headerView() string {
	repository := m.state.Repository
	if repository.FullName == "" {
		return m.styles.title.Render("…") + "\n"
	}
	title := m.styles.title.Render(repository.FullName)
	if m.listingVisible && m.state.Branch != "" {
		title += " " + m.styles.meta.Render(fmt.Sprintf("%s · %s · %s", m.state.Branch, output.FormatFileCount(m.state.FileCount()), m.mode))
	}
	description := repository.Description
	if description == "" {
		description = noDescriptionMessage
	}
	return title + "\n" + m.styles.description.Render(description)
}

func (m Model) statusView() string {
	if m.statusFailed {
		return m.styles.failure.Render(m.status)
	}
	return m.styles.status.Render(m.status)
}

func (m Model) pickerView() string {
	lines := make([]string, 0, len(m.state.Branches))
	for index, branch := range m.state.Branches {
		name := branch.Name
		if name == m.state.Branch {
			name += " " + m.styles.meta.Render("(current)")
		}
		if index == m.branchCursor {
			lines = append(lines, m.styles.cursor.Render(cursorMarker)+name)
			continue
		}
		lines = append(lines, blankMarker+name)
	}
	return strings.Join(lines, "\n")
}
