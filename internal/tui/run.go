package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/temirov/ghtree/internal/viewer"
)

// Run shows the viewer full screen until the user quits or ctx is cancelled.
func Run(ctx context.Context, session *viewer.Session, options Options) error {
	defer session.Close()
	program := tea.NewProgram(New(ctx, session, options), tea.WithContext(ctx), tea.WithAltScreen())
	_, runErr := program.Run()
	return runErr
}
