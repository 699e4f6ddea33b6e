// Package tui is the interactive front end. It owns the mutation controller's
// State on the bubbletea goroutine: backend calls run as commands and come back
// as messages, and scheduled resyncs become tea.Tick timers.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(ctx context.Context, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()
	m := newAppModel(ctx, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
