package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// rowDelegate renders one line per item: the title, then the description
// right after it in a muted style, cut to the list width.
type rowDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	meta     lipgloss.Style
}

func newRowDelegate(trash bool) rowDelegate {
	d := rowDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		meta: styleMuted(),
	}
	if trash {
		d.normal = d.normal.Foreground(colorTrashAccent)
	}
	return d
}

func (d rowDelegate) Height() int  { return 1 }
func (d rowDelegate) Spacing() int { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}

	title := ""
	desc := ""
	if t, ok := item.(list.DefaultItem); ok {
		title = t.Title()
		desc = t.Description()
	} else {
		title = fmt.Sprint(item)
	}

	selected := index == m.Index()
	line := title
	if desc != "" {
		if selected {
			line += "  " + desc
		} else {
			line = d.normal.Render(title) + "  " + d.meta.Render(desc)
		}
	} else if !selected {
		line = d.normal.Render(title)
	}

	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Truncate(line, contentW, "…")
	}

	if selected {
		line = d.selected.Render(line)
	}
	fmt.Fprint(w, line)
}
