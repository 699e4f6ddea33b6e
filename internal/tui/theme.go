package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The TUI must stay readable on light and dark backgrounds, so colors are
// adaptive and "faint" is only applied on dark terminals.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted       lipgloss.TerminalColor = ac("240", "243")
	colorSelectedBg  lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg  lipgloss.TerminalColor = ac("235", "255")
	colorAccent      lipgloss.TerminalColor = ac("27", "62")
	colorAccentFg    lipgloss.TerminalColor = ac("255", "235")
	colorSurfaceBg   lipgloss.TerminalColor = ac("255", "235")
	colorSurfaceFg   lipgloss.TerminalColor = ac("235", "252")
	colorBorder      lipgloss.TerminalColor = ac("250", "243")
	colorErrorFg     lipgloss.TerminalColor = ac("160", "203")
	colorSuccessFg   lipgloss.TerminalColor = ac("28", "114")
	colorToastBg     lipgloss.TerminalColor = ac("254", "236")
	colorTrashAccent lipgloss.TerminalColor = ac("130", "179")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleHeader() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
}

func styleTab(active bool) lipgloss.Style {
	st := lipgloss.NewStyle().Padding(0, 1)
	if active {
		return st.Bold(true).Foreground(colorAccentFg).Background(colorAccent)
	}
	return st.Foreground(colorMuted)
}

func styleToast(msg string) lipgloss.Style {
	st := lipgloss.NewStyle().Padding(0, 1).Background(colorToastBg)
	if isErrorToast(msg) {
		return st.Foreground(colorErrorFg).Bold(true)
	}
	return st.Foreground(colorSuccessFg)
}

func styleModal() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Background(colorSurfaceBg).
		Foreground(colorSurfaceFg).
		Padding(1, 2)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorErrorFg)
}

func isErrorToast(msg string) bool {
	for _, p := range []string{"Error", "Save failed", "Delete failed", "Restore failed", "Sync failed", "Failed", "Only Admin", "PIN must", "Name is required", "Foreman not found"} {
		if strings.HasPrefix(msg, p) {
			return true
		}
	}
	return false
}

// applyColorProfilePreference honors NO_COLOR and otherwise follows the
// terminal, upgrading to 256 colors when TERM says so.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && profile != termenv.TrueColor {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference sets background detection from FLOORING_TUI_THEME
// (light|dark|auto), then the COLORFGBG heuristic.
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("FLOORING_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
