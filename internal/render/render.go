// Package render turns reports and safety plans into markdown documents and
// renders them for the terminal with glamour.
package render

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

const (
	StyleDark  = "dark"
	StyleLight = "light"
	StyleNoTTY = "notty"

	EnvStyle = "FLOORING_MD_STYLE"
)

var (
	mu sync.Mutex
	// Renderers are cached per style and width; building one is not free.
	renderers = map[string]*glamour.TermRenderer{}
)

// Style picks a glamour style without querying the terminal: FLOORING_MD_STYLE,
// then the color profile from the environment, then COLORFGBG.
func Style() string {
	switch v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvStyle))); v {
	case StyleDark, StyleLight, StyleNoTTY:
		return v
	}
	if termenv.EnvColorProfile() == termenv.Ascii {
		return StyleNoTTY
	}
	// COLORFGBG is "fg;bg"; xterm palette entries 7-15 are light.
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			if bg >= 7 {
				return StyleLight
			}
			return StyleDark
		}
	}
	return StyleDark
}

// Markdown renders md at width using style. On any renderer failure the raw
// markdown is returned.
func Markdown(md string, width int, style string) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	if style == "" {
		style = Style()
	}

	key := style + ":" + strconv.Itoa(width)
	mu.Lock()
	r := renderers[key]
	mu.Unlock()
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mu.Lock()
		if existing := renderers[key]; existing != nil {
			r = existing
		} else {
			renderers[key] = rr
			r = rr
		}
		mu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
