// Package theme holds the light and dark widget styles and the persisted
// theme preference.
package theme

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hurttlocker/factdice/internal/logging"
	"github.com/hurttlocker/factdice/internal/store"
)

// Name is a theme identifier as stored in preferences.
type Name string

const (
	Light Name = "light"
	Dark  Name = "dark"
)

// Parse validates a theme name.
func Parse(s string) (Name, error) {
	switch Name(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", fmt.Errorf("unknown theme %q (expected light or dark)", s)
}

// Toggle returns the other theme.
func Toggle(n Name) Name {
	if n == Dark {
		return Light
	}
	return Dark
}

// Icon is the toggle glyph: the sun switches to light, the moon to dark.
func (n Name) Icon() string {
	if n == Dark {
		return "🌞"
	}
	return "🌙"
}

// Styles is the full set of lipgloss styles for one theme.
type Styles struct {
	Name Name

	Title   lipgloss.Style
	Topic   lipgloss.Style
	Dice    lipgloss.Style
	Label   lipgloss.Style
	Fact    lipgloss.Style
	Bullet  lipgloss.Style
	Notice  lipgloss.Style
	Help    lipgloss.Style
	Spinner lipgloss.Style

	DotOn  string
	DotOff string
}

type palette struct {
	fg, muted, accent, accentAlt, card, warn string
}

var palettes = map[Name]palette{
	Light: {fg: "#1f2328", muted: "#656d76", accent: "#6639ba", accentAlt: "#0969da", card: "#f6f8fa", warn: "#9a6700"},
	Dark:  {fg: "#e6edf3", muted: "#7d8590", accent: "#d2a8ff", accentAlt: "#58a6ff", card: "#161b22", warn: "#d29922"},
}

// For returns the styles of n. Unknown names get the dark styles.
func For(n Name) Styles {
	p, ok := palettes[n]
	if !ok {
		n = Dark
		p = palettes[Dark]
	}
	fg := lipgloss.Color(p.fg)
	muted := lipgloss.Color(p.muted)
	accent := lipgloss.Color(p.accent)

	return Styles{
		Name: n,
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
		Topic: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.accentAlt)).
			Bold(true),
		Dice: lipgloss.NewStyle().
			Foreground(fg).
			Background(lipgloss.Color(p.card)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2),
		Label: lipgloss.NewStyle().
			Foreground(fg).
			MarginTop(1),
		Fact: lipgloss.NewStyle().
			Foreground(fg).
			PaddingLeft(1),
		Bullet: lipgloss.NewStyle().
			Foreground(accent),
		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.warn)).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(p.warn)).
			Padding(0, 1).
			MarginTop(1),
		Help: lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1),
		Spinner: lipgloss.NewStyle().
			Foreground(accent),
		DotOn:  "●",
		DotOff: " ",
	}
}

// Load picks the startup theme: the saved preference, then fallback when it
// is a valid name, then dark or light according to detectDark. A nil store
// or detectDark is allowed.
func Load(ctx context.Context, st store.Store, fallback string, detectDark func() bool) Name {
	if st != nil {
		saved, ok, err := st.GetPreference(ctx, store.PrefTheme)
		if err != nil {
			logging.Warn("reading saved theme", "err", err)
		} else if ok {
			if n, err := Parse(saved); err == nil {
				return n
			}
			logging.Warn("ignoring invalid saved theme", "value", saved)
		}
	}
	if fallback != "" {
		if n, err := Parse(fallback); err == nil {
			return n
		}
	}
	if detectDark == nil || detectDark() {
		return Dark
	}
	return Light
}

// Save persists n as the theme preference.
func Save(ctx context.Context, st store.Store, n Name) error {
	if st == nil {
		return nil
	}
	if err := st.SetPreference(ctx, store.PrefTheme, string(n)); err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	return nil
}

// DetectDark reports whether the terminal has a dark background.
func DetectDark() bool {
	return lipgloss.HasDarkBackground()
}
