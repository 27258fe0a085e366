package render

import (
	"fmt"
	"html/template"
	"io"

	"cryptopulse/internal/domain"
)

// PageWidget is one widget slot on the page together with how often the page
// script re-fetches it.
type PageWidget struct {
	Name           string
	Title          string
	RefreshSeconds int
	HTML           template.HTML
}

// PageData is everything the layout needs for one full-page render.
type PageData struct {
	Title        string
	Theme        domain.ThemeMode
	WalletStatus string
	Widgets      []PageWidget
	ChatGreeting string
}

// ThemeClass is the body class for a mode.
func ThemeClass(m domain.ThemeMode) string {
	if m == domain.ThemeDark {
		return "dark-mode"
	}
	return ""
}

// ThemeIcon is the toggle icon for a mode: a moon while light, a sun while dark.
func ThemeIcon(m domain.ThemeMode) string {
	if m == domain.ThemeDark {
		return "☀️"
	}
	return "🌙"
}

type pageView struct {
	PageData
	BodyClass string
	ThemeIcon string
	slots     map[string]PageWidget
}

func (v pageView) Slot(name string) PageWidget {
	return v.slots[name]
}

// Page writes the full dashboard document.
func Page(w io.Writer, data PageData) error {
	if data.Title == "" {
		data.Title = "CryptoPulse"
	}
	view := pageView{
		PageData:  data,
		BodyClass: ThemeClass(data.Theme),
		ThemeIcon: ThemeIcon(data.Theme),
		slots:     make(map[string]PageWidget, len(data.Widgets)),
	}
	for _, wd := range data.Widgets {
		view.slots[wd.Name] = wd
	}
	if err := templates.ExecuteTemplate(w, "page", view); err != nil {
		return fmt.Errorf("execute page template: %w", err)
	}
	return nil
}
