// Package render maps normalized market data onto HTML fragments. Renderers
// never fetch; each call fully replaces the previous fragment for its widget.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

// Widget names double as slot keys and fragment route parameters.
const (
	WidgetTicker    = "ticker"
	WidgetMovers    = "movers"
	WidgetMarket    = "market"
	WidgetSentiment = "sentiment"
	WidgetNews      = "news"
	WidgetHeadlines = "headlines"
)

// Widgets lists every widget in page order.
var Widgets = []string{WidgetTicker, WidgetMarket, WidgetSentiment, WidgetMovers, WidgetNews, WidgetHeadlines}

const (
	NewsLoadingText   = "Loading latest crypto news..."
	NewsErrorText     = "⚠️ Unable to load news. Please try again later."
	NewsEmptyText     = "No news available at the moment."
	TickerErrorText   = "Failed to load ticker."
	LoadingText       = "Loading..."
	MarketErrorText   = "Market data unavailable."
	SentimentError    = "Sentiment index unavailable."
	MoversErrorText   = "Unable to load gainers and losers."
	HeadlineErrorText = "Unable to load headlines."
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute %s template: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

type notice struct {
	Class string
	Text  string
}

func noticeHTML(class, text string) template.HTML {
	out, err := execute("notice", notice{Class: class, Text: text})
	if err != nil {
		// notice has no fields that can fail to render
		return template.HTML(template.HTMLEscapeString(text))
	}
	return out
}

// Loading is the fragment a widget shows before its first tick completes.
func Loading(widget string) template.HTML {
	if widget == WidgetNews {
		return noticeHTML("news-loading", NewsLoadingText)
	}
	return noticeHTML("widget-loading", LoadingText)
}

// Fallback is the fixed message a widget shows when a tick fails and there
// is no earlier good render to keep.
func Fallback(widget string) template.HTML {
	switch widget {
	case WidgetNews:
		return noticeHTML("news-error", NewsErrorText)
	case WidgetTicker:
		return noticeHTML("widget-error", TickerErrorText)
	case WidgetMarket:
		return noticeHTML("widget-error", MarketErrorText)
	case WidgetSentiment:
		return noticeHTML("widget-error", SentimentError)
	case WidgetMovers:
		return noticeHTML("widget-error", MoversErrorText)
	case WidgetHeadlines:
		return noticeHTML("widget-error", HeadlineErrorText)
	default:
		return noticeHTML("widget-error", "Unavailable.")
	}
}
