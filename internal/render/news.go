package render

import (
	"html/template"
	"strings"
	"time"

	"cryptopulse/internal/domain"
	"cryptopulse/internal/format"
)

const (
	NewsLimit      = 20
	HeadlinesLimit = 6
	// PreviewRunes is the body length shown before "Read more".
	PreviewRunes = 120
)

// NewsCard is one rendered article.
type NewsCard struct {
	Title     string
	Preview   string
	Body      string
	Truncated bool
	URL       string
	ImageURL  string
	Source    string
	Category  string
	Age       string
}

// NewsCards builds the card views for up to limit items, keeping feed order.
func NewsCards(feed domain.NewsFeed, now time.Time, limit int) []NewsCard {
	if limit <= 0 || limit > len(feed) {
		limit = len(feed)
	}
	cards := make([]NewsCard, 0, limit)
	for _, item := range feed[:limit] {
		preview := format.Truncate(item.Body, PreviewRunes)
		cards = append(cards, NewsCard{
			Title:     item.Title,
			Preview:   preview,
			Body:      item.Body,
			Truncated: preview != strings.TrimSpace(item.Body),
			URL:       item.URL,
			ImageURL:  item.ImageURL,
			Source:    item.SourceName,
			Category:  item.Category,
			Age:       format.TimeAgo(now, item.PublishedAt),
		})
	}
	return cards
}

// News renders the news grid. An empty feed renders the empty notice.
func News(feed domain.NewsFeed, now time.Time, limit int) (template.HTML, error) {
	if limit <= 0 {
		limit = NewsLimit
	}
	if len(feed) == 0 {
		return noticeHTML("news-loading", NewsEmptyText), nil
	}
	return execute("news", NewsCards(feed, now, limit))
}

// Headlines renders up to limit titles, without links, twice in a row for
// looping.
func Headlines(feed domain.NewsFeed, limit int) (template.HTML, error) {
	if limit <= 0 {
		limit = HeadlinesLimit
	}
	if len(feed) == 0 {
		return noticeHTML("news-loading", NewsEmptyText), nil
	}
	titles := make([]string, 0, 2*limit)
	for _, item := range feed[:min(limit, len(feed))] {
		titles = append(titles, item.Title)
	}
	titles = append(titles, titles...)
	return execute("headlines", titles)
}
