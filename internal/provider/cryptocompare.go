package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cryptopulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	cryptoCompareBaseURL = "https://min-api.cryptocompare.com"
	cryptoCompareSource  = "cryptocompare"
	defaultNewsLanguage  = "EN"
)

// CryptoCompareProvider fetches the aggregated crypto news feed.
type CryptoCompareProvider struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	language string
	tracer   trace.Tracer
}

func NewCryptoCompareProvider(tracer trace.Tracer, baseURL, apiKey string) *CryptoCompareProvider {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = cryptoCompareBaseURL
	}
	return &CryptoCompareProvider{
		client:   &http.Client{Timeout: 20 * time.Second},
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   strings.TrimSpace(apiKey),
		language: defaultNewsLanguage,
		tracer:   tracer,
	}
}

// FetchNews returns the first limit articles in the order the API publishes them.
func (p *CryptoCompareProvider) FetchNews(ctx context.Context, limit int) (domain.NewsFeed, error) {
	ctx, span := p.tracer.Start(ctx, "cryptocompare.fetch-news")
	defer span.End()

	auth := ""
	if p.apiKey != "" {
		auth = "Apikey " + p.apiKey
	}
	body, err := getBody(ctx, p.client, p.baseURL+"/data/v2/news/?lang="+p.language, withHeader("Authorization", auth))
	if err != nil {
		return nil, domain.NetworkError(cryptoCompareSource, fmt.Errorf("fetch news: %w", err))
	}

	var payload struct {
		Message string          `json:"Message"`
		Data    json.RawMessage `json:"Data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, domain.ParseError(cryptoCompareSource, fmt.Errorf("decode news response: %w", err))
	}
	data := strings.TrimSpace(string(payload.Data))
	if data == "" || data == "null" || !strings.HasPrefix(data, "[") {
		msg := payload.Message
		if msg == "" {
			msg = "news payload has no article list"
		}
		return nil, domain.ParseError(cryptoCompareSource, errors.New(msg))
	}

	var rows []struct {
		Title       string `json:"title"`
		Body        string `json:"body"`
		URL         string `json:"url"`
		ImageURL    string `json:"imageurl"`
		PublishedOn int64  `json:"published_on"`
		Categories  string `json:"categories"`
		SourceInfo  struct {
			Name string `json:"name"`
		} `json:"source_info"`
	}
	if err := json.Unmarshal(payload.Data, &rows); err != nil {
		return nil, domain.ParseError(cryptoCompareSource, fmt.Errorf("decode news articles: %w", err))
	}

	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}
	feed := make(domain.NewsFeed, 0, limit)
	for _, row := range rows[:limit] {
		title := strings.TrimSpace(row.Title)
		if title == "" {
			continue
		}
		feed = append(feed, domain.NewsItem{
			Title:       title,
			Body:        strings.TrimSpace(row.Body),
			URL:         strings.TrimSpace(row.URL),
			ImageURL:    strings.TrimSpace(row.ImageURL),
			PublishedAt: row.PublishedOn,
			SourceName:  strings.TrimSpace(row.SourceInfo.Name),
			Category:    firstCategory(row.Categories),
		})
	}
	return feed, nil
}

// firstCategory picks the leading entry of a pipe-delimited category list.
func firstCategory(categories string) string {
	for _, c := range strings.Split(categories, "|") {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}
