package domain

import "time"

// MarketSnapshot holds aggregate market totals from the global-stats endpoint.
type MarketSnapshot struct {
	TotalMarketCapUSD float64 `json:"total_market_cap_usd"`
	Total24hVolumeUSD float64 `json:"total_24h_volume_usd"`
	BTCDominancePct   float64 `json:"btc_dominance_pct"`
}

// SentimentReading is the most recent fear & greed index entry.
type SentimentReading struct {
	Value          int       `json:"value"`
	Classification string    `json:"classification"`
	Timestamp      time.Time `json:"timestamp"`
}

// AssetQuote is one row of an asset listing. PriceUSD and Change24hPct are nil
// when the upstream payload did not carry them.
type AssetQuote struct {
	ID           string   `json:"id"`
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	PriceUSD     *float64 `json:"price_usd"`
	Change24hPct *float64 `json:"change_24h_pct"`
	MarketCapUSD float64  `json:"market_cap_usd"`
}

// HasPrice reports whether the quote carries a price.
func (q AssetQuote) HasPrice() bool { return q.PriceUSD != nil }

// HasChange reports whether the quote carries a 24h change.
func (q AssetQuote) HasChange() bool { return q.Change24hPct != nil }

// AssetList keeps API ordering; ids are unique.
type AssetList []AssetQuote

// Find returns the quote with the given id.
func (l AssetList) Find(id string) (AssetQuote, bool) {
	for _, q := range l {
		if q.ID == id {
			return q, true
		}
	}
	return AssetQuote{}, false
}

// FindSymbol returns the first quote whose symbol matches, case-sensitive upper.
func (l AssetList) FindSymbol(symbol string) (AssetQuote, bool) {
	for _, q := range l {
		if q.Symbol == symbol {
			return q, true
		}
	}
	return AssetQuote{}, false
}

// Movers is the gainers/losers view derived from an AssetList.
type Movers struct {
	Gainers []AssetQuote `json:"gainers"`
	Losers  []AssetQuote `json:"losers"`
}

// NewsItem is one article from the news aggregator.
type NewsItem struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
	PublishedAt int64  `json:"published_at"`
	SourceName  string `json:"source_name"`
	Category    string `json:"category"`
}

// NewsFeed keeps the publish order returned by the API.
type NewsFeed []NewsItem

// WalletSession is the connected account, if any.
type WalletSession struct {
	Address string `json:"address,omitempty"`
}

// Connected reports whether an address is held.
func (s WalletSession) Connected() bool { return s.Address != "" }

func Float(v float64) *float64 { return &v }
