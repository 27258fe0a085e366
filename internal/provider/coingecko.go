package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cryptopulse/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	coingeckoBaseURL = "https://api.coingecko.com/api/v3"
	coingeckoSource  = "coingecko"

	// MaxMarketsPerPage is the largest page the markets endpoint serves.
	MaxMarketsPerPage     = 250
	DefaultMarketsPerPage = 200
)

// MarketsQuery selects which assets a listing call returns. With IDs set only
// those assets are requested; otherwise the top PerPage by market cap.
type MarketsQuery struct {
	IDs     []string
	PerPage int
}

func (q MarketsQuery) perPage() int {
	switch {
	case q.PerPage <= 0:
		return DefaultMarketsPerPage
	case q.PerPage > MaxMarketsPerPage:
		return MaxMarketsPerPage
	default:
		return q.PerPage
	}
}

// CoinGeckoProvider fetches market globals and asset listings from the CoinGecko free API.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewCoinGeckoProvider creates a provider rate limited to 8 requests per minute
// (one token every 7.5 seconds).
func NewCoinGeckoProvider(tracer trace.Tracer, baseURL string) *CoinGeckoProvider {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = coingeckoBaseURL
	}
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
		limiter: NewRateLimiter(8, 7500*time.Millisecond),
	}
}

// FetchGlobal returns total market cap, total 24h volume and BTC dominance.
func (p *CoinGeckoProvider) FetchGlobal(ctx context.Context) (domain.MarketSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-global")
	defer span.End()

	body, err := p.doRequest(ctx, p.baseURL+"/global")
	if err != nil {
		return domain.MarketSnapshot{}, domain.NetworkError(coingeckoSource, fmt.Errorf("fetch global: %w", err))
	}

	// Response shape: {"data": {"total_market_cap": {"usd": ...}, "total_volume": {"usd": ...}, "market_cap_percentage": {"btc": ...}}}
	var raw struct {
		Data *struct {
			TotalMarketCap      map[string]float64 `json:"total_market_cap"`
			TotalVolume         map[string]float64 `json:"total_volume"`
			MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.MarketSnapshot{}, domain.ParseError(coingeckoSource, fmt.Errorf("parse global: %w", err))
	}
	if raw.Data == nil {
		return domain.MarketSnapshot{}, domain.ParseError(coingeckoSource, errors.New("global payload has no data"))
	}

	capUSD, okCap := raw.Data.TotalMarketCap["usd"]
	volUSD, okVol := raw.Data.TotalVolume["usd"]
	btc, okBTC := raw.Data.MarketCapPercentage["btc"]
	if !okCap || !okVol || !okBTC {
		return domain.MarketSnapshot{}, domain.ParseError(coingeckoSource, errors.New("global payload missing usd totals or btc share"))
	}

	return domain.MarketSnapshot{
		TotalMarketCapUSD: capUSD,
		Total24hVolumeUSD: volUSD,
		BTCDominancePct:   btc,
	}, nil
}

// FetchMarkets returns the asset listing in API order. Rows missing price or
// change keep nil fields; rows without an id or repeating one are dropped.
func (p *CoinGeckoProvider) FetchMarkets(ctx context.Context, q MarketsQuery) (domain.AssetList, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-markets")
	defer span.End()

	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(q.perPage()))
	params.Set("page", "1")
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", "24h")
	if len(q.IDs) > 0 {
		params.Set("ids", strings.Join(q.IDs, ","))
	}
	span.SetAttributes(attribute.Int("per_page", q.perPage()), attribute.Int("ids", len(q.IDs)))

	body, err := p.doRequest(ctx, p.baseURL+"/coins/markets?"+params.Encode())
	if err != nil {
		return nil, domain.NetworkError(coingeckoSource, fmt.Errorf("fetch markets: %w", err))
	}

	var raw []struct {
		ID                       string   `json:"id"`
		Symbol                   string   `json:"symbol"`
		Name                     string   `json:"name"`
		CurrentPrice             *float64 `json:"current_price"`
		PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
		MarketCap                *float64 `json:"market_cap"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, domain.ParseError(coingeckoSource, fmt.Errorf("parse markets: %w", err))
	}

	list := make(domain.AssetList, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, row := range raw {
		id := strings.TrimSpace(row.ID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		quote := domain.AssetQuote{
			ID:           id,
			Symbol:       strings.ToUpper(strings.TrimSpace(row.Symbol)),
			Name:         strings.TrimSpace(row.Name),
			PriceUSD:     row.CurrentPrice,
			Change24hPct: row.PriceChangePercentage24h,
		}
		if row.MarketCap != nil {
			quote.MarketCapUSD = *row.MarketCap
		}
		list = append(list, quote)
	}

	return list, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return getBody(ctx, p.client, url)
}
