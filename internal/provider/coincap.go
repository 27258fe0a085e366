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

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
)

const (
	coincapBaseURL = "https://api.coincap.io/v2"
	coincapSource  = "coincap"
)

// CoinCapProvider is the alternate asset listing. Its decimal fields arrive as strings.
type CoinCapProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
}

func NewCoinCapProvider(tracer trace.Tracer, baseURL, apiKey string) *CoinCapProvider {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = coincapBaseURL
	}
	return &CoinCapProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		tracer:  tracer,
	}
}

// FetchMarkets returns the CoinCap listing normalized to AssetQuotes.
func (p *CoinCapProvider) FetchMarkets(ctx context.Context, q MarketsQuery) (domain.AssetList, error) {
	ctx, span := p.tracer.Start(ctx, "coincap.fetch-assets")
	defer span.End()

	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.perPage()))
	if len(q.IDs) > 0 {
		params.Set("ids", strings.Join(q.IDs, ","))
	}

	auth := ""
	if p.apiKey != "" {
		auth = "Bearer " + p.apiKey
	}
	body, err := getBody(ctx, p.client, p.baseURL+"/assets?"+params.Encode(), withHeader("Authorization", auth))
	if err != nil {
		return nil, domain.NetworkError(coincapSource, fmt.Errorf("fetch assets: %w", err))
	}

	var payload struct {
		Data []struct {
			ID                string  `json:"id"`
			Symbol            string  `json:"symbol"`
			Name              string  `json:"name"`
			PriceUSD          *string `json:"priceUsd"`
			ChangePercent24Hr *string `json:"changePercent24Hr"`
			MarketCapUSD      *string `json:"marketCapUsd"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, domain.ParseError(coincapSource, fmt.Errorf("parse assets: %w", err))
	}
	if payload.Data == nil {
		return nil, domain.ParseError(coincapSource, errors.New("assets payload has no data"))
	}

	list := make(domain.AssetList, 0, len(payload.Data))
	seen := make(map[string]struct{}, len(payload.Data))
	for _, row := range payload.Data {
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
			PriceUSD:     parseDecimal(row.PriceUSD),
			Change24hPct: parseDecimal(row.ChangePercent24Hr),
		}
		if mc := parseDecimal(row.MarketCapUSD); mc != nil {
			quote.MarketCapUSD = *mc
		}
		list = append(list, quote)
	}

	return list, nil
}

// parseDecimal converts an optional decimal string; blank or malformed values are missing.
func parseDecimal(v *string) *float64 {
	if v == nil {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*v))
	if err != nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

// FallbackQuotes is the fixed dataset shown by the ticker when no live
// listing has ever been rendered.
func FallbackQuotes() domain.AssetList {
	rows := []struct {
		id, symbol, name string
		price, change    string
	}{
		{"bitcoin", "BTC", "Bitcoin", "43250.00", "2.34"},
		{"ethereum", "ETH", "Ethereum", "2280.50", "1.87"},
		{"binance-coin", "BNB", "BNB", "315.20", "-0.45"},
		{"solana", "SOL", "Solana", "98.75", "5.12"},
		{"xrp", "XRP", "XRP", "0.62", "-1.23"},
		{"cardano", "ADA", "Cardano", "0.58", "0.89"},
		{"dogecoin", "DOGE", "Dogecoin", "0.085", "3.45"},
		{"polkadot", "DOT", "Polkadot", "7.25", "-0.67"},
		{"polygon", "MATIC", "Polygon", "0.92", "1.56"},
		{"litecoin", "LTC", "Litecoin", "72.40", "-0.34"},
	}
	list := make(domain.AssetList, 0, len(rows))
	for _, r := range rows {
		list = append(list, domain.AssetQuote{
			ID:           r.id,
			Symbol:       r.symbol,
			Name:         r.name,
			PriceUSD:     parseDecimal(&r.price),
			Change24hPct: parseDecimal(&r.change),
		})
	}
	return list
}
