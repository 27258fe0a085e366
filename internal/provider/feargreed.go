package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cryptopulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	fearGreedBaseURL = "https://api.alternative.me"
	fearGreedSource  = "feargreed"
)

type FearGreedProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewFearGreedProvider(tracer trace.Tracer, baseURL string) *FearGreedProvider {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = fearGreedBaseURL
	}
	return &FearGreedProvider{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
	}
}

// FetchLatest returns the most recent entry of the index series.
func (p *FearGreedProvider) FetchLatest(ctx context.Context) (domain.SentimentReading, error) {
	ctx, span := p.tracer.Start(ctx, "feargreed.fetch-latest")
	defer span.End()

	body, err := getBody(ctx, p.client, p.baseURL+"/fng/?limit=1")
	if err != nil {
		return domain.SentimentReading{}, domain.NetworkError(fearGreedSource, err)
	}

	var payload struct {
		Data []struct {
			Value          string `json:"value"`
			Classification string `json:"value_classification"`
			Timestamp      string `json:"timestamp"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.SentimentReading{}, domain.ParseError(fearGreedSource, fmt.Errorf("decode fear & greed response: %w", err))
	}
	if len(payload.Data) == 0 {
		return domain.SentimentReading{}, domain.ParseError(fearGreedSource, errors.New("fear & greed response has no rows"))
	}

	row := payload.Data[0]
	value, err := strconv.Atoi(strings.TrimSpace(row.Value))
	if err != nil {
		return domain.SentimentReading{}, domain.ParseError(fearGreedSource, fmt.Errorf("parse fear & greed value: %w", err))
	}
	if value < 0 || value > 100 {
		return domain.SentimentReading{}, domain.ParseError(fearGreedSource, fmt.Errorf("fear & greed value %d out of range", value))
	}
	classification := strings.TrimSpace(row.Classification)
	if classification == "" {
		return domain.SentimentReading{}, domain.ParseError(fearGreedSource, errors.New("fear & greed row has no classification"))
	}

	reading := domain.SentimentReading{Value: value, Classification: classification}
	if ts, err := strconv.ParseInt(strings.TrimSpace(row.Timestamp), 10, 64); err == nil {
		if ts > 1_000_000_000_000 {
			ts = ts / 1000
		}
		reading.Timestamp = time.Unix(ts, 0).UTC()
	}
	return reading, nil
}
