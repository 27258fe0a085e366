package provider

import (
	"context"
	"net/http"
	"testing"
	"time"

	"cryptopulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func newTestFearGreed(fn roundTripFunc) *FearGreedProvider {
	p := NewFearGreedProvider(trace.NewNoopTracerProvider().Tracer("test"), "https://example.com")
	p.client = &http.Client{Transport: fn}
	return p
}

func TestFearGreedFetchLatest(t *testing.T) {
	p := newTestFearGreed(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/fng/" || req.URL.Query().Get("limit") != "1" {
			t.Fatalf("unexpected request: %s", req.URL.String())
		}
		return jsonResponse(http.StatusOK, `{"data":[{"value":"63","value_classification":"Greed","timestamp":"1771009800","time_until_update":"1111"},{"value":"10","value_classification":"Extreme Fear","timestamp":"1770923400"}]}`), nil
	})

	reading, err := p.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reading.Value != 63 || reading.Classification != "Greed" {
		t.Fatalf("unexpected reading: %+v", reading)
	}
	if !reading.Timestamp.Equal(time.Unix(1771009800, 0).UTC()) {
		t.Fatalf("unexpected timestamp: %v", reading.Timestamp)
	}
}

func TestFearGreedParseFailures(t *testing.T) {
	bodies := map[string]string{
		"empty series":   `{"data":[]}`,
		"not a number":   `{"data":[{"value":"high","value_classification":"Greed"}]}`,
		"out of range":   `{"data":[{"value":"140","value_classification":"Greed"}]}`,
		"no class":       `{"data":[{"value":"40","value_classification":""}]}`,
		"malformed json": `{"data":`,
	}
	for name, body := range bodies {
		body := body
		p := newTestFearGreed(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, body), nil
		})
		if _, err := p.FetchLatest(context.Background()); !domain.IsFetchKind(err, domain.FetchParse) {
			t.Fatalf("%s: expected parse error, got %v", name, err)
		}
	}
}

func TestFearGreedServerError(t *testing.T) {
	p := newTestFearGreed(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, "bad gateway"), nil
	})
	if _, err := p.FetchLatest(context.Background()); !domain.IsFetchKind(err, domain.FetchNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}
