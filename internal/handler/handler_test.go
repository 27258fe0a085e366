package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cryptopulse/internal/cache"
	"cryptopulse/internal/chat"
	"cryptopulse/internal/dashboard"
	"cryptopulse/internal/domain"
	"cryptopulse/internal/provider"
	"cryptopulse/internal/render"
	"cryptopulse/internal/theme"
	"cryptopulse/internal/wallet"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type stubSources struct {
	globalGate chan struct{}
	globalErr  error
}

func (s *stubSources) FetchGlobal(ctx context.Context) (domain.MarketSnapshot, error) {
	if s.globalGate != nil {
		<-s.globalGate
	}
	if s.globalErr != nil {
		return domain.MarketSnapshot{}, s.globalErr
	}
	return domain.MarketSnapshot{TotalMarketCapUSD: 2.5e12, Total24hVolumeUSD: 9.1e10, BTCDominancePct: 52.4}, nil
}

func (s *stubSources) FetchMarkets(ctx context.Context, q provider.MarketsQuery) (domain.AssetList, error) {
	return domain.AssetList{
		{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin", PriceUSD: domain.Float(64000), Change24hPct: domain.Float(2.5)},
		{ID: "ethereum", Symbol: "ETH", Name: "Ethereum", PriceUSD: domain.Float(3100), Change24hPct: domain.Float(-1.2)},
	}, nil
}

func (s *stubSources) FetchLatest(ctx context.Context) (domain.SentimentReading, error) {
	return domain.SentimentReading{Value: 72, Classification: "Greed"}, nil
}

func (s *stubSources) FetchNews(ctx context.Context, limit int) (domain.NewsFeed, error) {
	return domain.NewsFeed{
		{Title: "Bitcoin climbs", Body: "Body", URL: "https://example.com/a", SourceName: "Desk", PublishedAt: time.Now().Unix()},
		{Title: "ETH upgrade", Body: "Body", URL: "https://example.com/b", SourceName: "Desk", PublishedAt: time.Now().Unix()},
	}, nil
}

type stubWallet struct {
	accounts []string
	err      error
}

func (w stubWallet) RequestAccounts(context.Context) ([]string, error) {
	return w.accounts, w.err
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (failingKV) Set(context.Context, string, string) error         { return errors.New("redis down") }

type fixture struct {
	router *gin.Engine
	dash   *dashboard.Dashboard
	src    *stubSources
}

func newFixture(t *testing.T, src *stubSources, wp wallet.Provider, kv theme.KV, adminKey string) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tracer := trace.NewNoopTracerProvider().Tracer("handler-test")
	dash := dashboard.New(tracer, dashboard.Sources{Global: src, Assets: src, Sentiment: src, News: src}, dashboard.Options{
		TickerIDs: []string{"bitcoin", "ethereum", "solana"},
	})
	if kv == nil {
		kv = cache.NewMemoryKV()
	}
	themes := theme.NewStore(kv)
	if _, err := themes.Load(context.Background()); err != nil {
		t.Fatalf("load theme: %v", err)
	}
	bot := chat.NewBot(chat.Canned(chat.DefaultContacts), chat.WithDelay(0))

	h := New(tracer, dash, themes, wallet.NewConnector(wp), bot)
	r := gin.New()
	h.RegisterRoutes(r, adminKey)
	return &fixture{router: r, dash: dash, src: src}
}

func (f *fixture) refresh(t *testing.T) {
	t.Helper()
	for _, name := range render.Widgets {
		if _, err := f.dash.Trigger(name); err != nil {
			t.Fatalf("Trigger(%s): %v", name, err)
		}
	}
	f.dash.Wait()
}

func (f *fixture) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHealth(t *testing.T) {
	f := newFixture(t, &stubSources{}, nil, nil, "")

	w := f.do(http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := decode(t, w)
	if body["status"] != "healthy" || body["live_widgets"] != float64(0) {
		t.Fatalf("unexpected body: %v", body)
	}

	f.refresh(t)
	body = decode(t, f.do(http.MethodGet, "/health", ""))
	if body["live_widgets"] != float64(len(render.Widgets)) {
		t.Fatalf("expected every widget live, got %v", body["live_widgets"])
	}
}

func TestIndexRendersWidgetsAndTheme(t *testing.T) {
	kv := cache.NewMemoryKV()
	if err := kv.Set(context.Background(), theme.Key, "dark"); err != nil {
		t.Fatal(err)
	}
	f := newFixture(t, &stubSources{}, nil, kv, "")

	w := f.do(http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	page := w.Body.String()
	if !strings.Contains(page, `class="dark-mode"`) {
		t.Fatal("expected dark-mode body class")
	}
	for _, name := range render.Widgets {
		if !strings.Contains(page, `data-widget="`+name+`"`) {
			t.Fatalf("page is missing widget slot %s", name)
		}
	}
	if !strings.Contains(page, render.NewsLoadingText) {
		t.Fatal("news slot should show the loading notice before the first tick")
	}
}

func TestFragment(t *testing.T) {
	f := newFixture(t, &stubSources{}, nil, nil, "")

	w := f.do(http.MethodGet, "/widgets/market", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), render.LoadingText) {
		t.Fatalf("expected loading fragment, got %d %s", w.Code, w.Body.String())
	}

	f.refresh(t)
	w = f.do(http.MethodGet, "/widgets/ticker", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := strings.Count(w.Body.String(), "price-ticker__item"); got != 6 {
		t.Fatalf("expected 3 ids rendered twice, got %d items", got)
	}
	if !strings.Contains(w.Body.String(), "$64,000.00") {
		t.Fatalf("expected bitcoin price in ticker: %s", w.Body.String())
	}

	if w := f.do(http.MethodGet, "/widgets/portfolio", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown widget, got %d", w.Code)
	}
}

func TestDataEndpoints(t *testing.T) {
	f := newFixture(t, &stubSources{}, nil, nil, "")

	for _, path := range []string{"/api/market", "/api/sentiment", "/api/ticker", "/api/movers", "/api/news", "/api/headlines"} {
		if w := f.do(http.MethodGet, path, ""); w.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: expected 503 before first tick, got %d", path, w.Code)
		}
	}

	f.refresh(t)

	market := decode(t, f.do(http.MethodGet, "/api/market", ""))
	if market["btc_dominance_pct"] != 52.4 {
		t.Fatalf("unexpected market body: %v", market)
	}
	sentiment := decode(t, f.do(http.MethodGet, "/api/sentiment", ""))
	if sentiment["bucket"] != "greed" || sentiment["value"] != float64(72) {
		t.Fatalf("unexpected sentiment body: %v", sentiment)
	}
	ticker := decode(t, f.do(http.MethodGet, "/api/ticker", ""))
	if ids, _ := ticker["ids"].([]any); len(ids) != 3 {
		t.Fatalf("unexpected ticker ids: %v", ticker["ids"])
	}
	movers := decode(t, f.do(http.MethodGet, "/api/movers", ""))
	gainers, _ := movers["gainers"].([]any)
	if len(gainers) != 2 || gainers[0].(map[string]any)["id"] != "bitcoin" {
		t.Fatalf("unexpected gainers: %v", movers["gainers"])
	}
	news := decode(t, f.do(http.MethodGet, "/api/news", ""))
	if news["count"] != float64(2) {
		t.Fatalf("unexpected news count: %v", news["count"])
	}
	headlines := decode(t, f.do(http.MethodGet, "/api/headlines", ""))
	if titles, _ := headlines["titles"].([]any); len(titles) != 2 || titles[0] != "Bitcoin climbs" {
		t.Fatalf("unexpected headlines: %v", headlines)
	}

	status := decode(t, f.do(http.MethodGet, "/api/status", ""))
	if widgets, _ := status["widgets"].([]any); len(widgets) != len(render.Widgets) {
		t.Fatalf("unexpected status: %v", status)
	}
}

func TestMarketKeepsLastGoodDataAfterError(t *testing.T) {
	src := &stubSources{}
	f := newFixture(t, src, nil, nil, "")
	f.refresh(t)

	src.globalErr = errors.New("upstream 500")
	if _, err := f.dash.Trigger(render.WidgetMarket); err != nil {
		t.Fatal(err)
	}
	f.dash.Wait()

	if w := f.do(http.MethodGet, "/api/market", ""); w.Code != http.StatusOK {
		t.Fatalf("expected last good data, got %d", w.Code)
	}
	if w := f.do(http.MethodGet, "/widgets/market", ""); strings.Contains(w.Body.String(), render.MarketErrorText) {
		t.Fatal("fallback should not replace a good render")
	}
}

func TestRefresh(t *testing.T) {
	src := &stubSources{globalGate: make(chan struct{})}
	f := newFixture(t, src, nil, nil, "secret")

	if w := f.do(http.MethodPost, "/api/refresh/market", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", w.Code)
	}
	if w := f.do(http.MethodPost, "/api/refresh/market", "", "X-API-Key", "wrong"); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with wrong key, got %d", w.Code)
	}
	if w := f.do(http.MethodPost, "/api/refresh/nope", "", "X-API-Key", "secret"); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown widget, got %d", w.Code)
	}

	if w := f.do(http.MethodPost, "/api/refresh/market", "", "X-API-Key", "secret"); w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	if w := f.do(http.MethodPost, "/api/refresh/market", "", "Authorization", "Bearer secret"); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 while in flight, got %d", w.Code)
	}

	close(src.globalGate)
	f.dash.Wait()

	if w := f.do(http.MethodGet, "/api/market", ""); w.Code != http.StatusOK {
		t.Fatalf("expected market data after forced refresh, got %d", w.Code)
	}
}

func TestThemeToggle(t *testing.T) {
	kv := cache.NewMemoryKV()
	f := newFixture(t, &stubSources{}, nil, kv, "")

	body := decode(t, f.do(http.MethodGet, "/api/theme", ""))
	if body["mode"] != "light" || body["icon"] != "🌙" {
		t.Fatalf("unexpected theme: %v", body)
	}

	body = decode(t, f.do(http.MethodPost, "/api/theme/toggle", ""))
	if body["mode"] != "dark" || body["class"] != "dark-mode" || body["icon"] != "☀️" {
		t.Fatalf("unexpected toggled theme: %v", body)
	}
	if v, _, _ := kv.Get(context.Background(), theme.Key); v != "dark" {
		t.Fatalf("expected persisted dark, got %q", v)
	}
}

func TestThemeToggleWriteFailure(t *testing.T) {
	f := newFixture(t, &stubSources{}, nil, failingKV{}, "")

	w := f.do(http.MethodPost, "/api/theme/toggle", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if body := decode(t, w); body["mode"] != "light" {
		t.Fatalf("mode should stay light on failed write: %v", body)
	}
}

func TestWalletConnect(t *testing.T) {
	t.Run("no provider", func(t *testing.T) {
		f := newFixture(t, &stubSources{}, nil, nil, "")
		w := f.do(http.MethodPost, "/api/wallet/connect", "")
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", w.Code)
		}
		if body := decode(t, w); body["status"] != wallet.StatusNotInstalled || body["available"] != false {
			t.Fatalf("unexpected body: %v", body)
		}
	})

	t.Run("connected", func(t *testing.T) {
		f := newFixture(t, &stubSources{}, stubWallet{accounts: []string{"0xABCDEF1234567890"}}, nil, "")
		w := f.do(http.MethodPost, "/api/wallet/connect", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		body := decode(t, w)
		if body["status"] != "Connected: 0xABCD...7890" || body["state"] != "connected" {
			t.Fatalf("unexpected body: %v", body)
		}
		if got := decode(t, f.do(http.MethodGet, "/api/wallet", "")); got["address"] != "0xABCDEF1234567890" {
			t.Fatalf("unexpected wallet: %v", got)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		rejected := &wallet.RPCError{Code: wallet.CodeUserRejected, Message: "User rejected the request."}
		f := newFixture(t, &stubSources{}, stubWallet{err: rejected}, nil, "")
		w := f.do(http.MethodPost, "/api/wallet/connect", "")
		if w.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", w.Code)
		}
		if body := decode(t, w); body["status"] != wallet.StatusRejected {
			t.Fatalf("unexpected body: %v", body)
		}
	})
}

func TestChat(t *testing.T) {
	f := newFixture(t, &stubSources{}, nil, nil, "")

	if w := f.do(http.MethodPost, "/api/chat", `{"message":"   "}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank message, got %d", w.Code)
	}
	if w := f.do(http.MethodPost, "/api/chat", `not json`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", w.Code)
	}

	w := f.do(http.MethodPost, "/api/chat", `{"message":"hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Message chat.Message `json:"message"`
		Reply   chat.Message `json:"reply"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Message.Text != "You: hello" || body.Message.Role != chat.RoleUser {
		t.Fatalf("unexpected user message: %+v", body.Message)
	}
	if body.Reply.Role != chat.RoleBot || !strings.Contains(string(body.Reply.HTML), "WhatsApp") {
		t.Fatalf("unexpected reply: %+v", body.Reply)
	}

	history := decode(t, f.do(http.MethodGet, "/api/chat", ""))
	if msgs, _ := history["messages"].([]any); len(msgs) != 2 {
		t.Fatalf("expected two transcript entries, got %v", history["messages"])
	}
}
