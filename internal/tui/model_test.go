package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cryptopulse/internal/chat"
	"cryptopulse/internal/domain"
	"cryptopulse/internal/render"

	tea "github.com/charmbracelet/bubbletea"
)

type stubData struct {
	loaded bool
}

func (d stubData) Ticker() (domain.AssetList, bool) {
	return domain.AssetList{
		{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin", PriceUSD: domain.Float(64000), Change24hPct: domain.Float(1.5)},
	}, d.loaded
}

func (d stubData) Market() (domain.MarketSnapshot, bool) {
	return domain.MarketSnapshot{TotalMarketCapUSD: 2.5e12, Total24hVolumeUSD: 9e10, BTCDominancePct: 52.346}, d.loaded
}

func (d stubData) Sentiment() (domain.SentimentReading, bool) {
	return domain.SentimentReading{Value: 20, Classification: "Extreme Fear"}, d.loaded
}

func (d stubData) Movers() (domain.Movers, bool) {
	return domain.Movers{
		Gainers: []domain.AssetQuote{{ID: "sol", Symbol: "SOL", PriceUSD: domain.Float(150), Change24hPct: domain.Float(9.1)}},
		Losers:  []domain.AssetQuote{{ID: "doge", Symbol: "DOGE", PriceUSD: domain.Float(0.12), Change24hPct: domain.Float(-4.2)}},
	}, d.loaded
}

func (d stubData) News() (domain.NewsFeed, bool) {
	return domain.NewsFeed{{Title: "Bitcoin climbs", SourceName: "Desk", URL: "https://example.com/a", PublishedAt: time.Now().Unix()}}, d.loaded
}

type memoryTheme struct {
	mode domain.ThemeMode
	err  error
}

func (t *memoryTheme) Mode() domain.ThemeMode { return t.mode }

func (t *memoryTheme) Toggle(context.Context) (domain.ThemeMode, error) {
	if t.err != nil {
		return t.mode, t.err
	}
	t.mode = t.mode.Toggle()
	return t.mode, nil
}

func newTestModel(loaded bool, th *memoryTheme) *AppModel {
	m := NewAppModel(Services{
		Data:      stubData{loaded: loaded},
		Theme:     th,
		Chat:      chat.NewBot(chat.Canned(chat.DefaultContacts), chat.WithDelay(0)),
		TickerIDs: []string{"bitcoin", "ethereum"},
		Username:  "alice",
	})
	m.SetSize(120, 60)
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewBeforeData(t *testing.T) {
	m := newTestModel(false, &memoryTheme{mode: domain.ThemeLight})
	view := m.View()
	if !strings.Contains(view, render.LoadingText) || !strings.Contains(view, render.NewsLoadingText) {
		t.Fatalf("expected loading notices:\n%s", view)
	}
}

func TestViewWithData(t *testing.T) {
	m := newTestModel(true, &memoryTheme{mode: domain.ThemeLight})
	view := m.View()
	for _, want := range []string{
		"CryptoPulse", "alice",
		"BTC", "$64,000.00", "+1.50%",
		"E —",
		"$2,500,000,000,000", "52.35%",
		"20 (Extreme Fear)",
		"Top Gainers", "SOL", "+9.10%", "Top Losers", "DOGE", "-4.20%",
		"Bitcoin climbs",
	} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestViewNeedsSize(t *testing.T) {
	m := NewAppModel(Services{Data: stubData{}})
	if m.View() != render.LoadingText {
		t.Fatalf("expected loading view before size is known, got %q", m.View())
	}
}

func TestThemeToggle(t *testing.T) {
	th := &memoryTheme{mode: domain.ThemeLight}
	m := newTestModel(true, th)

	_, cmd := m.Update(key("t"))
	if cmd == nil {
		t.Fatal("expected toggle command")
	}
	m.Update(cmd())
	if m.mode != domain.ThemeDark || th.mode != domain.ThemeDark {
		t.Fatalf("expected dark, model=%s store=%s", m.mode, th.mode)
	}

	th.err = errors.New("redis down")
	_, cmd = m.Update(key("t"))
	m.Update(cmd())
	if m.mode != domain.ThemeDark {
		t.Fatal("failed toggle should keep the current mode")
	}
	if !strings.Contains(m.View(), "Theme not saved") {
		t.Fatal("expected theme error in footer")
	}
}

func TestChatFlow(t *testing.T) {
	m := newTestModel(true, &memoryTheme{mode: domain.ThemeLight})

	m.Update(key("c"))
	if m.focus != focusChat {
		t.Fatal("expected chat focus")
	}

	// q is text while chatting
	m.Update(key("q"))
	if m.focus != focusChat {
		t.Fatal("q should not leave chat")
	}
	m.Update(key("hi"))
	if got := m.input.Value(); got != "qhi" {
		t.Fatalf("unexpected input %q", got)
	}

	_, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("expected send command")
	}
	m.Update(cmd())
	if m.transcript.Len() != 2 {
		t.Fatalf("expected two transcript entries, got %d", m.transcript.Len())
	}
	if m.input.Value() != "" {
		t.Fatal("input should be cleared after send")
	}
	if !strings.Contains(m.View(), "Instagram") {
		t.Fatalf("expected canned reply in chat pane:\n%s", m.View())
	}

	if _, cmd := m.Update(key("enter")); cmd != nil {
		t.Fatal("blank input should not send")
	}

	m.Update(key("esc"))
	if m.focus != focusDashboard {
		t.Fatal("esc should leave chat")
	}
}

func TestQuitAndTick(t *testing.T) {
	m := newTestModel(true, &memoryTheme{mode: domain.ThemeLight})

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should quit from the dashboard")
	}

	_, cmd = m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick should schedule the next tick")
	}

	m.Update(tea.WindowSizeMsg{Width: 60, Height: 30})
	if m.width != 60 || m.viewport.Height != 30-2-chatLines {
		t.Fatalf("unexpected size %d/%d", m.width, m.viewport.Height)
	}
}

func TestWrap(t *testing.T) {
	got := wrap([]string{"aaaa", "bbbb", "cccc"}, 11)
	if got != "aaaa   bbbb\ncccc" {
		t.Fatalf("unexpected wrap %q", got)
	}
}
