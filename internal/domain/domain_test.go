package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseThemeMode(t *testing.T) {
	tests := map[string]ThemeMode{
		"dark":  ThemeDark,
		"light": ThemeLight,
		"":      ThemeLight,
		"DARK":  ThemeLight,
		"blue":  ThemeLight,
	}
	for in, want := range tests {
		if got := ParseThemeMode(in); got != want {
			t.Fatalf("ParseThemeMode(%q) = %s, want %s", in, got, want)
		}
	}
	if ThemeLight.Toggle() != ThemeDark || ThemeDark.Toggle() != ThemeLight {
		t.Fatal("toggle should flip between light and dark")
	}
}

func TestFetchErrorKind(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("tick: %w", NetworkError("coingecko", cause))

	if !IsFetchKind(err, FetchNetwork) {
		t.Fatalf("expected network kind, got %v", err)
	}
	if IsFetchKind(err, FetchParse) {
		t.Fatal("network error must not match parse kind")
	}
	if !errors.Is(err, cause) {
		t.Fatal("fetch error should unwrap to its cause")
	}
	if IsFetchKind(cause, FetchNetwork) {
		t.Fatal("plain error is not a fetch error")
	}
}

func TestAssetListFind(t *testing.T) {
	list := AssetList{
		{ID: "bitcoin", Symbol: "BTC", PriceUSD: Float(1)},
		{ID: "ethereum", Symbol: "ETH"},
	}
	q, ok := list.Find("ethereum")
	if !ok || q.Symbol != "ETH" || q.HasPrice() {
		t.Fatalf("unexpected quote: %+v", q)
	}
	if _, ok := list.Find("solana"); ok {
		t.Fatal("solana should be absent")
	}
	if q, ok := list.FindSymbol("BTC"); !ok || !q.HasPrice() {
		t.Fatalf("expected BTC with price, got %+v", q)
	}
}
