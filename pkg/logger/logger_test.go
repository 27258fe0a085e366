package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestNewInstallsGlobalLogger(t *testing.T) {
	orig := log.Logger
	origLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = orig
		zerolog.SetGlobalLevel(origLevel)
	})

	var buf bytes.Buffer
	New(Config{Level: "warn", Output: &buf, Service: "test-svc"})

	log.Info().Msg("dropped")
	log.Warn().Str("source", "ticker").Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line at warn level, got %d: %s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected json log line: %v", err)
	}
	if entry["service"] != "test-svc" || entry["source"] != "ticker" || entry["message"] != "kept" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	origLevel := zerolog.GlobalLevel()
	orig := log.Logger
	t.Cleanup(func() {
		log.Logger = orig
		zerolog.SetGlobalLevel(origLevel)
	})

	var buf bytes.Buffer
	New(Config{Level: "chatty", Output: &buf})
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level, got %s", zerolog.GlobalLevel())
	}
}

func TestColorizeLevel(t *testing.T) {
	if got := colorizeLevel("info"); !strings.Contains(got, "info") || got == "info" {
		t.Fatalf("expected colored level, got %q", got)
	}
	if colorizeLevel("custom") != "custom" {
		t.Fatal("unknown levels pass through")
	}
}
