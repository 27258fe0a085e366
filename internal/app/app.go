// Package app assembles the components shared by the HTTP and SSH binaries.
package app

import (
	"context"
	"time"

	"cryptopulse/internal/cache"
	"cryptopulse/internal/chat"
	"cryptopulse/internal/config"
	"cryptopulse/internal/dashboard"
	"cryptopulse/internal/provider"
	"cryptopulse/internal/theme"
	"cryptopulse/internal/wallet"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

const themePrefix = "cryptopulse"

var connectRedis = cache.Connect

// Sources builds the upstream clients. Global stats always come from
// CoinGecko; asset listings come from the configured asset source.
func Sources(cfg *config.Config, tracer trace.Tracer) dashboard.Sources {
	gecko := provider.NewCoinGeckoProvider(tracer, cfg.CoinGeckoBaseURL)
	src := dashboard.Sources{
		Global:    gecko,
		Assets:    gecko,
		Sentiment: provider.NewFearGreedProvider(tracer, cfg.FearGreedBaseURL),
		News:      provider.NewCryptoCompareProvider(tracer, cfg.CryptoCompareBaseURL, cfg.CryptoCompareAPIKey),
	}
	if cfg.AssetSource == config.AssetSourceCoinCap {
		src.Assets = provider.NewCoinCapProvider(tracer, cfg.CoinCapBaseURL, cfg.CoinCapAPIKey)
	}
	log.Info().Str("assets", cfg.AssetSource).Msg("data sources configured")
	return src
}

func DashboardOptions(cfg *config.Config) dashboard.Options {
	return dashboard.Options{
		TickerIDs:      cfg.TickerIDs,
		MoversUniverse: cfg.MoversUniverse,
		NewsLimit:      cfg.NewsLimit,
		HeadlinesLimit: cfg.HeadlinesLimit,
		Intervals: dashboard.Intervals{
			Ticker:    config.Interval(cfg.TickerPollSecs),
			Market:    config.Interval(cfg.MarketPollSecs),
			Sentiment: config.Interval(cfg.SentimentPollSecs),
			Movers:    config.Interval(cfg.MoversPollSecs),
			News:      config.Interval(cfg.NewsPollSecs),
			Headlines: config.Interval(cfg.HeadlinesPollSecs),
		},
	}
}

func NewDashboard(cfg *config.Config, tracer trace.Tracer) *dashboard.Dashboard {
	return dashboard.New(tracer, Sources(cfg, tracer), DashboardOptions(cfg))
}

// ThemeStore opens the persisted theme. Without REDIS_URL, or when Redis is
// unreachable, the theme lives in memory for the life of the process. The
// returned func releases the Redis client.
func ThemeStore(ctx context.Context, cfg *config.Config) (*theme.Store, func()) {
	var kv theme.KV = cache.NewMemoryKV()
	closeFn := func() {}

	if cfg.RedisURL != "" {
		client, err := connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, theme is kept in memory")
		} else {
			kv = cache.NewRedisKV(client, themePrefix)
			closeFn = func() {
				if err := client.Close(); err != nil {
					log.Warn().Err(err).Msg("close redis")
				}
			}
		}
	}

	store := theme.NewStore(kv)
	if _, err := store.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("theme load failed, using light")
	}
	return store, closeFn
}

func ChatBot(cfg *config.Config) *chat.Bot {
	policy := chat.Canned(chat.DefaultContacts)
	if cfg.ChatPolicy == config.ChatPolicyRandom {
		policy = chat.Random(cfg.ChatSeed, chat.DefaultResponses)
	}
	return chat.NewBot(policy, chat.WithDelay(time.Duration(cfg.ChatDelayMs)*time.Millisecond))
}

// WalletProvider returns nil, meaning no wallet is installed, when no RPC
// endpoint is configured.
func WalletProvider(cfg *config.Config, tracer trace.Tracer) wallet.Provider {
	if cfg.WalletRPCURL == "" {
		return nil
	}
	return wallet.NewRPCProvider(tracer, cfg.WalletRPCURL)
}
