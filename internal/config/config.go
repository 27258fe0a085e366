package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPPort     int
	AdminAPIKey  string
	RedisURL     string
	WalletRPCURL string

	TelegramBotToken string

	SSHPort                int
	SSHHostKeyPath         string
	SSHAllowedFingerprints []string

	AssetSource          string
	CoinGeckoBaseURL     string
	CoinCapBaseURL       string
	CoinCapAPIKey        string
	FearGreedBaseURL     string
	CryptoCompareBaseURL string
	CryptoCompareAPIKey  string

	TickerPollSecs    int
	MarketPollSecs    int
	SentimentPollSecs int
	MoversPollSecs    int
	NewsPollSecs      int
	HeadlinesPollSecs int

	TickerIDs      []string
	MoversUniverse int
	NewsLimit      int
	HeadlinesLimit int

	ChatPolicy  string
	ChatSeed    int64
	ChatDelayMs int

	LogLevel  string
	LogPretty bool
}

const (
	AssetSourceCoinGecko = "coingecko"
	AssetSourceCoinCap   = "coincap"

	ChatPolicyCanned = "canned"
	ChatPolicyRandom = "random"
)

// File is the optional YAML overlay named by CONFIG_FILE. Environment
// variables win over anything set here.
type File struct {
	Server struct {
		HTTPPort int    `yaml:"http_port"`
		SSHPort  int    `yaml:"ssh_port"`
		RedisURL string `yaml:"redis_url"`
	} `yaml:"server"`
	Sources struct {
		Assets        string `yaml:"assets"`
		CoinGecko     string `yaml:"coingecko_base_url"`
		CoinCap       string `yaml:"coincap_base_url"`
		FearGreed     string `yaml:"feargreed_base_url"`
		CryptoCompare string `yaml:"cryptocompare_base_url"`
		WalletRPC     string `yaml:"wallet_rpc_url"`
	} `yaml:"sources"`
	Refresh struct {
		Ticker    time.Duration `yaml:"ticker"`
		Market    time.Duration `yaml:"market"`
		Sentiment time.Duration `yaml:"sentiment"`
		Movers    time.Duration `yaml:"movers"`
		News      time.Duration `yaml:"news"`
		Headlines time.Duration `yaml:"headlines"`
	} `yaml:"refresh"`
	Display struct {
		TickerIDs      []string `yaml:"ticker_ids"`
		MoversUniverse int      `yaml:"movers_universe"`
		NewsLimit      int      `yaml:"news_limit"`
		HeadlinesLimit int      `yaml:"headlines_limit"`
	} `yaml:"display"`
	Chat struct {
		Policy  string `yaml:"policy"`
		Seed    int64  `yaml:"seed"`
		DelayMs int    `yaml:"delay_ms"`
	} `yaml:"chat"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

var readFile = os.ReadFile

func defaults() *Config {
	return &Config{
		HTTPPort:          8080,
		SSHPort:           2222,
		SSHHostKeyPath:    ".ssh/cryptopulse_ed25519",
		AssetSource:       AssetSourceCoinGecko,
		TickerPollSecs:    60,
		MarketPollSecs:    300,
		SentimentPollSecs: 300,
		MoversPollSecs:    300,
		NewsPollSecs:      300,
		HeadlinesPollSecs: 600,
		TickerIDs: []string{
			"bitcoin", "ethereum", "binancecoin", "solana", "ripple", "cardano",
			"dogecoin", "tron", "polygon", "polkadot", "litecoin",
		},
		MoversUniverse: 200,
		NewsLimit:      20,
		HeadlinesLimit: 6,
		ChatPolicy:     ChatPolicyCanned,
		ChatSeed:       1,
		ChatDelayMs:    500,
		LogLevel:       "info",
	}
}

func Load() *Config {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("config file ignored")
		}
	}

	cfg.applyEnv()

	if cfg.TelegramBotToken == "" {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.RedisURL == "" {
		log.Warn().Msg("REDIS_URL not set, theme is kept in memory")
	}
	if cfg.WalletRPCURL == "" {
		log.Warn().Msg("WALLET_RPC_URL not set, wallet connect will report no provider")
	}
	if cfg.AssetSource != AssetSourceCoinGecko && cfg.AssetSource != AssetSourceCoinCap {
		log.Warn().Str("asset_source", cfg.AssetSource).Msg("unsupported ASSET_SOURCE, defaulting to coingecko")
		cfg.AssetSource = AssetSourceCoinGecko
	}
	if cfg.ChatPolicy != ChatPolicyCanned && cfg.ChatPolicy != ChatPolicyRandom {
		log.Warn().Str("chat_policy", cfg.ChatPolicy).Msg("unsupported CHAT_POLICY, defaulting to canned")
		cfg.ChatPolicy = ChatPolicyCanned
	}

	return cfg
}

func (c *Config) applyFile(path string) error {
	data, err := readFile(path)
	if err != nil {
		return err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}

	setInt(&c.HTTPPort, f.Server.HTTPPort)
	setInt(&c.SSHPort, f.Server.SSHPort)
	setString(&c.RedisURL, f.Server.RedisURL)

	setString(&c.AssetSource, strings.ToLower(f.Sources.Assets))
	setString(&c.CoinGeckoBaseURL, f.Sources.CoinGecko)
	setString(&c.CoinCapBaseURL, f.Sources.CoinCap)
	setString(&c.FearGreedBaseURL, f.Sources.FearGreed)
	setString(&c.CryptoCompareBaseURL, f.Sources.CryptoCompare)
	setString(&c.WalletRPCURL, f.Sources.WalletRPC)

	setSecs(&c.TickerPollSecs, f.Refresh.Ticker)
	setSecs(&c.MarketPollSecs, f.Refresh.Market)
	setSecs(&c.SentimentPollSecs, f.Refresh.Sentiment)
	setSecs(&c.MoversPollSecs, f.Refresh.Movers)
	setSecs(&c.NewsPollSecs, f.Refresh.News)
	setSecs(&c.HeadlinesPollSecs, f.Refresh.Headlines)

	if ids := cleanList(f.Display.TickerIDs); len(ids) > 0 {
		c.TickerIDs = ids
	}
	setInt(&c.MoversUniverse, f.Display.MoversUniverse)
	setInt(&c.NewsLimit, f.Display.NewsLimit)
	setInt(&c.HeadlinesLimit, f.Display.HeadlinesLimit)

	setString(&c.ChatPolicy, strings.ToLower(f.Chat.Policy))
	if f.Chat.Seed != 0 {
		c.ChatSeed = f.Chat.Seed
	}
	if f.Chat.DelayMs > 0 {
		c.ChatDelayMs = f.Chat.DelayMs
	}

	setString(&c.LogLevel, f.Log.Level)
	c.LogPretty = c.LogPretty || f.Log.Pretty
	return nil
}

func (c *Config) applyEnv() {
	envInt("PORT", &c.HTTPPort)
	envString("ADMIN_API_KEY", &c.AdminAPIKey)
	envString("REDIS_URL", &c.RedisURL)
	envString("WALLET_RPC_URL", &c.WalletRPCURL)
	envString("TELEGRAM_BOT_TOKEN", &c.TelegramBotToken)

	envInt("SSH_PORT", &c.SSHPort)
	envString("SSH_HOST_KEY_PATH", &c.SSHHostKeyPath)
	if v := strings.TrimSpace(os.Getenv("SSH_ALLOWED_FINGERPRINTS")); v != "" {
		c.SSHAllowedFingerprints = cleanList(strings.Split(v, ","))
	}

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("ASSET_SOURCE"))); v != "" {
		c.AssetSource = v
	}
	envString("COINGECKO_BASE_URL", &c.CoinGeckoBaseURL)
	envString("COINCAP_BASE_URL", &c.CoinCapBaseURL)
	envString("COINCAP_API_KEY", &c.CoinCapAPIKey)
	envString("FEARGREED_BASE_URL", &c.FearGreedBaseURL)
	envString("CRYPTOCOMPARE_BASE_URL", &c.CryptoCompareBaseURL)
	envString("CRYPTOCOMPARE_API_KEY", &c.CryptoCompareAPIKey)

	envInt("TICKER_POLL_SECS", &c.TickerPollSecs)
	envInt("MARKET_POLL_SECS", &c.MarketPollSecs)
	envInt("SENTIMENT_POLL_SECS", &c.SentimentPollSecs)
	envInt("MOVERS_POLL_SECS", &c.MoversPollSecs)
	envInt("NEWS_POLL_SECS", &c.NewsPollSecs)
	envInt("HEADLINES_POLL_SECS", &c.HeadlinesPollSecs)

	if v := strings.TrimSpace(os.Getenv("TICKER_IDS")); v != "" {
		if ids := cleanList(strings.Split(v, ",")); len(ids) > 0 {
			c.TickerIDs = ids
		}
	}
	envInt("MOVERS_UNIVERSE", &c.MoversUniverse)
	if c.MoversUniverse > 250 {
		c.MoversUniverse = 250
	}
	envInt("NEWS_LIMIT", &c.NewsLimit)
	envInt("HEADLINES_LIMIT", &c.HeadlinesLimit)

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("CHAT_POLICY"))); v != "" {
		c.ChatPolicy = v
	}
	if v := strings.TrimSpace(os.Getenv("CHAT_SEED")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.ChatSeed = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHAT_DELAY_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.ChatDelayMs = n
		}
	}

	envString("LOG_LEVEL", &c.LogLevel)
	if v := strings.TrimSpace(os.Getenv("LOG_PRETTY")); v != "" {
		c.LogPretty = strings.EqualFold(v, "true")
	}
}

// Interval converts a poll setting in seconds to a duration.
func Interval(secs int) time.Duration {
	return time.Duration(secs) * time.Second
}

func envString(name string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

// envInt only accepts positive integers; anything else keeps the current value.
func envInt(name string, dst *int) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("var", name).Str("value", v).Msg("invalid value, keeping default")
		return
	}
	*dst = n
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setSecs(dst *int, d time.Duration) {
	if secs := int(d / time.Second); secs > 0 {
		*dst = secs
	}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
