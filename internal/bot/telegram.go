package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cryptopulse/internal/chat"
	"cryptopulse/internal/domain"
	"cryptopulse/internal/format"
	"cryptopulse/internal/render"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
)

// MarketData is the read side of the dashboard the bot answers from.
type MarketData interface {
	Ticker() (domain.AssetList, bool)
	Market() (domain.MarketSnapshot, bool)
	Sentiment() (domain.SentimentReading, bool)
	News() (domain.NewsFeed, bool)
}

const (
	newsReplyLimit = 5
	chatTimeout    = 5 * time.Second
	notLoadedReply = "Data is still loading, try again in a minute."
)

var newBotFunc = tele.NewBot

// StartTelegramBot wires the bot to data and starts long polling in the
// background. It returns nil without error when token is empty.
func StartTelegramBot(token string, data MarketData, chatBot *chat.Bot) (*tele.Bot, error) {
	if token == "" {
		log.Info().Msg("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}
	b, err := newBotFunc(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	b.Handle("/price", func(c tele.Context) error {
		list, _ := data.Ticker()
		return c.Send(PriceReply(list, c.Args()))
	})
	b.Handle("/market", func(c tele.Context) error {
		snapshot, ok := data.Market()
		return c.Send(MarketReply(snapshot, ok))
	})
	b.Handle("/fng", func(c tele.Context) error {
		reading, ok := data.Sentiment()
		return c.Send(SentimentReply(reading, ok))
	})
	b.Handle("/news", func(c tele.Context) error {
		feed, ok := data.News()
		return c.Send(NewsReply(feed, ok, newsReplyLimit), tele.NoPreview)
	})
	b.Handle(tele.OnText, func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()
		_, reply, err := chatBot.Respond(ctx, c.Text())
		if err != nil {
			return nil
		}
		return c.Send(reply.Text, tele.NoPreview)
	})

	log.Info().Str("bot", b.Me.Username).Msg("Telegram bot started")
	go b.Start()
	return b, nil
}

// PriceReply answers /price SYM from the ticker's last good list.
func PriceReply(list domain.AssetList, args []string) string {
	symbols := make([]string, 0, len(list))
	for _, q := range list {
		symbols = append(symbols, q.Symbol)
	}
	supported := strings.Join(symbols, ", ")

	if len(args) == 0 {
		return "Usage: /price BTC\nSupported: " + supported
	}
	if len(list) == 0 {
		return notLoadedReply
	}
	symbol := strings.ToUpper(strings.TrimSpace(args[0]))
	q, ok := list.FindSymbol(symbol)
	if !ok {
		return fmt.Sprintf("Unknown symbol: %s\nSupported: %s", symbol, supported)
	}
	return fmt.Sprintf("%s (%s)\nPrice: %s\n24h Change: %s",
		q.Name, q.Symbol, format.Price(q.PriceUSD), format.PercentPtr(q.Change24hPct))
}

func MarketReply(s domain.MarketSnapshot, ok bool) string {
	if !ok {
		return notLoadedReply
	}
	return fmt.Sprintf("Market Cap: %s\n24h Volume: %s\nBTC Dominance: %s",
		format.CompactUSD(s.TotalMarketCapUSD), format.CompactUSD(s.Total24hVolumeUSD), format.Dominance(s.BTCDominancePct))
}

func SentimentReply(r domain.SentimentReading, ok bool) string {
	if !ok {
		return notLoadedReply
	}
	return "Fear & Greed Index: " + render.SentimentLabel(r)
}

func NewsReply(feed domain.NewsFeed, ok bool, limit int) string {
	if !ok {
		return notLoadedReply
	}
	if len(feed) == 0 {
		return render.NewsEmptyText
	}
	var sb strings.Builder
	for i, item := range feed {
		if i == limit {
			break
		}
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%d. %s\n%s", i+1, item.Title, item.URL)
	}
	return sb.String()
}
