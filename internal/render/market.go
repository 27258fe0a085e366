package render

import (
	"html/template"
	"strconv"

	"cryptopulse/internal/domain"
	"cryptopulse/internal/format"
)

type marketView struct {
	MarketCap    string
	Volume       string
	BTCDominance string
}

// MarketStats renders total market cap, 24h volume and BTC dominance.
func MarketStats(s domain.MarketSnapshot) (template.HTML, error) {
	return execute("market", marketView{
		MarketCap:    format.WholeUSD(s.TotalMarketCapUSD),
		Volume:       format.WholeUSD(s.Total24hVolumeUSD),
		BTCDominance: format.Dominance(s.BTCDominancePct),
	})
}

// SentimentBucket maps an index value onto the gauge's colour band.
func SentimentBucket(value int) string {
	switch {
	case value < 25:
		return "extreme-fear"
	case value < 45:
		return "fear"
	case value <= 55:
		return "neutral"
	case value <= 75:
		return "greed"
	default:
		return "extreme-greed"
	}
}

type sentimentView struct {
	Label  string
	Bucket string
	Width  int
}

// SentimentLabel is the "value (classification)" text shown on the gauge.
func SentimentLabel(r domain.SentimentReading) string {
	return strconv.Itoa(r.Value) + " (" + r.Classification + ")"
}

// Sentiment renders the fear & greed gauge.
func Sentiment(r domain.SentimentReading) (template.HTML, error) {
	width := min(max(r.Value, 0), 100)
	return execute("sentiment", sentimentView{
		Label:  SentimentLabel(r),
		Bucket: SentimentBucket(r.Value),
		Width:  width,
	})
}
