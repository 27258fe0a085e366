package render

import (
	"html/template"
	"strings"
	"unicode"
	"unicode/utf8"

	"cryptopulse/internal/domain"
	"cryptopulse/internal/format"
)

// TickerItem is one rendered ticker entry.
type TickerItem struct {
	ID          string
	Symbol      string
	Name        string
	Price       string
	HasChange   bool
	Change      string
	ChangeClass string
}

// TickerItems resolves each configured id against the listing, in id order.
// Ids missing from the listing become placeholder items, so the result always
// has len(ids) entries.
func TickerItems(ids []string, list domain.AssetList) []TickerItem {
	items := make([]TickerItem, 0, len(ids))
	for _, id := range ids {
		q, ok := list.Find(id)
		if !ok {
			q = domain.AssetQuote{ID: id}
		}
		items = append(items, tickerItem(q))
	}
	return items
}

func tickerItem(q domain.AssetQuote) TickerItem {
	name := q.Name
	if name == "" {
		name = capitalize(q.ID)
	}
	symbol := strings.ToUpper(q.Symbol)
	if symbol == "" && name != "" {
		r, _ := utf8.DecodeRuneInString(name)
		symbol = string(r)
	}

	item := TickerItem{
		ID:     q.ID,
		Symbol: symbol,
		Name:   name,
		Price:  format.Price(q.PriceUSD),
	}
	if q.HasChange() {
		item.HasChange = true
		item.Change = format.Percent(*q.Change24hPct)
		item.ChangeClass = format.ChangeClass(*q.Change24hPct)
	}
	return item
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Ticker renders the configured ids twice in a row; the page loops the strip
// with CSS.
func Ticker(ids []string, list domain.AssetList) (template.HTML, error) {
	return tickerHTML(TickerItems(ids, list))
}

// TickerQuotes renders a listing in its own order, used for the fallback dataset.
func TickerQuotes(list domain.AssetList) (template.HTML, error) {
	items := make([]TickerItem, 0, len(list))
	for _, q := range list {
		items = append(items, tickerItem(q))
	}
	return tickerHTML(items)
}

func tickerHTML(items []TickerItem) (template.HTML, error) {
	looped := make([]TickerItem, 0, 2*len(items))
	looped = append(looped, items...)
	looped = append(looped, items...)
	return execute("ticker", looped)
}
