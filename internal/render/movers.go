package render

import (
	"html/template"
	"sort"

	"cryptopulse/internal/domain"
	"cryptopulse/internal/format"
)

// MoversLimit is how many gainers and losers are shown.
const MoversLimit = 5

// TopMovers derives gainers (descending change) and losers (ascending change)
// from list without mutating it. Ties keep list order; quotes without a
// change sort after every quote that has one.
func TopMovers(list domain.AssetList, n int) domain.Movers {
	if n <= 0 {
		n = MoversLimit
	}
	gainers := sortedByChange(list, func(a, b float64) bool { return a > b })
	losers := sortedByChange(list, func(a, b float64) bool { return a < b })
	return domain.Movers{
		Gainers: gainers[:min(n, len(gainers))],
		Losers:  losers[:min(n, len(losers))],
	}
}

func sortedByChange(list domain.AssetList, before func(a, b float64) bool) []domain.AssetQuote {
	out := make([]domain.AssetQuote, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Change24hPct, out[j].Change24hPct
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return before(*a, *b)
		}
	})
	return out
}

type moverRow struct {
	Name        string
	Change      string
	ChangeClass string
}

type moversView struct {
	Gainers []moverRow
	Losers  []moverRow
}

func moverRows(quotes []domain.AssetQuote) []moverRow {
	rows := make([]moverRow, 0, len(quotes))
	for _, q := range quotes {
		row := moverRow{Name: q.Name, Change: format.PercentPtr(q.Change24hPct), ChangeClass: format.ClassNeutral}
		if q.HasChange() {
			row.ChangeClass = format.ChangeClass(*q.Change24hPct)
		}
		rows = append(rows, row)
	}
	return rows
}

// Movers renders the gainers and losers lists.
func Movers(m domain.Movers) (template.HTML, error) {
	return execute("movers", moversView{Gainers: moverRows(m.Gainers), Losers: moverRows(m.Losers)})
}
