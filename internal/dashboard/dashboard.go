// Package dashboard owns one controller per widget: a slot holding the
// current fragment and the scheduler that refreshes it.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"sync"
	"time"

	"cryptopulse/internal/domain"
	"cryptopulse/internal/job"
	"cryptopulse/internal/provider"
	"cryptopulse/internal/render"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

var ErrUnknownWidget = errors.New("unknown widget")

type GlobalSource interface {
	FetchGlobal(ctx context.Context) (domain.MarketSnapshot, error)
}

type AssetSource interface {
	FetchMarkets(ctx context.Context, q provider.MarketsQuery) (domain.AssetList, error)
}

type SentimentSource interface {
	FetchLatest(ctx context.Context) (domain.SentimentReading, error)
}

type NewsSource interface {
	FetchNews(ctx context.Context, limit int) (domain.NewsFeed, error)
}

// Sources are the upstream clients. Ticker and movers may share one AssetSource.
type Sources struct {
	Global    GlobalSource
	Assets    AssetSource
	Sentiment SentimentSource
	News      NewsSource
}

type Intervals struct {
	Ticker    time.Duration
	Market    time.Duration
	Sentiment time.Duration
	Movers    time.Duration
	News      time.Duration
	Headlines time.Duration
}

// DefaultIntervals are the refresh periods used when none are configured.
func DefaultIntervals() Intervals {
	return Intervals{
		Ticker:    time.Minute,
		Market:    5 * time.Minute,
		Sentiment: 5 * time.Minute,
		Movers:    5 * time.Minute,
		News:      5 * time.Minute,
		Headlines: 10 * time.Minute,
	}
}

type Options struct {
	TickerIDs      []string
	MoversUniverse int
	MoversLimit    int
	NewsLimit      int
	HeadlinesLimit int
	Intervals      Intervals
	// Now is the clock used for "time ago" labels.
	Now func() time.Time
}

// DefaultTickerIDs is the fixed ticker strip, in display order.
var DefaultTickerIDs = []string{
	"bitcoin", "ethereum", "binancecoin", "solana", "ripple", "cardano",
	"dogecoin", "tron", "polygon", "polkadot", "litecoin",
}

func (o Options) withDefaults() Options {
	if len(o.TickerIDs) == 0 {
		o.TickerIDs = DefaultTickerIDs
	}
	if o.MoversUniverse <= 0 {
		o.MoversUniverse = provider.DefaultMarketsPerPage
	}
	if o.MoversLimit <= 0 {
		o.MoversLimit = render.MoversLimit
	}
	if o.NewsLimit <= 0 {
		o.NewsLimit = render.NewsLimit
	}
	if o.HeadlinesLimit <= 0 {
		o.HeadlinesLimit = render.HeadlinesLimit
	}
	def := DefaultIntervals()
	o.Intervals.Ticker = orDefault(o.Intervals.Ticker, def.Ticker)
	o.Intervals.Market = orDefault(o.Intervals.Market, def.Market)
	o.Intervals.Sentiment = orDefault(o.Intervals.Sentiment, def.Sentiment)
	o.Intervals.Movers = orDefault(o.Intervals.Movers, def.Movers)
	o.Intervals.News = orDefault(o.Intervals.News, def.News)
	o.Intervals.Headlines = orDefault(o.Intervals.Headlines, def.Headlines)
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// controller erases the data type so widgets of different kinds share one table.
type controller interface {
	name() string
	interval() time.Duration
	start(ctx context.Context)
	trigger() bool
	status() job.Status
	html() template.HTML
	latest() (any, bool)
}

type typedController[T any] struct {
	widget    *Widget[T]
	scheduler *job.Scheduler[T]
}

func (c *typedController[T]) name() string              { return c.widget.Name() }
func (c *typedController[T]) interval() time.Duration   { return c.scheduler.Interval() }
func (c *typedController[T]) start(ctx context.Context) { c.scheduler.Start(ctx) }
func (c *typedController[T]) trigger() bool             { return c.scheduler.Trigger() }
func (c *typedController[T]) status() job.Status        { return c.scheduler.Status() }
func (c *typedController[T]) html() template.HTML       { return c.widget.HTML() }
func (c *typedController[T]) latest() (any, bool)       { return c.widget.Latest() }

func newController[T any](tracer trace.Tracer, w *Widget[T], interval time.Duration, fetch job.FetchFunc[T]) *typedController[T] {
	return &typedController[T]{
		widget:    w,
		scheduler: job.NewScheduler[T](tracer, w.Name(), interval, fetch, w),
	}
}

// Dashboard wires every widget to its source.
type Dashboard struct {
	opts Options

	ticker    *typedController[domain.AssetList]
	movers    *typedController[domain.Movers]
	market    *typedController[domain.MarketSnapshot]
	sentiment *typedController[domain.SentimentReading]
	news      *typedController[domain.NewsFeed]
	headlines *typedController[domain.NewsFeed]

	controllers []controller
	byName      map[string]controller
}

func New(tracer trace.Tracer, src Sources, opts Options) *Dashboard {
	opts = opts.withDefaults()
	d := &Dashboard{opts: opts}
	iv := opts.Intervals

	d.ticker = newController(tracer,
		NewWidget(render.WidgetTicker, render.Loading(render.WidgetTicker),
			func(l domain.AssetList) (template.HTML, error) { return render.Ticker(opts.TickerIDs, l) },
			tickerFallback),
		iv.Ticker,
		func(ctx context.Context) (domain.AssetList, error) {
			return src.Assets.FetchMarkets(ctx, provider.MarketsQuery{IDs: opts.TickerIDs, PerPage: provider.MaxMarketsPerPage})
		})

	d.movers = newController(tracer,
		NewWidget(render.WidgetMovers, render.Loading(render.WidgetMovers), render.Movers, fixedFallback(render.WidgetMovers)),
		iv.Movers,
		func(ctx context.Context) (domain.Movers, error) {
			list, err := src.Assets.FetchMarkets(ctx, provider.MarketsQuery{PerPage: opts.MoversUniverse})
			if err != nil {
				return domain.Movers{}, err
			}
			return render.TopMovers(list, opts.MoversLimit), nil
		})

	d.market = newController(tracer,
		NewWidget(render.WidgetMarket, render.Loading(render.WidgetMarket), render.MarketStats, fixedFallback(render.WidgetMarket)),
		iv.Market,
		src.Global.FetchGlobal)

	d.sentiment = newController(tracer,
		NewWidget(render.WidgetSentiment, render.Loading(render.WidgetSentiment), render.Sentiment, fixedFallback(render.WidgetSentiment)),
		iv.Sentiment,
		src.Sentiment.FetchLatest)

	d.news = newController(tracer,
		NewWidget(render.WidgetNews, render.Loading(render.WidgetNews),
			func(f domain.NewsFeed) (template.HTML, error) { return render.News(f, opts.Now(), opts.NewsLimit) },
			fixedFallback(render.WidgetNews)),
		iv.News,
		func(ctx context.Context) (domain.NewsFeed, error) { return src.News.FetchNews(ctx, opts.NewsLimit) })

	d.headlines = newController(tracer,
		NewWidget(render.WidgetHeadlines, render.Loading(render.WidgetHeadlines),
			func(f domain.NewsFeed) (template.HTML, error) { return render.Headlines(f, opts.HeadlinesLimit) },
			fixedFallback(render.WidgetHeadlines)),
		iv.Headlines,
		func(ctx context.Context) (domain.NewsFeed, error) { return src.News.FetchNews(ctx, opts.HeadlinesLimit) })

	d.controllers = []controller{d.ticker, d.market, d.sentiment, d.movers, d.news, d.headlines}
	d.byName = make(map[string]controller, len(d.controllers))
	for _, c := range d.controllers {
		d.byName[c.name()] = c
	}
	return d
}

// tickerFallback shows the bundled quotes instead of an empty strip.
func tickerFallback() template.HTML {
	html, err := render.TickerQuotes(provider.FallbackQuotes())
	if err != nil {
		return render.Fallback(render.WidgetTicker)
	}
	return html
}

func fixedFallback(widget string) func() template.HTML {
	return func() template.HTML { return render.Fallback(widget) }
}

// Start runs every scheduler until ctx is cancelled. Each source ticks
// immediately and then on its own period.
func (d *Dashboard) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, c := range d.controllers {
		wg.Add(1)
		go func(c controller) {
			defer wg.Done()
			c.start(ctx)
		}(c)
	}
	log.Info().Int("widgets", len(d.controllers)).Msg("dashboard refresh started")
	wg.Wait()
}

// Fragment returns the current HTML for a widget.
func (d *Dashboard) Fragment(name string) (template.HTML, bool) {
	c, ok := d.byName[name]
	if !ok {
		return "", false
	}
	return c.html(), true
}

// Latest returns the data behind a widget's last good render. The bool is
// false for unknown widgets and for widgets that have not rendered yet.
func (d *Dashboard) Latest(name string) (any, bool) {
	c, ok := d.byName[name]
	if !ok {
		return nil, false
	}
	return c.latest()
}

// Known reports whether name is a widget.
func (d *Dashboard) Known(name string) bool {
	_, ok := d.byName[name]
	return ok
}

// Trigger forces an out-of-band tick. It reports false if a fetch for that
// widget is already in flight.
func (d *Dashboard) Trigger(name string) (bool, error) {
	c, ok := d.byName[name]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownWidget, name)
	}
	return c.trigger(), nil
}

func (d *Dashboard) Statuses() []job.Status {
	out := make([]job.Status, 0, len(d.controllers))
	for _, c := range d.controllers {
		out = append(out, c.status())
	}
	return out
}

// PageWidgets returns every slot in page order for a full-page render.
func (d *Dashboard) PageWidgets() []render.PageWidget {
	out := make([]render.PageWidget, 0, len(d.controllers))
	for _, c := range d.controllers {
		out = append(out, render.PageWidget{
			Name:           c.name(),
			RefreshSeconds: int(c.interval() / time.Second),
			HTML:           c.html(),
		})
	}
	return out
}

func (d *Dashboard) TickerIDs() []string { return d.opts.TickerIDs }

func (d *Dashboard) Ticker() (domain.AssetList, bool) { return d.ticker.widget.Latest() }

func (d *Dashboard) Movers() (domain.Movers, bool) { return d.movers.widget.Latest() }

func (d *Dashboard) Market() (domain.MarketSnapshot, bool) { return d.market.widget.Latest() }

func (d *Dashboard) Sentiment() (domain.SentimentReading, bool) { return d.sentiment.widget.Latest() }

func (d *Dashboard) News() (domain.NewsFeed, bool) { return d.news.widget.Latest() }

func (d *Dashboard) Headlines() (domain.NewsFeed, bool) { return d.headlines.widget.Latest() }

// Wait blocks until no fetch is in flight on any widget.
func (d *Dashboard) Wait() {
	d.ticker.scheduler.Wait()
	d.movers.scheduler.Wait()
	d.market.scheduler.Wait()
	d.sentiment.scheduler.Wait()
	d.news.scheduler.Wait()
	d.headlines.scheduler.Wait()
}
