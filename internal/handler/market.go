package handler

import (
	"errors"
	"net/http"

	"cryptopulse/internal/dashboard"
	"cryptopulse/internal/render"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

func notReady(c *gin.Context, widget string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": widget + " data not loaded yet"})
}

// GetMarket godoc
// @Summary      Global market stats
// @Description  Returns the last successfully fetched market cap, 24h volume and BTC dominance
// @Tags         market
// @Produce      json
// @Success      200  {object}  domain.MarketSnapshot
// @Failure      503  {object}  map[string]string
// @Router       /api/market [get]
func (h *Handler) GetMarket(c *gin.Context) {
	snapshot, ok := h.dashboard.Market()
	if !ok {
		notReady(c, render.WidgetMarket)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// GetSentiment godoc
// @Summary      Fear & greed index
// @Description  Returns the latest fear & greed reading with its color bucket
// @Tags         market
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/sentiment [get]
func (h *Handler) GetSentiment(c *gin.Context) {
	reading, ok := h.dashboard.Sentiment()
	if !ok {
		notReady(c, render.WidgetSentiment)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"value":          reading.Value,
		"classification": reading.Classification,
		"timestamp":      reading.Timestamp,
		"bucket":         render.SentimentBucket(reading.Value),
	})
}

// GetTicker godoc
// @Summary      Ticker quotes
// @Description  Returns the configured ticker ids and the quotes last fetched for them
// @Tags         market
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/ticker [get]
func (h *Handler) GetTicker(c *gin.Context) {
	list, ok := h.dashboard.Ticker()
	if !ok {
		notReady(c, render.WidgetTicker)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ids":    h.dashboard.TickerIDs(),
		"assets": list,
		"items":  render.TickerItems(h.dashboard.TickerIDs(), list),
	})
}

// GetMovers godoc
// @Summary      Top movers
// @Description  Returns the top gainers and losers by 24h change
// @Tags         market
// @Produce      json
// @Success      200  {object}  domain.Movers
// @Failure      503  {object}  map[string]string
// @Router       /api/movers [get]
func (h *Handler) GetMovers(c *gin.Context) {
	movers, ok := h.dashboard.Movers()
	if !ok {
		notReady(c, render.WidgetMovers)
		return
	}
	c.JSON(http.StatusOK, movers)
}

// GetNews godoc
// @Summary      News feed
// @Description  Returns the latest news articles in publish order
// @Tags         news
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/news [get]
func (h *Handler) GetNews(c *gin.Context) {
	feed, ok := h.dashboard.News()
	if !ok {
		notReady(c, render.WidgetNews)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": feed, "count": len(feed)})
}

// GetHeadlines godoc
// @Summary      Headline strip
// @Description  Returns the titles shown in the scrolling headline strip
// @Tags         news
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/headlines [get]
func (h *Handler) GetHeadlines(c *gin.Context) {
	feed, ok := h.dashboard.Headlines()
	if !ok {
		notReady(c, render.WidgetHeadlines)
		return
	}
	titles := make([]string, 0, len(feed))
	for _, item := range feed {
		titles = append(titles, item.Title)
	}
	c.JSON(http.StatusOK, gin.H{"titles": titles})
}

// GetStatus godoc
// @Summary      Refresh scheduler status
// @Description  Returns tick counters, last outcome and last error for every widget
// @Tags         admin
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/status [get]
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"widgets": h.dashboard.Statuses()})
}

// Refresh godoc
// @Summary      Force a widget refresh
// @Description  Dispatches an out-of-band fetch for one widget. Requires X-API-Key when ADMIN_API_KEY is set.
// @Tags         admin
// @Produce      json
// @Param        name       path    string  true   "Widget name"
// @Param        X-API-Key  header  string  false  "Admin API key"
// @Success      202  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/refresh/{name} [post]
func (h *Handler) Refresh(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.refresh")
	defer span.End()

	name := c.Param("name")
	span.SetAttributes(attribute.String("widget", name))

	dispatched, err := h.dashboard.Trigger(name)
	if errors.Is(err, dashboard.ErrUnknownWidget) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown widget: " + name})
		return
	}
	if !dispatched {
		c.JSON(http.StatusConflict, gin.H{"error": "refresh already in flight", "widget": name})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "refreshing", "widget": name})
}
