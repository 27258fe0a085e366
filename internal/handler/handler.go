package handler

import (
	"cryptopulse/internal/chat"
	"cryptopulse/internal/dashboard"
	"cryptopulse/internal/theme"
	"cryptopulse/internal/wallet"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer     trace.Tracer
	dashboard  *dashboard.Dashboard
	themes     *theme.Store
	wallet     *wallet.Connector
	bot        *chat.Bot
	transcript *chat.Transcript
}

func New(tracer trace.Tracer, dash *dashboard.Dashboard, themes *theme.Store, connector *wallet.Connector, bot *chat.Bot) *Handler {
	return &Handler{
		tracer:     tracer,
		dashboard:  dash,
		themes:     themes,
		wallet:     connector,
		bot:        bot,
		transcript: chat.NewTranscript(0),
	}
}

// RegisterRoutes mounts the page, fragment and JSON routes. adminKey guards
// the forced-refresh endpoint; an empty key leaves it open.
func (h *Handler) RegisterRoutes(r *gin.Engine, adminKey string) {
	r.GET("/health", h.Health)
	r.GET("/", h.Index)
	r.GET("/widgets/:name", h.Fragment)

	api := r.Group("/api")
	api.GET("/market", h.GetMarket)
	api.GET("/sentiment", h.GetSentiment)
	api.GET("/ticker", h.GetTicker)
	api.GET("/movers", h.GetMovers)
	api.GET("/news", h.GetNews)
	api.GET("/headlines", h.GetHeadlines)
	api.GET("/status", h.GetStatus)
	api.POST("/refresh/:name", APIKeyAuth(adminKey), h.Refresh)

	api.GET("/theme", h.GetTheme)
	api.POST("/theme/toggle", h.ToggleTheme)

	api.GET("/wallet", h.GetWallet)
	api.POST("/wallet/connect", h.ConnectWallet)

	api.GET("/chat", h.GetChat)
	api.POST("/chat", h.PostChat)
}
