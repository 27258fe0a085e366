package handler

import (
	"bytes"
	"net/http"

	"cryptopulse/internal/render"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

const chatGreeting = "Hi! How can we help you today?"

// Index godoc
// @Summary      Dashboard page
// @Description  Renders the full page with every widget's current fragment, the persisted theme and the wallet status
// @Tags         page
// @Produce      html
// @Success      200  {string}  string
// @Router       / [get]
func (h *Handler) Index(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.index")
	defer span.End()

	data := render.PageData{
		Theme:        h.themes.Mode(),
		WalletStatus: h.wallet.Status(),
		Widgets:      h.dashboard.PageWidgets(),
		ChatGreeting: chatGreeting,
	}

	var buf bytes.Buffer
	if err := render.Page(&buf, data); err != nil {
		span.RecordError(err)
		log.Error().Err(err).Msg("render page")
		c.String(http.StatusInternalServerError, "page unavailable")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// Fragment godoc
// @Summary      Widget fragment
// @Description  Returns the widget's current HTML: its last good render, the loading notice, or its fallback
// @Tags         page
// @Produce      html
// @Param        name  path  string  true  "Widget name (ticker, market, sentiment, movers, news, headlines)"
// @Success      200  {string}  string
// @Failure      404  {object}  map[string]string
// @Router       /widgets/{name} [get]
func (h *Handler) Fragment(c *gin.Context) {
	name := c.Param("name")
	fragment, ok := h.dashboard.Fragment(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown widget: " + name})
		return
	}
	_, span := h.tracer.Start(c.Request.Context(), "handler.fragment")
	defer span.End()
	span.SetAttributes(attribute.String("widget", name))

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fragment))
}
