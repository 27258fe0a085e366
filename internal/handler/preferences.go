package handler

import (
	"errors"
	"net/http"

	"cryptopulse/internal/domain"
	"cryptopulse/internal/render"
	"cryptopulse/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func themeBody(m domain.ThemeMode) gin.H {
	return gin.H{"mode": m, "icon": render.ThemeIcon(m), "class": render.ThemeClass(m)}
}

// GetTheme godoc
// @Summary      Current theme
// @Tags         theme
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/theme [get]
func (h *Handler) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, themeBody(h.themes.Mode()))
}

// ToggleTheme godoc
// @Summary      Toggle light/dark mode
// @Description  Flips the theme and persists it before responding
// @Tags         theme
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/theme/toggle [post]
func (h *Handler) ToggleTheme(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.toggle-theme")
	defer span.End()

	mode, err := h.themes.Toggle(ctx)
	if err != nil {
		span.RecordError(err)
		log.Error().Err(err).Msg("toggle theme")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "theme could not be saved", "mode": mode})
		return
	}
	c.JSON(http.StatusOK, themeBody(mode))
}

func walletBody(conn *wallet.Connector) gin.H {
	session := conn.Session()
	return gin.H{
		"status":    conn.Status(),
		"state":     conn.State().String(),
		"address":   session.Address,
		"available": conn.Available(),
	}
}

// GetWallet godoc
// @Summary      Wallet status
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/wallet [get]
func (h *Handler) GetWallet(c *gin.Context) {
	c.JSON(http.StatusOK, walletBody(h.wallet))
}

// ConnectWallet godoc
// @Summary      Connect wallet
// @Description  Requests accounts from the wallet provider. The status text is always returned for display.
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/wallet/connect [post]
func (h *Handler) ConnectWallet(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.connect-wallet")
	defer span.End()

	_, err := h.wallet.Connect(ctx)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, walletBody(h.wallet))
	case errors.Is(err, wallet.ErrProviderAbsent):
		c.JSON(http.StatusServiceUnavailable, walletBody(h.wallet))
	default:
		span.RecordError(err)
		log.Warn().Err(err).Msg("wallet connect failed")
		c.JSON(http.StatusBadGateway, walletBody(h.wallet))
	}
}
