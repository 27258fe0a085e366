package handler

import (
	"errors"
	"net/http"

	"cryptopulse/internal/chat"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Message string `json:"message"`
}

// GetChat godoc
// @Summary      Chat transcript
// @Tags         chat
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/chat [get]
func (h *Handler) GetChat(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": h.transcript.Messages()})
}

// PostChat godoc
// @Summary      Send a chat message
// @Description  Appends the visitor's message and the bot's scripted reply to the transcript
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        body  body  chatRequest  true  "Message"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/chat [post]
func (h *Handler) PostChat(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.post-chat")
	defer span.End()

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, reply, err := h.bot.Respond(ctx, req.Message)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		// the request went away during the reply delay
		h.transcript.Append(user)
		span.RecordError(err)
		c.JSON(http.StatusRequestTimeout, gin.H{"error": err.Error()})
		return
	}

	h.transcript.Append(user, reply)
	c.JSON(http.StatusOK, gin.H{"message": user, "reply": reply})
}
