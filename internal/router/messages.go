package router

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ryanuber/go-glob"

	"github.com/ledgerbot/backend/internal/bot"
	"github.com/ledgerbot/backend/internal/httputil"
)

// MessageRequest is an inbound message from the chat gateway. Either Text
// or Image is set; when both are present the image wins, matching how chat
// clients attach captions to media.
type MessageRequest struct {
	Sender   string `json:"sender" binding:"required"` // Stable sender identity, e.g. a phone number
	Text     string `json:"text"`
	Image    string `json:"image"` // base64 encoded image data
	MimeType string `json:"mimeType"`
}

// MessageResponse is the reply the gateway delivers back to the sender.
type MessageResponse struct {
	ID    string `json:"id"`
	Reply string `json:"reply"`
}

// SenderAllowed rejects senders that match none of the allow-list
// patterns. An empty allow-list permits everyone.
func SenderAllowed(patterns []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(patterns) == 0 {
			return
		}

		var request MessageRequest
		if err := c.ShouldBindBodyWithJSON(&request); err != nil {
			httputil.NewError(c, http.StatusBadRequest, errors.New("the request body could not be parsed, please check the request"))
			c.Abort()
			return
		}

		for _, pattern := range patterns {
			if glob.Glob(pattern, request.Sender) {
				return
			}
		}

		httputil.NewError(c, http.StatusForbidden, errors.New("this sender is not allowed to use the bot"))
		c.Abort()
	}
}

// PostMessage handles an inbound message and returns the bot's reply.
func PostMessage(handler *bot.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request MessageRequest
		if err := c.ShouldBindBodyWithJSON(&request); err != nil {
			httputil.NewError(c, http.StatusBadRequest, errors.New("the request body could not be parsed, please check the request"))
			return
		}

		var reply string
		if request.Image != "" {
			data, err := base64.StdEncoding.DecodeString(request.Image)
			if err != nil {
				httputil.NewError(c, http.StatusBadRequest, errors.New("the image is not valid base64 data"))
				return
			}

			reply = handler.HandleImage(c.Request.Context(), request.Sender, data, request.MimeType)
		} else {
			reply = handler.HandleText(c.Request.Context(), request.Sender, request.Text)
		}

		c.JSON(http.StatusOK, MessageResponse{
			ID:    uuid.NewString(),
			Reply: reply,
		})
	}
}
