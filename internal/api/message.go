package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rubyruby/relay/internal/middleware"
	"github.com/rubyruby/relay/internal/models"
	"github.com/rubyruby/relay/internal/repository"
	"go.uber.org/zap"
)

type MessageHandler struct {
	repo   repository.MessageRepository
	logger *zap.Logger
}

func NewMessageHandler(repo repository.MessageRepository, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{repo: repo, logger: logger}
}

// historyItem is the shape clients render in a conversation view. The
// message id stays internal; ordering is already applied by the store.
type historyItem struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
	Ts     string `json:"ts"`
}

// History handles GET /v1/messages/:target_type/:target — the replay a
// client requests when opening a conversation. The "username" side of the
// query is always the caller; you cannot read someone else's direct
// conversations by naming them in the path.
func (h *MessageHandler) History(c *gin.Context) {
	targetType := models.TargetType(c.Param("target_type"))
	if !targetType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target type"})
		return
	}
	target := c.Param("target")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing target"})
		return
	}
	username := middleware.GetUsername(c)

	messages, err := h.repo.History(c.Request.Context(), username, targetType, target)
	if err != nil {
		h.logger.Error("failed to read history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read history"})
		return
	}

	items := make([]historyItem, 0, len(messages))
	for _, msg := range messages {
		items = append(items, historyItem{
			Sender: msg.Sender,
			Text:   msg.Text,
			Ts:     msg.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"messages": items})
}
