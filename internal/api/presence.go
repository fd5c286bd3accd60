package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rubyruby/relay/internal/presence"
	"go.uber.org/zap"
)

type PresenceHandler struct {
	tracker *presence.Tracker
	logger  *zap.Logger
}

func NewPresenceHandler(tracker *presence.Tracker, logger *zap.Logger) *PresenceHandler {
	return &PresenceHandler{tracker: tracker, logger: logger}
}

// Online handles GET /v1/presence/online
func (h *PresenceHandler) Online(c *gin.Context) {
	users, err := h.tracker.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to read presence", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read presence"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"online": users})
}
