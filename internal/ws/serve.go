package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rubyruby/relay/internal/auth"
	"github.com/rubyruby/relay/internal/relay"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Presence receives online/offline transitions for connected identities.
// *presence.Tracker satisfies it; tests substitute their own.
type Presence interface {
	Online(ctx context.Context, username string)
	Offline(ctx context.Context, username string)
}

// Serve handles GET /ws/:token.
//
// The token in the path is the session's capability: it resolves to the
// authenticated username, and everything after the upgrade trusts that
// identity. The handler goroutine becomes the session's receive loop, so
// each inbound frame is processed strictly in arrival order.
func Serve(registry *relay.Registry, router *relay.Router, tracker Presence, jwtSecret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := auth.ParseToken(c.Param("token"), jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		username := claims.Username

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error response.
			logger.Debug("websocket upgrade failed",
				zap.String("username", username),
				zap.Error(err),
			)
			return
		}

		client := newClient(username, conn, logger)

		// Last register wins. The displaced endpoint, if any, is closed
		// here — outside the registry lock — and its own deferred
		// cleanup will no-op thanks to the guarded unregister.
		if prev := registry.Register(username, client); prev != nil {
			_ = prev.Close()
		}
		tracker.Online(c.Request.Context(), username)

		logger.Info("session opened",
			zap.String("username", username),
			zap.Int("connections", registry.Len()),
		)

		// This defer is the one guaranteed cleanup path for every
		// terminal transport state: normal close, read error, protocol
		// violation, or a panic further down the handler.
		defer func() {
			// Offline only if this session still owned the registry
			// entry. A session superseded mid-teardown must leave the
			// presence mark alone — the user is still connected, just
			// on a newer transport.
			if registry.Unregister(username, client) {
				// The request context is gone by now; presence
				// cleanup still has to happen.
				tracker.Offline(context.Background(), username)
			}
			_ = client.Close()
			logger.Info("session closed",
				zap.String("username", username),
				zap.Int("connections", registry.Len()),
			)
		}()

		go client.writePump()

		ctx := c.Request.Context()
		client.readPump(func(raw []byte) {
			router.HandleInbound(ctx, username, raw)
		})
	}
}
