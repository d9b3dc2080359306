package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/solidarity-overthrow/relay/internal/core"
	"github.com/solidarity-overthrow/relay/internal/domain"
)

// AdminAuthMiddleware gates the admin surface on an admin session. The
// relay itself never checks privilege for these endpoints; this is the
// upstream gate it assumes.
func AdminAuthMiddleware(sessions core.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("session_id")
		if err != nil || token == "" {
			c.String(http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}
		identity, err := sessions.Lookup(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, core.ErrSessionNotFound) {
				log.Error().Err(err).Str("module", "adapters.http").Msg("admin session lookup")
			}
			c.String(http.StatusUnauthorized, "Invalid session")
			c.Abort()
			return
		}
		if !identity.IsAdmin {
			c.String(http.StatusForbidden, "Forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}

func handleChatStatus(relay *core.Relay) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, relay.Status())
	}
}

func handleUnmute(relay *core.Relay) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserIDToUnmute string `json:"userIdToUnmute"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.UserIDToUnmute == "" {
			c.String(http.StatusBadRequest, "Missing userIdToUnmute")
			return
		}
		relay.UnmuteUser(domain.UserID(req.UserIDToUnmute))
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
