package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/solidarity-overthrow/relay/internal/adapters/chat"
	"github.com/solidarity-overthrow/relay/internal/config"
	"github.com/solidarity-overthrow/relay/internal/core"
)

func SetupRouter(cfg *config.Config, relay *core.Relay, sessions core.SessionStore) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Str("room", relay.Room()).Msg("router setup")

	ctl := chat.NewChatWSController(cfg, relay, sessions)

	api := r.Group("/api")
	api.GET("/chat", ctl.HandleChat)

	admin := api.Group("/admin", AdminAuthMiddleware(sessions))
	admin.GET("/chat-status", handleChatStatus(relay))
	admin.POST("/unmute", handleUnmute(relay))

	return r
}
