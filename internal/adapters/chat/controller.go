package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/solidarity-overthrow/relay/internal/config"
	"github.com/solidarity-overthrow/relay/internal/core"
)

const sessionCookie = "session_id"

type ChatWSController struct {
	relay    *core.Relay
	sessions core.SessionStore
	cfg      *config.Config
	limiter  *FloodLimiter
}

func NewChatWSController(cfg *config.Config, relay *core.Relay, sessions core.SessionStore) *ChatWSController {
	ctl := &ChatWSController{
		relay:    relay,
		sessions: sessions,
		cfg:      cfg,
	}
	if cfg.MessageRateLimit > 0 {
		ctl.limiter = NewFloodLimiter(cfg.MessageRateLimit, cfg.MessageRateInterval)
	}
	return ctl
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleChat authenticates the request against the session store, then
// upgrades it and hands the session to the relay. Registration happens
// before the read pump starts, so the joined broadcast always precedes
// the session's own messages.
func (ctl *ChatWSController) HandleChat(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" {
		c.String(http.StatusUnauthorized, "Missing session cookie")
		return
	}

	identity, err := ctl.sessions.Lookup(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, core.ErrSessionNotFound) {
			log.Error().Err(err).Str("module", "adapters.chat").Msg("session lookup")
		}
		c.String(http.StatusUnauthorized, "Invalid session")
		return
	}
	if identity.Username == "" {
		c.String(http.StatusUnauthorized, "User not found in session")
		return
	}

	if !websocket.IsWebSocketUpgrade(c.Request) {
		c.String(http.StatusBadRequest, "Expected a WebSocket connection")
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.chat").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "adapters.chat").Str("user", string(identity.UserID)).Str("name", identity.Username).Msg("new WS connection")

	conn := newWSConn(ws, ctl.cfg.SendBuffer)
	sess := core.NewSession(conn, identity)

	go ctl.writePump(conn)
	ctl.relay.Join(sess)
	go ctl.readPump(sess, conn)
}
