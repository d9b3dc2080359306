package chat

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/solidarity-overthrow/relay/internal/core"
)

func (ctl *ChatWSController) writePump(c *wsConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "adapters.chat").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.chat").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump feeds inbound frames to the relay. Clean closes and
// transport errors exit through the same deferred leave, so either way
// the room sees exactly one left broadcast.
func (ctl *ChatWSController) readPump(sess *core.Session, c *wsConn) {
	name := sess.Identity().Username
	defer func() {
		log.Info().Str("module", "adapters.chat").Str("name", name).Msg("readPump closing")
		ctl.relay.Leave(sess)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("module", "adapters.chat").Str("name", name).Msg("readPump read error")
			}
			return
		}
		if ctl.limiter != nil && !ctl.limiter.Allow(sess.Identity().UserID) {
			b, _ := json.Marshal(core.ErrorEvent{Error: "You are sending messages too quickly."})
			_ = c.TrySend(b)
			continue
		}
		ctl.relay.HandleMessage(sess, data)
	}
}
