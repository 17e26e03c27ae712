package chat

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Mingle/internal/app"
	"github.com/dkeye/Mingle/internal/domain"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, c *WsChatConn) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "chat").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "chat").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cid app.ConnID, identity domain.Identity, room domain.RoomID, c *WsChatConn) {
	defer func() {
		c.Close()
		// Removal happens before the leave notice so the leaving connection
		// is never counted among the recipients.
		if ctl.Registry.Unregister(cid) {
			ctl.Broadcast.UserLeft(room, identity)
		}
		log.Info().Str("module", "chat").Str("cid", string(cid)).Msg("session closed")
	}()

	pongWait := ctl.PingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Err(err).Str("module", "chat").Str("cid", string(cid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleInbound(ctx, identity, room, data)
		}
	}
}

// handleInbound processes one client frame. Malformed or unknown payloads are
// logged and ignored; only the handshake is fatal to a connection.
func (ctl *Controller) handleInbound(ctx context.Context, identity domain.Identity, room domain.RoomID, data []byte) {
	var env struct {
		Type    string `json:"type"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "chat").Msg("bad json")
		return
	}

	switch env.Type {
	case app.EventChatMessage:
		if !ctl.limiter.Allow(identity.ID) {
			log.Warn().Str("module", "chat").Str("user", string(identity.ID)).Msg("rate limited, dropping send")
			return
		}
		if _, err := ctl.Service.Post(ctx, identity, room, env.Content); err != nil {
			switch {
			case errors.Is(err, app.ErrEmptyContent):
				log.Debug().Str("module", "chat").Msg("dropping empty message")
			case errors.Is(err, app.ErrPersistence):
				// already logged by the service; the connection stays open
			default:
				log.Error().Err(err).Str("module", "chat").Msg("chat send failed")
			}
		}
	default:
		log.Warn().Str("module", "chat").Str("type", env.Type).Msg("unknown event")
	}
}
