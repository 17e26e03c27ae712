package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Mingle/internal/app"
	"github.com/dkeye/Mingle/internal/auth"
	"github.com/dkeye/Mingle/internal/domain"
)

// Close codes sent on handshake failure. Clients use them to tell a
// refresh-and-retry from a fatal condition.
const (
	CloseMissingParams = 4001
	CloseInvalidToken  = 4002
	CloseRoomNotFound  = 4003
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Validator auth.Validator
	Directory app.RoomDirectory
	Registry  *app.Registry
	Broadcast *app.Broadcaster
	Service   *app.Service

	ReadLimit  int64
	PingPeriod time.Duration

	limiter *MessageLimiter
}

func NewController(v auth.Validator, dir app.RoomDirectory, reg *app.Registry, b *app.Broadcaster, svc *app.Service, readLimit int64, pingPeriod time.Duration) *Controller {
	return &Controller{
		Validator:  v,
		Directory:  dir,
		Registry:   reg,
		Broadcast:  b,
		Service:    svc,
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
		limiter:    NewMessageLimiter(20, 10*time.Second),
	}
}

// HandleChat runs the handshake on a freshly upgraded socket. The credential
// and room arrive as query parameters; a socket that fails any step is closed
// with a distinct code and never reaches the registry.
func (ctl *Controller) HandleChat(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("ws upgrade")
		return
	}
	conn := newWsChatConn(ws)

	token := c.Query("token")
	roomRaw := c.Query("room")
	if token == "" || roomRaw == "" {
		ctl.reject(conn, CloseMissingParams, "token and room are required")
		return
	}
	room, err := domain.ParseRoomID(roomRaw)
	if err != nil {
		ctl.reject(conn, CloseMissingParams, "room id must be numeric")
		return
	}

	identity, err := ctl.Validator.Validate(c.Request.Context(), token)
	if err != nil {
		log.Warn().Err(err).Str("module", "chat").Msg("handshake credential rejected")
		ctl.reject(conn, CloseInvalidToken, "invalid token")
		return
	}

	exists, err := ctl.Directory.Exists(c.Request.Context(), room)
	if err != nil {
		log.Error().Err(err).Str("module", "chat").Str("room", room.String()).Msg("directory lookup")
		ctl.reject(conn, websocket.CloseInternalServerErr, "directory unavailable")
		return
	}
	if !exists {
		ctl.reject(conn, CloseRoomNotFound, "unknown room")
		return
	}

	cid := app.ConnID(uuid.NewString())
	sessCtx, cancel := context.WithCancel(ctx)

	// The ack goes into the send queue before the connection is visible to
	// the broadcaster, so the client sees joined before any chat traffic.
	ack, _ := json.Marshal(app.JoinedEvent{Type: app.EventJoined, User: *identity, Room: room})
	_ = conn.TrySend(ack)

	ctl.Registry.Register(cid, *identity, room, conn, cancel)
	ctl.Broadcast.UserJoined(room, *identity, cid)
	log.Info().Str("module", "chat").Str("cid", string(cid)).
		Str("user", string(identity.ID)).Str("room", room.String()).Msg("member joined")

	go ctl.writePump(sessCtx, conn)
	go ctl.readPump(sessCtx, cid, *identity, room, conn)
}

func (ctl *Controller) reject(conn *WsChatConn, code int, reason string) {
	deadline := time.Now().Add(time.Second)
	_ = conn.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	conn.Close()
}
