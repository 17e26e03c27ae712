package chat

import (
	"context"
	"fmt"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Mingle/internal/app"
	"github.com/dkeye/Mingle/internal/auth"
	"github.com/dkeye/Mingle/internal/domain"
	"github.com/dkeye/Mingle/internal/storage"
)

type wireEvent struct {
	Type    string             `json:"type"`
	User    domain.Identity    `json:"user"`
	Room    domain.RoomID      `json:"room"`
	Message domain.ChatMessage `json:"message"`
}

type relayFixture struct {
	srv       *httptest.Server
	registry  *app.Registry
	validator *auth.JWTValidator
}

func newRelay(t *testing.T) *relayFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := storage.Open(dsn)
	require.NoError(t, err)

	store := storage.NewMessageStore(db)
	directory := storage.NewEventDirectory(db)
	require.NoError(t, directory.AddEvent(context.Background(), 1, "meetup"))
	require.NoError(t, directory.AddEvent(context.Background(), 2, "conference"))

	validator := auth.NewJWTValidator("test-secret", "test")
	registry := app.NewRegistry()
	broadcaster := app.NewBroadcaster(registry)
	service := app.NewService(store, broadcaster, app.MaxHistoryLimit)
	ctl := NewController(validator, directory, registry, broadcaster, service, 4096, 30*time.Second)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/ws/chat", func(c *gin.Context) {
		ctl.HandleChat(context.Background(), c)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &relayFixture{srv: srv, registry: registry, validator: validator}
}

func (f *relayFixture) token(t *testing.T, id domain.UserID, name string) string {
	t.Helper()
	tok, err := f.validator.Issue(&domain.Identity{ID: id, Name: name}, time.Minute)
	require.NoError(t, err)
	return tok
}

func (f *relayFixture) dial(t *testing.T, query url.Values) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/api/ws/chat"
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	c, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func (f *relayFixture) join(t *testing.T, id domain.UserID, name string, room string) *websocket.Conn {
	t.Helper()
	c := f.dial(t, url.Values{"token": {f.token(t, id, name)}, "room": {room}})
	ack := readEvent(t, c)
	require.Equal(t, app.EventJoined, ack.Type)
	require.Equal(t, id, ack.User.ID)
	return c
}

func readEvent(t *testing.T, c *websocket.Conn) wireEvent {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev wireEvent
	require.NoError(t, c.ReadJSON(&ev))
	return ev
}

func expectSilence(t *testing.T, c *websocket.Conn) {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := c.ReadMessage()
	require.Error(t, err, "expected no frame to arrive")
	netErr, ok := err.(interface{ Timeout() bool })
	require.True(t, ok && netErr.Timeout(), "expected a read timeout, got %v", err)
}

func expectClose(t *testing.T, c *websocket.Conn, code int) {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := c.ReadMessage()
	require.Error(t, err)
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected a close frame, got %v", err)
	require.Equal(t, code, closeErr.Code)
}

func TestHandshake_MissingParams(t *testing.T) {
	f := newRelay(t)

	c := f.dial(t, nil)
	expectClose(t, c, CloseMissingParams)

	c = f.dial(t, url.Values{"token": {f.token(t, "u1", "Alice")}})
	expectClose(t, c, CloseMissingParams)

	c = f.dial(t, url.Values{"token": {f.token(t, "u1", "Alice")}, "room": {"not-a-number"}})
	expectClose(t, c, CloseMissingParams)
}

func TestHandshake_InvalidToken(t *testing.T) {
	f := newRelay(t)

	c := f.dial(t, url.Values{"token": {"garbage"}, "room": {"1"}})
	expectClose(t, c, CloseInvalidToken)

	require.Equal(t, 0, f.registry.CountInRoom(1), "rejected credential must never reach the registry")
}

func TestHandshake_UnknownRoom(t *testing.T) {
	f := newRelay(t)

	c := f.dial(t, url.Values{"token": {f.token(t, "u1", "Alice")}, "room": {"99"}})
	expectClose(t, c, CloseRoomNotFound)
}

func TestChatFlow(t *testing.T) {
	f := newRelay(t)

	alice := f.join(t, "u1", "Alice", "1")
	require.Equal(t, 1, f.registry.CountInRoom(1))

	bob := f.join(t, "u2", "Bob", "1")
	joined := readEvent(t, alice)
	require.Equal(t, app.EventUserJoined, joined.Type)
	require.Equal(t, domain.UserID("u2"), joined.User.ID)

	carol := f.join(t, "u3", "Carol", "2")

	require.NoError(t, alice.WriteJSON(map[string]string{"type": "chat_message", "content": "hola"}))

	for _, c := range []*websocket.Conn{alice, bob} {
		ev := readEvent(t, c)
		require.Equal(t, app.EventChatMessage, ev.Type)
		require.Equal(t, "hola", ev.Message.Content)
		require.Equal(t, domain.UserID("u1"), ev.Message.UserID)
		require.Equal(t, "Alice", ev.Message.UserName)
		require.NotZero(t, ev.Message.ID, "broadcast message must carry the stored id")
		require.False(t, ev.Message.SentAt.IsZero())
	}
	expectSilence(t, carol)

	require.NoError(t, alice.Close())
	left := readEvent(t, bob)
	require.Equal(t, app.EventUserLeft, left.Type)
	require.Equal(t, domain.UserID("u1"), left.User.ID)
	expectSilence(t, bob)

	require.Eventually(t, func() bool {
		return f.registry.CountInRoom(1) == 1
	}, 2*time.Second, 10*time.Millisecond, "closed connection must leave the registry")
}

func TestChat_WhitespaceOnlyIsDropped(t *testing.T) {
	f := newRelay(t)

	alice := f.join(t, "u1", "Alice", "1")
	bob := f.join(t, "u2", "Bob", "1")
	readEvent(t, alice) // Bob's join notice

	require.NoError(t, alice.WriteJSON(map[string]string{"type": "chat_message", "content": "   "}))
	require.NoError(t, alice.WriteJSON(map[string]string{"type": "chat_message", "content": "real"}))

	// The whitespace send produced nothing; the next frame is the real one.
	ev := readEvent(t, bob)
	require.Equal(t, app.EventChatMessage, ev.Type)
	require.Equal(t, "real", ev.Message.Content)
}

func TestChat_UnknownPayloadIsIgnored(t *testing.T) {
	f := newRelay(t)

	alice := f.join(t, "u1", "Alice", "1")

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, alice.WriteJSON(map[string]string{"type": "typing"}))
	require.NoError(t, alice.WriteJSON(map[string]string{"type": "chat_message", "content": "still here"}))

	// The connection survives unrecognized payloads.
	ev := readEvent(t, alice)
	require.Equal(t, app.EventChatMessage, ev.Type)
	require.Equal(t, "still here", ev.Message.Content)
}
