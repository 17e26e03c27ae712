package app

import (
	"time"

	"github.com/dkeye/Mingle/internal/domain"
)

// Server to client event kinds.
const (
	EventJoined      = "joined"
	EventChatMessage = "chat_message"
	EventUserJoined  = "user_joined"
	EventUserLeft    = "user_left"
)

// JoinedEvent acknowledges a successful handshake. It is delivered before any
// chat traffic so the client has a deterministic joined point.
type JoinedEvent struct {
	Type string          `json:"type"`
	User domain.Identity `json:"user"`
	Room domain.RoomID   `json:"room"`
}

type ChatMessageEvent struct {
	Type    string             `json:"type"`
	Message domain.ChatMessage `json:"message"`
}

// PresenceEvent announces a member joining or leaving the room.
type PresenceEvent struct {
	Type      string          `json:"type"`
	User      domain.Identity `json:"user"`
	Timestamp time.Time       `json:"timestamp"`
}
