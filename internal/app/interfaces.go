// Package app holds the in-process chat core: the connection registry, the
// room broadcaster and the persist-then-fan-out service.
package app

import (
	"context"

	"github.com/dkeye/Mingle/internal/domain"
)

// ConnID identifies one live socket for the lifetime of the process.
type ConnID string

// Conn is the write side of a live connection as seen by the core.
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	TrySend(data []byte) error
	Close()
}

// MessageStore is the durable side of the relay. Broadcast happens strictly
// after a successful Append.
type MessageStore interface {
	Append(ctx context.Context, msg *domain.ChatMessage) error
	ListByRoom(ctx context.Context, room domain.RoomID, limit int) ([]domain.ChatMessage, error)
}

// RoomDirectory confirms that a room id denotes a live event.
type RoomDirectory interface {
	Exists(ctx context.Context, room domain.RoomID) (bool, error)
}
