package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Mingle/internal/domain"
)

type regEntry struct {
	Identity domain.Identity
	Room     domain.RoomID
	Conn     Conn
	Cancel   context.CancelFunc
}

// Registry is the authoritative side table of live connections. It holds no
// durable state and is rebuilt empty on process start.
type Registry struct {
	mu      sync.RWMutex
	entries map[ConnID]*regEntry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[ConnID]*regEntry)}
}

// Snapshot is a read-only copy of one live entry, safe to use outside the
// registry lock.
type Snapshot struct {
	ID       ConnID
	Identity domain.Identity
	Conn     Conn
}

func (r *Registry) Register(id ConnID, identity domain.Identity, room domain.RoomID, conn Conn, cancel context.CancelFunc) {
	r.mu.Lock()
	r.entries[id] = &regEntry{Identity: identity, Room: room, Conn: conn, Cancel: cancel}
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("cid", string(id)).
		Str("user", string(identity.ID)).Str("room", room.String()).Msg("registered connection")
}

// Unregister removes the entry and cancels its session context. It reports
// whether the entry was still present, so leave notices fire exactly once.
func (r *Registry) Unregister(id ConnID) bool {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("cid", string(id)).Msg("unregistered connection")
	return true
}

func (r *Registry) MembersOf(room domain.RoomID) []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Snapshot, 0, len(r.entries))
	for id, e := range r.entries {
		if e.Room == room {
			out = append(out, Snapshot{ID: id, Identity: e.Identity, Conn: e.Conn})
		}
	}
	return out
}

func (r *Registry) CountInRoom(room domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.entries {
		if e.Room == room {
			n++
		}
	}
	return n
}

// OnlineIn is the live membership projection used by the who's-online API.
func (r *Registry) OnlineIn(room domain.RoomID) []domain.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Identity, 0, len(r.entries))
	for _, e := range r.entries {
		if e.Room == room {
			out = append(out, e.Identity)
		}
	}
	return out
}
