package app

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Mingle/internal/domain"
)

// Broadcaster fans one logical event out to the live members of a room.
// Delivery is best-effort per recipient; a failing recipient is closed and
// removed without aborting the rest of the fan-out.
type Broadcaster struct {
	Registry *Registry
}

func NewBroadcaster(reg *Registry) *Broadcaster {
	return &Broadcaster{Registry: reg}
}

// ChatMessage delivers a stored message to the whole room, sender included.
// The server is the single source of truth for message inclusion.
func (b *Broadcaster) ChatMessage(msg *domain.ChatMessage) {
	b.publish(msg.RoomID, ChatMessageEvent{Type: EventChatMessage, Message: *msg}, "")
}

// UserJoined notifies the other members of the room; the joining connection
// already received its joined ack.
func (b *Broadcaster) UserJoined(room domain.RoomID, user domain.Identity, exclude ConnID) {
	b.publish(room, PresenceEvent{Type: EventUserJoined, User: user, Timestamp: time.Now().UTC()}, exclude)
}

// UserLeft notifies all remaining members. The caller must have unregistered
// the leaving connection first.
func (b *Broadcaster) UserLeft(room domain.RoomID, user domain.Identity) {
	b.publish(room, PresenceEvent{Type: EventUserLeft, User: user, Timestamp: time.Now().UTC()}, "")
}

func (b *Broadcaster) publish(room domain.RoomID, v any, exclude ConnID) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcaster").Msg("marshal event")
		return
	}

	var dead []Snapshot
	sent := 0
	for _, snap := range b.Registry.MembersOf(room) {
		if snap.ID == exclude {
			continue
		}
		if err := snap.Conn.TrySend(data); err != nil {
			log.Warn().Err(err).Str("module", "app.broadcaster").
				Str("cid", string(snap.ID)).Str("room", room.String()).Msg("dropping unreachable member")
			dead = append(dead, snap)
			continue
		}
		sent++
	}
	log.Debug().Str("module", "app.broadcaster").Str("room", room.String()).
		Int("sent_to", sent).Int("dropped", len(dead)).Msg("fan-out done")

	for _, snap := range dead {
		snap.Conn.Close()
		if b.Registry.Unregister(snap.ID) {
			b.UserLeft(room, snap.Identity)
		}
	}
}
