package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Mingle/internal/domain"
)

var (
	// ErrEmptyContent rejects messages that are empty after trimming.
	ErrEmptyContent = errors.New("empty message content")
	// ErrPersistence means the append failed; the message was not broadcast.
	ErrPersistence = errors.New("message not persisted")
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// Service is the single persistence path for chat messages. Both the socket
// handler and the HTTP send route go through Post, so a message is stored
// exactly once and broadcast only after the append succeeded.
type Service struct {
	store      MessageStore
	broadcast  *Broadcaster
	historyCap int
}

func NewService(store MessageStore, b *Broadcaster, historyCap int) *Service {
	if historyCap <= 0 {
		historyCap = MaxHistoryLimit
	}
	return &Service{store: store, broadcast: b, historyCap: historyCap}
}

// Post trims and persists a message under the connection-bound identity, then
// fans the stored row out to the room. Identity fields from client payloads
// are never trusted here.
func (s *Service) Post(ctx context.Context, id domain.Identity, room domain.RoomID, content string) (*domain.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	msg := &domain.ChatMessage{
		RoomID:   room,
		UserID:   id.ID,
		UserName: id.Name,
		Content:  content,
	}
	if err := s.store.Append(ctx, msg); err != nil {
		log.Error().Err(err).Str("module", "app.service").
			Str("room", room.String()).Str("user", string(id.ID)).Msg("append failed, dropping send")
		return nil, fmt.Errorf("%w: %s", ErrPersistence, err)
	}

	s.broadcast.ChatMessage(msg)
	return msg, nil
}

// History lists persisted messages ascending by send time. A non-positive
// limit falls back to the default; the cap bounds client-supplied limits.
func (s *Service) History(ctx context.Context, room domain.RoomID, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > s.historyCap {
		limit = s.historyCap
	}
	return s.store.ListByRoom(ctx, room, limit)
}
