package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dkeye/Mingle/internal/domain"
)

// MessageStore persists chat messages. Rows are append-only.
type MessageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Append durably stores the message and fills in the assigned id and the
// server-side timestamp.
func (s *MessageStore) Append(ctx context.Context, msg *domain.ChatMessage) error {
	row := messageRow{
		RoomID:   int64(msg.RoomID),
		UserID:   string(msg.UserID),
		UserName: msg.UserName,
		Content:  msg.Content,
		SentAt:   time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	msg.ID = row.ID
	msg.SentAt = row.SentAt
	return nil
}

// ListByRoom returns the `limit` most recently sent messages of a room in
// ascending sent-time order.
func (s *MessageStore) ListByRoom(ctx context.Context, room domain.RoomID, limit int) ([]domain.ChatMessage, error) {
	var rows []messageRow
	err := s.db.WithContext(ctx).
		Where("room_id = ?", int64(room)).
		Order("sent_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	out := make([]domain.ChatMessage, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = rowToMessage(r)
	}
	return out, nil
}
