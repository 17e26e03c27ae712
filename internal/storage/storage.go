// Package storage backs the message store and the event directory with a
// single relational database.
package storage

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dkeye/Mingle/internal/domain"
)

type messageRow struct {
	ID       int64     `gorm:"primaryKey;autoIncrement"`
	RoomID   int64     `gorm:"index:idx_room_sent,priority:1"`
	UserID   string    `gorm:"size:64"`
	UserName string    `gorm:"size:96"`
	Content  string    `gorm:"type:text"`
	SentAt   time.Time `gorm:"index:idx_room_sent,priority:2"`
}

func (messageRow) TableName() string { return "chat_messages" }

type eventRow struct {
	ID    int64  `gorm:"primaryKey"`
	Title string `gorm:"size:160"`
}

func (eventRow) TableName() string { return "events" }

// Open opens the database and migrates the chat tables.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&messageRow{}, &eventRow{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func rowToMessage(r messageRow) domain.ChatMessage {
	return domain.ChatMessage{
		ID:       r.ID,
		RoomID:   domain.RoomID(r.RoomID),
		UserID:   domain.UserID(r.UserID),
		UserName: r.UserName,
		Content:  r.Content,
		SentAt:   r.SentAt,
	}
}
