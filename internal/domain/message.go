package domain

import "time"

// ChatMessage is the durable chat row. The store assigns ID and SentAt;
// UserName is captured at send time and never re-resolved.
type ChatMessage struct {
	ID       int64     `json:"id"`
	RoomID   RoomID    `json:"roomId"`
	UserID   UserID    `json:"userId"`
	UserName string    `json:"userName"`
	Content  string    `json:"content"`
	SentAt   time.Time `json:"sentAt"`
}
