package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/dkeye/Mingle/internal/domain"
)

// EventDirectory answers whether a room id denotes a known event.
type EventDirectory struct {
	db *gorm.DB
}

func NewEventDirectory(db *gorm.DB) *EventDirectory {
	return &EventDirectory{db: db}
}

func (d *EventDirectory) Exists(ctx context.Context, room domain.RoomID) (bool, error) {
	var row eventRow
	err := d.db.WithContext(ctx).Select("id").First(&row, int64(room)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup event: %w", err)
	}
	return true, nil
}

// AddEvent registers an event row. The event CRUD surface lives elsewhere;
// this is here for seeding and tests.
func (d *EventDirectory) AddEvent(ctx context.Context, room domain.RoomID, title string) error {
	row := eventRow{ID: int64(room), Title: title}
	if err := d.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("add event: %w", err)
	}
	return nil
}
