package models

import (
	"time"

	"github.com/google/uuid"
)

// Base holds the columns shared by every table
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Deleted   bool      `json:"-" db:"deleted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Touch assigns an id when missing and stamps the creation time
func (b *Base) Touch(now time.Time) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = now
	b.UpdatedAt = now
}
