package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WishlistItem is one gift idea on a participant's wishlist. Only the
// owning participant may add or remove items; everyone in the group may
// read them.
type WishlistItem struct {
	ID        string         `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ParticipantID string `gorm:"not null;index" json:"participant_id"`
	Title         string `gorm:"not null" json:"title"`
	URL           string `gorm:"not null" json:"url"`
	ImageURL      string `json:"image_url"`
	Note          string `json:"note"`
}

// BeforeCreate assigns a UUID if the caller did not set one.
func (w *WishlistItem) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
