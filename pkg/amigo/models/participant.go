package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Participant is one enrolled member of a group. The host is auto-enrolled
// as the first participant with IsOwner set.
type Participant struct {
	ID        string         `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	GroupID string `gorm:"not null;index" json:"group_id"`
	Name    string `gorm:"not null" json:"name"`
	Email   string `json:"email"`
	IsOwner bool   `gorm:"default:false" json:"is_owner"`

	// AccessCodeHash is the bcrypt hash of this participant's access
	// code. Shown once when they join, never stored in plaintext, never
	// serialized.
	AccessCodeHash string `gorm:"not null" json:"-"`

	// AssignedParticipantID points at the participant this one gives a
	// gift to. Nil until assignments are generated, and cleared whenever
	// the roster changes afterwards.
	AssignedParticipantID *string `json:"-"`

	// Relationships
	Wishlist []WishlistItem `gorm:"foreignKey:ParticipantID" json:"wishlist,omitempty"`
}

// BeforeCreate assigns a UUID if the caller did not set one.
func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
