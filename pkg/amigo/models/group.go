package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group is the aggregate root of one gift exchange. It owns its
// participants and, through them, their wishlists; nothing inside a group
// is shared with another group.
//
// The two gates drive the reveal lifecycle: AllowReveal may only be true
// while AssignmentsGenerated is true, and any roster growth resets both.
type Group struct {
	ID        string         `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name       string `gorm:"not null" json:"name"`
	JoinCode   string `gorm:"uniqueIndex;not null" json:"join_code"`
	OwnerName  string `gorm:"not null" json:"owner_name"`
	OwnerEmail string `json:"owner_email"`

	// AdminCodeHash is the bcrypt hash of the admin code. The plaintext
	// is returned once at creation and never stored.
	AdminCodeHash string `gorm:"not null" json:"-"`

	AssignmentsGenerated bool `gorm:"default:false" json:"assignments_generated"`
	AllowReveal          bool `gorm:"default:false" json:"allow_reveal"`

	// Relationships
	Participants []Participant `gorm:"foreignKey:GroupID" json:"participants,omitempty"`
}

// BeforeCreate assigns a UUID if the caller did not set one.
func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
