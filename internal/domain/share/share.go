package share

import (
	"time"

	"github.com/google/uuid"
)

// Grant shares a file entry with another user.
type Grant struct {
	ID               int64      `json:"id"`
	FileEntryID      int64      `json:"file_entry_id"`
	SharedWithUserID uuid.UUID  `json:"shared_with_user_id"`
	SharedByUserID   uuid.UUID  `json:"shared_by_user_id"`
	SharedAt         time.Time  `json:"shared_at"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	CanEdit          bool       `json:"can_edit"`
	CanDelete        bool       `json:"can_delete"`
	IsActive         bool       `json:"is_active"`
}

type CreateGrantInput struct {
	FileEntryID      int64
	SharedWithUserID uuid.UUID
	SharedByUserID   uuid.UUID
	ExpiresAt        *time.Time
	CanEdit          bool
	CanDelete        bool
}

// Link is a public, unauthenticated handle on one file.
type Link struct {
	ID             uuid.UUID  `json:"id"`
	FileEntryID    int64      `json:"file_entry_id"`
	FileName       string     `json:"file_name"`
	OwnerUserID    uuid.UUID  `json:"owner_user_id"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Expired reports whether the link has a past expiration at now.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpirationDate != nil && !l.ExpirationDate.After(now)
}

type CreateLinkInput struct {
	FileEntryID    int64
	FileName       string
	OwnerUserID    uuid.UUID
	ExpirationDate *time.Time
}
