package file

import (
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes files from folders. Values match the persisted smallint.
type Kind int16

const (
	KindFile   Kind = 0
	KindFolder Kind = 1
)

func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// PathSeparator delimits logical path segments.
const PathSeparator = "/"

// Entry is one file or folder in the catalog. Path always ends with the
// entry's own name, so root-level entries carry no separator.
type Entry struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Path           string     `json:"path"`
	Kind           Kind       `json:"kind"`
	Size           int64      `json:"size"`
	MimeType       *string    `json:"mime_type,omitempty"`
	OwnerID        uuid.UUID  `json:"owner_id"`
	ClientID       *uuid.UUID `json:"client_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ModifiedAt     time.Time  `json:"modified_at"`
	IsDeleted      bool       `json:"is_deleted"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	Title          *string    `json:"title,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	// StorageKey is where the bytes were written. Moves change Path only.
	StorageKey *string `json:"-"`
}

func (e *Entry) IsFolder() bool { return e.Kind == KindFolder }

// Owner and Client let the access gate evaluate an entry.
func (e *Entry) Owner() uuid.UUID   { return e.OwnerID }
func (e *Entry) Client() *uuid.UUID { return e.ClientID }

// ParentPath is the logical path of the containing folder, empty at the root.
func (e *Entry) ParentPath() string {
	return ParentOf(e.Path)
}

// ParentOf returns everything before the last separator of p.
func ParentOf(p string) string {
	idx := strings.LastIndex(p, PathSeparator)
	if idx < 0 {
		return ""
	}
	return p[:idx]
}

// Join composes a logical path, treating an empty base as the root.
func Join(base, name string) string {
	if base == "" {
		return name
	}
	return base + PathSeparator + name
}

type CreateFolderInput struct {
	Name     string
	Path     string
	OwnerID  uuid.UUID
	ClientID *uuid.UUID
}

type SaveFileInput struct {
	FileName       string
	Path           string
	Content        io.Reader
	MimeType       string
	OwnerID        uuid.UUID
	ClientID       *uuid.UUID
	Title          string
	ExpirationDate *time.Time
}

// SaveMetadataInput registers a file whose bytes were stored out of band.
type SaveMetadataInput struct {
	FileName string
	Path     string
	Size     int64
	MimeType string
	OwnerID  uuid.UUID
	ClientID *uuid.UUID
}

// NewEntry is the row handed to the repository on insert.
type NewEntry struct {
	Name           string
	Path           string
	Kind           Kind
	Size           int64
	MimeType       *string
	OwnerID        uuid.UUID
	ClientID       *uuid.UUID
	Title          *string
	ExpirationDate *time.Time
	StorageKey     *string
	CreatedAt      time.Time
}

// ListFilter selects non-deleted entries. A nil Scope means no ownership
// restriction; otherwise rows must have owner_id or client_id equal to it.
type ListFilter struct {
	Scope      *uuid.UUID
	ClientID   *uuid.UUID
	PathPrefix string
	KindOnly   *Kind
}

// PathUpdate moves one entry to a new logical path.
type PathUpdate struct {
	ID   int64
	Path string
}

// PropertiesUpdate sets title and expiration on a single file.
type PropertiesUpdate struct {
	Title          *string
	ExpirationDate *time.Time
}

// ExpirationUpdate is the batch expiration change. Clear wins over Date;
// with neither set only the modification time moves.
type ExpirationUpdate struct {
	Date  *time.Time
	Clear bool
}
