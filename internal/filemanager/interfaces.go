package filemanager

import (
	"context"
	"time"

	"filehub/internal/domain/file"
	"filehub/internal/domain/share"
	"filehub/internal/domain/user"

	"github.com/google/uuid"
)

// FileRepository is the catalog of file and folder metadata.
type FileRepository interface {
	Create(ctx context.Context, e *file.NewEntry) (*file.Entry, error)
	// GetByID returns the entry even when soft-deleted.
	GetByID(ctx context.Context, id int64) (*file.Entry, error)
	// GetFolderByPath matches a live folder by exact path.
	GetFolderByPath(ctx context.Context, path string) (*file.Entry, error)
	List(ctx context.Context, f file.ListFilter) ([]file.Entry, error)
	ListFolders(ctx context.Context, scope *uuid.UUID) ([]file.Entry, error)
	// GetMany returns live entries among ids, restricted to scope when set.
	GetMany(ctx context.Context, ids []int64, scope *uuid.UUID) ([]file.Entry, error)

	SoftDelete(ctx context.Context, ids []int64, at time.Time) error
	UpdatePaths(ctx context.Context, updates []file.PathUpdate, at time.Time) error
	UpdateProperties(ctx context.Context, id int64, p file.PropertiesUpdate, at time.Time) error
	UpdateExpirations(ctx context.Context, ids []int64, u file.ExpirationUpdate, at time.Time) error
}

// ShareRepository stores user grants and public links.
type ShareRepository interface {
	CreateGrant(ctx context.Context, in share.CreateGrantInput) (*share.Grant, error)
	GetGrant(ctx context.Context, id int64) (*share.Grant, error)
	ListGrants(ctx context.Context, fileID int64) ([]share.Grant, error)
	DeactivateGrant(ctx context.Context, id int64) error

	CreateLink(ctx context.Context, in share.CreateLinkInput) (*share.Link, error)
	GetLink(ctx context.Context, id uuid.UUID) (*share.Link, error)
}

// UserDirectory resolves identities.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	ListActiveClients(ctx context.Context) ([]user.User, error)
}
