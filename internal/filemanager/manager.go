// Package filemanager enforces folder and client ownership rules over the
// file catalog and its blob storage.
package filemanager

import (
	"context"
	"io"
	"strings"
	"time"

	"filehub/internal/access"
	"filehub/internal/domain/file"
	"filehub/internal/domain/user"
	"filehub/internal/storage"
	apperrors "filehub/pkg/errors"
	"filehub/pkg/logger"
	"filehub/pkg/metrics"
	"filehub/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Manager struct {
	files    FileRepository
	shares   ShareRepository
	users    UserDirectory
	resolver *storage.Resolver
	log      *zap.Logger
	now      func() time.Time
}

func NewManager(files FileRepository, shares ShareRepository, users UserDirectory, resolver *storage.Resolver, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		files:    files,
		shares:   shares,
		users:    users,
		resolver: resolver,
		log:      log.Named("filemanager"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Caller resolves userID to an access identity. Unknown users are treated
// as non-admins.
func (m *Manager) Caller(ctx context.Context, userID uuid.UUID) (access.Caller, error) {
	u, err := m.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return access.Caller{UserID: userID}, nil
		}
		return access.Caller{}, err
	}
	return access.Caller{UserID: userID, IsAdmin: u.IsAdmin()}, nil
}

// ListFiles returns live entries visible to userID. An empty path lists
// root entries; otherwise every entry whose path starts with path.
func (m *Manager) ListFiles(ctx context.Context, userID uuid.UUID, path string) ([]file.Entry, error) {
	caller, err := m.Caller(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := m.files.List(ctx, file.ListFilter{
		Scope:      access.Scope(caller),
		PathPrefix: validator.NormalizePath(path),
	})
	metrics.ObserveFileOperation(opListFiles, err)
	return entries, err
}

// ListClientFiles lists live entries assigned to clientID. Authorization
// is the caller's concern.
func (m *Manager) ListClientFiles(ctx context.Context, clientID uuid.UUID, path string) ([]file.Entry, error) {
	return m.files.List(ctx, file.ListFilter{
		ClientID:   &clientID,
		PathPrefix: validator.NormalizePath(path),
	})
}

// GetClients lists active client users ordered by first then last name.
func (m *Manager) GetClients(ctx context.Context) ([]user.User, error) {
	return m.users.ListActiveClients(ctx)
}

func (m *Manager) CreateFolder(ctx context.Context, in file.CreateFolderInput) (*file.Entry, error) {
	entry, err := m.createFolder(ctx, in)
	metrics.ObserveFileOperation(opCreateFolder, err)
	return entry, err
}

func (m *Manager) createFolder(ctx context.Context, in file.CreateFolderInput) (*file.Entry, error) {
	if in.ClientID == nil || *in.ClientID == uuid.Nil {
		return nil, apperrors.Validation(msgClientIDRequired)
	}
	if err := validator.FolderName(in.Name); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	base := validator.NormalizePath(in.Path)
	if err := validator.LogicalPath(base); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	client, err := m.users.GetByID(ctx, *in.ClientID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Validation(msgClientNotActive)
		}
		return nil, err
	}
	if client.Type != user.TypeClient || !client.IsActive {
		return nil, apperrors.Validation(msgClientNotActive)
	}

	clientID := *in.ClientID
	return m.files.Create(ctx, &file.NewEntry{
		Name:      in.Name,
		Path:      file.Join(base, in.Name),
		Kind:      file.KindFolder,
		OwnerID:   in.OwnerID,
		ClientID:  &clientID,
		CreatedAt: m.now(),
	})
}

// SaveFileWithContent stores the upload under a collision-free name inside
// an existing client folder and records it. The caller's ClientID is
// ignored: files always inherit the parent folder's client.
//
// The blob is written before the metadata insert. If the insert fails the
// blob is removed on a best-effort basis; a crash in between can still
// leave an orphan, which the purge job does not reclaim.
func (m *Manager) SaveFileWithContent(ctx context.Context, in file.SaveFileInput) (*file.Entry, error) {
	entry, err := m.saveFileWithContent(ctx, in)
	metrics.ObserveFileOperation(opUpload, err)
	return entry, err
}

func (m *Manager) saveFileWithContent(ctx context.Context, in file.SaveFileInput) (*file.Entry, error) {
	dir, parent, err := m.uploadTarget(ctx, in.Path, in.FileName, in.MimeType)
	if err != nil {
		return nil, err
	}
	if err := validator.Title(in.Title); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	finalName, err := m.resolver.UniqueName(ctx, dir, in.FileName)
	if err != nil {
		return nil, err
	}
	key, err := m.resolver.Resolve(ctx, dir, finalName)
	if err != nil {
		return nil, err
	}

	written, err := m.resolver.Store().WriteStream(ctx, key, in.Content)
	if err != nil {
		m.log.Error(msgWriteFailed, zap.String("key", key), logger.SafeError(err))
		return nil, apperrors.Storage(msgWriteFailed, err)
	}
	metrics.UploadedBytesTotal.Add(float64(written))

	entry, err := m.files.Create(ctx, &file.NewEntry{
		Name:           finalName,
		Path:           file.Join(dir, finalName),
		Kind:           file.KindFile,
		Size:           written,
		MimeType:       optional(in.MimeType),
		OwnerID:        in.OwnerID,
		ClientID:       parent.ClientID,
		Title:          optional(strings.TrimSpace(in.Title)),
		ExpirationDate: in.ExpirationDate,
		StorageKey:     &key,
		CreatedAt:      m.now(),
	})
	if err != nil {
		m.log.Error(msgMetadataFailed, zap.String("key", key), logger.SafeError(err))
		if rmErr := m.resolver.Store().Remove(context.WithoutCancel(ctx), key); rmErr != nil {
			m.log.Warn(msgCleanupBlobFailed, zap.String("key", key), logger.SafeError(rmErr))
		}
		return nil, apperrors.Persistence(msgMetadataFailed, err)
	}
	return entry, nil
}

// SaveFileMetadata records a file whose bytes were stored elsewhere. The
// same folder and client rules as SaveFileWithContent apply.
func (m *Manager) SaveFileMetadata(ctx context.Context, in file.SaveMetadataInput) (*file.Entry, error) {
	entry, err := m.saveFileMetadata(ctx, in)
	metrics.ObserveFileOperation(opSaveMetadata, err)
	return entry, err
}

func (m *Manager) saveFileMetadata(ctx context.Context, in file.SaveMetadataInput) (*file.Entry, error) {
	dir, parent, err := m.uploadTarget(ctx, in.Path, in.FileName, in.MimeType)
	if err != nil {
		return nil, err
	}
	if in.Size < 0 {
		return nil, apperrors.Validation("file size cannot be negative")
	}

	entry, err := m.files.Create(ctx, &file.NewEntry{
		Name:      in.FileName,
		Path:      file.Join(dir, in.FileName),
		Kind:      file.KindFile,
		Size:      in.Size,
		MimeType:  optional(in.MimeType),
		OwnerID:   in.OwnerID,
		ClientID:  parent.ClientID,
		CreatedAt: m.now(),
	})
	if err != nil {
		return nil, apperrors.Persistence(msgMetadataFailed, err)
	}
	return entry, nil
}

// uploadTarget validates an upload destination and returns the normalized
// folder path and the folder itself.
func (m *Manager) uploadTarget(ctx context.Context, path, fileName, mimeType string) (string, *file.Entry, error) {
	dir := validator.NormalizePath(path)
	if dir == "" {
		return "", nil, apperrors.Validation(msgRootUploadDenied)
	}
	if err := validator.LogicalPath(dir); err != nil {
		return "", nil, apperrors.Validation(err.Error())
	}
	if err := validator.FileName(fileName); err != nil {
		return "", nil, apperrors.Validation(err.Error())
	}
	if err := validator.ContentType(mimeType); err != nil {
		return "", nil, apperrors.Validation(err.Error())
	}

	parent, err := m.files.GetFolderByPath(ctx, dir)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return "", nil, apperrors.Validation(msgParentMissing)
		}
		return "", nil, apperrors.Persistence(msgLookupFailed, err)
	}
	if parent.ClientID == nil {
		return "", nil, apperrors.Validation(msgParentNoClient)
	}
	return dir, parent, nil
}

// GetFileItem returns a live entry.
func (m *Manager) GetFileItem(ctx context.Context, id int64) (*file.Entry, error) {
	e, err := m.files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.IsDeleted {
		return nil, apperrors.NotFound(msgEntryNotFound)
	}
	return e, nil
}

// GetSelectedFileItems returns the live entries among ids that userID is
// authorized for.
func (m *Manager) GetSelectedFileItems(ctx context.Context, ids []int64, userID uuid.UUID) ([]file.Entry, error) {
	if len(ids) == 0 {
		return []file.Entry{}, nil
	}
	caller, err := m.Caller(ctx, userID)
	if err != nil {
		return nil, err
	}
	return m.files.GetMany(ctx, ids, access.Scope(caller))
}

// CanUserAccess reports whether userID may see entry id. Missing entries
// are simply not accessible.
func (m *Manager) CanUserAccess(ctx context.Context, id int64, userID uuid.UUID) (bool, error) {
	e, err := m.files.GetByID(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	caller, err := m.Caller(ctx, userID)
	if err != nil {
		return false, err
	}
	return access.IsAuthorized(caller, e), nil
}

// GetFolderTree lists live folders ordered by path.
func (m *Manager) GetFolderTree(ctx context.Context, userID uuid.UUID, isAdmin bool) ([]file.Entry, error) {
	return m.files.ListFolders(ctx, access.Scope(access.Caller{UserID: userID, IsAdmin: isAdmin}))
}

// mutable loads a live entry that userID owns or administers.
func (m *Manager) mutable(ctx context.Context, id int64, userID uuid.UUID) (*file.Entry, error) {
	e, err := m.GetFileItem(ctx, id)
	if err != nil {
		return nil, err
	}
	caller, err := m.Caller(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !access.IsOwnerOrAdmin(caller, e) {
		return nil, apperrors.Forbidden(msgAccessDenied)
	}
	return e, nil
}

// DeleteFileItem soft-deletes one entry. The stored bytes are kept until
// the purge job reclaims them.
func (m *Manager) DeleteFileItem(ctx context.Context, id int64, userID uuid.UUID) (*file.Entry, error) {
	e, err := m.mutable(ctx, id, userID)
	if err == nil {
		err = updateErr(m.files.SoftDelete(ctx, []int64{e.ID}, m.now()))
	}
	metrics.ObserveFileOperation(opDelete, err)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteMultipleFileItems soft-deletes the accessible subset of ids in one
// transaction and returns it.
func (m *Manager) DeleteMultipleFileItems(ctx context.Context, ids []int64, userID uuid.UUID) ([]file.Entry, error) {
	items, err := m.selected(ctx, ids, userID)
	if err == nil {
		err = updateErr(m.files.SoftDelete(ctx, entryIDs(items), m.now()))
	}
	metrics.ObserveFileOperation(opDeleteMany, err)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// MoveFileItem sets the entry's path to newPath verbatim. Existence of the
// destination and name collisions are not checked.
func (m *Manager) MoveFileItem(ctx context.Context, id int64, newPath string, userID uuid.UUID) (*file.Entry, error) {
	e, err := m.moveFileItem(ctx, id, newPath, userID)
	metrics.ObserveFileOperation(opMove, err)
	return e, err
}

func (m *Manager) moveFileItem(ctx context.Context, id int64, newPath string, userID uuid.UUID) (*file.Entry, error) {
	target := validator.NormalizePath(newPath)
	if err := validator.LogicalPath(target); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	e, err := m.mutable(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := m.files.UpdatePaths(ctx, []file.PathUpdate{{ID: e.ID, Path: target}}, m.now()); err != nil {
		return nil, updateErr(err)
	}
	e.Path = target
	return e, nil
}

// MoveMultipleFileItems re-parents the accessible subset of ids under
// newBasePath, keeping each item's name.
func (m *Manager) MoveMultipleFileItems(ctx context.Context, ids []int64, newBasePath string, userID uuid.UUID) ([]file.Entry, error) {
	items, err := m.moveMultiple(ctx, ids, newBasePath, userID)
	metrics.ObserveFileOperation(opMoveMany, err)
	return items, err
}

func (m *Manager) moveMultiple(ctx context.Context, ids []int64, newBasePath string, userID uuid.UUID) ([]file.Entry, error) {
	base := validator.NormalizePath(newBasePath)
	if err := validator.LogicalPath(base); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	items, err := m.selected(ctx, ids, userID)
	if err != nil {
		return nil, err
	}

	updates := make([]file.PathUpdate, len(items))
	for i := range items {
		items[i].Path = file.Join(base, items[i].Name)
		updates[i] = file.PathUpdate{ID: items[i].ID, Path: items[i].Path}
	}
	if err := m.files.UpdatePaths(ctx, updates, m.now()); err != nil {
		return nil, updateErr(err)
	}
	return items, nil
}

// UpdateFileProperties sets the trimmed title and the expiration on a
// single file. Folders are rejected.
func (m *Manager) UpdateFileProperties(ctx context.Context, id int64, title string, expiration *time.Time, userID uuid.UUID) (*file.Entry, error) {
	e, err := m.updateFileProperties(ctx, id, title, expiration, userID)
	metrics.ObserveFileOperation(opUpdateProps, err)
	return e, err
}

func (m *Manager) updateFileProperties(ctx context.Context, id int64, title string, expiration *time.Time, userID uuid.UUID) (*file.Entry, error) {
	title = strings.TrimSpace(title)
	if err := validator.Title(title); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	e, err := m.mutable(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if e.IsFolder() {
		return nil, apperrors.Validation(msgOnlyFiles)
	}

	update := file.PropertiesUpdate{Title: &title, ExpirationDate: expiration}
	if err := m.files.UpdateProperties(ctx, e.ID, update, m.now()); err != nil {
		return nil, updateErr(err)
	}
	e.Title = &title
	e.ExpirationDate = expiration
	return e, nil
}

// UpdateMultipleFileProperties changes the expiration of every accessible
// file among ids. removeExistingDates clears dates regardless of expiration.
func (m *Manager) UpdateMultipleFileProperties(ctx context.Context, ids []int64, expiration *time.Time, removeExistingDates bool, userID uuid.UUID) ([]file.Entry, error) {
	files, err := m.updateMultiple(ctx, ids, expiration, removeExistingDates, userID)
	metrics.ObserveFileOperation(opUpdatePropsMany, err)
	return files, err
}

func (m *Manager) updateMultiple(ctx context.Context, ids []int64, expiration *time.Time, removeExistingDates bool, userID uuid.UUID) ([]file.Entry, error) {
	items, err := m.GetSelectedFileItems(ctx, ids, userID)
	if err != nil {
		return nil, err
	}
	files := make([]file.Entry, 0, len(items))
	for _, it := range items {
		if !it.IsFolder() {
			files = append(files, it)
		}
	}
	if len(files) == 0 {
		return nil, apperrors.NotFound(msgNoFilesSelected)
	}

	update := file.ExpirationUpdate{Date: expiration, Clear: removeExistingDates}
	if err := m.files.UpdateExpirations(ctx, entryIDs(files), update, m.now()); err != nil {
		return nil, updateErr(err)
	}
	for i := range files {
		switch {
		case removeExistingDates:
			files[i].ExpirationDate = nil
		case expiration != nil:
			files[i].ExpirationDate = expiration
		}
	}
	return files, nil
}

// OpenFile streams a live file to its owner or an admin.
func (m *Manager) OpenFile(ctx context.Context, id int64, userID uuid.UUID) (*file.Entry, io.ReadCloser, error) {
	e, err := m.mutable(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := m.openBlob(ctx, e)
	if err != nil {
		return nil, nil, err
	}
	return e, rc, nil
}

func (m *Manager) openBlob(ctx context.Context, e *file.Entry) (io.ReadCloser, error) {
	if e.IsFolder() {
		return nil, apperrors.Validation(msgNotAFile)
	}
	if e.StorageKey == nil {
		return nil, apperrors.NotFound(msgNoStoredContent)
	}
	rc, err := m.resolver.Store().Open(ctx, *e.StorageKey)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, apperrors.Storage(msgWriteFailed, err)
	}
	return rc, nil
}

func (m *Manager) selected(ctx context.Context, ids []int64, userID uuid.UUID) ([]file.Entry, error) {
	if err := validator.BatchIDs(len(ids)); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	items, err := m.GetSelectedFileItems(ctx, ids, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.NotFound(msgNoAccessibleItems)
	}
	return items, nil
}

// updateErr keeps typed errors and marks everything else as a persistence
// failure.
func updateErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		return err
	}
	return apperrors.Persistence(msgUpdateFailed, err)
}

func entryIDs(items []file.Entry) []int64 {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
