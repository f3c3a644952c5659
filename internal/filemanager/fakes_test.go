package filemanager

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"filehub/internal/domain/file"
	"filehub/internal/domain/share"
	"filehub/internal/domain/user"
	apperrors "filehub/pkg/errors"

	"github.com/google/uuid"
)

type fakeFiles struct {
	mu      sync.Mutex
	entries map[int64]*file.Entry
	nextID  int64
	failOn  string
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{entries: map[int64]*file.Entry{}}
}

func (f *fakeFiles) Create(_ context.Context, n *file.NewEntry) (*file.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "create" {
		return nil, io.ErrUnexpectedEOF
	}
	f.nextID++
	e := &file.Entry{
		ID:             f.nextID,
		Name:           n.Name,
		Path:           n.Path,
		Kind:           n.Kind,
		Size:           n.Size,
		MimeType:       n.MimeType,
		OwnerID:        n.OwnerID,
		ClientID:       n.ClientID,
		CreatedAt:      n.CreatedAt,
		ModifiedAt:     n.CreatedAt,
		Title:          n.Title,
		ExpirationDate: n.ExpirationDate,
		StorageKey:     n.StorageKey,
	}
	f.entries[e.ID] = e
	cp := *e
	return &cp, nil
}

func (f *fakeFiles) GetByID(_ context.Context, id int64) (*file.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, apperrors.NotFound("file entry not found")
	}
	cp := *e
	return &cp, nil
}

func (f *fakeFiles) GetFolderByPath(_ context.Context, path string) (*file.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.IsFolder() && !e.IsDeleted && e.Path == path {
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("folder not found")
}

func inScope(e *file.Entry, scope *uuid.UUID) bool {
	if scope == nil {
		return true
	}
	return e.OwnerID == *scope || (e.ClientID != nil && *e.ClientID == *scope)
}

func (f *fakeFiles) List(_ context.Context, flt file.ListFilter) ([]file.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []file.Entry
	for _, e := range f.entries {
		if e.IsDeleted || !inScope(e, flt.Scope) {
			continue
		}
		if flt.ClientID != nil && (e.ClientID == nil || *e.ClientID != *flt.ClientID) {
			continue
		}
		if flt.PathPrefix == "" {
			if strings.Contains(e.Path, file.PathSeparator) {
				continue
			}
		} else if !strings.HasPrefix(e.Path, flt.PathPrefix) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (f *fakeFiles) ListFolders(_ context.Context, scope *uuid.UUID) ([]file.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []file.Entry
	for _, e := range f.entries {
		if e.IsFolder() && !e.IsDeleted && inScope(e, scope) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (f *fakeFiles) GetMany(_ context.Context, ids []int64, scope *uuid.UUID) ([]file.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []file.Entry
	for _, id := range ids {
		if e, ok := f.entries[id]; ok && !e.IsDeleted && inScope(e, scope) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeFiles) SoftDelete(_ context.Context, ids []int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "update" {
		return io.ErrClosedPipe
	}
	for _, id := range ids {
		e := f.entries[id]
		e.IsDeleted = true
		e.DeletedAt = &at
		e.ModifiedAt = at
	}
	return nil
}

func (f *fakeFiles) UpdatePaths(_ context.Context, updates []file.PathUpdate, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range updates {
		f.entries[u.ID].Path = u.Path
		f.entries[u.ID].ModifiedAt = at
	}
	return nil
}

func (f *fakeFiles) UpdateProperties(_ context.Context, id int64, p file.PropertiesUpdate, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := f.entries[id]
	e.Title = p.Title
	e.ExpirationDate = p.ExpirationDate
	e.ModifiedAt = at
	return nil
}

func (f *fakeFiles) UpdateExpirations(_ context.Context, ids []int64, u file.ExpirationUpdate, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		e := f.entries[id]
		switch {
		case u.Clear:
			e.ExpirationDate = nil
		case u.Date != nil:
			d := *u.Date
			e.ExpirationDate = &d
		}
		e.ModifiedAt = at
	}
	return nil
}

type fakeShares struct {
	grants map[int64]*share.Grant
	links  map[uuid.UUID]*share.Link
	nextID int64
}

func newFakeShares() *fakeShares {
	return &fakeShares{grants: map[int64]*share.Grant{}, links: map[uuid.UUID]*share.Link{}}
}

func (s *fakeShares) CreateGrant(_ context.Context, in share.CreateGrantInput) (*share.Grant, error) {
	s.nextID++
	g := &share.Grant{
		ID:               s.nextID,
		FileEntryID:      in.FileEntryID,
		SharedWithUserID: in.SharedWithUserID,
		SharedByUserID:   in.SharedByUserID,
		ExpiresAt:        in.ExpiresAt,
		CanEdit:          in.CanEdit,
		CanDelete:        in.CanDelete,
		IsActive:         true,
	}
	s.grants[g.ID] = g
	return g, nil
}

func (s *fakeShares) GetGrant(_ context.Context, id int64) (*share.Grant, error) {
	g, ok := s.grants[id]
	if !ok {
		return nil, apperrors.NotFound("share not found")
	}
	return g, nil
}

func (s *fakeShares) ListGrants(_ context.Context, fileID int64) ([]share.Grant, error) {
	var out []share.Grant
	for _, g := range s.grants {
		if g.FileEntryID == fileID && g.IsActive {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (s *fakeShares) DeactivateGrant(_ context.Context, id int64) error {
	s.grants[id].IsActive = false
	return nil
}

func (s *fakeShares) CreateLink(_ context.Context, in share.CreateLinkInput) (*share.Link, error) {
	l := &share.Link{
		ID:             uuid.New(),
		FileEntryID:    in.FileEntryID,
		FileName:       in.FileName,
		OwnerUserID:    in.OwnerUserID,
		ExpirationDate: in.ExpirationDate,
	}
	s.links[l.ID] = l
	return l, nil
}

func (s *fakeShares) GetLink(_ context.Context, id uuid.UUID) (*share.Link, error) {
	l, ok := s.links[id]
	if !ok {
		return nil, apperrors.NotFound("link not found")
	}
	return l, nil
}

type fakeUsers map[uuid.UUID]*user.User

func (u fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	usr, ok := u[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return usr, nil
}

func (u fakeUsers) ListActiveClients(_ context.Context) ([]user.User, error) {
	var out []user.User
	for _, usr := range u {
		if usr.IsActive && usr.Type == user.TypeClient {
			out = append(out, *usr)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].LastName < out[j].LastName
	})
	return out, nil
}

type memBlobs struct {
	mu       sync.Mutex
	files    map[string][]byte
	dirs     map[string]bool
	failOpen bool
}

func newMemBlobs() *memBlobs {
	return &memBlobs{files: map[string][]byte{}, dirs: map[string]bool{}}
}

func (m *memBlobs) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[key]
	return ok || m.dirs[key], nil
}

func (m *memBlobs) CreateDirectory(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[key] = true
	return nil
}

func (m *memBlobs) WriteStream(_ context.Context, key string, r io.Reader) (int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = b
	return int64(len(b)), nil
}

func (m *memBlobs) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[key]
	if !ok {
		return nil, apperrors.NotFound("blob not found")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memBlobs) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key)
	return nil
}

func (m *memBlobs) Location(key string) string { return "/mem/" + key }
