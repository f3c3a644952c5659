// Package disk is the local filesystem blob backend.
package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "filehub/pkg/errors"
)

const (
	// UserFilesDir is created under the configured storage root.
	UserFilesDir = "UserFiles"

	dirPerm      = 0o750
	tempPattern  = ".upload-*"
	escapeMarker = ".."

	errCreateRootFmt  = "failed to create storage root %q: %w"
	errKeyEscapesFmt  = "key %q escapes storage root"
	errCreateTempFmt  = "failed to create temp file: %w"
	errWriteFmt       = "failed to write %q: %w"
	errPromoteFmt     = "failed to promote %q: %w"
	errOpenFmt        = "failed to open %q: %w"
	errMissingFmt     = "%q does not exist"
	errRemoveFmt      = "failed to remove %q: %w"
	errNotRegularFile = "%q is not a regular file"
)

type Store struct {
	root string
}

// New returns a store rooted at <root>/UserFiles, creating it if needed.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(filepath.Join(root, UserFilesDir))
	if err != nil {
		return nil, fmt.Errorf(errCreateRootFmt, root, err)
	}
	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return nil, fmt.Errorf(errCreateRootFmt, abs, err)
	}
	return &Store{root: abs}, nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) Location(key string) string {
	p, err := s.path(key)
	if err != nil {
		return ""
	}
	return p
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p, err := s.path(key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func (s *Store) CreateDirectory(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	return os.MkdirAll(p, dirPerm)
}

// WriteStream copies r into a temp sibling and renames it over key once
// the copy is complete, so readers never observe a partial file.
func (s *Store) WriteStream(ctx context.Context, key string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	p, err := s.path(key)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return 0, fmt.Errorf(errWriteFmt, key, err)
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return 0, fmt.Errorf(errCreateTempFmt, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, &contextReader{ctx: ctx, r: r})
	if err != nil {
		_ = tmp.Close()
		return n, fmt.Errorf(errWriteFmt, key, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return n, fmt.Errorf(errWriteFmt, key, err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf(errWriteFmt, key, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return n, fmt.Errorf(errPromoteFmt, key, err)
	}

	committed = true
	return n, nil
}

func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NotFound(fmt.Sprintf(errMissingFmt, key))
		}
		return nil, fmt.Errorf(errOpenFmt, key, err)
	}
	if !info.Mode().IsRegular() {
		return nil, apperrors.NotFound(fmt.Sprintf(errNotRegularFile, key))
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf(errOpenFmt, key, err)
	}
	return f, nil
}

// Remove deletes key. A missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf(errRemoveFmt, key, err)
	}
	return nil
}

func (s *Store) path(key string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == escapeMarker || strings.HasPrefix(rel, escapeMarker+string(filepath.Separator)) {
		return "", &apperrors.AppError{
			Code:    "PATH_TRAVERSAL",
			Message: fmt.Sprintf(errKeyEscapesFmt, key),
			Err:     apperrors.ErrPathTraversal,
		}
	}
	return p, nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
