package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	apperrors "filehub/pkg/errors"
	"filehub/pkg/validator"
)

const (
	maxUniqueNameAttempts = 10000

	errUniqueNameExhaustedFmt = "no free name for %q after %d attempts"
	errCreateDirectoryFmt     = "failed to create directory %q"
	errCheckExistsFmt         = "failed to check %q"
)

// Resolver turns logical paths into backend keys and picks collision-free names.
type Resolver struct {
	store BlobStore
}

func NewResolver(store BlobStore) *Resolver {
	return &Resolver{store: store}
}

func (r *Resolver) Store() BlobStore {
	return r.store
}

// Resolve ensures the directory for logicalPath exists and returns the key
// fileName would be stored under.
func (r *Resolver) Resolve(ctx context.Context, logicalPath, fileName string) (string, error) {
	dir, err := cleanLogicalPath(logicalPath)
	if err != nil {
		return "", err
	}
	if err := validator.FileName(fileName); err != nil {
		return "", apperrors.Validation(err.Error())
	}

	if dir != "" {
		if err := r.store.CreateDirectory(ctx, dir); err != nil {
			return "", apperrors.Storage(fmt.Sprintf(errCreateDirectoryFmt, dir), err)
		}
	}

	return joinKey(dir, fileName), nil
}

// ResolvePhysicalPath is Resolve reported as the backend's physical location.
func (r *Resolver) ResolvePhysicalPath(ctx context.Context, logicalPath, fileName string) (string, error) {
	key, err := r.Resolve(ctx, logicalPath, fileName)
	if err != nil {
		return "", err
	}
	return r.store.Location(key), nil
}

// UniqueName returns desiredName, or the first "stem(n).ext" not yet taken
// in logicalPath. The check and the later write are not atomic.
func (r *Resolver) UniqueName(ctx context.Context, logicalPath, desiredName string) (string, error) {
	dir, err := cleanLogicalPath(logicalPath)
	if err != nil {
		return "", err
	}

	stem, ext := SplitExt(desiredName)
	candidate := desiredName
	for n := 1; n <= maxUniqueNameAttempts; n++ {
		taken, err := r.store.Exists(ctx, joinKey(dir, candidate))
		if err != nil {
			return "", apperrors.Storage(fmt.Sprintf(errCheckExistsFmt, candidate), err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s(%d)%s", stem, n, ext)
	}

	return "", apperrors.Storage(fmt.Sprintf(errUniqueNameExhaustedFmt, desiredName, maxUniqueNameAttempts), nil)
}

// SplitExt splits name at its last dot. Dotfiles keep their full name as stem.
func SplitExt(name string) (stem, ext string) {
	ext = path.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}

func cleanLogicalPath(logicalPath string) (string, error) {
	dir := validator.NormalizePath(logicalPath)
	if err := validator.LogicalPath(dir); err != nil {
		return "", &apperrors.AppError{Code: "PATH_TRAVERSAL", Message: err.Error(), Err: apperrors.ErrPathTraversal}
	}
	return dir, nil
}

func joinKey(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
