package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	apperrors "filehub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	files map[string][]byte
	dirs  map[string]bool
	err   error
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}, dirs: map[string]bool{}}
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.files[key]
	return ok || m.dirs[key], nil
}

func (m *memStore) CreateDirectory(_ context.Context, key string) error {
	if m.err != nil {
		return m.err
	}
	m.dirs[key] = true
	return nil
}

func (m *memStore) WriteStream(_ context.Context, key string, r io.Reader) (int64, error) {
	b, err := io.ReadAll(r)
	m.files[key] = b
	return int64(len(b)), err
}

func (m *memStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.files[key])), nil
}

func (m *memStore) Remove(_ context.Context, key string) error {
	delete(m.files, key)
	return nil
}

func (m *memStore) Location(key string) string { return "/mem/" + key }

func TestResolve_CreatesDirectory(t *testing.T) {
	store := newMemStore()
	r := NewResolver(store)

	key, err := r.Resolve(context.Background(), "/ClientA/2024/", "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "ClientA/2024/doc.pdf", key)
	assert.True(t, store.dirs["ClientA/2024"])

	loc, err := r.ResolvePhysicalPath(context.Background(), "ClientA", "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/mem/ClientA/doc.pdf", loc)
}

func TestResolve_RejectsTraversal(t *testing.T) {
	r := NewResolver(newMemStore())

	_, err := r.Resolve(context.Background(), "ClientA/../../etc", "passwd")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrPathTraversal))

	_, err = r.Resolve(context.Background(), "ClientA", "../passwd")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestResolver_BackendFailure(t *testing.T) {
	cause := errors.New("disk full")
	store := newMemStore()
	store.err = cause
	r := NewResolver(store)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "ClientA", "doc.pdf")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrStorage))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `failed to create directory "ClientA"`)
	assert.Contains(t, err.Error(), "disk full")
	assert.NotContains(t, err.Error(), "%!")

	_, err = r.UniqueName(ctx, "ClientA", "doc.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `failed to check "doc.pdf"`)
	assert.NotContains(t, err.Error(), "%!")
}

func TestUniqueName(t *testing.T) {
	store := newMemStore()
	r := NewResolver(store)
	ctx := context.Background()

	name, err := r.UniqueName(ctx, "ClientA", "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "doc.pdf", name)

	store.files["ClientA/doc.pdf"] = []byte("1")
	name, err = r.UniqueName(ctx, "ClientA", "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "doc(1).pdf", name)

	store.files["ClientA/doc(1).pdf"] = []byte("2")
	name, err = r.UniqueName(ctx, "ClientA", "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "doc(2).pdf", name)
}

func TestUniqueName_NoExtension(t *testing.T) {
	store := newMemStore()
	store.files["README"] = nil
	r := NewResolver(store)

	name, err := r.UniqueName(context.Background(), "", "README")
	require.NoError(t, err)
	assert.Equal(t, "README(1)", name)
}

func TestSplitExt(t *testing.T) {
	tests := []struct{ in, stem, ext string }{
		{"doc.pdf", "doc", ".pdf"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"README", "README", ""},
		{".env", ".env", ""},
	}
	for _, tt := range tests {
		stem, ext := SplitExt(tt.in)
		assert.Equal(t, tt.stem, stem, tt.in)
		assert.Equal(t, tt.ext, ext, tt.in)
	}
}
