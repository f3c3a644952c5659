package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	apperrors "filehub/pkg/errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	objects map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]string{}}
}

func (f *fakeS3) HeadObjectWithContext(_ aws.Context, in *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, awserr.New(codeNotFound, "not found", nil)
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2WithContext(_ aws.Context, in *s3.ListObjectsV2Input, _ ...request.Option) (*s3.ListObjectsV2Output, error) {
	var count int64
	for k := range f.objects {
		if strings.HasPrefix(k, *in.Prefix) {
			count++
		}
	}
	return &s3.ListObjectsV2Output{KeyCount: aws.Int64(count)}, nil
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	b, _ := io.ReadAll(in.Body)
	f.objects[*in.Key] = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[*in.Key]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "no such key", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type fakeUploader struct {
	s3manageriface.UploaderAPI
	backend *fakeS3
}

func (u *fakeUploader) UploadWithContext(_ aws.Context, in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	u.backend.objects[*in.Key] = string(b)
	return &s3manager.UploadOutput{}, nil
}

func newTestStore() (*Store, *fakeS3) {
	svc := newFakeS3()
	return NewWithClient(svc, &fakeUploader{backend: svc}, "bucket", "/tenant/"), svc
}

func TestWriteStreamAndOpen(t *testing.T) {
	store, svc := newTestStore()
	ctx := context.Background()

	n, err := store.WriteStream(ctx, "ClientA/doc.pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
	assert.Contains(t, svc.objects, "tenant/ClientA/doc.pdf")

	rc, err := store.Open(ctx, "ClientA/doc.pdf")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "pdf-bytes", string(body))
}

func TestExists_ObjectAndPrefix(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.CreateDirectory(ctx, "ClientA"))

	ok, err := store.Exists(ctx, "ClientA")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "ClientB")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_MissingMapsToNotFound(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.Open(context.Background(), "missing.txt")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestRemoveAndLocation(t *testing.T) {
	store, svc := newTestStore()
	ctx := context.Background()

	_, err := store.WriteStream(ctx, "a.txt", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, store.Remove(ctx, "a.txt"))
	assert.NotContains(t, svc.objects, "tenant/a.txt")

	assert.Equal(t, "s3://bucket/tenant/a.txt", store.Location("a.txt"))
}
