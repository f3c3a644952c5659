// Package s3 stores blobs in an S3 bucket. Directories are key prefixes.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"filehub/internal/config"
	apperrors "filehub/pkg/errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

const (
	emptyAWSSessionToken = ""
	pathSeparator        = "/"
	codeNotFound         = "NotFound"

	errFailedCreateAWSSessionFmt = "failed to create AWS session: %w"
	errFailedHeadObjectFmt       = "failed to stat object %q: %w"
	errFailedPutObjectFmt        = "failed to upload object %q: %w"
	errFailedGetObjectFmt        = "failed to fetch object %q: %w"
	errFailedDeleteObjectFmt     = "failed to delete object %q: %w"
	errObjectNotFoundFmt         = "object %q not found"
)

type Store struct {
	svc      s3iface.S3API
	uploader s3manageriface.UploaderAPI
	bucket   string
	prefix   string
}

func New(awsCfg *config.AWSConfig, bucket, prefix string) (*Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(awsCfg.Region),
		Credentials: credentials.NewStaticCredentials(
			awsCfg.AccessKeyID,
			awsCfg.SecretAccessKey,
			emptyAWSSessionToken,
		),
	})
	if err != nil {
		return nil, fmt.Errorf(errFailedCreateAWSSessionFmt, err)
	}

	svc := s3.New(sess)
	return NewWithClient(svc, s3manager.NewUploaderWithClient(svc), bucket, prefix), nil
}

func NewWithClient(svc s3iface.S3API, uploader s3manageriface.UploaderAPI, bucket, prefix string) *Store {
	prefix = strings.Trim(prefix, pathSeparator)
	if prefix != "" {
		prefix += pathSeparator
	}
	return &Store{svc: svc, uploader: uploader, bucket: bucket, prefix: prefix}
}

func (s *Store) Location(key string) string {
	return "s3://" + s.bucket + pathSeparator + s.objectKey(key)
}

// Exists reports whether key is an object or a non-empty prefix.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.svc.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err == nil {
		return true, nil
	}
	if !isNotFound(err) {
		return false, fmt.Errorf(errFailedHeadObjectFmt, key, err)
	}

	out, err := s.svc.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.dirKey(key)),
		MaxKeys: aws.Int64(1),
	})
	if err != nil {
		return false, fmt.Errorf(errFailedHeadObjectFmt, key, err)
	}
	return aws.Int64Value(out.KeyCount) > 0, nil
}

// CreateDirectory writes a zero-byte marker so empty folders stay listable.
func (s *Store) CreateDirectory(ctx context.Context, key string) error {
	_, err := s.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.dirKey(key)),
		Body:   strings.NewReader(""),
	})
	if err != nil {
		return fmt.Errorf(errFailedPutObjectFmt, key, err)
	}
	return nil
}

func (s *Store) WriteStream(ctx context.Context, key string, r io.Reader) (int64, error) {
	counter := &countingReader{r: r}
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   counter,
	})
	if err != nil {
		return counter.n, fmt.Errorf(errFailedPutObjectFmt, key, err)
	}
	return counter.n, nil
}

func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound(fmt.Sprintf(errObjectNotFoundFmt, key))
		}
		return nil, fmt.Errorf(errFailedGetObjectFmt, key, err)
	}
	return out.Body, nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf(errFailedDeleteObjectFmt, key, err)
	}
	return nil
}

func (s *Store) objectKey(key string) string {
	return s.prefix + strings.TrimLeft(key, pathSeparator)
}

func (s *Store) dirKey(key string) string {
	k := s.objectKey(key)
	if !strings.HasSuffix(k, pathSeparator) {
		k += pathSeparator
	}
	return k
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, codeNotFound:
		return true
	}
	return false
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
