// Package s3 guarda blobs en un bucket S3.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/ports/blob"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// API es el subconjunto del cliente S3 que usamos (fakeable en tests).
type API interface {
	PutObject(ctx context.Context, in *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

type Store struct {
	api    API
	bucket string
	prefix string
}

// NewClient crea el cliente S3; con endpoint custom usa path-style (LocalStack/MinIO).
func NewClient(cfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		if cfg.BaseEndpoint != nil {
			o.UsePathStyle = true
		}
	})
}

func NewStore(api API, bucket, prefix string) *Store {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix != "" {
		prefix += "/"
	}
	return &Store{api: api, bucket: bucket, prefix: prefix}
}

func (s *Store) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	in := &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if _, err := s.api.PutObject(ctx, in); err != nil {
		return apperr.Upstream("s3 put object", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (blob.Object, error) {
	out, err := s.api.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return blob.Object{}, fmt.Errorf("%w: %s", blob.ErrNotFound, key)
		}
		return blob.Object{}, apperr.Upstream("s3 get object", err)
	}

	return blob.Object{
		Key:         key,
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
		Body:        out.Body,
	}, nil
}
