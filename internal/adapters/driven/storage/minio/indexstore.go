// Package minio stores vector indexes in an S3-compatible bucket.
//
// Each save uploads a freshly named vectors object under "<name>/" and then
// overwrites "<name>.json", whose metadata references the vectors object by
// key. Object writes are atomic, so a reader sees either the previous
// metadata or the new one; a reader that raced a cleanup retries.
package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/codec"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultBucket is used when no bucket is configured.
const DefaultBucket = "docqa-indexes"

const loadAttempts = 3

var errVectorsGone = errors.New("vectors object missing")

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// Config holds MinIO connection settings.
type Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// IndexStore persists indexes as objects in a bucket.
type IndexStore struct {
	client *minio.Client
	bucket string
}

// NewIndexStore creates a MinIO client for the configured endpoint.
// The bucket is created on first save if it does not exist.
func NewIndexStore(cfg Config) (*IndexStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: minio endpoint is required", domain.ErrInvalidInput)
	}
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: create client: %w", err)
	}

	return &IndexStore{client: client, bucket: cfg.Bucket}, nil
}

// Bucket returns the bucket name.
func (s *IndexStore) Bucket() string {
	return s.bucket
}

// Save uploads the vectors object then the metadata object.
func (s *IndexStore) Save(ctx context.Context, name string, index *domain.VectorIndex) error {
	if err := codec.ValidateName(name); err != nil {
		return err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}

	vectorsKey := vectorsKey(name)
	enc, err := codec.Encode(index, vectorsKey)
	if err != nil {
		return err
	}

	if err := s.put(ctx, vectorsKey, enc.Vectors, "application/octet-stream"); err != nil {
		return err
	}
	if err := s.put(ctx, metaKey(name), enc.Meta, "application/json"); err != nil {
		return err
	}

	s.removeStale(ctx, name, vectorsKey)
	return nil
}

// Load downloads and decodes the index stored under name.
func (s *IndexStore) Load(ctx context.Context, name string) (*domain.VectorIndex, error) {
	if err := codec.ValidateName(name); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < loadAttempts; attempt++ {
		idx, err := s.load(ctx, name)
		if !errors.Is(err, errVectorsGone) {
			return idx, err
		}
		lastErr = err
		logger.Debug("minio: vectors for %q replaced during load, retrying", name)
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, lastErr)
}

func (s *IndexStore) load(ctx context.Context, name string) (*domain.VectorIndex, error) {
	metaData, err := s.get(ctx, metaKey(name))
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: %q in bucket %s", domain.ErrIndexNotFound, name, s.bucket)
	}
	if err != nil {
		return nil, err
	}

	meta, err := codec.DecodeMeta(metaData)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(meta.Vectors, name+"/") {
		return nil, fmt.Errorf("%w: vectors key %q outside index %q", domain.ErrIndexCorrupt, meta.Vectors, name)
	}

	vectors, err := s.get(ctx, meta.Vectors)
	if isNotFound(err) {
		return nil, errVectorsGone
	}
	if err != nil {
		return nil, err
	}

	return codec.Decode(meta, vectors)
}

// Delete removes the metadata object and every vectors object of name.
func (s *IndexStore) Delete(ctx context.Context, name string) error {
	if err := codec.ValidateName(name); err != nil {
		return err
	}

	err := s.client.RemoveObject(ctx, s.bucket, metaKey(name), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("minio: delete %s: %w", metaKey(name), err)
	}

	return s.removeObjects(ctx, name, "")
}

func (s *IndexStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("minio: check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("minio: create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *IndexStore) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("minio: put %s: %w", key, err)
	}
	return nil
}

func (s *IndexStore) get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio: get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("minio: read %s: %w", key, err)
	}
	return data, nil
}

// removeStale deletes vectors objects of name other than keep.
// Failures are logged; a stale object only costs storage.
func (s *IndexStore) removeStale(ctx context.Context, name, keep string) {
	if err := s.removeObjects(ctx, name, keep); err != nil {
		logger.Warn("minio: removing stale vectors for %q: %v", name, err)
	}
}

func (s *IndexStore) removeObjects(ctx context.Context, name, keep string) error {
	objectsCh := make(chan minio.ObjectInfo)

	go func() {
		defer close(objectsCh)
		for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: name + "/"}) {
			if obj.Err != nil || obj.Key == keep {
				continue
			}
			objectsCh <- obj
		}
	}()

	for rerr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil {
			return fmt.Errorf("minio: delete %s: %w", rerr.ObjectName, rerr.Err)
		}
	}
	return nil
}

func metaKey(name string) string {
	return name + ".json"
}

func vectorsKey(name string) string {
	return name + "/" + uuid.NewString() + ".vectors"
}

func isNotFound(err error) bool {
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		return false
	}
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
}
