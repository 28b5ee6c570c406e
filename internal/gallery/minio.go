package gallery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// MinioStore is an ObjectStore backed by an S3-compatible endpoint through
// the MinIO client, bound to a single bucket fixed at construction time.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore returns a MinioStore using the given client and bucket.
func NewMinioStore(client *minio.Client, bucket string) *MinioStore {
	return &MinioStore{client: client, bucket: bucket}
}

func (s *MinioStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}

	var objects []ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}

	return objects, nil
}

func (s *MinioStore) Stat(ctx context.Context, key string) (map[string]string, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}

	// StatObject reports user metadata keys in canonical header form
	// ("Original-Name"); normalize to the lower-case names the gallery
	// stores them under.
	metadata := make(map[string]string, len(info.UserMetadata))
	for k, v := range info.UserMetadata {
		metadata[strings.ToLower(k)] = v
	}

	return metadata, nil
}

func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}

	return data, nil
}

func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	}

	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	return nil
}

// ReplaceMetadata performs a server-side copy of the object onto itself
// with a replacement metadata directive. S3-style stores have no partial
// metadata update, so the whole map is rewritten in one copy.
func (s *MinioStore) ReplaceMetadata(ctx context.Context, key string, metadata map[string]string) error {
	src := minio.CopySrcOptions{
		Bucket: s.bucket,
		Object: key,
	}
	dst := minio.CopyDestOptions{
		Bucket:          s.bucket,
		Object:          key,
		UserMetadata:    metadata,
		ReplaceMetadata: true,
	}

	if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
		return fmt.Errorf("replace metadata on %s: %w", key, err)
	}

	return nil
}

func (s *MinioStore) Remove(ctx context.Context, keys []string) (int, []RemoveError, error) {
	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	var removeErrs []RemoveError
	for rerr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		removeErrs = append(removeErrs, RemoveError{Key: rerr.ObjectName, Err: rerr.Err})
	}

	return len(keys) - len(removeErrs), removeErrs, nil
}

func (s *MinioStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}

	return u.String(), nil
}
