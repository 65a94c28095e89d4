package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/Lllllllleong/corpusseed/internal/models"
)

// ErrObjectExists is returned by UploadFile when the destination object was
// created by someone else between listing and writing.
var ErrObjectExists = errors.New("object already exists")

// Storage wraps a Cloud Storage client with the few operations the seeding
// tools need.
type Storage struct {
	client *storage.Client
}

// NewStorage creates a Cloud Storage client using application default credentials.
func NewStorage(ctx context.Context) (*Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &Storage{client: client}, nil
}

// Close releases the underlying client.
func (s *Storage) Close() error {
	return s.client.Close()
}

// ListObjects returns every object in the bucket whose name starts with prefix.
func (s *Storage) ListObjects(ctx context.Context, bucket, prefix string) ([]models.Object, error) {
	var query *storage.Query
	if prefix != "" {
		query = &storage.Query{Prefix: prefix}
	}
	it := s.client.Bucket(bucket).Objects(ctx, query)

	var objects []models.Object
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in gs://%s: %w", bucket, err)
		}
		objects = append(objects, models.Object{
			Name:        attrs.Name,
			Size:        attrs.Size,
			ContentType: attrs.ContentType,
			Updated:     attrs.Updated,
		})
	}
	return objects, nil
}

// UploadFile writes a local file to bucket/object only if the object doesn't
// already exist. A lost race surfaces as ErrObjectExists.
func (s *Storage) UploadFile(ctx context.Context, bucket, object, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("could not open local file %s: %w", localPath, err)
	}
	defer f.Close()

	writer := s.client.Bucket(bucket).Object(object).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = "application/pdf"

	if _, err := io.Copy(writer, f); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			return ErrObjectExists
		}
		return fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			return ErrObjectExists
		}
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

// ReadObject downloads the full content of bucket/object into memory.
func (s *Storage) ReadObject(ctx context.Context, bucket, object string) ([]byte, error) {
	reader, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", bucket, object, err)
	}
	return data, nil
}

// EnsureBucket creates the bucket in projectID if it doesn't exist yet.
// It reports whether a bucket was created.
func (s *Storage) EnsureBucket(ctx context.Context, bucket, projectID string) (bool, error) {
	handle := s.client.Bucket(bucket)
	_, err := handle.Attrs(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return false, fmt.Errorf("failed to get attributes of bucket %s: %w", bucket, err)
	}

	if err := handle.Create(ctx, projectID, nil); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusConflict {
			slog.Info("Bucket was created concurrently.", "bucket", bucket)
			return false, nil
		}
		return false, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return true, nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}
