package repository

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
)

// CloudStorage is a KV keeping each key as an object in a Cloud Storage
// bucket. Object names are prefix + key.
type CloudStorage struct {
	client     *storage.Client
	bucketName string
	prefix     string
}

// NewCloudStorage creates a Cloud Storage client for bucketName
func NewCloudStorage(ctx context.Context, bucketName, prefix string, opts ...option.ClientOption) (*CloudStorage, error) {
	if bucketName == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &CloudStorage{
		client:     client,
		bucketName: bucketName,
		prefix:     prefix,
	}, nil
}

func (s *CloudStorage) Close() error {
	return s.client.Close()
}

func (s *CloudStorage) object(key string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucketName).Object(s.prefix + key)
}

func (s *CloudStorage) Get(ctx context.Context, key string) ([]byte, error) {
	reader, err := s.object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(ErrNotFound, "cloud storage", goerr.V("bucket", s.bucketName), goerr.V("key", s.prefix+key))
		}
		return nil, goerr.Wrap(err, "failed to read from storage", goerr.V("bucket", s.bucketName), goerr.V("key", s.prefix+key))
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read object", goerr.V("key", s.prefix+key))
	}
	return data, nil
}

func (s *CloudStorage) Set(ctx context.Context, key string, value []byte) error {
	writer := s.object(key).NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err := writer.Write(value); err != nil {
		writer.Close()
		return goerr.Wrap(err, "failed to write to storage", goerr.V("key", s.prefix+key))
	}
	if err := writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to close storage writer", goerr.V("key", s.prefix+key))
	}
	return nil
}

func (s *CloudStorage) Remove(ctx context.Context, key string) error {
	if err := s.object(key).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return goerr.Wrap(err, "failed to delete object", goerr.V("key", s.prefix+key))
	}
	return nil
}
