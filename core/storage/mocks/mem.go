package mocks

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
)

// MemClient is a functional in-memory storage.Client for tests that need
// real round trips rather than expectation matching.
type MemClient struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemClient creates an empty in-memory client.
func NewMemClient() *MemClient {
	return &MemClient{objects: make(map[string][]byte)}
}

// Objects returns a copy of the stored object names.
func (c *MemClient) Objects() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.objects))
	for k := range c.objects {
		keys = append(keys, k)
	}
	return keys
}

// Data returns the raw bytes of one object.
func (c *MemClient) Data(object string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.objects[object]
	return data, ok
}

func (c *MemClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return true, nil
}

func (c *MemClient) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return nil
}

func (c *MemClient) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[object] = data
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: int64(len(data))}, nil
}

func (c *MemClient) GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.objects[object]
	if !ok {
		return nil, minio.ErrorResponse{Code: "NoSuchKey", Key: object}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (c *MemClient) StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.objects[object]
	if !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", Key: object}
	}
	return minio.ObjectInfo{Key: object, Size: int64(len(data))}, nil
}

func (c *MemClient) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	c.mu.Lock()
	keys := make([]string, 0, len(c.objects))
	for k := range c.objects {
		if strings.HasPrefix(k, opts.Prefix) {
			keys = append(keys, k)
		}
	}
	c.mu.Unlock()

	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}

func (c *MemClient) RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, object)
	return nil
}
