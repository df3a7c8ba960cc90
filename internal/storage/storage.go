package storage

import "context"

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage is the write side of the reporting boundary: rendered cycle
// reports are uploaded for downstream consumers.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
