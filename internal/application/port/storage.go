package port

import "context"

// FileStorage defines file storage operations for uploaded documents
type FileStorage interface {
	// Store persists the bytes and returns an opaque reference usable
	// with Read
	Store(ctx context.Context, fileName string, content []byte) (string, error)
	Read(ctx context.Context, ref string) ([]byte, error)
	Exists(ctx context.Context, ref string) bool
	Delete(ctx context.Context, ref string) error
}
