package photostore

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("photo not found")

// PhotoStore keeps uploaded waste photos. Keys are opaque to callers and are
// stored on history entries.
type PhotoStore interface {
	Save(ctx context.Context, owner, mimeType string, r io.Reader) (key string, err error)
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}
