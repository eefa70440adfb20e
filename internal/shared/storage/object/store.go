package object

import (
	"context"
	"io"
)

// Object describes one stored object.
type Object struct {
	Key  string
	Size int64
}

// Store enumerates and reads objects under a root. List returns objects
// sorted by key so that enumeration order is stable.
type Store interface {
	List(ctx context.Context) ([]Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
