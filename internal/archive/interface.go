package archive

import "context"

// Backend is a flat blob store for archived run artifacts. Paths are
// slash-separated and relative to the backend root.
type Backend interface {
	Put(ctx context.Context, path string, data []byte) error
	Get(ctx context.Context, path string) ([]byte, error)

	// List returns every stored path under the prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}
