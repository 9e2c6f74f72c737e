package media

import (
	"context"
	"errors"
)

var ErrBadRef = errors.New("unrecognised image reference")

// Store keeps product images and returns a reference clients can load them from.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Delete(ctx context.Context, ref string) error
}
