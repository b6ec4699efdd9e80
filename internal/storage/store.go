// Package storage persists uploaded photo objects and hands out the URLs
// that the rest of the application stores.
package storage

import (
	"context"
	"errors"
)

// ErrInvalidImage indicates the uploaded bytes are not a decodable image of
// an allowed format.
var ErrInvalidImage = errors.New("invalid image")

// ErrTooLarge indicates the upload exceeds the configured size limit.
var ErrTooLarge = errors.New("image exceeds upload size limit")

// ObjectStore stores photo objects. Put returns the public URL of the stored
// object; Delete takes that same URL back.
type ObjectStore interface {
	Put(ctx context.Context, content []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}
