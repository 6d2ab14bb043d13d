package storage

import (
	"errors"
	"io"
)

var ErrNotFound = errors.New("storage: blob not found")

type BlobStore interface {
	Put(key string, r io.Reader) (size int64, err error)
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error // missing keys are not an error
}
