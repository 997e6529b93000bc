package blob

import (
	"context"
	"fmt"
	"io"

	"petora-connect/internal/platform/apperr"
)

// ErrNotFound se devuelve cuando la key no existe en el store.
// Envuelve apperr.ErrNotFound para que los handlers respondan 404 sin traducir.
var ErrNotFound = fmt.Errorf("blob %w", apperr.ErrNotFound)

// Upload es un archivo recibido desde el cliente, todavía sin guardar.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Object es un blob leído del store. El caller cierra Body.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// Store guarda y sirve bytes por key.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Get(ctx context.Context, key string) (Object, error)
}
