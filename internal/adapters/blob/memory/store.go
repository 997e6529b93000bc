// Package memory guarda blobs en memoria (dev y tests).
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"petora-connect/internal/ports/blob"
)

type object struct {
	contentType string
	data        []byte
}

type Store struct {
	mu   sync.RWMutex
	objs map[string]object
}

func NewStore() *Store {
	return &Store{objs: make(map[string]object)}
}

func (s *Store) Put(ctx context.Context, key, contentType string, body io.Reader, _ int64) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("blob key required")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read blob body: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objs[key] = object{contentType: contentType, data: data}
	return nil
}

func (s *Store) Get(_ context.Context, key string) (blob.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.objs[key]
	if !ok {
		return blob.Object{}, blob.ErrNotFound
	}
	return blob.Object{
		Key:         key,
		ContentType: o.contentType,
		Size:        int64(len(o.data)),
		Body:        io.NopCloser(bytes.NewReader(o.data)),
	}, nil
}
