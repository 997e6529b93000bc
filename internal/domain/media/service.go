// Package media guarda imágenes subidas en el blob store y las sirve por key.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/platform/logger"
	"petora-connect/internal/ports/blob"
)

const (
	// URLPrefix es donde se sirven las imágenes guardadas.
	URLPrefix = "/images/"

	DefaultMaxBytes int64 = 5 << 20
)

var allowedTypes = map[string]string{
	"image/jpeg": "image/jpeg",
	"image/jpg":  "image/jpeg",
	"image/png":  "image/png",
	"image/webp": "image/webp",
}

var extTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

type Options struct {
	MaxBytes int64
	Log      logger.Logger
}

type Service struct {
	store    blob.Store
	maxBytes int64
	log      logger.Logger
	now      func() time.Time
}

func NewService(store blob.Store, opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	return &Service{
		store:    store,
		maxBytes: opts.MaxBytes,
		log:      log.With(map[string]any{"module": "media"}),
		now:      time.Now,
	}
}

// MaxBytes es el tamaño máximo aceptado por archivo.
func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Save valida tipo y tamaño, guarda en el store y devuelve la URL pública (/images/<key>).
func (s *Service) Save(ctx context.Context, up blob.Upload) (string, error) {
	key, err := s.Store(ctx, up)
	if err != nil {
		return "", err
	}
	return URLPrefix + key, nil
}

// Store hace lo mismo que Save pero devuelve la key.
func (s *Service) Store(ctx context.Context, up blob.Upload) (string, error) {
	if up.Body == nil {
		return "", apperr.Invalid("file", "is required")
	}
	if up.Size > s.maxBytes {
		return "", apperr.Invalid("file", s.tooLarge())
	}
	contentType, ok := resolveType(up.ContentType, up.Filename)
	if !ok {
		return "", apperr.Invalid("file", "must be a JPEG, PNG or WEBP image")
	}

	// Se lee con tope: Size viene del cliente y no es confiable.
	data, err := io.ReadAll(io.LimitReader(up.Body, s.maxBytes+1))
	if err != nil {
		return "", apperr.Invalid("file", "unreadable file")
	}
	if int64(len(data)) > s.maxBytes {
		return "", apperr.Invalid("file", s.tooLarge())
	}
	if len(data) == 0 {
		return "", apperr.Invalid("file", "is empty")
	}

	key := strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + SanitizeFilename(up.Filename)
	if err := s.store.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", apperr.Upstream("store image", err)
	}
	s.log.Debug("image stored", map[string]any{"key": key, "size": len(data)})
	return key, nil
}

// Open devuelve el objeto para servirlo. El caller cierra Body.
func (s *Service) Open(ctx context.Context, key string) (blob.Object, error) {
	if !validKey(key) {
		return blob.Object{}, fmt.Errorf("image %q: %w", key, apperr.ErrNotFound)
	}
	obj, err := s.store.Get(ctx, key)
	if err != nil {
		return blob.Object{}, apperr.Upstream("open image", err)
	}
	return obj, nil
}

func (s *Service) tooLarge() string {
	return fmt.Sprintf("must be at most %d MB", s.maxBytes>>20)
}

// SanitizeFilename deja solo [A-Za-z0-9._-]; el resto pasa a '_'.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "image"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func resolveType(contentType, filename string) (string, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if t, ok := allowedTypes[ct]; ok {
		return t, true
	}
	// Algunos clientes mandan octet-stream; se decide por la extensión.
	if ct == "" || ct == "application/octet-stream" {
		t, ok := extTypes[strings.ToLower(path.Ext(filename))]
		return t, ok
	}
	return "", false
}

func validKey(key string) bool {
	if key == "" || len(key) > 255 || strings.Contains(key, "..") {
		return false
	}
	return !strings.ContainsAny(key, "/\\")
}
