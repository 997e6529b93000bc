package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	blobmem "petora-connect/internal/adapters/blob/memory"
	"petora-connect/internal/middleware"
	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/ports/auth"
	"petora-connect/internal/ports/blob"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Put(context.Context, string, string, io.Reader, int64) error {
	return errors.New("s3 unavailable")
}

func (failingStore) Get(context.Context, string) (blob.Object, error) {
	return blob.Object{}, errors.New("s3 unavailable")
}

func newTestService(store blob.Store, max int64) *Service {
	svc := NewService(store, Options{MaxBytes: max})
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"buddy.png":           "buddy.png",
		"mi perro ñandú.jpg":  "mi_perro__and_.jpg",
		"../../etc/passwd":    "passwd",
		`C:\fotos\gato.webp`:  "gato.webp",
		"":                    "image",
		"a+b=c.jpeg":          "a_b_c.jpeg",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestSave_StoresUnderTimestampedKey(t *testing.T) {
	store := blobmem.NewStore()
	svc := newTestService(store, 1<<20)

	u, err := svc.Save(context.Background(), blob.Upload{
		Filename:    "Buddy Photo.PNG",
		ContentType: "image/png",
		Body:        strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "/images/1700000000000-Buddy_Photo.PNG", u)

	obj, err := svc.Open(context.Background(), "1700000000000-Buddy_Photo.PNG")
	require.NoError(t, err)
	defer obj.Body.Close()
	data, _ := io.ReadAll(obj.Body)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", obj.ContentType)
}

func TestSave_Rejections(t *testing.T) {
	svc := newTestService(blobmem.NewStore(), 8)
	ctx := context.Background()

	_, err := svc.Save(ctx, blob.Upload{Filename: "a.gif", ContentType: "image/gif", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Save(ctx, blob.Upload{Filename: "a.png", ContentType: "image/png", Size: 9, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// Size mentido por el cliente
	_, err = svc.Save(ctx, blob.Upload{Filename: "a.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("123456789")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Save(ctx, blob.Upload{Filename: "a.png", ContentType: "image/png", Body: strings.NewReader("")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// octet-stream se resuelve por extensión
	_, err = svc.Save(ctx, blob.Upload{Filename: "a.webp", ContentType: "application/octet-stream", Body: strings.NewReader("x")})
	assert.NoError(t, err)
}

func TestSave_StoreFailureIsUpstream(t *testing.T) {
	svc := newTestService(failingStore{}, 1<<20)
	_, err := svc.Save(context.Background(), blob.Upload{Filename: "a.jpg", ContentType: "image/jpeg", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, apperr.ErrUpstream)
}

func TestOpen_NotFound(t *testing.T) {
	svc := newTestService(blobmem.NewStore(), 1<<20)
	_, err := svc.Open(context.Background(), "missing.png")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.Open(context.Background(), "..%2fsecret")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestHandlers_UploadThenServe(t *testing.T) {
	svc := newTestService(blobmem.NewStore(), 1<<20)
	r := chi.NewRouter()
	RegisterRoutes(r, svc, HandlerOptions{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "cat.jpg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	// sin claims
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	buf.Reset()
	mw = multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="cat.jpg"`}
	h["Content-Type"] = []string{"image/jpeg"}
	part, err = mw.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, mw.Close())

	req = httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(middleware.WithClaims(req.Context(), auth.Claims{UserID: "user-a"}))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"key":"1700000000000-cat.jpg","url":"/images/1700000000000-cat.jpg"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/1700000000000-cat.jpg", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "inline")
	assert.Equal(t, "jpeg-bytes", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/nope.jpg", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
