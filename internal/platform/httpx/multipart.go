package httpx

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/ports/blob"
)

// multipartMemory es lo que ParseMultipartForm mantiene en RAM; el resto va a disco.
const multipartMemory = 8 << 20

// IsMultipart indica si el request viene como multipart/form-data.
func IsMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// ParseMultipart limita el body a maxBytes y parsea el form.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return apperr.Invalid("body", "request is too large")
		}
		return apperr.Invalid("body", "invalid multipart form")
	}
	return nil
}

// FormUpload devuelve el primer archivo presente entre fields (nil si no hay).
// El caller llama close cuando terminó de usar Body.
func FormUpload(r *http.Request, fields ...string) (*blob.Upload, func(), error) {
	noop := func() {}
	if r.MultipartForm == nil {
		return nil, noop, nil
	}
	for _, field := range fields {
		f, hdr, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return nil, noop, apperr.Invalid(field, "unreadable file")
		}
		return toUpload(f, hdr), func() { _ = f.Close() }, nil
	}
	return nil, noop, nil
}

func toUpload(f multipart.File, hdr *multipart.FileHeader) *blob.Upload {
	return &blob.Upload{
		Filename:    hdr.Filename,
		ContentType: strings.TrimSpace(hdr.Header.Get("Content-Type")),
		Size:        hdr.Size,
		Body:        f,
	}
}
