package media

import (
	"io"
	"net/http"
	"strconv"

	"petora-connect/internal/middleware"
	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/platform/httpx"
	"petora-connect/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

type HandlerOptions struct {
	Log logger.Logger
}

func RegisterRoutes(r chi.Router, svc *Service, opts HandlerOptions) {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	r.Post("/uploads", uploadHandler(svc, opts))
	r.Get(URLPrefix+"{key}", imageHandler(svc, opts))
}

type uploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// uploadHandler godoc
// @Summary Subir imagen
// @Description Multipart con campo `file`. JPEG, PNG o WEBP hasta el máximo configurado.
// @Tags media
// @Accept mpfd
// @Produce json
// @Param file formData file true "Imagen"
// @Success 201 {object} uploadResponse
// @Failure 400 {object} apperr.ValidationError
// @Failure 401 {string} string "unauthorized"
// @Router /uploads [post]
func uploadHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := middleware.RequireClaims(r.Context()); err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		if !httpx.IsMultipart(r) {
			httpx.WriteError(w, r, opts.Log, apperr.Invalid("file", "multipart/form-data is required"))
			return
		}
		// margen para los headers de la parte
		if err := httpx.ParseMultipart(w, r, svc.MaxBytes()+(1<<20)); err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		up, closeFn, err := httpx.FormUpload(r, "file")
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		defer closeFn()
		if up == nil {
			httpx.WriteError(w, r, opts.Log, apperr.Invalid("file", "is required"))
			return
		}

		key, err := svc.Store(r.Context(), *up)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, uploadResponse{Key: key, URL: URLPrefix + key})
	}
}

// imageHandler godoc
// @Summary Servir imagen
// @Tags media
// @Produce image/jpeg,image/png,image/webp
// @Param key path string true "Key devuelta por /uploads"
// @Success 200 {file} binary
// @Failure 404 {string} string "not found"
// @Router /images/{key} [get]
func imageHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		obj, err := svc.Open(r.Context(), key)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		defer obj.Body.Close()

		w.Header().Set("Content-Type", obj.ContentType)
		w.Header().Set("Content-Disposition", "inline; filename=\""+key+"\"")
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		if obj.Size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
		}
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, obj.Body); err != nil {
			opts.Log.Warn("image write failed", map[string]any{"key": key, "err": err})
		}
	}
}
