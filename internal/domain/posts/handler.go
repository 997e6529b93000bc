package posts

import (
	"net/http"

	"petora-connect/internal/middleware"
	"petora-connect/internal/platform/httpx"
	"petora-connect/internal/platform/logger"
	"petora-connect/internal/ports/blob"
	"petora-connect/internal/ports/changefeed"
	"petora-connect/internal/realtime"

	"github.com/go-chi/chi/v5"
)

type HandlerOptions struct {
	Log            logger.Logger
	MaxUploadBytes int64
	Streamer       *realtime.Streamer
}

func RegisterRoutes(r chi.Router, svc *Service, opts HandlerOptions) {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 6 << 20
	}

	r.Route("/posts", func(pr chi.Router) {
		pr.Get("/", listPostsHandler(svc, opts))
		pr.Post("/", createPostHandler(svc, opts))
		if opts.Streamer != nil {
			pr.Get("/stream", streamHandler(opts, ""))
			pr.Get("/{postID}/stream", streamHandler(opts, "postID"))
		}
		pr.Get("/{postID}", getPostHandler(svc, opts))
		pr.Delete("/{postID}", deletePostHandler(svc, opts))
		pr.Put("/{postID}/like", setLikeHandler(svc, opts, true))
		pr.Delete("/{postID}/like", setLikeHandler(svc, opts, false))
		pr.Post("/{postID}/comments", commentHandler(svc, opts))
	})
}

type createPostRequest struct {
	Body string `json:"body"`
}

type commentRequest struct {
	Body string `json:"body"`
}

func authorFromRequest(r *http.Request) (Author, error) {
	claims, err := middleware.RequireClaims(r.Context())
	if err != nil {
		return Author{}, err
	}
	return Author{UserID: claims.UserID, DisplayName: claims.DisplayName, AvatarURL: claims.AvatarURL}, nil
}

func listPostsHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, items)
	}
}

// createPostHandler godoc
// @Summary Publicar en el feed
// @Description JSON `{body}` o multipart con campo `body` y archivo opcional `image`.
// @Tags posts
// @Accept json,mpfd
// @Produce json
// @Param payload body createPostRequest true "Texto (1-500)"
// @Success 201 {object} Post
// @Failure 400 {object} apperr.ValidationError
// @Failure 401 {string} string "unauthorized"
// @Router /posts [post]
func createPostHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		author, err := authorFromRequest(r)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}

		var (
			req   createPostRequest
			image *blob.Upload
		)
		if httpx.IsMultipart(r) {
			if err := httpx.ParseMultipart(w, r, opts.MaxUploadBytes); err != nil {
				httpx.WriteError(w, r, opts.Log, err)
				return
			}
			req.Body = r.FormValue("body")
			up, closeFn, err := httpx.FormUpload(r, "image", "file")
			if err != nil {
				httpx.WriteError(w, r, opts.Log, err)
				return
			}
			defer closeFn()
			image = up
		} else if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}

		p, err := svc.Create(r.Context(), author, CreateInput{Body: req.Body}, image)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, p)
	}
}

func getPostHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Get(r.Context(), chi.URLParam(r, "postID"))
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, p)
	}
}

// deletePostHandler godoc
// @Summary Borrar post
// @Description Solo el autor.
// @Tags posts
// @Param postID path string true "ID del post"
// @Success 204
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /posts/{postID} [delete]
func deletePostHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := middleware.RequireClaims(r.Context())
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		if err := svc.Delete(r.Context(), chi.URLParam(r, "postID"), claims.UserID); err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// setLikeHandler godoc
// @Summary Like / unlike
// @Description PUT agrega el like del usuario, DELETE lo quita. Ambos son idempotentes.
// @Tags posts
// @Produce json
// @Param postID path string true "ID del post"
// @Success 200 {object} Post
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "not found"
// @Router /posts/{postID}/like [put]
// @Router /posts/{postID}/like [delete]
func setLikeHandler(svc *Service, opts HandlerOptions, liked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := middleware.RequireClaims(r.Context())
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		p, err := svc.SetLike(r.Context(), chi.URLParam(r, "postID"), claims.UserID, liked)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, p)
	}
}

// commentHandler godoc
// @Summary Comentar un post
// @Tags posts
// @Accept json
// @Produce json
// @Param postID path string true "ID del post"
// @Param payload body commentRequest true "Texto (1-500)"
// @Success 201 {object} Comment
// @Failure 400 {object} apperr.ValidationError
// @Failure 404 {string} string "not found"
// @Router /posts/{postID}/comments [post]
func commentHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		author, err := authorFromRequest(r)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		var req commentRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		c, err := svc.Comment(r.Context(), chi.URLParam(r, "postID"), author, req.Body)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, c)
	}
}

// streamHandler: sin param es el feed completo; con param, un solo post.
func streamHandler(opts HandlerOptions, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := middleware.RequireClaims(r.Context()); err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		topic := changefeed.TopicPosts
		if param != "" {
			topic = changefeed.Child(topic, chi.URLParam(r, param))
		}
		opts.Streamer.Serve(w, r, topic)
	}
}
