package groups

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
	// Streamer es opcional; sin él no se registra /stream.
	Streamer *realtime.Streamer
}

func RegisterRoutes(r chi.Router, svc *Service, opts HandlerOptions) {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 6 << 20
	}

	r.Route("/groups", func(gr chi.Router) {
		gr.Get("/", listGroupsHandler(svc, opts))
		gr.Post("/", createGroupHandler(svc, opts))
		gr.Get("/{groupID}", getGroupHandler(svc, opts))
		gr.Delete("/{groupID}", deleteGroupHandler(svc, opts))
		gr.Post("/{groupID}/join", joinGroupHandler(svc, opts))
		gr.Get("/{groupID}/messages", listMessagesHandler(svc, opts))
		gr.Post("/{groupID}/messages", postMessageHandler(svc, opts))
		if opts.Streamer != nil {
			gr.Get("/{groupID}/stream", streamHandler(svc, opts))
		}
	})
}

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type joinResponse struct {
	Group  Group `json:"group"`
	Joined bool  `json:"joined"`
}

type postMessageRequest struct {
	Text string `json:"text"`
}

func listGroupsHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, items)
	}
}

// createGroupHandler godoc
// @Summary Crear grupo
// @Description Crea una comunidad; el creador queda como dueño y primer miembro. JSON o multipart (archivo `image`).
// @Tags groups
// @Accept json,mpfd
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createGroupRequest true "Nombre (3-50) y descripción (10-200)"
// @Success 201 {object} Group
// @Failure 400 {object} apperr.ValidationError
// @Failure 401 {string} string "unauthorized"
// @Router /groups [post]
func createGroupHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := middleware.RequireClaims(r.Context())
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}

		var (
			req   createGroupRequest
			image *blob.Upload
		)
		if httpx.IsMultipart(r) {
			if err := httpx.ParseMultipart(w, r, opts.MaxUploadBytes); err != nil {
				httpx.WriteError(w, r, opts.Log, err)
				return
			}
			req = createGroupRequest{Name: r.FormValue("name"), Description: r.FormValue("description")}
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

		g, err := svc.Create(r.Context(), claims.UserID, CreateInput{Name: req.Name, Description: req.Description}, image)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, g)
	}
}

func getGroupHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := svc.Get(r.Context(), chi.URLParam(r, "groupID"))
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, g)
	}
}

// deleteGroupHandler godoc
// @Summary Borrar grupo
// @Description Solo administradores. Borra también los mensajes del grupo.
// @Tags groups
// @Param groupID path string true "ID del grupo"
// @Success 204
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /groups/{groupID} [delete]
func deleteGroupHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := middleware.RequireClaims(r.Context())
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		if err := svc.Delete(r.Context(), chi.URLParam(r, "groupID"), claims.UserID); err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// joinGroupHandler godoc
// @Summary Unirse a un grupo
// @Description Idempotente: si ya es miembro responde 200 con joined=false y el contador sin cambios.
// @Tags groups
// @Produce json
// @Param groupID path string true "ID del grupo"
// @Success 200 {object} joinResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "not found"
// @Router /groups/{groupID}/join [post]
func joinGroupHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := middleware.RequireClaims(r.Context())
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		g, joined, err := svc.Join(r.Context(), chi.URLParam(r, "groupID"), claims.UserID)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, joinResponse{Group: g, Joined: joined})
	}
}

func listMessagesHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := middleware.RequireClaims(r.Context())
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		items, err := svc.Messages(r.Context(), chi.URLParam(r, "groupID"), claims.UserID)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, items)
	}
}

// postMessageHandler godoc
// @Summary Enviar mensaje al chat del grupo
// @Description Solo dueño o miembros. El servidor asigna createdAt.
// @Tags groups
// @Accept json
// @Produce json
// @Param groupID path string true "ID del grupo"
// @Param payload body postMessageRequest true "Texto (1-1000)"
// @Success 201 {object} Message
// @Failure 400 {object} apperr.ValidationError
// @Failure 403 {string} string "forbidden"
// @Router /groups/{groupID}/messages [post]
func postMessageHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := middleware.RequireClaims(r.Context())
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		var req postMessageRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		m, err := svc.PostMessage(r.Context(), chi.URLParam(r, "groupID"), Sender{
			UserID:      claims.UserID,
			DisplayName: claims.DisplayName,
			AvatarURL:   claims.AvatarURL,
		}, req.Text)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, m)
	}
}

// streamHandler abre un WebSocket con los cambios del grupo (mensajes, miembros).
func streamHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := middleware.RequireClaims(r.Context())
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		groupID := chi.URLParam(r, "groupID")
		if err := svc.AuthorizeMember(r.Context(), groupID, claims.UserID); err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		opts.Streamer.Serve(w, r, changefeed.Child(changefeed.TopicGroups, groupID))
	}
}
