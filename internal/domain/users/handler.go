package users

import (
	"net/http"

	"petora-connect/internal/middleware"
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
	r.Get("/me", meHandler(svc, opts))
	r.Get("/users", listUsersHandler(svc, opts))
}

// meHandler godoc
// @Summary Perfil del usuario autenticado
// @Tags users
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Success 200 {object} Profile
// @Failure 401 {string} string "unauthorized"
// @Router /me [get]
func meHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := middleware.RequireClaims(r.Context())
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		p, err := svc.Get(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, p)
	}
}

// listUsersHandler godoc
// @Summary Listar usuarios
// @Description Solo administradores.
// @Tags users
// @Produce json
// @Success 200 {array} Profile
// @Failure 403 {string} string "forbidden"
// @Router /users [get]
func listUsersHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := middleware.RequireClaims(r.Context())
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		items, err := svc.List(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, items)
	}
}
