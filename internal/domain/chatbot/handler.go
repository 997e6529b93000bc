package chatbot

import (
	"net/http"

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
	r.Post("/chatbot", askHandler(svc, opts))
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// askHandler godoc
// @Summary Preguntar al chatbot de cuidado de mascotas
// @Description Stateless. Preguntas fuera de tema reciben una negativa amable del modelo.
// @Tags chatbot
// @Accept json
// @Produce json
// @Param payload body askRequest true "Pregunta"
// @Success 200 {object} askResponse
// @Failure 400 {object} apperr.ValidationError
// @Failure 502 {string} string "upstream error"
// @Router /chatbot [post]
func askHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		answer, err := svc.Ask(r.Context(), req.Question)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, askResponse{Answer: answer})
	}
}
