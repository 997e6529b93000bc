// Package httpx reúne helpers HTTP que antes estaban duplicados en cada módulo.
// Con listings, groups, posts, media, users y chatbot ya repitiendo lo mismo, conviene extraerlos.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// MaxJSONBody limita el tamaño de los bodies JSON.
const MaxJSONBody = 1 << 20

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError traduce err a status + body. Los errores upstream/desconocidos se loguean
// con detalle y se responden genéricos.
func WriteError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status := apperr.HTTPStatus(err)

	var body errorResponse
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		body = errorResponse{Error: "validation", Fields: verr.Fields}
	case errors.Is(err, apperr.ErrUnauthenticated):
		body = errorResponse{Error: "unauthorized"}
	case errors.Is(err, apperr.ErrForbidden):
		body = errorResponse{Error: "forbidden"}
	case errors.Is(err, apperr.ErrNotFound):
		body = errorResponse{Error: "not found"}
	case errors.Is(err, apperr.ErrValidation):
		body = errorResponse{Error: "validation"}
	default:
		body = errorResponse{Error: "something went wrong"}
		if log != nil {
			log.Error("request failed", map[string]any{
				"method":     r.Method,
				"path":       r.URL.Path,
				"request_id": chimw.GetReqID(r.Context()),
				"status":     status,
				"err":        err,
			})
		}
	}

	WriteJSON(w, status, body)
}

// DecodeJSON decodifica el body en v; cualquier problema de formato es un ValidationError.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Invalid("body", "invalid json: "+err.Error())
	}
	return nil
}
