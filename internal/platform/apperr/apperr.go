// Package apperr define la taxonomía de errores compartida por servicios y handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrUpstream        = errors.New("upstream error")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// FieldError describe un problema puntual de un campo de entrada.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError acumula todos los problemas de un input antes de devolverlo.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add registra un problema para field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Has indica si field ya tiene algún problema registrado.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Length recorta value y registra un problema si su largo en runas no está en [min, max].
// max <= 0 significa sin tope. Devuelve el valor recortado.
func (e *ValidationError) Length(field, value string, min, max int) string {
	v := strings.TrimSpace(value)
	n := utf8.RuneCountInString(v)
	switch {
	case n == 0 && min > 0:
		e.Add(field, "is required")
	case n < min:
		e.Add(field, fmt.Sprintf("must be at least %d characters", min))
	case max > 0 && n > max:
		e.Add(field, fmt.Sprintf("must be at most %d characters", max))
	}
	return v
}

// OrNil devuelve nil si no se registró ningún problema.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Invalid crea un ValidationError de un solo campo.
func Invalid(field, message string) error {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// UpstreamError envuelve fallas de base de datos, blob store, IdP o modelo.
// El detalle se loguea; al usuario solo le llega un mensaje genérico.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, ErrUpstream)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// Upstream envuelve err como UpstreamError, salvo que ya sea un error de dominio conocido
// (not found, forbidden, validation...), que se deja pasar tal cual.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomain(err) {
		return err
	}
	return &UpstreamError{Op: op, Err: err}
}

// IsDomain indica si err pertenece a la taxonomía (excepto upstream).
func IsDomain(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnauthenticated)
}

// HTTPStatus mapea err a un status HTTP.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
