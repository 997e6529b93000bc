package assistant

import (
	"context"
	"errors"
)

// ErrNotConfigured: no hay credenciales para el modelo generativo.
var ErrNotConfigured = errors.New("assistant model not configured")

// Model genera una respuesta a question bajo la instrucción de sistema system.
type Model interface {
	Generate(ctx context.Context, system, question string) (string, error)
}
