// Package memory implementa los repositorios en memoria (dev y tests).
// Cada repo protege su estado con un mutex; las primitivas atómicas
// (join, like, comentarios) se resuelven dentro de la misma sección crítica.
package memory

import (
	"fmt"

	"petora-connect/internal/platform/apperr"
)

// ErrNotFound envuelve apperr.ErrNotFound para que los servicios respondan 404 sin traducir.
var ErrNotFound = fmt.Errorf("record %w", apperr.ErrNotFound)

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}
