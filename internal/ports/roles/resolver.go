package roles

import "context"

// Resolver decide si un usuario tiene rol de administrador.
// Lo implementa el módulo users; groups lo consume para el borrado.
type Resolver interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}
