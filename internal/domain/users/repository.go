package users

import "context"

type Repository interface {
	GetByID(ctx context.Context, userID string) (Profile, error)
	// CreateIfAbsent inserta p solo si no existe; si ya existía devuelve el guardado y created=false.
	CreateIfAbsent(ctx context.Context, p Profile) (stored Profile, created bool, err error)
	// List ordena por createdAt asc.
	List(ctx context.Context) ([]Profile, error)
}
