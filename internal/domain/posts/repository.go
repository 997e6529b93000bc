package posts

import "context"

type Repository interface {
	Create(ctx context.Context, p Post) error
	GetByID(ctx context.Context, id string) (Post, error)
	// List ordena por createdAt desc.
	List(ctx context.Context) ([]Post, error)

	// SetLike agrega (liked=true) o quita userID del set de likes de forma atómica.
	// changed=false si el set ya estaba en el estado pedido.
	SetLike(ctx context.Context, postID, userID string, liked bool) (p Post, changed bool, err error)

	// AppendComment agrega al final de la lista de comentarios de forma atómica.
	AppendComment(ctx context.Context, postID string, c Comment) (Post, error)

	Delete(ctx context.Context, id string) error
}
