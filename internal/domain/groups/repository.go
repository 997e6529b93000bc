package groups

import "context"

type Repository interface {
	Create(ctx context.Context, g Group) error
	GetByID(ctx context.Context, id string) (Group, error)
	// List ordena por createdAt desc.
	List(ctx context.Context) ([]Group, error)

	// AddMember agrega userID al set e incrementa el contador en una sola operación atómica.
	// added=false si ya era miembro (sin cambios). Devuelve el grupo resultante.
	AddMember(ctx context.Context, groupID, userID string) (g Group, added bool, err error)

	// Delete borra el grupo y sus mensajes.
	Delete(ctx context.Context, id string) error

	AppendMessage(ctx context.Context, m Message) error
	// ListMessages ordena por createdAt asc; empates por orden de inserción.
	ListMessages(ctx context.Context, groupID string) ([]Message, error)
}
