package listings

import "context"

// Query filtra en el store; vacío = todo. Resultado ordenado por createdAt desc.
type Query struct {
	ListingType ListingType
	OwnerID     string
}

type Repository interface {
	Create(ctx context.Context, l Listing) error
	Update(ctx context.Context, l Listing) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Listing, error)
	List(ctx context.Context, q Query) ([]Listing, error)
}
