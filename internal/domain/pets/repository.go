package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Pet) (Pet, error)
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error)
	List(ctx context.Context) ([]Pet, error)
	// Update falla con ErrConflict si p.Version no es la guardada.
	Update(ctx context.Context, p Pet) (Pet, error)
	Delete(ctx context.Context, id string) error
}
