package quiz

import "context"

type Repository interface {
	Create(ctx context.Context, r Result) error
	GetByID(ctx context.Context, id string) (Result, error)
	// ListByUser devuelve en orden de inserción (el último es el más reciente).
	ListByUser(ctx context.Context, userID string) ([]Result, error)
	List(ctx context.Context) ([]Result, error)
	// Update reemplaza el resultado guardado (solo cambia SavedAt).
	Update(ctx context.Context, r Result) error
}

type SavedPlanRepository interface {
	// Save reemplaza el plan anterior del usuario.
	Save(ctx context.Context, p SavedPlan) error
	Get(ctx context.Context, userID string) (SavedPlan, error)
}
