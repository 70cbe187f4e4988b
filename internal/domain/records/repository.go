package records

import "context"

type Repository interface {
	Create(ctx context.Context, r Record) error
	// ListByPet devuelve en orden de inserción.
	ListByPet(ctx context.Context, petID string) ([]Record, error)
	Count(ctx context.Context) (int, error)
	// DeleteByPet borra todo el historial de la mascota; devuelve cuántos borró.
	DeleteByPet(ctx context.Context, petID string) (int, error)
}
