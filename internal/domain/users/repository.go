package users

import "context"

type Repository interface {
	// Create falla con ErrEmailTaken si el email ya existe.
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// List devuelve en orden de alta.
	List(ctx context.Context) ([]User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s Session) error
	List(ctx context.Context) ([]Session, error)
}
