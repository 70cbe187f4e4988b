package community

import "context"

type PostRepository interface {
	Create(ctx context.Context, p Post) (Post, error)
	GetByID(ctx context.Context, id string) (Post, error)
	List(ctx context.Context) ([]Post, error)
	// Update falla con ErrConflict si p.Version no es la guardada.
	Update(ctx context.Context, p Post) (Post, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, q VetQuestion) (VetQuestion, error)
	GetByID(ctx context.Context, id string) (VetQuestion, error)
	List(ctx context.Context) ([]VetQuestion, error)
	Update(ctx context.Context, q VetQuestion) (VetQuestion, error)
}
