package repos

import (
	"context"
	"errors"

	"smart-feeding/internal/adapters/storage/docstore"
	"smart-feeding/internal/domain/quiz"
)

type QuizRepo struct {
	c *docstore.Collection[quiz.Result]
}

func NewQuizRepo(b docstore.Backend) *QuizRepo {
	return &QuizRepo{c: docstore.NewCollection[quiz.Result](b, kindQuizResult)}
}

func (r *QuizRepo) Create(ctx context.Context, res quiz.Result) error {
	_, err := r.c.Put(ctx, res.ID, quizMeta(res), res, 0)
	return translate(err, nil, nil, nil)
}

func (r *QuizRepo) GetByID(ctx context.Context, id string) (quiz.Result, error) {
	rec, err := r.c.Get(ctx, id)
	if err != nil {
		return quiz.Result{}, translate(err, quiz.ErrNotFound, nil, nil)
	}
	return rec.Value, nil
}

func (r *QuizRepo) ListByUser(ctx context.Context, userID string) ([]quiz.Result, error) {
	out, err := r.c.Values(ctx, docstore.Filter{OwnerID: userID})
	return out, translate(err, nil, nil, nil)
}

func (r *QuizRepo) List(ctx context.Context) ([]quiz.Result, error) {
	out, err := r.c.Values(ctx, docstore.Filter{})
	return out, translate(err, nil, nil, nil)
}

// Update reemplaza el resultado sobre la versión vigente.
func (r *QuizRepo) Update(ctx context.Context, res quiz.Result) error {
	return retryOnConflict(func() error {
		cur, err := r.c.Get(ctx, res.ID)
		if err != nil {
			return err
		}
		_, err = r.c.Put(ctx, res.ID, quizMeta(res), res, cur.Version)
		return err
	}, quiz.ErrNotFound)
}

func quizMeta(res quiz.Result) docstore.Meta {
	return docstore.Meta{OwnerID: res.UserID, ParentID: res.PetID}
}

type SavedPlanRepo struct {
	c *docstore.Collection[quiz.SavedPlan]
}

func NewSavedPlanRepo(b docstore.Backend) *SavedPlanRepo {
	return &SavedPlanRepo{c: docstore.NewCollection[quiz.SavedPlan](b, kindSavedPlan)}
}

// Save usa el userID como id del documento: hay un solo plan por usuario.
func (r *SavedPlanRepo) Save(ctx context.Context, p quiz.SavedPlan) error {
	return retryOnConflict(func() error {
		var version int64
		cur, err := r.c.Get(ctx, p.UserID)
		switch {
		case err == nil:
			version = cur.Version
		case !errors.Is(err, docstore.ErrNotFound):
			return err
		}
		_, err = r.c.Put(ctx, p.UserID, docstore.Meta{OwnerID: p.UserID}, p, version)
		return err
	}, nil)
}

func (r *SavedPlanRepo) Get(ctx context.Context, userID string) (quiz.SavedPlan, error) {
	rec, err := r.c.Get(ctx, userID)
	if err != nil {
		return quiz.SavedPlan{}, translate(err, quiz.ErrNotFound, nil, nil)
	}
	return rec.Value, nil
}

// retryOnConflict repite fn cuando otro escritor ganó la carrera
// (versión vieja, o alta simultánea del mismo id).
func retryOnConflict(fn func() error, notFound error) error {
	const attempts = 3
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if !errors.Is(err, docstore.ErrConflict) && !errors.Is(err, docstore.ErrDuplicate) {
			break
		}
	}
	return translate(err, notFound, nil, nil)
}
