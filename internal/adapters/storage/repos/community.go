package repos

import (
	"context"

	"smart-feeding/internal/adapters/storage/docstore"
	"smart-feeding/internal/domain/community"
)

type PostRepo struct {
	c *docstore.Collection[community.Post]
}

func NewPostRepo(b docstore.Backend) *PostRepo {
	return &PostRepo{c: docstore.NewCollection[community.Post](b, kindPost)}
}

func (r *PostRepo) Create(ctx context.Context, p community.Post) (community.Post, error) {
	v, err := r.c.Put(ctx, p.ID, docstore.Meta{OwnerID: p.Author.UserID}, p, 0)
	if err != nil {
		return community.Post{}, translate(err, nil, nil, nil)
	}
	p.Version = v
	return p, nil
}

func (r *PostRepo) GetByID(ctx context.Context, id string) (community.Post, error) {
	rec, err := r.c.Get(ctx, id)
	if err != nil {
		return community.Post{}, translate(err, community.ErrNotFound, nil, nil)
	}
	p := rec.Value
	p.Version = rec.Version
	return p, nil
}

func (r *PostRepo) List(ctx context.Context) ([]community.Post, error) {
	recs, err := r.c.List(ctx, docstore.Filter{})
	if err != nil {
		return nil, translate(err, nil, nil, nil)
	}
	out := make([]community.Post, 0, len(recs))
	for _, rec := range recs {
		p := rec.Value
		p.Version = rec.Version
		out = append(out, p)
	}
	return out, nil
}

func (r *PostRepo) Update(ctx context.Context, p community.Post) (community.Post, error) {
	v, err := r.c.Put(ctx, p.ID, docstore.Meta{OwnerID: p.Author.UserID}, p, p.Version)
	if err != nil {
		return community.Post{}, translate(err, community.ErrNotFound, community.ErrConflict, nil)
	}
	p.Version = v
	return p, nil
}

type QuestionRepo struct {
	c *docstore.Collection[community.VetQuestion]
}

func NewQuestionRepo(b docstore.Backend) *QuestionRepo {
	return &QuestionRepo{c: docstore.NewCollection[community.VetQuestion](b, kindVetQuestion)}
}

func (r *QuestionRepo) Create(ctx context.Context, q community.VetQuestion) (community.VetQuestion, error) {
	v, err := r.c.Put(ctx, q.ID, docstore.Meta{OwnerID: q.Author.UserID}, q, 0)
	if err != nil {
		return community.VetQuestion{}, translate(err, nil, nil, nil)
	}
	q.Version = v
	return q, nil
}

func (r *QuestionRepo) GetByID(ctx context.Context, id string) (community.VetQuestion, error) {
	rec, err := r.c.Get(ctx, id)
	if err != nil {
		return community.VetQuestion{}, translate(err, community.ErrNotFound, nil, nil)
	}
	q := rec.Value
	q.Version = rec.Version
	return q, nil
}

func (r *QuestionRepo) List(ctx context.Context) ([]community.VetQuestion, error) {
	recs, err := r.c.List(ctx, docstore.Filter{})
	if err != nil {
		return nil, translate(err, nil, nil, nil)
	}
	out := make([]community.VetQuestion, 0, len(recs))
	for _, rec := range recs {
		q := rec.Value
		q.Version = rec.Version
		out = append(out, q)
	}
	return out, nil
}

func (r *QuestionRepo) Update(ctx context.Context, q community.VetQuestion) (community.VetQuestion, error) {
	v, err := r.c.Put(ctx, q.ID, docstore.Meta{OwnerID: q.Author.UserID}, q, q.Version)
	if err != nil {
		return community.VetQuestion{}, translate(err, community.ErrNotFound, community.ErrConflict, nil)
	}
	q.Version = v
	return q, nil
}
