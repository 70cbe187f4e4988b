package repos

import (
	"context"

	"smart-feeding/internal/adapters/storage/docstore"
	"smart-feeding/internal/domain/pets"
)

type PetRepo struct {
	c *docstore.Collection[pets.Pet]
}

func NewPetRepo(b docstore.Backend) *PetRepo {
	return &PetRepo{c: docstore.NewCollection[pets.Pet](b, kindPet)}
}

func (r *PetRepo) Create(ctx context.Context, p pets.Pet) (pets.Pet, error) {
	v, err := r.c.Put(ctx, p.ID, petMeta(p), p, 0)
	if err != nil {
		return pets.Pet{}, translate(err, nil, nil, nil)
	}
	p.Version = v
	return p, nil
}

func (r *PetRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	rec, err := r.c.Get(ctx, id)
	if err != nil {
		return pets.Pet{}, translate(err, pets.ErrNotFound, nil, nil)
	}
	return withVersion(rec), nil
}

func (r *PetRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	return r.list(ctx, docstore.Filter{OwnerID: ownerUserID})
}

func (r *PetRepo) List(ctx context.Context) ([]pets.Pet, error) {
	return r.list(ctx, docstore.Filter{})
}

// Update exige p.Version; una versión vieja es pets.ErrConflict.
func (r *PetRepo) Update(ctx context.Context, p pets.Pet) (pets.Pet, error) {
	if p.Version == 0 {
		return pets.Pet{}, pets.ErrConflict
	}
	v, err := r.c.Put(ctx, p.ID, petMeta(p), p, p.Version)
	if err != nil {
		return pets.Pet{}, translate(err, pets.ErrNotFound, pets.ErrConflict, nil)
	}
	p.Version = v
	return p, nil
}

func (r *PetRepo) Delete(ctx context.Context, id string) error {
	return translate(r.c.Delete(ctx, id), pets.ErrNotFound, nil, nil)
}

func (r *PetRepo) list(ctx context.Context, f docstore.Filter) ([]pets.Pet, error) {
	recs, err := r.c.List(ctx, f)
	if err != nil {
		return nil, translate(err, nil, nil, nil)
	}
	out := make([]pets.Pet, 0, len(recs))
	for _, rec := range recs {
		out = append(out, withVersion(rec))
	}
	return out, nil
}

func petMeta(p pets.Pet) docstore.Meta {
	return docstore.Meta{OwnerID: p.OwnerUserID}
}

func withVersion(rec docstore.Record[pets.Pet]) pets.Pet {
	p := rec.Value
	p.Version = rec.Version
	return p
}
