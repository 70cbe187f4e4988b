package repos

import (
	"context"
	"errors"

	"smart-feeding/internal/adapters/storage/docstore"
	"smart-feeding/internal/domain/records"
)

type RecordRepo struct {
	c *docstore.Collection[records.Record]
}

func NewRecordRepo(b docstore.Backend) *RecordRepo {
	return &RecordRepo{c: docstore.NewCollection[records.Record](b, kindRecord)}
}

func (r *RecordRepo) Create(ctx context.Context, rec records.Record) error {
	_, err := r.c.Put(ctx, rec.ID, docstore.Meta{OwnerID: rec.CreatedBy, ParentID: rec.PetID}, rec, 0)
	return translate(err, nil, nil, nil)
}

func (r *RecordRepo) ListByPet(ctx context.Context, petID string) ([]records.Record, error) {
	out, err := r.c.Values(ctx, docstore.Filter{ParentID: petID})
	return out, translate(err, nil, nil, nil)
}

func (r *RecordRepo) DeleteByPet(ctx context.Context, petID string) (int, error) {
	items, err := r.c.Values(ctx, docstore.Filter{ParentID: petID})
	if err != nil {
		return 0, translate(err, nil, nil, nil)
	}
	n := 0
	for _, rec := range items {
		if err := r.c.Delete(ctx, rec.ID); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				continue
			}
			return n, translate(err, nil, nil, nil)
		}
		n++
	}
	return n, nil
}

func (r *RecordRepo) Count(ctx context.Context) (int, error) {
	n, err := r.c.Count(ctx)
	return n, translate(err, nil, nil, nil)
}
