package docstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Meta son las claves de indexación de un documento.
type Meta struct {
	OwnerID  string
	ParentID string
	Lookup   string
}

// Record es un valor decodificado junto con su versión guardada.
type Record[T any] struct {
	Value   T
	Version int64
}

// Collection codifica/decodifica T como JSON sobre un Backend.
type Collection[T any] struct {
	backend Backend
	kind    string
}

func NewCollection[T any](b Backend, kind string) *Collection[T] {
	return &Collection[T]{backend: b, kind: kind}
}

func (c *Collection[T]) Kind() string { return c.kind }

func (c *Collection[T]) Get(ctx context.Context, id string) (Record[T], error) {
	d, err := c.backend.Get(ctx, c.kind, id)
	if err != nil {
		return Record[T]{}, err
	}
	return c.decode(d)
}

func (c *Collection[T]) FindByLookup(ctx context.Context, lookup string) (Record[T], error) {
	d, err := c.backend.FindByLookup(ctx, c.kind, lookup)
	if err != nil {
		return Record[T]{}, err
	}
	return c.decode(d)
}

func (c *Collection[T]) List(ctx context.Context, f Filter) ([]Record[T], error) {
	docs, err := c.backend.List(ctx, c.kind, f)
	if err != nil {
		return nil, err
	}
	out := make([]Record[T], 0, len(docs))
	for _, d := range docs {
		r, err := c.decode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Values es List sin versiones.
func (c *Collection[T]) Values(ctx context.Context, f Filter) ([]T, error) {
	recs, err := c.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Value)
	}
	return out, nil
}

// Put guarda v. version=0 inserta; si no, exige que coincida con la guardada.
func (c *Collection[T]) Put(ctx context.Context, id string, meta Meta, v T, version int64) (int64, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s %s: %w", c.kind, id, err)
	}
	d, err := c.backend.Put(ctx, Document{
		Kind:     c.kind,
		ID:       id,
		OwnerID:  meta.OwnerID,
		ParentID: meta.ParentID,
		Lookup:   meta.Lookup,
		Version:  version,
		Body:     body,
	})
	if err != nil {
		return 0, err
	}
	return d.Version, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.backend.Delete(ctx, c.kind, id)
}

func (c *Collection[T]) Count(ctx context.Context) (int, error) {
	return c.backend.Count(ctx, c.kind)
}

func (c *Collection[T]) decode(d Document) (Record[T], error) {
	var v T
	if err := json.Unmarshal(d.Body, &v); err != nil {
		return Record[T]{}, fmt.Errorf("decode %s %s: %w", d.Kind, d.ID, err)
	}
	return Record[T]{Value: v, Version: d.Version}, nil
}
