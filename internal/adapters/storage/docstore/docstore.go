// Package docstore guarda entidades como documentos JSON versionados.
// Los repos de cada dominio se apoyan en un Backend (memoria o SQL) y
// nunca ven el motor concreto.
package docstore

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrConflict  = errors.New("document version conflict")
	ErrDuplicate = errors.New("document already exists")
)

// Document es la unidad de almacenamiento.
//
// Version 0 en Put significa alta; cualquier otro valor es una actualización
// condicionada a que la versión guardada coincida (optimistic locking).
type Document struct {
	Kind     string
	ID       string
	OwnerID  string
	ParentID string
	// Lookup es una clave secundaria única por Kind (ej. email). Vacío = sin clave.
	Lookup string

	Version   int64
	Body      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter restringe List. Los campos vacíos no filtran.
// El orden es siempre el de inserción.
type Filter struct {
	OwnerID  string
	ParentID string
	Limit    int
}

type Backend interface {
	Get(ctx context.Context, kind, id string) (Document, error)
	FindByLookup(ctx context.Context, kind, lookup string) (Document, error)
	List(ctx context.Context, kind string, f Filter) ([]Document, error)
	// Put devuelve el documento tal como quedó guardado (versión nueva).
	Put(ctx context.Context, doc Document) (Document, error)
	Delete(ctx context.Context, kind, id string) error
	Count(ctx context.Context, kind string) (int, error)
}

// Match indica si el documento pasa el filtro.
func (f Filter) Match(d Document) bool {
	if f.OwnerID != "" && d.OwnerID != f.OwnerID {
		return false
	}
	if f.ParentID != "" && d.ParentID != f.ParentID {
		return false
	}
	return true
}
