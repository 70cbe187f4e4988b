package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"smart-feeding/internal/adapters/storage/docstore"
)

type entry struct {
	seq int64
	doc docstore.Document
}

// Store es un docstore.Backend en memoria; se pierde al reiniciar.
type Store struct {
	mu       sync.RWMutex
	seq      int64
	byKind   map[string]map[string]*entry
	byLookup map[string]map[string]string
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		byKind:   make(map[string]map[string]*entry),
		byLookup: make(map[string]map[string]string),
		now:      time.Now,
	}
}

var _ docstore.Backend = (*Store)(nil)

func (s *Store) Get(ctx context.Context, kind, id string) (docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byKind[kind][id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return copyDoc(e.doc), nil
}

func (s *Store) FindByLookup(ctx context.Context, kind, lookup string) (docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byLookup[kind][lookup]
	if !ok || lookup == "" {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return copyDoc(s.byKind[kind][id].doc), nil
}

func (s *Store) List(ctx context.Context, kind string, f docstore.Filter) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*entry, 0)
	for _, e := range s.byKind[kind] {
		if f.Match(e.doc) {
			matched = append(matched, e)
		}
	}
	sortBySeq(matched)

	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	out := make([]docstore.Document, 0, len(matched))
	for _, e := range matched {
		out = append(out, copyDoc(e.doc))
	}
	return out, nil
}

func (s *Store) Put(ctx context.Context, d docstore.Document) (docstore.Document, error) {
	if strings.TrimSpace(d.Kind) == "" || strings.TrimSpace(d.ID) == "" {
		return docstore.Document{}, errors.New("document kind and id required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.byKind[d.Kind]
	if docs == nil {
		docs = make(map[string]*entry)
		s.byKind[d.Kind] = docs
	}
	lookups := s.byLookup[d.Kind]
	if lookups == nil {
		lookups = make(map[string]string)
		s.byLookup[d.Kind] = lookups
	}

	if d.Lookup != "" {
		if owner, taken := lookups[d.Lookup]; taken && owner != d.ID {
			return docstore.Document{}, docstore.ErrDuplicate
		}
	}

	now := s.now().UTC()
	current, exists := docs[d.ID]

	if d.Version == 0 {
		if exists {
			return docstore.Document{}, docstore.ErrDuplicate
		}
		s.seq++
		d.Version = 1
		d.CreatedAt = now
		d.UpdatedAt = now
		docs[d.ID] = &entry{seq: s.seq, doc: copyDoc(d)}
	} else {
		if !exists {
			return docstore.Document{}, docstore.ErrNotFound
		}
		if current.doc.Version != d.Version {
			return docstore.Document{}, docstore.ErrConflict
		}
		if current.doc.Lookup != "" && current.doc.Lookup != d.Lookup {
			delete(lookups, current.doc.Lookup)
		}
		d.Version = current.doc.Version + 1
		d.CreatedAt = current.doc.CreatedAt
		d.UpdatedAt = now
		current.doc = copyDoc(d)
	}

	if d.Lookup != "" {
		lookups[d.Lookup] = d.ID
	}
	return copyDoc(d), nil
}

func (s *Store) Delete(ctx context.Context, kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byKind[kind][id]
	if !ok {
		return docstore.ErrNotFound
	}
	if e.doc.Lookup != "" {
		delete(s.byLookup[kind], e.doc.Lookup)
	}
	delete(s.byKind[kind], id)
	return nil
}

func (s *Store) Count(ctx context.Context, kind string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKind[kind]), nil
}

// copyDoc evita que el llamador modifique el body guardado.
func copyDoc(d docstore.Document) docstore.Document {
	d.Body = append([]byte(nil), d.Body...)
	return d
}

func sortBySeq(es []*entry) {
	sort.Slice(es, func(i, j int) bool { return es[i].seq < es[j].seq })
}
