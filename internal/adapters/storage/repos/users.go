package repos

import (
	"context"
	"strings"

	"smart-feeding/internal/adapters/storage/docstore"
	"smart-feeding/internal/domain/users"
)

type UserRepo struct {
	c *docstore.Collection[users.User]
}

func NewUserRepo(b docstore.Backend) *UserRepo {
	return &UserRepo{c: docstore.NewCollection[users.User](b, kindUser)}
}

// Create usa el email como clave única; un duplicado es ErrEmailTaken.
func (r *UserRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.c.Put(ctx, u.ID, docstore.Meta{Lookup: emailKey(u.Email)}, u, 0)
	return translate(err, nil, nil, users.ErrEmailTaken)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	rec, err := r.c.Get(ctx, id)
	if err != nil {
		return users.User{}, translate(err, users.ErrNotFound, nil, nil)
	}
	return rec.Value, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	rec, err := r.c.FindByLookup(ctx, emailKey(email))
	if err != nil {
		return users.User{}, translate(err, users.ErrNotFound, nil, nil)
	}
	return rec.Value, nil
}

func (r *UserRepo) List(ctx context.Context) ([]users.User, error) {
	out, err := r.c.Values(ctx, docstore.Filter{})
	return out, translate(err, nil, nil, nil)
}

func emailKey(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

type SessionRepo struct {
	c *docstore.Collection[users.Session]
}

func NewSessionRepo(b docstore.Backend) *SessionRepo {
	return &SessionRepo{c: docstore.NewCollection[users.Session](b, kindSession)}
}

func (r *SessionRepo) Create(ctx context.Context, s users.Session) error {
	_, err := r.c.Put(ctx, s.ID, docstore.Meta{OwnerID: s.UserID}, s, 0)
	return translate(err, nil, nil, nil)
}

func (r *SessionRepo) List(ctx context.Context) ([]users.Session, error) {
	out, err := r.c.Values(ctx, docstore.Filter{})
	return out, translate(err, nil, nil, nil)
}
