package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"smart-feeding/internal/ports/auth"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

type testRepo struct {
	byID  map[string]User
	order []string
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]User{}}
}

func (r *testRepo) Create(_ context.Context, u User) error {
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	r.byID[u.ID] = u
	r.order = append(r.order, u.ID)
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *testRepo) GetByEmail(_ context.Context, email string) (User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *testRepo) List(_ context.Context) ([]User, error) {
	out := make([]User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

type testSessions struct{ items []Session }

func (r *testSessions) Create(_ context.Context, s Session) error {
	r.items = append(r.items, s)
	return nil
}

func (r *testSessions) List(_ context.Context) ([]Session, error) { return r.items, nil }

type fakeIssuer struct{ fail bool }

func (f fakeIssuer) Issue(_ context.Context, c auth.Claims) (auth.Token, error) {
	if f.fail {
		return auth.Token{}, errors.New("signer down")
	}
	return auth.Token{Value: "tok-" + c.UserID + "-" + c.Role, ExpiresAt: time.Unix(100, 0)}, nil
}

func newTestService(issuer auth.TokenIssuer) (*Service, *testRepo, *testSessions) {
	repo := newTestRepo()
	sessions := &testSessions{}
	svc := NewService(repo, sessions, issuer, Options{
		IsAdminEmail: func(e string) bool { return e == "boss@example.com" },
		PasswordCost: bcrypt.MinCost,
	})
	return svc, repo, sessions
}

// -------------------------
// Tests
// -------------------------

func TestRegister_CreatesUserAndSession(t *testing.T) {
	svc, repo, sessions := newTestService(fakeIssuer{})

	res, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  Ana@Example.com ",
		Password: "secret1",
		FullName: " Ana Pérez ",
	})
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", res.User.Email)
	assert.Equal(t, "Ana Pérez", res.User.FullName)
	assert.Equal(t, auth.RoleUser, res.User.Role)
	assert.NotEqual(t, "secret1", res.User.PasswordHash)
	assert.Equal(t, "tok-"+res.User.ID+"-user", res.Token)

	require.Len(t, sessions.items, 1)
	assert.Equal(t, res.User.ID, sessions.items[0].UserID)
	assert.Len(t, repo.byID, 1)
}

func TestRegister_AdminEmail(t *testing.T) {
	svc, _, _ := newTestService(nil)

	res, err := svc.Register(context.Background(), RegisterInput{Email: "BOSS@example.com", Password: "secret1", FullName: "Boss"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, res.User.Role)
	assert.Empty(t, res.Token)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()

	cases := []RegisterInput{
		{Email: "", Password: "secret1", FullName: "A"},
		{Email: "a@b.co", Password: "", FullName: "A"},
		{Email: "a@b.co", Password: "secret1", FullName: "  "},
		{Email: "not-an-email", Password: "secret1", FullName: "A"},
		{Email: "a b@c.co", Password: "secret1", FullName: "A"},
		{Email: "a@b.co", Password: "12345", FullName: "A"},
	}
	for _, in := range cases {
		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput, "input=%+v", in)
	}

	_, err := svc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "123456", FullName: "A"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Email: "A@B.CO", Password: "123456", FullName: "A"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, _, sessions := newTestService(fakeIssuer{})
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "secret1", FullName: "A"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, "A@b.co", "secret1")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)
	assert.Len(t, sessions.items, 2)

	_, err = svc.Login(ctx, "a@b.co", "wrong!!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "ghost@b.co", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogin_IssuerFailure(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "secret1", FullName: "A"})
	require.NoError(t, err)

	svc.issuer = fakeIssuer{fail: true}
	_, err = svc.Login(ctx, "a@b.co", "secret1")
	assert.Error(t, err)
}

func TestGetByID(t *testing.T) {
	svc, _, _ := newTestService(nil)

	_, err := svc.GetByID(context.Background(), " ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
