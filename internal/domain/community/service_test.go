package community

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-feeding/internal/domain/users"
	"smart-feeding/internal/ports/auth"
)

type testPosts struct {
	mu    sync.Mutex
	byID  map[string]Post
	order []string
}

func (r *testPosts) Create(_ context.Context, p Post) (Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Version = 1
	r.byID[p.ID] = p
	r.order = append(r.order, p.ID)
	return p, nil
}

func (r *testPosts) GetByID(_ context.Context, id string) (Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	// copia de los slices como haría un store que deserializa
	p.Likes = append([]string(nil), p.Likes...)
	p.Comments = append([]Comment(nil), p.Comments...)
	return p, nil
}

func (r *testPosts) List(_ context.Context) ([]Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Post{}
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *testPosts) Update(_ context.Context, p Post) (Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[p.ID]
	if !ok {
		return Post{}, ErrNotFound
	}
	if cur.Version != p.Version {
		return Post{}, ErrConflict
	}
	p.Version++
	r.byID[p.ID] = p
	return p, nil
}

type testQuestions struct {
	byID  map[string]VetQuestion
	order []string
}

func (r *testQuestions) Create(_ context.Context, q VetQuestion) (VetQuestion, error) {
	q.Version = 1
	r.byID[q.ID] = q
	r.order = append(r.order, q.ID)
	return q, nil
}

func (r *testQuestions) GetByID(_ context.Context, id string) (VetQuestion, error) {
	q, ok := r.byID[id]
	if !ok {
		return VetQuestion{}, ErrNotFound
	}
	return q, nil
}

func (r *testQuestions) List(_ context.Context) ([]VetQuestion, error) {
	out := []VetQuestion{}
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *testQuestions) Update(_ context.Context, q VetQuestion) (VetQuestion, error) {
	if r.byID[q.ID].Version != q.Version {
		return VetQuestion{}, ErrConflict
	}
	q.Version++
	r.byID[q.ID] = q
	return q, nil
}

type testDirectory map[string]users.User

func (d testDirectory) GetByID(_ context.Context, id string) (users.User, error) {
	u, ok := d[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

var (
	ana = auth.Claims{UserID: "u1", Role: auth.RoleUser}
	bob = auth.Claims{UserID: "u2"}
	vet = auth.Claims{UserID: "v1", Role: auth.RoleVet}
)

func newTestService() *Service {
	svc := NewService(
		&testPosts{byID: map[string]Post{}},
		&testQuestions{byID: map[string]VetQuestion{}},
		testDirectory{"u1": {ID: "u1", FullName: "Ana Pérez"}},
		nil,
	)
	base := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	var n int
	svc.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return svc
}

func TestCreatePost(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, ana, CreatePostInput{
		Title:   " Dieta BARF ",
		Content: "¿Alguien la probó?",
		Tags:    []string{"barf", " ", "barf", "perros"},
		Images:  []string{"a.png", "b.png", "c.png", "d.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dieta BARF", p.Title)
	assert.Equal(t, DefaultTopic, p.Topic)
	assert.Equal(t, []string{"barf", "perros"}, p.Tags)
	assert.Len(t, p.Images, MaxImages)
	assert.Equal(t, "Ana Pérez", p.Author.Name)

	other, err := svc.CreatePost(ctx, bob, CreatePostInput{Title: "Hola", Content: "nuevo acá", Topic: "salud"})
	require.NoError(t, err)
	assert.Equal(t, "Usuario", other.Author.Name)
	assert.Equal(t, auth.RoleUser, other.Author.Role)

	_, err = svc.CreatePost(ctx, ana, CreatePostInput{Title: "sin contenido"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreatePost(ctx, ana, CreatePostInput{Title: "x", Content: "y", Topic: "política"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreatePost(ctx, ana, CreatePostInput{Title: "Venta", Content: "algo ILEGAL"})
	require.ErrorIs(t, err, ErrModerated)
	assert.Contains(t, err.Error(), "'ilegal'")
}

func TestListPosts_FiltersAndOrder(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, _ := svc.CreatePost(ctx, ana, CreatePostInput{Title: "Croquetas", Content: "marcas", Topic: "alimentación"})
	second, _ := svc.CreatePost(ctx, ana, CreatePostInput{Title: "Paseos", Content: "largos", Topic: "entrenamiento", Tags: []string{"salud"}})
	third, _ := svc.CreatePost(ctx, bob, CreatePostInput{Title: "Vacunas", Content: "calendario", Topic: "salud"})

	all, err := svc.ListPosts(ctx, ListFilter{Topic: "all"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	health, err := svc.ListPosts(ctx, ListFilter{Topic: "salud"})
	require.NoError(t, err)
	assert.Len(t, health, 2)

	q, err := svc.ListPosts(ctx, ListFilter{Query: "CROQ"})
	require.NoError(t, err)
	require.Len(t, q, 1)
	assert.Equal(t, first.ID, q[0].ID)

	byTag, err := svc.ListPosts(ctx, ListFilter{Query: "salu", Topic: "entrenamiento"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, second.ID, byTag[0].ID)
}

func TestCommentsAndLikes(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	p, err := svc.CreatePost(ctx, ana, CreatePostInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	withComment, err := svc.AddComment(ctx, bob, p.ID, "  buena idea ")
	require.NoError(t, err)
	require.Len(t, withComment.Comments, 1)
	assert.Equal(t, "buena idea", withComment.Comments[0].Text)

	_, err = svc.AddComment(ctx, bob, p.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.AddComment(ctx, bob, p.ID, "puro odio")
	assert.ErrorIs(t, err, ErrModerated)
	_, err = svc.AddComment(ctx, bob, "missing", "hola")
	assert.ErrorIs(t, err, ErrNotFound)

	liked, err := svc.ToggleLike(ctx, bob, p.ID)
	require.NoError(t, err)
	assert.True(t, liked.LikedBy("u2"))
	assert.Len(t, liked.Likes, 1)

	unliked, err := svc.ToggleLike(ctx, bob, p.ID)
	require.NoError(t, err)
	assert.Empty(t, unliked.Likes)
}

func TestToggleLike_ConcurrentUsers(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	p, err := svc.CreatePost(ctx, ana, CreatePostInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	// el que pierde la carrera relee y reintenta
	var wg sync.WaitGroup
	for _, id := range []string{"a", "b"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _ = svc.ToggleLike(ctx, auth.Claims{UserID: id}, p.ID)
		}(id)
	}
	wg.Wait()

	got, err := svc.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, got.Likes)
}

func TestVetQuestions(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	q, err := svc.Ask(ctx, ana, "¿Cuánta agua debe tomar?", "")
	require.NoError(t, err)
	later, err := svc.Ask(ctx, bob, "¿Es normal que duerma tanto?", "foto.jpg")
	require.NoError(t, err)

	_, err = svc.Ask(ctx, ana, " ", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Reply(ctx, ana, q.ID, "mucha")
	assert.ErrorIs(t, err, ErrForbidden)

	replied, err := svc.Reply(ctx, vet, q.ID, "Unos 50 ml por kg al día")
	require.NoError(t, err)
	require.NotNil(t, replied.Reply)
	assert.Equal(t, auth.RoleVet, replied.Reply.Author.Role)

	_, err = svc.Reply(ctx, vet, "missing", "hola")
	assert.ErrorIs(t, err, ErrNotFound)

	items, err := svc.ListQuestions(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, later.ID, items[0].ID)
	assert.NotNil(t, items[1].Reply)
}

func TestModerate(t *testing.T) {
	assert.NoError(t, Moderate("todo bien", ""))
	err := Moderate("hay Violencia Extrema acá")
	require.ErrorIs(t, err, ErrModerated)
	assert.Contains(t, err.Error(), "violencia extrema")
}
