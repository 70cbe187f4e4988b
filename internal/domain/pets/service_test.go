package pets

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-feeding/internal/domain/nutrition"
)

// testRepo versiona como el store real: Create pone 1 y Update exige la versión leída.
type testRepo struct {
	mu    sync.Mutex
	byID  map[string]Pet
	order []string

	// conflicts fuerza N ErrConflict en Update antes de aceptar.
	conflicts int
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Pet{}}
}

func (r *testRepo) Create(_ context.Context, p Pet) (Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Version = 1
	r.byID[p.ID] = p
	r.order = append(r.order, p.ID)
	return p, nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) ListByOwner(_ context.Context, owner string) ([]Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Pet{}
	for _, id := range r.order {
		if p, ok := r.byID[id]; ok && p.OwnerUserID == owner {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) List(_ context.Context) ([]Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Pet{}
	for _, id := range r.order {
		if p, ok := r.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) Update(_ context.Context, p Pet) (Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[p.ID]
	if !ok {
		return Pet{}, ErrNotFound
	}
	if r.conflicts > 0 {
		r.conflicts--
		cur.Version++
		r.byID[p.ID] = cur
		return Pet{}, ErrConflict
	}
	if cur.Version != p.Version {
		return Pet{}, ErrConflict
	}
	p.Version++
	r.byID[p.ID] = p
	return p, nil
}

func (r *testRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc, repo
}

func createPet(t *testing.T, svc *Service, owner string) Pet {
	t.Helper()
	p, err := svc.Create(context.Background(), owner, CreateInput{
		Name: " Firulais ", Species: "perro", Breed: "Beagle", AgeYears: 3, WeightKg: 12.5,
	})
	require.NoError(t, err)
	return p
}

func TestCreate_NormalizesAndValidates(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := createPet(t, svc, "u1")
	assert.Equal(t, "Firulais", p.Name)
	assert.Equal(t, nutrition.SpeciesDog, p.Species)
	assert.Equal(t, int64(1), p.Version)
	assert.False(t, p.HasRecommendations)

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"missing name", CreateInput{Species: "dog", Breed: "Beagle"}},
		{"missing breed", CreateInput{Name: "Michi", Species: "cat"}},
		{"unknown species", CreateInput{Name: "Piolín", Species: "bird", Breed: "Canario"}},
		{"negative weight", CreateInput{Name: "Michi", Species: "cat", Breed: "Persa", WeightKg: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "u1", tc.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err := svc.Create(ctx, " ", CreateInput{Name: "Michi", Species: "cat", Breed: "Persa"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetOwned(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p := createPet(t, svc, "u1")

	got, err := svc.GetOwned(ctx, p.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.GetOwned(ctx, p.ID, "u2")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetOwned(ctx, "nope", "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p := createPet(t, svc, "u1")

	name := "Toby"
	weight := 14.0
	updated, err := svc.UpdateProfile(ctx, p.ID, "u1", UpdateProfileInput{Name: &name, WeightKg: &weight})
	require.NoError(t, err)
	assert.Equal(t, "Toby", updated.Name)
	assert.Equal(t, 14.0, updated.WeightKg)
	assert.Equal(t, "Beagle", updated.Breed)
	assert.Equal(t, int64(2), updated.Version)

	t.Run("stale expected version", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, p.ID, "u1", UpdateProfileInput{Name: &name, ExpectedVersion: 1})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("matching expected version", func(t *testing.T) {
		notes := "come rápido"
		got, err := svc.UpdateProfile(ctx, p.ID, "u1", UpdateProfileInput{Notes: &notes, ExpectedVersion: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), got.Version)
	})

	t.Run("invalid species", func(t *testing.T) {
		sp := "hamster"
		_, err := svc.UpdateProfile(ctx, p.ID, "u1", UpdateProfileInput{Species: &sp})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("not owner", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, p.ID, "u2", UpdateProfileInput{Name: &name})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestSavePlan_RetriesOnConflict(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	p := createPet(t, svc, "u1")

	rec := nutrition.Generate(nutrition.Answers{}, p.Profile())

	repo.conflicts = 2
	saved, err := svc.SavePlan(ctx, p.ID, "u1", rec)
	require.NoError(t, err)
	require.NotNil(t, saved.SavedPlan)
	assert.Equal(t, rec.DietPlan, saved.SavedPlan.DietPlan)
	assert.True(t, saved.HasRecommendations)
	require.NotNil(t, saved.LastSavedPlanAt)

	repo.conflicts = maxRetries
	_, err = svc.SavePlan(ctx, p.ID, "u1", rec)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.SavePlan(ctx, p.ID, "u2", rec)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMarkQuizCompleted(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p := createPet(t, svc, "u1")

	at := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	got, err := svc.MarkQuizCompleted(ctx, p.ID, at)
	require.NoError(t, err)
	assert.True(t, got.HasRecommendations)
	require.NotNil(t, got.LastQuizAt)
	assert.True(t, at.Equal(*got.LastQuizAt))

	_, err = svc.MarkQuizCompleted(ctx, "missing", at)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p := createPet(t, svc, "u1")

	assert.ErrorIs(t, svc.Delete(ctx, p.ID, "u2"), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, p.ID, "u1"))

	items, err := svc.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

type testDependent struct {
	deleted []string
	err     error
}

func (d *testDependent) DeleteByPet(_ context.Context, petID string) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	d.deleted = append(d.deleted, petID)
	return 1, nil
}

func TestDelete_CascadesToDependents(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	dep := &testDependent{}
	svc.OnDelete(dep)

	p := createPet(t, svc, "u1")
	require.ErrorIs(t, svc.Delete(ctx, p.ID, "u2"), ErrForbidden)
	assert.Empty(t, dep.deleted)

	require.NoError(t, svc.Delete(ctx, p.ID, "u1"))
	assert.Equal(t, []string{p.ID}, dep.deleted)

	failing := &testDependent{err: errors.New("disk full")}
	svc2, _ := newTestService()
	svc2.OnDelete(failing)
	q := createPet(t, svc2, "u1")
	require.Error(t, svc2.Delete(ctx, q.ID, "u1"))

	_, err := svc2.GetOwned(ctx, q.ID, "u1")
	assert.NoError(t, err, "pet must survive a failed cascade")
}

func TestBreeds(t *testing.T) {
	dogs := Breeds(nutrition.SpeciesDog)
	assert.Contains(t, dogs, "Labrador Retriever")
	dogs[0] = "mutated"
	assert.Equal(t, "Labrador Retriever", Breeds(nutrition.SpeciesDog)[0])
	assert.Empty(t, Breeds("bird"))
}
