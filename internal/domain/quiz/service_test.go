package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-feeding/internal/domain/nutrition"
	"smart-feeding/internal/domain/pets"
)

type testRepo struct {
	byID  map[string]Result
	order []string
}

func newTestRepo() *testRepo { return &testRepo{byID: map[string]Result{}} }

func (r *testRepo) Create(_ context.Context, res Result) error {
	r.byID[res.ID] = res
	r.order = append(r.order, res.ID)
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Result, error) {
	res, ok := r.byID[id]
	if !ok {
		return Result{}, ErrNotFound
	}
	return res, nil
}

func (r *testRepo) ListByUser(_ context.Context, userID string) ([]Result, error) {
	out := []Result{}
	for _, id := range r.order {
		if r.byID[id].UserID == userID {
			out = append(out, r.byID[id])
		}
	}
	return out, nil
}

func (r *testRepo) List(_ context.Context) ([]Result, error) {
	out := []Result{}
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *testRepo) Update(_ context.Context, res Result) error {
	if _, ok := r.byID[res.ID]; !ok {
		return ErrNotFound
	}
	r.byID[res.ID] = res
	return nil
}

type testSaved map[string]SavedPlan

func (s testSaved) Save(_ context.Context, p SavedPlan) error {
	s[p.UserID] = p
	return nil
}

func (s testSaved) Get(_ context.Context, userID string) (SavedPlan, error) {
	p, ok := s[userID]
	if !ok {
		return SavedPlan{}, ErrNotFound
	}
	return p, nil
}

type testPets struct {
	pets      map[string]pets.Pet
	completed map[string]time.Time
	saved     map[string]nutrition.Recommendation
}

func (p *testPets) GetOwned(_ context.Context, petID, userID string) (pets.Pet, error) {
	pet, ok := p.pets[petID]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	if pet.OwnerUserID != userID {
		return pets.Pet{}, pets.ErrForbidden
	}
	return pet, nil
}

func (p *testPets) MarkQuizCompleted(_ context.Context, petID string, at time.Time) (pets.Pet, error) {
	p.completed[petID] = at
	return p.pets[petID], nil
}

func (p *testPets) SavePlan(ctx context.Context, petID, userID string, rec nutrition.Recommendation) (pets.Pet, error) {
	pet, err := p.GetOwned(ctx, petID, userID)
	if err != nil {
		return pets.Pet{}, err
	}
	p.saved[petID] = rec
	return pet, nil
}

type countingObserver map[string]int

func (c countingObserver) ObserveRecommendation(dietType string) { c[dietType]++ }

type fixture struct {
	svc   *Service
	repo  *testRepo
	saved testSaved
	pets  *testPets
	obs   countingObserver
}

func newFixture() fixture {
	f := fixture{
		repo:  newTestRepo(),
		saved: testSaved{},
		pets: &testPets{
			pets: map[string]pets.Pet{
				"p1": {ID: "p1", OwnerUserID: "u1", Species: nutrition.SpeciesCat, WeightKg: 4},
			},
			completed: map[string]time.Time{},
			saved:     map[string]nutrition.Recommendation{},
		},
		obs: countingObserver{},
	}
	f.svc = NewService(f.repo, f.saved, f.pets, f.obs, nil)
	f.svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestSubmit_UsesPetProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.Submit(ctx, "u1", nutrition.Answers{
		PetID:            " p1 ",
		ActivityLevel:    "Active",
		HealthConditions: []nutrition.HealthCondition{"dental"},
		EatingHabits:     "normal",
		FoodType:         "wet",
	})
	require.NoError(t, err)

	// 4kg * 30 * 1.2 = 144
	assert.Equal(t, 144, res.Recommendation.DietPlan.Calories)
	assert.Equal(t, "Purina Pro Plan Delicate", res.Recommendation.Products[0].Name)
	assert.Equal(t, "p1", res.PetID)
	assert.Equal(t, nutrition.ActivityActive, res.Answers.ActivityLevel)
	assert.Contains(t, f.pets.completed, "p1")
	assert.Equal(t, 1, f.obs[nutrition.DietBalanced])

	stored, err := f.svc.GetResult(ctx, "u1", res.ID)
	require.NoError(t, err)
	assert.Equal(t, res, stored)
}

func TestSubmit_Errors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, "u1", nutrition.Answers{ActivityLevel: "lazy"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, nutrition.ErrUnknownVariant)

	_, err = f.svc.Submit(ctx, "u2", nutrition.Answers{PetID: "p1"})
	assert.ErrorIs(t, err, pets.ErrForbidden)

	_, err = f.svc.Submit(ctx, "u1", nutrition.Answers{PetID: "ghost"})
	assert.ErrorIs(t, err, pets.ErrNotFound)

	_, err = f.svc.Submit(ctx, "", nutrition.Answers{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Empty(t, f.repo.order)
}

func TestLatestAndList(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Latest(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := f.svc.Submit(ctx, "u1", nutrition.Answers{})
	require.NoError(t, err)
	second, err := f.svc.Submit(ctx, "u1", nutrition.Answers{EatingHabits: "voracious"})
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, "u2", nutrition.Answers{})
	require.NoError(t, err)

	latest, err := f.svc.Latest(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	items, err := f.svc.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)

	_, err = f.svc.GetResult(ctx, "u2", first.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSavePlan(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	t.Run("with pet", func(t *testing.T) {
		res, err := f.svc.Submit(ctx, "u1", nutrition.Answers{PetID: "p1"})
		require.NoError(t, err)

		saved, err := f.svc.SavePlan(ctx, "u1", res.ID)
		require.NoError(t, err)
		require.NotNil(t, saved.SavedAt)
		assert.Equal(t, res.Recommendation, f.pets.saved["p1"])

		_, err = f.svc.SavedPlan(ctx, "u1")
		assert.ErrorIs(t, err, ErrNoSavedPlan)
	})

	t.Run("without pet", func(t *testing.T) {
		res, err := f.svc.Submit(ctx, "u1", nutrition.Answers{FoodType: "dry"})
		require.NoError(t, err)

		_, err = f.svc.SavePlan(ctx, "u1", res.ID)
		require.NoError(t, err)

		plan, err := f.svc.SavedPlan(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, res.ID, plan.ResultID)
		assert.Equal(t, res.Recommendation, plan.Recommendation)
	})

	t.Run("someone else's result", func(t *testing.T) {
		res, err := f.svc.Submit(ctx, "u1", nutrition.Answers{})
		require.NoError(t, err)
		_, err = f.svc.SavePlan(ctx, "u2", res.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestPreview_DoesNotPersist(t *testing.T) {
	f := newFixture()

	rec, err := f.svc.Preview(nutrition.Answers{ActivityLevel: "very-active"}, nutrition.Profile{WeightKg: 10})
	require.NoError(t, err)
	assert.Equal(t, nutrition.DietHighProtein, rec.DietPlan.Type)
	assert.Equal(t, 420, rec.DietPlan.Calories)
	assert.Empty(t, f.repo.order)
	assert.Equal(t, 1, f.obs[nutrition.DietHighProtein])

	_, err = f.svc.Preview(nutrition.Answers{FoodType: "raw"}, nutrition.Profile{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, nutrition.ErrUnknownVariant)
}
