package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"smart-feeding/internal/domain/nutrition"
	"smart-feeding/internal/domain/pets"
	"smart-feeding/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("quiz result not found")
	ErrForbidden    = errors.New("forbidden")
	ErrNoSavedPlan  = errors.New("no saved plan")
)

// PetAccess es lo que quiz necesita de pets.
type PetAccess interface {
	GetOwned(ctx context.Context, petID, userID string) (pets.Pet, error)
	MarkQuizCompleted(ctx context.Context, petID string, at time.Time) (pets.Pet, error)
	SavePlan(ctx context.Context, petID, userID string, rec nutrition.Recommendation) (pets.Pet, error)
}

// Observer recibe cada recomendación generada (métricas).
type Observer interface {
	ObserveRecommendation(dietType string)
}

type Service struct {
	repo  Repository
	saved SavedPlanRepository
	pets  PetAccess
	obs   Observer
	log   logger.Logger
	now   func() time.Time
}

func NewService(repo Repository, saved SavedPlanRepository, petAccess PetAccess, obs Observer, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:  repo,
		saved: saved,
		pets:  petAccess,
		obs:   obs,
		log:   log.With(map[string]any{"module": "quiz"}),
		now:   time.Now,
	}
}

// Preview genera la recomendación sin guardar nada.
func (s *Service) Preview(a nutrition.Answers, p nutrition.Profile) (nutrition.Recommendation, error) {
	a = a.Normalize()
	if err := a.Validate(); err != nil {
		return nutrition.Recommendation{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	rec := nutrition.Generate(a, p)
	s.observe(rec)
	return rec, nil
}

// Submit normaliza las respuestas, genera la recomendación y la guarda.
// Si hay mascota, tiene que ser del usuario y queda marcada con el quiz.
func (s *Service) Submit(ctx context.Context, userID string, a nutrition.Answers) (Result, error) {
	if userID == "" {
		return Result{}, ErrInvalidInput
	}
	a = a.Normalize()
	if err := a.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	var profile nutrition.Profile
	if a.PetID != "" {
		p, err := s.pets.GetOwned(ctx, a.PetID, userID)
		if err != nil {
			return Result{}, err
		}
		profile = p.Profile()
	}

	now := s.now()
	res := Result{
		ID:             uuid.NewString(),
		UserID:         userID,
		PetID:          a.PetID,
		Answers:        a,
		Recommendation: nutrition.Generate(a, profile),
		CompletedAt:    now,
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return Result{}, err
	}
	s.observe(res.Recommendation)

	if res.PetID != "" {
		if _, err := s.pets.MarkQuizCompleted(ctx, res.PetID, now); err != nil {
			// el resultado ya quedó guardado
			s.log.Warn("mark quiz completed failed", map[string]any{"pet_id": res.PetID, "error": err})
		}
	}

	s.log.Info("quiz completed", map[string]any{
		"result_id": res.ID,
		"user_id":   userID,
		"diet_type": res.Recommendation.DietPlan.Type,
	})
	return res, nil
}

func (s *Service) GetResult(ctx context.Context, userID, id string) (Result, error) {
	if id == "" {
		return Result{}, ErrInvalidInput
	}
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if res.UserID != userID {
		return Result{}, ErrForbidden
	}
	return res, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Result, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) List(ctx context.Context) ([]Result, error) {
	return s.repo.List(ctx)
}

// Latest devuelve el último cuestionario completado por el usuario.
func (s *Service) Latest(ctx context.Context, userID string) (Result, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if len(items) == 0 {
		return Result{}, ErrNotFound
	}
	return items[len(items)-1], nil
}

// SavePlan copia la recomendación al plan de la mascota, o al plan propio
// del usuario si el cuestionario no tenía mascota.
func (s *Service) SavePlan(ctx context.Context, userID, resultID string) (Result, error) {
	res, err := s.GetResult(ctx, userID, resultID)
	if err != nil {
		return Result{}, err
	}

	now := s.now()
	if res.PetID != "" {
		if _, err := s.pets.SavePlan(ctx, res.PetID, userID, res.Recommendation); err != nil {
			return Result{}, err
		}
	} else {
		if err := s.saved.Save(ctx, SavedPlan{
			UserID:         userID,
			ResultID:       res.ID,
			Recommendation: res.Recommendation,
			SavedAt:        now,
		}); err != nil {
			return Result{}, err
		}
	}

	res.SavedAt = &now
	if err := s.repo.Update(ctx, res); err != nil {
		return Result{}, err
	}
	return res, nil
}

// SavedPlan es el plan propio del usuario (cuestionarios sin mascota).
func (s *Service) SavedPlan(ctx context.Context, userID string) (SavedPlan, error) {
	p, err := s.saved.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return SavedPlan{}, ErrNoSavedPlan
	}
	return p, err
}

func (s *Service) observe(rec nutrition.Recommendation) {
	if s.obs != nil {
		s.obs.ObserveRecommendation(rec.DietPlan.Type)
	}
}
