package pets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"smart-feeding/internal/domain/nutrition"
	"smart-feeding/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("pet not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("pet was modified concurrently")
)

// maxRetries para las escrituras internas (quiz, plan) que releen y reintentan.
const maxRetries = 3

// Dependent es un dato que cuelga de la mascota y se borra con ella.
type Dependent interface {
	DeleteByPet(ctx context.Context, petID string) (int, error)
}

type Service struct {
	repo       Repository
	dependents []Dependent
	log        logger.Logger
	now        func() time.Time
}

func NewService(repo Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		log:  log.With(map[string]any{"module": "pets"}),
		now:  time.Now,
	}
}

type CreateInput struct {
	Name              string
	Species           string
	Breed             string
	AgeYears          float64
	WeightKg          float64
	SpecialConditions string
	Notes             string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Breed) == "" {
		return Pet{}, ErrInvalidInput
	}
	if !nutrition.KnownSpecies(in.Species) {
		return Pet{}, ErrInvalidInput
	}
	if !validMeasure(in.AgeYears) || !validMeasure(in.WeightKg) {
		return Pet{}, ErrInvalidInput
	}

	now := s.now()
	p := Pet{
		ID:                uuid.NewString(),
		OwnerUserID:       ownerUserID,
		Name:              strings.TrimSpace(in.Name),
		Species:           nutrition.ParseSpecies(in.Species),
		Breed:             strings.TrimSpace(in.Breed),
		AgeYears:          in.AgeYears,
		WeightKg:          in.WeightKg,
		SpecialConditions: strings.TrimSpace(in.SpecialConditions),
		Notes:             strings.TrimSpace(in.Notes),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Pet{}, err
	}
	s.log.Info("pet created", map[string]any{"pet_id": created.ID, "owner_id": ownerUserID})
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	if strings.TrimSpace(id) == "" {
		return Pet{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// GetOwned devuelve la mascota solo si pertenece a userID.
func (s *Service) GetOwned(ctx context.Context, petID, userID string) (Pet, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerUserID != userID {
		return Pet{}, ErrForbidden
	}
	return p, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

func (s *Service) List(ctx context.Context) ([]Pet, error) {
	return s.repo.List(ctx)
}

// UpdateProfileInput: punteros para PATCH real, nil = no tocar.
type UpdateProfileInput struct {
	Name              *string
	Species           *string
	Breed             *string
	AgeYears          *float64
	WeightKg          *float64
	SpecialConditions *string
	Notes             *string

	// ExpectedVersion != 0 exige que la mascota no haya cambiado desde esa versión.
	ExpectedVersion int64
}

func (s *Service) UpdateProfile(ctx context.Context, petID, userID string, in UpdateProfileInput) (Pet, error) {
	p, err := s.GetOwned(ctx, petID, userID)
	if err != nil {
		return Pet{}, err
	}
	if in.ExpectedVersion != 0 && in.ExpectedVersion != p.Version {
		return Pet{}, ErrConflict
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Species != nil {
		if !nutrition.KnownSpecies(*in.Species) {
			return Pet{}, ErrInvalidInput
		}
		p.Species = nutrition.ParseSpecies(*in.Species)
	}
	if in.Breed != nil {
		if strings.TrimSpace(*in.Breed) == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.AgeYears != nil {
		if !validMeasure(*in.AgeYears) {
			return Pet{}, ErrInvalidInput
		}
		p.AgeYears = *in.AgeYears
	}
	if in.WeightKg != nil {
		if !validMeasure(*in.WeightKg) {
			return Pet{}, ErrInvalidInput
		}
		p.WeightKg = *in.WeightKg
	}
	if in.SpecialConditions != nil {
		p.SpecialConditions = strings.TrimSpace(*in.SpecialConditions)
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}

	p.UpdatedAt = s.now()
	return s.repo.Update(ctx, p)
}

// OnDelete registra datos dependientes que Delete borra antes que la mascota.
func (s *Service) OnDelete(d Dependent) {
	s.dependents = append(s.dependents, d)
}

// Delete borra primero los dependientes: si alguno falla la mascota queda y
// se puede reintentar.
func (s *Service) Delete(ctx context.Context, petID, userID string) error {
	if _, err := s.GetOwned(ctx, petID, userID); err != nil {
		return err
	}
	for _, d := range s.dependents {
		if _, err := d.DeleteByPet(ctx, petID); err != nil {
			return fmt.Errorf("delete pet %s dependents: %w", petID, err)
		}
	}
	if err := s.repo.Delete(ctx, petID); err != nil {
		return err
	}
	s.log.Info("pet deleted", map[string]any{"pet_id": petID})
	return nil
}

// MarkQuizCompleted registra que la mascota ya tiene recomendación.
func (s *Service) MarkQuizCompleted(ctx context.Context, petID string, at time.Time) (Pet, error) {
	return s.mutate(ctx, petID, func(p *Pet) {
		p.HasRecommendations = true
		p.LastQuizAt = &at
	})
}

// SavePlan guarda la recomendación como plan vigente de la mascota.
func (s *Service) SavePlan(ctx context.Context, petID, userID string, rec nutrition.Recommendation) (Pet, error) {
	if _, err := s.GetOwned(ctx, petID, userID); err != nil {
		return Pet{}, err
	}
	return s.mutate(ctx, petID, func(p *Pet) {
		now := s.now()
		plan := rec
		p.SavedPlan = &plan
		p.HasRecommendations = true
		p.LastSavedPlanAt = &now
	})
}

// mutate relee y reintenta ante ErrConflict; el cambio se aplica sobre la versión vigente.
func (s *Service) mutate(ctx context.Context, petID string, apply func(*Pet)) (Pet, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		p, err := s.GetByID(ctx, petID)
		if err != nil {
			return Pet{}, err
		}
		apply(&p)
		p.UpdatedAt = s.now()

		updated, err := s.repo.Update(ctx, p)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, ErrConflict) {
			return Pet{}, err
		}
		lastErr = err
		s.log.Debug("retrying pet update", map[string]any{"pet_id": petID, "attempt": attempt + 1})
	}
	return Pet{}, lastErr
}

func validMeasure(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
