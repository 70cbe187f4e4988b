package records

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"smart-feeding/internal/domain/history"
	"smart-feeding/internal/domain/pets"
	"smart-feeding/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// PetAccess es lo que records necesita de pets para validar al dueño.
type PetAccess interface {
	GetOwned(ctx context.Context, petID, userID string) (pets.Pet, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error)
}

type Service struct {
	repo Repository
	pets PetAccess
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, petAccess PetAccess, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		pets: petAccess,
		log:  log.With(map[string]any{"module": "records"}),
		now:  time.Now,
	}
}

// Los valores numéricos llegan como texto y pasan por history.ParseQuantity.
type WeightInput struct {
	Date   string
	Weight string
}

type ExpenseInput struct {
	Date   string
	Type   string
	Amount string
}

type FeedingInput struct {
	Date     string
	FoodType string
	Grams    string
}

type MedicalNoteInput struct {
	Date string
	Note string
}

func (s *Service) AddWeight(ctx context.Context, userID, petID string, in WeightInput) (Record, error) {
	w, err := history.ParseQuantity(in.Weight)
	if err != nil {
		return Record{}, fmt.Errorf("%w: weight: %v", ErrInvalidInput, err)
	}
	return s.add(ctx, userID, petID, in.Date, Record{Kind: KindWeight, Weight: w})
}

func (s *Service) AddExpense(ctx context.Context, userID, petID string, in ExpenseInput) (Record, error) {
	amount, err := history.ParseQuantity(in.Amount)
	if err != nil {
		return Record{}, fmt.Errorf("%w: amount: %v", ErrInvalidInput, err)
	}
	return s.add(ctx, userID, petID, in.Date, Record{
		Kind:        KindExpense,
		Amount:      amount,
		ExpenseType: orDefault(in.Type, DefaultExpenseType),
	})
}

func (s *Service) AddFeeding(ctx context.Context, userID, petID string, in FeedingInput) (Record, error) {
	grams, err := history.ParseQuantity(in.Grams)
	if err != nil {
		return Record{}, fmt.Errorf("%w: grams: %v", ErrInvalidInput, err)
	}
	return s.add(ctx, userID, petID, in.Date, Record{
		Kind:     KindFeeding,
		Grams:    grams,
		FoodType: orDefault(in.FoodType, DefaultFoodType),
	})
}

func (s *Service) AddMedicalNote(ctx context.Context, userID, petID string, in MedicalNoteInput) (Record, error) {
	note := strings.TrimSpace(in.Note)
	if note == "" {
		return Record{}, fmt.Errorf("%w: note is required", ErrInvalidInput)
	}
	return s.add(ctx, userID, petID, in.Date, Record{Kind: KindMedicalNote, Note: note})
}

func (s *Service) add(ctx context.Context, userID, petID, date string, rec Record) (Record, error) {
	if _, err := s.pets.GetOwned(ctx, petID, userID); err != nil {
		return Record{}, err
	}

	now := s.now()
	date = strings.TrimSpace(date)
	if date == "" {
		date = now.UTC().Format(time.RFC3339)
	} else if _, err := history.ParseDate(date); err != nil {
		return Record{}, fmt.Errorf("%w: date must be YYYY-MM-DD or RFC3339", ErrInvalidInput)
	}

	rec.ID = uuid.NewString()
	rec.PetID = petID
	rec.Date = date
	rec.CreatedBy = userID
	rec.RecordedAt = now

	if err := s.repo.Create(ctx, rec); err != nil {
		return Record{}, err
	}
	s.log.Debug("record added", map[string]any{"pet_id": petID, "kind": string(rec.Kind)})
	return rec, nil
}

// ListByPet filtra por kind si no es vacío. Los pesos salen ordenados por fecha.
func (s *Service) ListByPet(ctx context.Context, userID, petID string, kind Kind) ([]Record, error) {
	if _, err := s.pets.GetOwned(ctx, petID, userID); err != nil {
		return nil, err
	}
	all, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(all))
	for _, r := range all {
		if kind == "" || r.Kind == kind {
			out = append(out, r)
		}
	}
	if kind == KindWeight {
		sortByDate(out)
	}
	return out, nil
}

func (s *Service) Stats(ctx context.Context, userID, petID string, period history.Period) (Stats, error) {
	if _, err := s.pets.GetOwned(ctx, petID, userID); err != nil {
		return Stats{}, err
	}
	all, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return Stats{}, err
	}

	entries := make([]history.Entry, 0, len(all))
	for _, r := range all {
		if e, ok := r.Entry(); ok {
			entries = append(entries, e)
		}
	}

	st := Stats{Report: history.Aggregate(entries, period)}
	if last, ok := history.LastDate(entries, history.KindWeight); ok {
		st.LastUpdate = last
	}
	return st, nil
}

// DayRecords junta pesos, gastos y comidas de todas las mascotas del usuario
// cuya fecha cae en el día indicado (YYYY-MM-DD).
func (s *Service) DayRecords(ctx context.Context, userID, date string) ([]DayRecord, error) {
	day, ok := history.DayKey(date)
	if !ok {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}

	owned, err := s.pets.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := []DayRecord{}
	for _, p := range owned {
		all, err := s.repo.ListByPet(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		for _, r := range all {
			if r.Kind == KindMedicalNote {
				continue
			}
			if k, ok := history.DayKey(r.Date); ok && k == day {
				out = append(out, DayRecord{Record: r, PetName: p.Name})
			}
		}
	}
	return out, nil
}

// DeleteByPet lo dispara pets al borrar la mascota.
func (s *Service) DeleteByPet(ctx context.Context, petID string) (int, error) {
	n, err := s.repo.DeleteByPet(ctx, petID)
	if err != nil {
		return n, err
	}
	s.log.Info("pet records deleted", map[string]any{"pet_id": petID, "count": n})
	return n, nil
}

// History devuelve el historial completo sin chequear dueño (exportación admin).
func (s *Service) History(ctx context.Context, petID string) ([]Record, error) {
	return s.repo.ListByPet(ctx, petID)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// sortByDate es estable; las fechas ilegibles quedan al final.
func sortByDate(rs []Record) {
	sort.SliceStable(rs, func(i, j int) bool {
		ti, erri := history.ParseDate(rs[i].Date)
		tj, errj := history.ParseDate(rs[j].Date)
		switch {
		case erri != nil:
			return false
		case errj != nil:
			return true
		}
		return ti.Before(tj)
	})
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
