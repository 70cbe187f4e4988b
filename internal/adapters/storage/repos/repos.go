// Package repos implementa los repositorios de cada dominio sobre un
// docstore.Backend. Acá se traducen los errores del store a los de dominio.
package repos

import (
	"errors"
	"fmt"

	"smart-feeding/internal/adapters/storage/docstore"
	"smart-feeding/internal/domain/community"
	"smart-feeding/internal/domain/pets"
	"smart-feeding/internal/domain/quiz"
	"smart-feeding/internal/domain/records"
	"smart-feeding/internal/domain/users"
)

const (
	kindUser        = "user"
	kindSession     = "session"
	kindPet         = "pet"
	kindRecord      = "record"
	kindQuizResult  = "quiz_result"
	kindSavedPlan   = "saved_plan"
	kindPost        = "post"
	kindVetQuestion = "vet_question"
)

var (
	_ users.Repository             = (*UserRepo)(nil)
	_ users.SessionRepository      = (*SessionRepo)(nil)
	_ pets.Repository              = (*PetRepo)(nil)
	_ records.Repository           = (*RecordRepo)(nil)
	_ quiz.Repository              = (*QuizRepo)(nil)
	_ quiz.SavedPlanRepository     = (*SavedPlanRepo)(nil)
	_ community.PostRepository     = (*PostRepo)(nil)
	_ community.QuestionRepository = (*QuestionRepo)(nil)
)

// Set agrupa todos los repos sobre el mismo backend.
type Set struct {
	Users      *UserRepo
	Sessions   *SessionRepo
	Pets       *PetRepo
	Records    *RecordRepo
	Quizzes    *QuizRepo
	SavedPlans *SavedPlanRepo
	Posts      *PostRepo
	Questions  *QuestionRepo
}

func New(b docstore.Backend) *Set {
	return &Set{
		Users:      NewUserRepo(b),
		Sessions:   NewSessionRepo(b),
		Pets:       NewPetRepo(b),
		Records:    NewRecordRepo(b),
		Quizzes:    NewQuizRepo(b),
		SavedPlans: NewSavedPlanRepo(b),
		Posts:      NewPostRepo(b),
		Questions:  NewQuestionRepo(b),
	}
}

// translate cambia los errores del store por los del dominio; nil deja el original.
func translate(err, notFound, conflict, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, docstore.ErrNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, docstore.ErrConflict) && conflict != nil:
		return conflict
	case errors.Is(err, docstore.ErrDuplicate) && duplicate != nil:
		return duplicate
	default:
		return fmt.Errorf("storage: %w", err)
	}
}
