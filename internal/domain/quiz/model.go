package quiz

import (
	"time"

	"smart-feeding/internal/domain/nutrition"
)

// Result es una corrida completa del cuestionario. No se modifica salvo SavedAt.
type Result struct {
	ID     string
	UserID string
	// PetID vacío = cuestionario sin mascota asociada.
	PetID string

	Answers        nutrition.Answers
	Recommendation nutrition.Recommendation

	CompletedAt time.Time
	SavedAt     *time.Time
}

// SavedPlan es el plan vigente del usuario cuando no hay mascota asociada.
type SavedPlan struct {
	UserID         string
	ResultID       string
	Recommendation nutrition.Recommendation
	SavedAt        time.Time
}
