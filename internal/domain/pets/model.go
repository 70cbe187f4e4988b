package pets

import (
	"time"

	"smart-feeding/internal/domain/nutrition"
)

// Pet representa el perfil de una mascota y su último plan guardado.
type Pet struct {
	ID          string
	OwnerUserID string

	Name    string
	Species nutrition.Species // dog, cat
	Breed   string

	// 0 = no informado.
	AgeYears float64
	WeightKg float64

	SpecialConditions string
	Notes             string

	HasRecommendations bool
	LastQuizAt         *time.Time
	SavedPlan          *nutrition.Recommendation
	LastSavedPlanAt    *time.Time

	// Version la asigna el store; toda actualización debe traer la leída.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile es lo que el generador de recomendaciones necesita de la mascota.
func (p Pet) Profile() nutrition.Profile {
	return nutrition.Profile{Species: p.Species, WeightKg: p.WeightKg}
}

var breeds = map[nutrition.Species][]string{
	nutrition.SpeciesDog: {
		"Labrador Retriever", "Pastor Alemán", "Golden Retriever", "Bulldog Francés", "Beagle",
		"Chihuahua", "Poodle", "Rottweiler", "Yorkshire Terrier", "Boxer", "Otra raza",
	},
	nutrition.SpeciesCat: {
		"Siamés", "Persa", "Maine Coon", "Bengalí", "Ragdoll", "Esfinge",
		"British Shorthair", "Scottish Fold", "Angora Turco", "Otra raza",
	},
}

// Breeds devuelve el catálogo de razas sugeridas para la especie.
func Breeds(s nutrition.Species) []string {
	return append([]string(nil), breeds[s]...)
}
