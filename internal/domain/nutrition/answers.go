package nutrition

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownVariant = errors.New("unknown answer value")
)

var (
	knownActivity = map[ActivityLevel]struct{}{
		ActivitySedentary: {}, ActivityModerate: {}, ActivityActive: {}, ActivityVeryActive: {},
	}
	knownConditions = map[HealthCondition]struct{}{
		ConditionOverweight: {}, ConditionAllergies: {}, ConditionDigestive: {},
		ConditionJoint: {}, ConditionDental: {}, ConditionRenal: {},
	}
	knownHabits = map[EatingHabits]struct{}{
		HabitsPicky: {}, HabitsNormal: {}, HabitsVoracious: {},
	}
	knownFoodTypes = map[FoodType]struct{}{
		FoodDry: {}, FoodWet: {}, FoodMixed: {}, FoodHomemade: {},
	}
)

// Normalize limpia las respuestas: trim + minúsculas y condiciones sin duplicados
// (se conserva el orden de la primera aparición).
func (a Answers) Normalize() Answers {
	out := Answers{
		PetID:         strings.TrimSpace(a.PetID),
		ActivityLevel: ActivityLevel(clean(string(a.ActivityLevel))),
		EatingHabits:  EatingHabits(clean(string(a.EatingHabits))),
		FoodType:      FoodType(clean(string(a.FoodType))),
	}

	seen := map[HealthCondition]struct{}{}
	out.HealthConditions = make([]HealthCondition, 0, len(a.HealthConditions))
	for _, raw := range a.HealthConditions {
		c := HealthCondition(clean(string(raw)))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out.HealthConditions = append(out.HealthConditions, c)
	}
	return out
}

// Validate es el chequeo estricto para los bordes (HTTP, CLI).
// Los campos vacíos se aceptan; Generate aplica sus defaults.
func (a Answers) Validate() error {
	if a.ActivityLevel != "" {
		if _, ok := knownActivity[a.ActivityLevel]; !ok {
			return fmt.Errorf("%w: activity_level=%q", ErrUnknownVariant, a.ActivityLevel)
		}
	}
	if a.EatingHabits != "" {
		if _, ok := knownHabits[a.EatingHabits]; !ok {
			return fmt.Errorf("%w: eating_habits=%q", ErrUnknownVariant, a.EatingHabits)
		}
	}
	if a.FoodType != "" {
		if _, ok := knownFoodTypes[a.FoodType]; !ok {
			return fmt.Errorf("%w: food_type=%q", ErrUnknownVariant, a.FoodType)
		}
	}
	for _, c := range a.HealthConditions {
		if _, ok := knownConditions[c]; !ok {
			return fmt.Errorf("%w: health_condition=%q", ErrUnknownVariant, c)
		}
	}
	return nil
}

// ParseSpecies acepta dog/cat y los valores heredados perro/gato.
// Cualquier otro valor cae en perro.
func ParseSpecies(s string) Species {
	switch clean(s) {
	case "cat", "gato":
		return SpeciesCat
	default:
		return SpeciesDog
	}
}

// KnownSpecies indica si s es una especie reconocida (incluye alias).
func KnownSpecies(s string) bool {
	switch clean(s) {
	case "dog", "perro", "cat", "gato":
		return true
	}
	return false
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
