package nutrition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_CaloriesFollowWeightAndActivity(t *testing.T) {
	levels := []ActivityLevel{ActivitySedentary, ActivityModerate, ActivityActive, ActivityVeryActive}

	for _, w := range []float64{0.1, 1, 4.5, 12, 33.3, 75, 200} {
		for _, lvl := range levels {
			rec := Generate(Answers{ActivityLevel: lvl, FoodType: FoodDry}, Profile{WeightKg: w})
			plan := rec.DietPlan

			want := int(math.Floor(w*CaloriesPerKg*activityMultipliers[lvl] + 0.5))
			assert.Equal(t, want, plan.Calories, "weight=%v level=%s", w, lvl)

			// cada macro se redondea a gramos enteros: el error en kcal queda
			// acotado por media unidad del factor de conversión.
			cal := float64(plan.Calories)
			assert.InDelta(t, cal*0.25, float64(plan.Protein*4), 2, "protein weight=%v level=%s", w, lvl)
			assert.InDelta(t, cal*0.15, float64(plan.Fat*9), 4.5, "fat weight=%v level=%s", w, lvl)
			assert.InDelta(t, cal*0.60, float64(plan.Carbs*4), 2, "carbs weight=%v level=%s", w, lvl)
		}
	}
}

// Los macros no suman exactamente las calorías: cada uno se redondea a gramos
// enteros por separado, así que la suma en kcal se aleja a lo sumo
// 0.5*4 + 0.5*9 + 0.5*4 = 8.5 kcal del total del plan.
func TestGenerate_MacroKcalWithinRoundingBound(t *testing.T) {
	const maxKcalDrift = 8.5
	levels := []ActivityLevel{"", ActivitySedentary, ActivityModerate, ActivityActive, ActivityVeryActive}
	conds := [][]HealthCondition{nil, {ConditionOverweight}}

	worst := 0.0
	for w := 0.5; w <= 80; w += 0.25 {
		for _, lvl := range levels {
			for _, hc := range conds {
				plan := Generate(Answers{ActivityLevel: lvl, HealthConditions: hc}, Profile{WeightKg: w}).DietPlan

				sum := plan.Protein*4 + plan.Fat*9 + plan.Carbs*4
				drift := math.Abs(float64(sum - plan.Calories))
				require.LessOrEqual(t, drift, maxKcalDrift,
					"weight=%v level=%q conditions=%v plan=%+v", w, lvl, hc, plan)
				worst = math.Max(worst, drift)
			}
		}
	}
	// el redondeo sí produce desvío en el barrido.
	assert.Greater(t, worst, 0.0)
}

func TestGenerate_DefaultsWhenWeightAndActivityUnknown(t *testing.T) {
	rec := Generate(Answers{ActivityLevel: "couch-potato"}, Profile{})

	assert.Equal(t, 500, rec.DietPlan.Calories)
	assert.Equal(t, DietBalanced, rec.DietPlan.Type)
	assert.Equal(t, "Plan Balanceado de 500 calorías diarias", rec.DietPlan.Description)
	assert.Equal(t, 31, rec.DietPlan.Protein)
	assert.Equal(t, 8, rec.DietPlan.Fat)
	assert.Equal(t, 75, rec.DietPlan.Carbs)
}

func TestGenerate_ConditionPrecedence(t *testing.T) {
	t.Run("overweight wins and reduces calories", func(t *testing.T) {
		rec := Generate(Answers{
			ActivityLevel:    ActivityVeryActive,
			HealthConditions: []HealthCondition{ConditionRenal, ConditionOverweight},
		}, Profile{WeightKg: 10})

		assert.Equal(t, DietLowCalorie, rec.DietPlan.Type)
		// 10*30*1.4 = 420 -> 420*0.8 = 336
		assert.Equal(t, 336, rec.DietPlan.Calories)
	})

	t.Run("renal without overweight", func(t *testing.T) {
		for _, lvl := range []ActivityLevel{ActivitySedentary, ActivityModerate, ActivityActive, ActivityVeryActive} {
			rec := Generate(Answers{
				ActivityLevel:    lvl,
				HealthConditions: []HealthCondition{ConditionRenal},
				FoodType:         FoodWet,
			}, Profile{WeightKg: 8})

			assert.Equal(t, DietLowPhosphor, rec.DietPlan.Type)
			require.Len(t, rec.Warnings, 1)
			assert.Equal(t, WarningRenalVet, rec.Warnings[0])
		}
	})

	t.Run("very active", func(t *testing.T) {
		rec := Generate(Answers{ActivityLevel: ActivityVeryActive}, Profile{})
		assert.Equal(t, DietHighProtein, rec.DietPlan.Type)
	})
}

func TestGenerate_ScheduleUsesSamePlan(t *testing.T) {
	for _, habits := range []EatingHabits{HabitsPicky, HabitsNormal, HabitsVoracious, "unknown"} {
		rec := Generate(Answers{EatingHabits: habits, ActivityLevel: ActivityActive}, Profile{WeightKg: 7})
		s := rec.FeedingSchedule

		assert.Equal(t, s.Frequency, len(s.Portions))
		assert.Equal(t, s.Frequency, len(s.Times))

		portion := roundInt(float64(rec.DietPlan.Calories) / float64(s.Frequency))
		for _, p := range s.Portions {
			assert.Equal(t, formatPortion(portion), p)
		}
	}

	voracious := Generate(Answers{EatingHabits: HabitsVoracious}, Profile{})
	assert.Equal(t, 3, voracious.FeedingSchedule.Frequency)
	assert.Equal(t, []string{"08:00", "13:00", "18:00"}, voracious.FeedingSchedule.Times)
	assert.Equal(t, []string{"167 calorías", "167 calorías", "167 calorías"}, voracious.FeedingSchedule.Portions)

	normal := Generate(Answers{EatingHabits: HabitsNormal}, Profile{})
	assert.Equal(t, []string{"08:00", "18:00"}, normal.FeedingSchedule.Times)
	assert.Equal(t, []string{"250 calorías", "250 calorías"}, normal.FeedingSchedule.Portions)
}

func TestGenerate_Products(t *testing.T) {
	rec := Generate(Answers{
		HealthConditions: []HealthCondition{ConditionDental, ConditionAllergies, ConditionJoint},
	}, Profile{Species: SpeciesCat})

	names := make([]string, 0, len(rec.Products))
	for _, p := range rec.Products {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{
		"Purina Pro Plan Delicate",
		"Whiskas Wet Food Selection",
		"Hypoallergenic Veterinary Diet",
		"Joint Care Supplement",
		"Dental Health Chews",
	}, names)

	unknown := Generate(Answers{}, Profile{Species: "hamster"})
	require.Len(t, unknown.Products, 2)
	assert.Equal(t, "Royal Canin Medium Adult", unknown.Products[0].Name)
}

func TestGenerate_ProductsAreCopies(t *testing.T) {
	rec := Generate(Answers{}, Profile{Species: SpeciesDog})
	rec.Products[0].Benefits[0] = "mutated"

	again := Generate(Answers{}, Profile{Species: SpeciesDog})
	assert.Equal(t, "Pelo brillante", again.Products[0].Benefits[0])
}

func TestGenerate_TipsConcatenate(t *testing.T) {
	rec := Generate(Answers{
		ActivityLevel:    ActivitySedentary,
		EatingHabits:     HabitsPicky,
		HealthConditions: []HealthCondition{ConditionDigestive, ConditionOverweight},
	}, Profile{})

	assert.Equal(t, []string{
		"Mantén agua fresca disponible siempre",
		"Establece horarios regulares de alimentación",
		"Considera reducir las calorías en un 10-20% para evitar sobrepeso",
		"Incorpora juego suave diario para mantener actividad",
		"Prueba con alimentos de diferentes texturas y sabores",
		"Calienta ligeramente el alimento para realzar el aroma",
		"Mide las porciones exactamente",
		"Incorpora ejercicio gradualmente",
		"Evita los premios altos en calorías",
		"Introduce cambios de alimento gradualmente",
		"Considera probióticos para la salud digestiva",
	}, rec.Tips)
}

func TestGenerate_Warnings(t *testing.T) {
	rec := Generate(Answers{
		ActivityLevel:    ActivitySedentary,
		HealthConditions: []HealthCondition{ConditionOverweight},
		FoodType:         "",
	}, Profile{})
	assert.Equal(t, []string{WarningWeightMonitor, WarningHomeDietBalance}, rec.Warnings)

	none := Generate(Answers{FoodType: FoodMixed}, Profile{})
	assert.Empty(t, none.Warnings)

	homemade := Generate(Answers{FoodType: FoodHomemade}, Profile{})
	assert.Equal(t, []string{WarningHomeDietBalance}, homemade.Warnings)
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Answers{
		ActivityLevel:    ActivityActive,
		HealthConditions: []HealthCondition{ConditionJoint},
		EatingHabits:     HabitsVoracious,
		FoodType:         FoodWet,
	}
	p := Profile{Species: SpeciesDog, WeightKg: 21.5}
	assert.Equal(t, Generate(a, p), Generate(a, p))
}

func TestAnswers_NormalizeAndValidate(t *testing.T) {
	a := Answers{
		PetID:            "  pet-1 ",
		ActivityLevel:    " Very-Active ",
		HealthConditions: []HealthCondition{"renal", " RENAL", "", "joint"},
		EatingHabits:     "NORMAL",
		FoodType:         "dry",
	}.Normalize()

	assert.Equal(t, "pet-1", a.PetID)
	assert.Equal(t, ActivityVeryActive, a.ActivityLevel)
	assert.Equal(t, []HealthCondition{ConditionRenal, ConditionJoint}, a.HealthConditions)
	require.NoError(t, a.Validate())

	bad := Answers{HealthConditions: []HealthCondition{"fleas"}}
	assert.ErrorIs(t, bad.Validate(), ErrUnknownVariant)
	assert.ErrorIs(t, Answers{FoodType: "raw"}.Validate(), ErrUnknownVariant)
	assert.NoError(t, Answers{}.Validate())
}

func TestParseSpecies(t *testing.T) {
	assert.Equal(t, SpeciesDog, ParseSpecies("perro"))
	assert.Equal(t, SpeciesCat, ParseSpecies(" Gato "))
	assert.Equal(t, SpeciesCat, ParseSpecies("cat"))
	assert.Equal(t, SpeciesDog, ParseSpecies(""))
	assert.False(t, KnownSpecies("parrot"))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Muy Activo", ActivityVeryActive.Label())
	assert.Equal(t, "Voraz", HabitsVoracious.Label())
	assert.Equal(t, "No especificado", FoodType("").Label())
}

func formatPortion(n int) string {
	return ScheduleFor(Answers{}, DietPlan{Calories: n * 2}).Portions[0]
}
