package nutrition

import (
	"fmt"
	"math"
)

// Generate deriva la recomendación completa a partir de las respuestas y el perfil.
// Es una función pura: mismas entradas, mismo resultado. Nunca falla; los valores
// desconocidos caen en los defaults de catalog.go.
func Generate(a Answers, p Profile) Recommendation {
	plan := DietPlanFor(a, p)

	return Recommendation{
		DietPlan:        plan,
		FeedingSchedule: ScheduleFor(a, plan),
		Products:        ProductsFor(a, p.Species),
		Tips:            TipsFor(a),
		Warnings:        WarningsFor(a),
	}
}

// DietPlanFor calcula calorías, tipo de dieta y macros.
func DietPlanFor(a Answers, p Profile) DietPlan {
	base := DefaultBaseCalories
	if p.WeightKg > 0 && !math.IsInf(p.WeightKg, 0) {
		base = p.WeightKg * CaloriesPerKg
	}

	multiplier, ok := activityMultipliers[a.ActivityLevel]
	if !ok {
		multiplier = DefaultActivityMultiplier
	}
	calories := roundInt(base * multiplier)

	// Primera coincidencia gana; no se combinan.
	var dietType string
	switch {
	case a.HasCondition(ConditionOverweight):
		dietType = DietLowCalorie
		calories = roundInt(float64(calories) * OverweightFactor)
	case a.HasCondition(ConditionRenal):
		dietType = DietLowPhosphor
	case a.ActivityLevel == ActivityVeryActive:
		dietType = DietHighProtein
	default:
		dietType = DietBalanced
	}

	cal := float64(calories)
	return DietPlan{
		Type:        dietType,
		Calories:    calories,
		Protein:     roundInt(cal * 0.25 / 4),
		Fat:         roundInt(cal * 0.15 / 9),
		Carbs:       roundInt(cal * 0.60 / 4),
		Description: fmt.Sprintf("Plan %s de %d calorías diarias", dietType, calories),
	}
}

// ScheduleFor reparte las calorías del plan ya calculado; no vuelve a derivarlo.
func ScheduleFor(a Answers, plan DietPlan) FeedingSchedule {
	frequency := defaultFrequency
	if a.EatingHabits == HabitsVoracious {
		frequency = 3
	}

	portion := fmt.Sprintf("%d calorías", roundInt(float64(plan.Calories)/float64(frequency)))
	portions := make([]string, frequency)
	for i := range portions {
		portions[i] = portion
	}

	times := scheduleTimes[frequency]
	return FeedingSchedule{
		Frequency: frequency,
		Times:     append([]string(nil), times...),
		Portions:  portions,
	}
}

// ProductsFor: lista base por especie (perro si no se conoce) + adicionales por condición.
func ProductsFor(a Answers, species Species) []Product {
	base, ok := baseProducts[species]
	if !ok {
		base = baseProducts[SpeciesDog]
	}

	out := make([]Product, 0, len(base)+len(conditionProducts))
	for _, p := range base {
		out = append(out, cloneProduct(p))
	}
	for _, cp := range conditionProducts {
		if a.HasCondition(cp.Condition) {
			out = append(out, cloneProduct(cp.Product))
		}
	}
	return out
}

func TipsFor(a Answers) []string {
	tips := append([]string(nil), baselineTips...)
	tips = append(tips, activityTips[a.ActivityLevel]...)
	tips = append(tips, habitTips[a.EatingHabits]...)
	for _, ct := range conditionTips {
		if a.HasCondition(ct.Condition) {
			tips = append(tips, ct.Tips...)
		}
	}
	return tips
}

func WarningsFor(a Answers) []string {
	warnings := make([]string, 0, 3)
	if a.HasCondition(ConditionRenal) {
		warnings = append(warnings, WarningRenalVet)
	}
	if a.HasCondition(ConditionOverweight) && a.ActivityLevel == ActivitySedentary {
		warnings = append(warnings, WarningWeightMonitor)
	}
	if a.FoodType == "" || a.FoodType == FoodHomemade {
		warnings = append(warnings, WarningHomeDietBalance)
	}
	return warnings
}

// Catalog devuelve una copia de la lista base de productos para la especie.
func Catalog(species Species) []Product {
	return ProductsFor(Answers{}, species)
}

func cloneProduct(p Product) Product {
	p.Benefits = append([]string(nil), p.Benefits...)
	return p
}

// roundInt redondea al entero más cercano (mitades hacia arriba para valores >= 0).
func roundInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Floor(v + 0.5))
}
