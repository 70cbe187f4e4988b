package nutrition

// Tablas de defaults: cada campo tiene su fallback explícito.
const (
	DefaultBaseCalories       = 500.0
	CaloriesPerKg             = 30.0
	DefaultActivityMultiplier = 1.0
	OverweightFactor          = 0.8
)

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  0.8,
	ActivityModerate:   1.0,
	ActivityActive:     1.2,
	ActivityVeryActive: 1.4,
}

const (
	DietLowCalorie   = "Bajo en calorías"
	DietLowPhosphor  = "Bajo en fósforo"
	DietHighProtein  = "Alto en proteína"
	DietBalanced     = "Balanceado"
	defaultFrequency = 2
)

var scheduleTimes = map[int][]string{
	2: {"08:00", "18:00"},
	3: {"08:00", "13:00", "18:00"},
}

var baseProducts = map[Species][]Product{
	SpeciesDog: {
		{
			Name:        "Royal Canin Medium Adult",
			Type:        "dry",
			Description: "Alimento balanceado para perros adultos de raza mediana",
			Benefits:    []string{"Pelo brillante", "Digestión sana", "Huesos fuertes"},
			Price:       "$$",
		},
		{
			Name:        "Hills Science Diet Perfect Weight",
			Type:        "dry",
			Description: "Para control de peso y mantenimiento",
			Benefits:    []string{"Control de peso", "Musculatura magra", "Energía sostenida"},
			Price:       "$$$",
		},
	},
	SpeciesCat: {
		{
			Name:        "Purina Pro Plan Delicate",
			Type:        "dry",
			Description: "Para gatos con digestión sensible",
			Benefits:    []string{"Digestión suave", "Pelo saludable", "Sistema inmune"},
			Price:       "$$",
		},
		{
			Name:        "Whiskas Wet Food Selection",
			Type:        "wet",
			Description: "Variedad de sabores en alimento húmedo",
			Benefits:    []string{"Hidratación", "Sabores variados", "Textura suave"},
			Price:       "$$",
		},
	},
}

// conditionProducts en el orden fijo en que se agregan: allergies, joint, dental.
var conditionProducts = []struct {
	Condition HealthCondition
	Product   Product
}{
	{ConditionAllergies, Product{
		Name:        "Hypoallergenic Veterinary Diet",
		Type:        "dry",
		Description: "Fórmula hipoalergénica para mascotas con alergias",
		Benefits:    []string{"Sin alérgenos comunes", "Piel sana", "Digestión suave"},
		Price:       "$$$$",
	}},
	{ConditionJoint, Product{
		Name:        "Joint Care Supplement",
		Type:        "supplement",
		Description: "Suplemento para salud articular",
		Benefits:    []string{"Movilidad mejorada", "Cartílago protegido", "Antiinflamatorio"},
		Price:       "$$$",
	}},
	{ConditionDental, Product{
		Name:        "Dental Health Chews",
		Type:        "treat",
		Description: "Premios para limpieza dental",
		Benefits:    []string{"Limpieza dental", "Aliento fresco", "Entretenimiento"},
		Price:       "$$",
	}},
}

var baselineTips = []string{
	"Mantén agua fresca disponible siempre",
	"Establece horarios regulares de alimentación",
}

var activityTips = map[ActivityLevel][]string{
	ActivitySedentary: {
		"Considera reducir las calorías en un 10-20% para evitar sobrepeso",
		"Incorpora juego suave diario para mantener actividad",
	},
	ActivityVeryActive: {
		"Aumenta la proteína en la dieta para soportar la actividad",
		"Considera suplementos de glucosamina para articulaciones",
	},
}

var habitTips = map[EatingHabits][]string{
	HabitsPicky: {
		"Prueba con alimentos de diferentes texturas y sabores",
		"Calienta ligeramente el alimento para realzar el aroma",
	},
	HabitsVoracious: {
		"Usa platos especiales que ralenticen la comida",
		"Divide la comida en porciones más pequeñas y frecuentes",
	},
}

// conditionTips en orden de evaluación: overweight, digestive.
var conditionTips = []struct {
	Condition HealthCondition
	Tips      []string
}{
	{ConditionOverweight, []string{
		"Mide las porciones exactamente",
		"Incorpora ejercicio gradualmente",
		"Evita los premios altos en calorías",
	}},
	{ConditionDigestive, []string{
		"Introduce cambios de alimento gradualmente",
		"Considera probióticos para la salud digestiva",
	}},
}

const (
	WarningRenalVet        = "CONSULTA AL VETERINARIO: Los problemas renales requieren supervisión profesional"
	WarningWeightMonitor   = "Vigila el peso regularmente y ajusta la dieta según sea necesario"
	WarningHomeDietBalance = "Las dietas caseras deben ser balanceadas y supervisadas por un veterinario"
)

// Textos para mostrar respuestas (usados por la UI/CLI).
var (
	activityLabels = map[ActivityLevel]string{
		ActivitySedentary:  "Sedentario",
		ActivityModerate:   "Moderado",
		ActivityActive:     "Activo",
		ActivityVeryActive: "Muy Activo",
	}
	habitLabels = map[EatingHabits]string{
		HabitsPicky:     "Exigente",
		HabitsNormal:    "Normal",
		HabitsVoracious: "Voraz",
	}
	foodTypeLabels = map[FoodType]string{
		FoodDry:      "Alimento Seco",
		FoodWet:      "Alimento Húmedo",
		FoodMixed:    "Mixto",
		FoodHomemade: "Casero",
	}
)

const unspecifiedLabel = "No especificado"

func (a ActivityLevel) Label() string { return labelOr(activityLabels, a) }
func (h EatingHabits) Label() string  { return labelOr(habitLabels, h) }
func (f FoodType) Label() string      { return labelOr(foodTypeLabels, f) }

func labelOr[K comparable](m map[K]string, k K) string {
	if v, ok := m[k]; ok {
		return v
	}
	return unspecifiedLabel
}
