package nutrition

// ActivityLevel es el nivel de actividad declarado en el cuestionario.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very-active"
)

// HealthCondition es una condición de salud marcada en el cuestionario.
type HealthCondition string

const (
	ConditionOverweight HealthCondition = "overweight"
	ConditionAllergies  HealthCondition = "allergies"
	ConditionDigestive  HealthCondition = "digestive"
	ConditionJoint      HealthCondition = "joint"
	ConditionDental     HealthCondition = "dental"
	ConditionRenal      HealthCondition = "renal"
)

type EatingHabits string

const (
	HabitsPicky     EatingHabits = "picky"
	HabitsNormal    EatingHabits = "normal"
	HabitsVoracious EatingHabits = "voracious"
)

type FoodType string

const (
	FoodDry      FoodType = "dry"
	FoodWet      FoodType = "wet"
	FoodMixed    FoodType = "mixed"
	FoodHomemade FoodType = "homemade"
)

// Species define las especies para las que hay catálogo.
// @Enum dog, cat
type Species string

const (
	SpeciesDog Species = "dog"
	SpeciesCat Species = "cat"
)

// Answers agrupa las respuestas categóricas de un cuestionario.
// Se crea en cada corrida y no se modifica después de generar la recomendación.
type Answers struct {
	PetID            string            `json:"pet_id,omitempty" yaml:"pet_id"`
	ActivityLevel    ActivityLevel     `json:"activity_level" yaml:"activity_level"`
	HealthConditions []HealthCondition `json:"health_conditions" yaml:"health_conditions"`
	EatingHabits     EatingHabits      `json:"eating_habits" yaml:"eating_habits"`
	FoodType         FoodType          `json:"food_type" yaml:"food_type"`
}

// Profile son los datos de la mascota que afectan la recomendación.
// WeightKg <= 0 significa peso desconocido.
type Profile struct {
	Species  Species
	WeightKg float64
}

type DietPlan struct {
	Type        string `json:"type"`
	Calories    int    `json:"calories"`
	Protein     int    `json:"protein"`
	Fat         int    `json:"fat"`
	Carbs       int    `json:"carbs"`
	Description string `json:"description"`
}

// FeedingSchedule: len(Times) == len(Portions) == Frequency.
type FeedingSchedule struct {
	Frequency int      `json:"frequency"`
	Times     []string `json:"times"`
	Portions  []string `json:"portions"`
}

type Product struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Benefits    []string `json:"benefits"`
	Price       string   `json:"price"`
}

// Recommendation es el resultado completo de Generate.
type Recommendation struct {
	DietPlan        DietPlan        `json:"diet_plan"`
	FeedingSchedule FeedingSchedule `json:"feeding_schedule"`
	Products        []Product       `json:"products"`
	Tips            []string        `json:"tips"`
	Warnings        []string        `json:"warnings"`
}

// HasCondition indica si la condición está presente en las respuestas.
func (a Answers) HasCondition(c HealthCondition) bool {
	for _, hc := range a.HealthConditions {
		if hc == c {
			return true
		}
	}
	return false
}
