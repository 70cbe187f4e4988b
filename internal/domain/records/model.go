package records

import (
	"time"

	"smart-feeding/internal/domain/history"
)

type Kind string

const (
	KindWeight      Kind = Kind(history.KindWeight)
	KindExpense     Kind = Kind(history.KindExpense)
	KindFeeding     Kind = Kind(history.KindFeeding)
	KindMedicalNote Kind = "medical_note"
)

const (
	DefaultExpenseType = "comida"
	DefaultFoodType    = "comida"
)

// Record es una entrada del historial de una mascota. Solo se usan los
// campos que corresponden a Kind.
type Record struct {
	ID    string
	PetID string
	Kind  Kind

	// Date tal como se recibió: YYYY-MM-DD o RFC3339.
	Date string

	Weight      float64
	ExpenseType string
	Amount      float64
	Grams       float64
	FoodType    string
	Note        string

	CreatedBy  string
	RecordedAt time.Time
}

// Entry convierte el registro al formato del agregador; ok=false para notas médicas.
func (r Record) Entry() (history.Entry, bool) {
	switch r.Kind {
	case KindWeight, KindExpense, KindFeeding:
		return history.Entry{
			Kind:        history.Kind(r.Kind),
			Date:        r.Date,
			Weight:      r.Weight,
			ExpenseType: r.ExpenseType,
			Amount:      r.Amount,
			Grams:       r.Grams,
			FoodType:    r.FoodType,
		}, true
	default:
		return history.Entry{}, false
	}
}

func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindWeight, KindExpense, KindFeeding, KindMedicalNote:
		return Kind(s), true
	case "medical-note":
		return KindMedicalNote, true
	}
	return "", false
}

// Stats es el reporte agregado más la fecha del último peso registrado.
type Stats struct {
	history.Report
	LastUpdate string
}

// DayRecord es un registro del día junto con el nombre de su mascota.
type DayRecord struct {
	Record
	PetName string
}
