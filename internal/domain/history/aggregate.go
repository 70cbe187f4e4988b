package history

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Kind string

const (
	KindWeight  Kind = "weight"
	KindExpense Kind = "expense"
	KindFeeding Kind = "feeding"
)

// Entry es una medición ya filtrada a una sola mascota.
// Solo se usa el campo numérico que corresponde a Kind.
type Entry struct {
	Kind        Kind    `json:"kind"`
	Date        string  `json:"date"`
	Weight      float64 `json:"weight,omitempty"`
	ExpenseType string  `json:"expense_type,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	Grams       float64 `json:"grams,omitempty"`
	FoodType    string  `json:"food_type,omitempty"`
}

type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Totals struct {
	AvgWeight      float64 `json:"avg_weight"`
	TotalExpenses  float64 `json:"total_expenses"`
	TotalFeedGrams float64 `json:"total_feed_grams"`
}

// Report es la serie agregada más los totales globales.
// Skipped cuenta las entradas descartadas por fecha ilegible.
type Report struct {
	Period   Period  `json:"period"`
	Weight   []Point `json:"weight"`
	Expenses []Point `json:"expenses"`
	Feedings []Point `json:"feedings"`
	Totals   Totals  `json:"totals"`
	Skipped  int     `json:"skipped"`
}

// Aggregate agrupa las entradas por período. Nunca falla: una entrada con
// fecha ilegible o valor inválido se omite y sigue con el resto.
func Aggregate(entries []Entry, period Period) Report {
	weights := newBuckets()
	expenses := newBuckets()
	feedings := newBuckets()

	skipped := 0
	for _, e := range entries {
		t, err := ParseDate(e.Date)
		if err != nil {
			skipped++
			continue
		}
		key := PeriodKey(t, period)

		switch e.Kind {
		case KindWeight:
			if !ValidQuantity(e.Weight) {
				skipped++
				continue
			}
			weights.add(key, e.Weight)
		case KindExpense:
			if !ValidQuantity(e.Amount) {
				skipped++
				continue
			}
			expenses.add(key, e.Amount)
		case KindFeeding:
			if !ValidQuantity(e.Grams) {
				skipped++
				continue
			}
			feedings.add(key, e.Grams)
		default:
			skipped++
		}
	}

	return Report{
		Period:   period,
		Weight:   weights.series(mean, 1),
		Expenses: expenses.series(floats.Sum, 2),
		Feedings: feedings.series(floats.Sum, 0),
		Totals: Totals{
			AvgWeight:      round(mean(weights.all), 1),
			TotalExpenses:  round(floats.Sum(expenses.all), 2),
			TotalFeedGrams: round(floats.Sum(feedings.all), 0),
		},
		Skipped: skipped,
	}
}

// LastDate devuelve la fecha más reciente de las entradas del tipo dado
// (en el formato en que fue guardada).
func LastDate(entries []Entry, kind Kind) (string, bool) {
	var (
		best  string
		bestT time.Time
		found bool
	)
	for _, e := range entries {
		if e.Kind != kind {
			continue
		}
		t, err := ParseDate(e.Date)
		if err != nil {
			continue
		}
		if !found || !t.Before(bestT) {
			best, bestT, found = e.Date, t, true
		}
	}
	return best, found
}

type buckets struct {
	values map[string][]float64
	all    []float64
}

func newBuckets() *buckets {
	return &buckets{values: map[string][]float64{}}
}

func (b *buckets) add(key string, v float64) {
	b.values[key] = append(b.values[key], v)
	b.all = append(b.all, v)
}

// series reduce cada bucket y lo emite en orden ascendente de etiqueta.
func (b *buckets) series(reduce func([]float64) float64, places int) []Point {
	labels := make([]string, 0, len(b.values))
	for k := range b.values {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	out := make([]Point, 0, len(labels))
	for _, l := range labels {
		out = append(out, Point{Label: l, Value: round(reduce(b.values[l]), places)})
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
