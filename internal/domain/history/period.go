package history

import (
	"fmt"
	"strings"
	"time"
)

// Period es la granularidad de agrupación de la serie.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

var periodAliases = map[string]Period{
	"daily":   Daily,
	"diario":  Daily,
	"weekly":  Weekly,
	"semanal": Weekly,
	"monthly": Monthly,
	"mensual": Monthly,
}

// ParsePeriod acepta los nombres en inglés y los heredados en español.
// Un valor desconocido o vacío cae en Monthly.
func ParsePeriod(s string) Period {
	if p, ok := periodAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p
	}
	return Monthly
}

// KnownPeriod indica si s corresponde a un período reconocido.
func KnownPeriod(s string) bool {
	_, ok := periodAliases[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseDate interpreta YYYY-MM-DD o RFC3339. La fecha de calendario se toma
// en el offset propio del valor, no se convierte a la zona local.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// PeriodKey devuelve la etiqueta del bucket: YYYY-MM-DD, YYYY-Www o YYYY-MM.
// El orden lexicográfico de las etiquetas coincide con el orden temporal.
func PeriodKey(t time.Time, p Period) string {
	switch p {
	case Daily:
		return t.Format(time.DateOnly)
	case Weekly:
		// ISO-8601: el año es el del jueves de esa semana.
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return t.Format("2006-01")
	}
}

// DayKey es la etiqueta diaria de una fecha en texto; ok=false si no se pudo leer.
func DayKey(date string) (string, bool) {
	t, err := ParseDate(date)
	if err != nil {
		return "", false
	}
	return PeriodKey(t, Daily), true
}
