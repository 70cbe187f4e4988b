package history

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidQuantity = errors.New("invalid quantity")

// ParseQuantity lee un número no negativo y finito ("12", "3.5", "3,5").
func ParseQuantity(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, ErrInvalidQuantity
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, ErrInvalidQuantity
	}
	return v, nil
}

// ValidQuantity aplica la misma regla a un valor ya numérico.
func ValidQuantity(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
