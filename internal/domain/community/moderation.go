package community

import (
	"errors"
	"fmt"
	"strings"
)

var ErrModerated = errors.New("content not allowed")

var bannedWords = []string{"ilegal", "odio", "violencia extrema", "terrorismo", "abuso", "pornografia"}

// Moderate devuelve ErrModerated con la primera palabra prohibida encontrada.
func Moderate(texts ...string) error {
	lowered := strings.ToLower(strings.Join(texts, " "))
	for _, w := range bannedWords {
		if strings.Contains(lowered, w) {
			return fmt.Errorf("%w: '%s'", ErrModerated, w)
		}
	}
	return nil
}
