package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/pets/{petID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pets/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Contains(t, scrape(t, m),
		`smart_feeding_http_requests_total{method="GET",route="/pets/{petID}",status="418"} 2`)
}

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveRecommendation("Balanceado")
	m.ObserveRecommendation("Balanceado")
	m.ObserveBackup(nil)
	m.ObserveBackup(errors.New("disk full"))

	body := scrape(t, m)
	assert.Contains(t, body, `smart_feeding_recommendations_generated_total{diet_type="Balanceado"} 2`)
	assert.Contains(t, body, `smart_feeding_backups_total{result="error"} 1`)
	assert.Contains(t, body, `smart_feeding_backups_total{result="ok"} 1`)

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.ObserveRecommendation("x")
		nilMetrics.ObserveBackup(nil)
	})
}
