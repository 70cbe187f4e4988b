package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"smart-feeding/internal/domain/users"
	"smart-feeding/internal/middleware"
	"smart-feeding/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(requireAdmin)

		ar.Get("/stats", statsHandler(svc))
		ar.Get("/recent-users", recentUsersHandler(svc))
		ar.Get("/activity", activityHandler(svc))
		ar.Get("/export", exportHandler(svc))
		ar.Get("/system", systemHandler(svc))
		ar.Post("/backup", backupHandler(svc))
	})
}

// requireAdmin: 401 sin usuario, 403 si no es admin.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}
		if claims.Role != auth.RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type backupResponse struct {
	Location string    `json:"location"`
	At       time.Time `json:"at"`
}

// statsHandler godoc
// @Summary Estadísticas de la plataforma
// @Tags admin
// @Produce json
// @Success 200 {object} Stats
// @Failure 403 {string} string "forbidden"
// @Router /admin/stats [get]
func statsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Stats(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func recentUsersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		us, err := svc.RecentUsers(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]users.PublicUser, 0, len(us))
		for _, u := range us {
			out = append(out, users.ToPublic(u))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func activityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.RecentActivity(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// exportHandler godoc
// @Summary Exportar datos
// @Description Usuarios (sin contraseña), mascotas, cuestionarios y sesiones.
// @Tags admin
// @Produce json
// @Produce application/msgpack
// @Param format query string false "json|msgpack"
// @Success 200 {object} Snapshot
// @Failure 400 {string} string "unknown export format"
// @Router /admin/export [get]
func exportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			writeError(w, err)
			return
		}

		data, err := svc.Export(r.Context(), f)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", f.ContentType())
		w.Header().Set("Content-Disposition", `attachment; filename="`+BackupName(time.Now().UTC(), f)+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func systemHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := svc.SystemInfo(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

// backupHandler godoc
// @Summary Ejecutar respaldo ahora
// @Tags admin
// @Produce json
// @Success 200 {object} backupResponse
// @Failure 503 {string} string "backup sink not configured"
// @Router /admin/backup [post]
func backupHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc, err := svc.Backup(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, backupResponse{Location: loc, At: time.Now().UTC()})
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNoSink):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
