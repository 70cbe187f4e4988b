package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"smart-feeding/internal/domain/nutrition"
	"smart-feeding/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/breeds", listBreedsHandler())

	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))

		pr.Get("/{petID}", getPetHandler(svc))
		pr.Patch("/{petID}", updatePetHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc))
	})
}

type createPetRequest struct {
	Name              string  `json:"name"`
	Species           string  `json:"species" enums:"dog,cat,perro,gato"`
	Breed             string  `json:"breed"`
	AgeYears          float64 `json:"age_years"`
	WeightKg          float64 `json:"weight_kg"`
	SpecialConditions string  `json:"special_conditions"`
	Notes             string  `json:"notes"`
}

type updatePetRequest struct {
	Name              *string  `json:"name"`
	Species           *string  `json:"species"`
	Breed             *string  `json:"breed"`
	AgeYears          *float64 `json:"age_years"`
	WeightKg          *float64 `json:"weight_kg"`
	SpecialConditions *string  `json:"special_conditions"`
	Notes             *string  `json:"notes"`
	// Version alternativa a If-Match.
	Version int64 `json:"version"`
}

// PetResponse es la mascota tal como la ve su dueño.
type PetResponse struct {
	ID                 string                    `json:"id"`
	OwnerUserID        string                    `json:"owner_user_id"`
	Name               string                    `json:"name"`
	Species            nutrition.Species         `json:"species"`
	Breed              string                    `json:"breed"`
	AgeYears           float64                   `json:"age_years"`
	WeightKg           float64                   `json:"weight_kg"`
	SpecialConditions  string                    `json:"special_conditions,omitempty"`
	Notes              string                    `json:"notes,omitempty"`
	HasRecommendations bool                      `json:"has_recommendations"`
	LastQuizAt         *time.Time                `json:"last_quiz_at,omitempty"`
	SavedPlan          *nutrition.Recommendation `json:"saved_plan,omitempty"`
	LastSavedPlanAt    *time.Time                `json:"last_saved_plan_at,omitempty"`
	Version            int64                     `json:"version"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

type breedsResponse struct {
	Species nutrition.Species `json:"species"`
	Breeds  []string          `json:"breeds"`
}

// listBreedsHandler godoc
// @Summary Catálogo de razas
// @Tags pets
// @Produce json
// @Param species query string true "dog|cat (acepta perro|gato)"
// @Success 200 {object} breedsResponse
// @Failure 400 {string} string "unknown species"
// @Router /breeds [get]
func listBreedsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("species")
		if !nutrition.KnownSpecies(raw) {
			http.Error(w, "unknown species", http.StatusBadRequest)
			return
		}
		sp := nutrition.ParseSpecies(raw)
		writeJSON(w, http.StatusOK, breedsResponse{Species: sp, Breeds: Breeds(sp)})
	}
}

// createPetHandler godoc
// @Summary Crear mascota
// @Description Nombre, especie y raza son obligatorios. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>`.
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body createPetRequest true "Datos de la mascota"
// @Success 201 {object} PetResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:              req.Name,
			Species:           req.Species,
			Breed:             req.Breed,
			AgeYears:          req.AgeYears,
			WeightKg:          req.WeightKg,
			SpecialConditions: req.SpecialConditions,
			Notes:             req.Notes,
		})
		if err != nil {
			WriteError(w, err)
			return
		}

		writePet(w, http.StatusCreated, p)
	}
}

func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]PetResponse, 0, len(items))
		for _, p := range items {
			out = append(out, ToResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		p, err := svc.GetOwned(r.Context(), chi.URLParam(r, "petID"), claims.UserID)
		if err != nil {
			WriteError(w, err)
			return
		}

		writePet(w, http.StatusOK, p)
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description PATCH parcial. Enviar `If-Match: <version>` (o `version` en el body) para rechazar escrituras sobre datos viejos.
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param If-Match header string false "versión leída"
// @Param payload body updatePetRequest true "Campos a modificar"
// @Success 200 {object} PetResponse
// @Failure 400 {string} string "invalid input"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Failure 409 {string} string "pet was modified concurrently"
// @Router /pets/{petID} [patch]
func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updatePetRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		version := req.Version
		if v := strings.Trim(strings.TrimSpace(r.Header.Get("If-Match")), `"`); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n <= 0 {
				http.Error(w, "If-Match must be a version number", http.StatusBadRequest)
				return
			}
			version = n
		}

		updated, err := svc.UpdateProfile(r.Context(), chi.URLParam(r, "petID"), claims.UserID, UpdateProfileInput{
			Name:              req.Name,
			Species:           req.Species,
			Breed:             req.Breed,
			AgeYears:          req.AgeYears,
			WeightKg:          req.WeightKg,
			SpecialConditions: req.SpecialConditions,
			Notes:             req.Notes,
			ExpectedVersion:   version,
		})
		if err != nil {
			WriteError(w, err)
			return
		}

		writePet(w, http.StatusOK, updated)
	}
}

func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID"), claims.UserID); err != nil {
			WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// WriteError traduce errores de pets a status HTTP (lo usan records y quiz).
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func ToResponse(p Pet) PetResponse {
	return PetResponse{
		ID:                 p.ID,
		OwnerUserID:        p.OwnerUserID,
		Name:               p.Name,
		Species:            p.Species,
		Breed:              p.Breed,
		AgeYears:           p.AgeYears,
		WeightKg:           p.WeightKg,
		SpecialConditions:  p.SpecialConditions,
		Notes:              p.Notes,
		HasRecommendations: p.HasRecommendations,
		LastQuizAt:         p.LastQuizAt,
		SavedPlan:          p.SavedPlan,
		LastSavedPlanAt:    p.LastSavedPlanAt,
		Version:            p.Version,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func writePet(w http.ResponseWriter, status int, p Pet) {
	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(p.Version, 10)))
	writeJSON(w, status, ToResponse(p))
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
