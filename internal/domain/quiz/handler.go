package quiz

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"smart-feeding/internal/domain/nutrition"
	"smart-feeding/internal/domain/pets"
	"smart-feeding/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/quiz", func(qr chi.Router) {
		qr.Post("/", submitHandler(svc))
		qr.Get("/", listHandler(svc))
		qr.Get("/latest", latestHandler(svc))
		qr.Get("/{resultID}", getHandler(svc))
		qr.Post("/{resultID}/save", saveHandler(svc))
	})
	r.Get("/me/saved-plan", savedPlanHandler(svc))
	r.Post("/recommendations/preview", previewHandler(svc))
}

type answerLabels struct {
	ActivityLevel string `json:"activity_level"`
	EatingHabits  string `json:"eating_habits"`
	FoodType      string `json:"food_type"`
}

// ResultResponse es un cuestionario completado con su recomendación.
type ResultResponse struct {
	ID             string                   `json:"id"`
	UserID         string                   `json:"user_id"`
	PetID          string                   `json:"pet_id,omitempty"`
	Answers        nutrition.Answers        `json:"answers"`
	Labels         answerLabels             `json:"labels"`
	Recommendation nutrition.Recommendation `json:"recommendation"`
	CompletedAt    time.Time                `json:"completed_at"`
	SavedAt        *time.Time               `json:"saved_at,omitempty"`
}

type savedPlanResponse struct {
	ResultID       string                   `json:"result_id"`
	Recommendation nutrition.Recommendation `json:"recommendation"`
	SavedAt        time.Time                `json:"saved_at"`
}

type previewRequest struct {
	nutrition.Answers
	Species  string  `json:"species"`
	WeightKg float64 `json:"weight_kg"`
}

// submitHandler godoc
// @Summary Completar cuestionario
// @Description Genera la recomendación y la guarda. Si viene pet_id la mascota tiene que ser del usuario; se usan su especie y peso.
// @Tags quiz
// @Accept json
// @Produce json
// @Param payload body nutrition.Answers true "Respuestas"
// @Success 201 {object} ResultResponse
// @Failure 400 {string} string "unknown answer value"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /quiz [post]
func submitHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		var a nutrition.Answers
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := svc.Submit(r.Context(), claims.UserID, a)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(res))
	}
}

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		items, err := svc.ListByUser(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]ResultResponse, 0, len(items))
		for _, res := range items {
			out = append(out, toResponse(res))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func latestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		res, err := svc.Latest(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(res))
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		res, err := svc.GetResult(r.Context(), claims.UserID, chi.URLParam(r, "resultID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(res))
	}
}

// saveHandler godoc
// @Summary Guardar plan
// @Description Copia la recomendación al plan de la mascota o, si el cuestionario no tenía mascota, al plan propio del usuario.
// @Tags quiz
// @Produce json
// @Param resultID path string true "ID del resultado"
// @Success 200 {object} ResultResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "quiz result not found"
// @Failure 409 {string} string "pet was modified concurrently"
// @Router /quiz/{resultID}/save [post]
func saveHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		res, err := svc.SavePlan(r.Context(), claims.UserID, chi.URLParam(r, "resultID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(res))
	}
}

func savedPlanHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		p, err := svc.SavedPlan(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, savedPlanResponse{
			ResultID:       p.ResultID,
			Recommendation: p.Recommendation,
			SavedAt:        p.SavedAt,
		})
	}
}

// previewHandler godoc
// @Summary Vista previa de recomendación
// @Description No guarda nada. species (dog|cat) y weight_kg son opcionales.
// @Tags quiz
// @Accept json
// @Produce json
// @Param payload body previewRequest true "Respuestas + perfil"
// @Success 200 {object} nutrition.Recommendation
// @Failure 400 {string} string "unknown answer value"
// @Router /recommendations/preview [post]
func previewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.RequireUser(w, r); !ok {
			return
		}

		var req previewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Species != "" && !nutrition.KnownSpecies(req.Species) {
			http.Error(w, "unknown species", http.StatusBadRequest)
			return
		}
		if req.WeightKg < 0 {
			http.Error(w, "weight_kg must be >= 0", http.StatusBadRequest)
			return
		}

		rec, err := svc.Preview(req.Answers, nutrition.Profile{
			Species:  nutrition.ParseSpecies(req.Species),
			WeightKg: req.WeightKg,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "quiz result not found", http.StatusNotFound)
	case errors.Is(err, ErrNoSavedPlan):
		http.Error(w, "no saved plan", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		pets.WriteError(w, err)
	}
}

func toResponse(res Result) ResultResponse {
	return ResultResponse{
		ID:      res.ID,
		UserID:  res.UserID,
		PetID:   res.PetID,
		Answers: res.Answers,
		Labels: answerLabels{
			ActivityLevel: res.Answers.ActivityLevel.Label(),
			EatingHabits:  res.Answers.EatingHabits.Label(),
			FoodType:      res.Answers.FoodType.Label(),
		},
		Recommendation: res.Recommendation,
		CompletedAt:    res.CompletedAt,
		SavedAt:        res.SavedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
