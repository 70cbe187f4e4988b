package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"smart-feeding/internal/domain/history"
	"smart-feeding/internal/domain/pets"
	"smart-feeding/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets/{petID}/records", func(rr chi.Router) {
		rr.Get("/", listRecordsHandler(svc))
		rr.Post("/weight", addWeightHandler(svc))
		rr.Post("/expense", addExpenseHandler(svc))
		rr.Post("/feeding", addFeedingHandler(svc))
		rr.Post("/medical-note", addMedicalNoteHandler(svc))
	})
	r.Get("/pets/{petID}/stats", statsHandler(svc))
	r.Get("/me/records", dayRecordsHandler(svc))
}

// quantity acepta 12.5 o "12,5" en el JSON; el parseo real lo hace el servicio.
type quantity string

func (q *quantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*q = quantity(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*q = ""
		return nil
	}
	*q = quantity(b)
	return nil
}

type addWeightRequest struct {
	Date   string   `json:"date"`
	Weight quantity `json:"weight" swaggertype:"string" example:"12.5"`
}

type addExpenseRequest struct {
	Date   string   `json:"date"`
	Type   string   `json:"type" example:"veterinario"`
	Amount quantity `json:"amount" swaggertype:"string" example:"1500"`
}

type addFeedingRequest struct {
	Date     string   `json:"date"`
	FoodType string   `json:"food_type"`
	Grams    quantity `json:"grams" swaggertype:"string" example:"200"`
}

type addMedicalNoteRequest struct {
	Date string `json:"date"`
	Note string `json:"note"`
}

// RecordResponse representa un registro del historial devuelto por la API.
type RecordResponse struct {
	ID          string    `json:"id"`
	PetID       string    `json:"pet_id"`
	Kind        Kind      `json:"kind"`
	Date        string    `json:"date"`
	Weight      float64   `json:"weight,omitempty"`
	ExpenseType string    `json:"expense_type,omitempty"`
	Amount      float64   `json:"amount,omitempty"`
	Grams       float64   `json:"grams,omitempty"`
	FoodType    string    `json:"food_type,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedBy   string    `json:"created_by"`
	RecordedAt  time.Time `json:"recorded_at"`
	PetName     string    `json:"pet_name,omitempty"`
}

type statsResponse struct {
	history.Report
	LastUpdate string `json:"last_update,omitempty"`
}

// addWeightHandler godoc
// @Summary Registrar peso
// @Description date opcional (YYYY-MM-DD o RFC3339, por defecto ahora). weight acepta número o texto con coma decimal.
// @Tags records
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body addWeightRequest true "Peso en kg"
// @Success 201 {object} RecordResponse
// @Failure 400 {string} string "invalid input"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/records/weight [post]
func addWeightHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}
		var req addWeightRequest
		if !decode(w, r, &req) {
			return
		}
		rec, err := svc.AddWeight(r.Context(), claims.UserID, chi.URLParam(r, "petID"), WeightInput{
			Date:   req.Date,
			Weight: string(req.Weight),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(rec))
	}
}

// addExpenseHandler godoc
// @Summary Registrar gasto
// @Tags records
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body addExpenseRequest true "type por defecto comida"
// @Success 201 {object} RecordResponse
// @Router /pets/{petID}/records/expense [post]
func addExpenseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}
		var req addExpenseRequest
		if !decode(w, r, &req) {
			return
		}
		rec, err := svc.AddExpense(r.Context(), claims.UserID, chi.URLParam(r, "petID"), ExpenseInput{
			Date:   req.Date,
			Type:   req.Type,
			Amount: string(req.Amount),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(rec))
	}
}

// addFeedingHandler godoc
// @Summary Registrar alimentación
// @Tags records
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body addFeedingRequest true "grams consumidos; food_type por defecto comida"
// @Success 201 {object} RecordResponse
// @Router /pets/{petID}/records/feeding [post]
func addFeedingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}
		var req addFeedingRequest
		if !decode(w, r, &req) {
			return
		}
		rec, err := svc.AddFeeding(r.Context(), claims.UserID, chi.URLParam(r, "petID"), FeedingInput{
			Date:     req.Date,
			FoodType: req.FoodType,
			Grams:    string(req.Grams),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(rec))
	}
}

func addMedicalNoteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}
		var req addMedicalNoteRequest
		if !decode(w, r, &req) {
			return
		}
		rec, err := svc.AddMedicalNote(r.Context(), claims.UserID, chi.URLParam(r, "petID"), MedicalNoteInput{
			Date: req.Date,
			Note: req.Note,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(rec))
	}
}

// listRecordsHandler godoc
// @Summary Listar registros de la mascota
// @Tags records
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param kind query string false "weight|expense|feeding|medical_note"
// @Success 200 {array} RecordResponse
// @Router /pets/{petID}/records [get]
func listRecordsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		var kind Kind
		if raw := strings.TrimSpace(r.URL.Query().Get("kind")); raw != "" {
			k, ok := ParseKind(raw)
			if !ok {
				http.Error(w, "unknown kind", http.StatusBadRequest)
				return
			}
			kind = k
		}

		items, err := svc.ListByPet(r.Context(), claims.UserID, chi.URLParam(r, "petID"), kind)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]RecordResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toResponse(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// statsHandler godoc
// @Summary Estadísticas agregadas por período
// @Description Series de peso (promedio), gastos y alimentación (suma) más totales. period por defecto monthly.
// @Tags records
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param period query string false "daily|weekly|monthly"
// @Success 200 {object} statsResponse
// @Router /pets/{petID}/stats [get]
func statsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		raw := r.URL.Query().Get("period")
		if raw != "" && !history.KnownPeriod(raw) {
			http.Error(w, "unknown period", http.StatusBadRequest)
			return
		}

		st, err := svc.Stats(r.Context(), claims.UserID, chi.URLParam(r, "petID"), history.ParsePeriod(raw))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statsResponse{Report: st.Report, LastUpdate: st.LastUpdate})
	}
}

// dayRecordsHandler godoc
// @Summary Registros del día de todas mis mascotas
// @Tags records
// @Produce json
// @Param date query string true "YYYY-MM-DD"
// @Success 200 {array} RecordResponse
// @Router /me/records [get]
func dayRecordsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		items, err := svc.DayRecords(r.Context(), claims.UserID, r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]RecordResponse, 0, len(items))
		for _, d := range items {
			resp := toResponse(d.Record)
			resp.PetName = d.PetName
			out = append(out, resp)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidInput) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pets.WriteError(w, err)
}

func toResponse(rec Record) RecordResponse {
	return RecordResponse{
		ID:          rec.ID,
		PetID:       rec.PetID,
		Kind:        rec.Kind,
		Date:        rec.Date,
		Weight:      rec.Weight,
		ExpenseType: rec.ExpenseType,
		Amount:      rec.Amount,
		Grams:       rec.Grams,
		FoodType:    rec.FoodType,
		Note:        rec.Note,
		CreatedBy:   rec.CreatedBy,
		RecordedAt:  rec.RecordedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
