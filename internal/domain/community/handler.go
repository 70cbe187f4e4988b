package community

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"smart-feeding/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/community", func(cr chi.Router) {
		cr.Get("/topics", topicsHandler())

		cr.Post("/posts", createPostHandler(svc))
		cr.Get("/posts", listPostsHandler(svc))
		cr.Post("/posts/{postID}/comments", addCommentHandler(svc))
		cr.Post("/posts/{postID}/like", toggleLikeHandler(svc))

		cr.Post("/vet-questions", askHandler(svc))
		cr.Get("/vet-questions", listQuestionsHandler(svc))
		cr.Post("/vet-questions/{questionID}/reply", replyHandler(svc))
	})
}

type createPostRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Topic   string   `json:"topic" enums:"general,alimentación,salud,entrenamiento"`
	Tags    []string `json:"tags"`
	Images  []string `json:"images"`
}

type textRequest struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

type authorResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

type commentResponse struct {
	ID        string         `json:"id"`
	Author    authorResponse `json:"author"`
	Text      string         `json:"text"`
	CreatedAt time.Time      `json:"created_at"`
}

type postResponse struct {
	ID        string            `json:"id"`
	Author    authorResponse    `json:"author"`
	Topic     string            `json:"topic"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Tags      []string          `json:"tags"`
	Images    []string          `json:"images"`
	Comments  []commentResponse `json:"comments"`
	Likes     int               `json:"likes"`
	LikedByMe bool              `json:"liked_by_me"`
	CreatedAt time.Time         `json:"created_at"`
}

type replyResponse struct {
	Author    authorResponse `json:"author"`
	Text      string         `json:"text"`
	CreatedAt time.Time      `json:"created_at"`
}

type questionResponse struct {
	ID        string         `json:"id"`
	Author    authorResponse `json:"author"`
	Text      string         `json:"text"`
	Image     string         `json:"image,omitempty"`
	Reply     *replyResponse `json:"reply"`
	CreatedAt time.Time      `json:"created_at"`
}

func topicsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Topics)
	}
}

// createPostHandler godoc
// @Summary Publicar en la comunidad
// @Description Título y contenido obligatorios. Se rechaza el contenido con palabras no permitidas. Máximo 3 imágenes.
// @Tags community
// @Accept json
// @Produce json
// @Param payload body createPostRequest true "Publicación"
// @Success 201 {object} postResponse
// @Failure 400 {string} string "invalid input"
// @Failure 422 {string} string "content not allowed"
// @Router /community/posts [post]
func createPostHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		var req createPostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.CreatePost(r.Context(), claims, CreatePostInput{
			Title:   req.Title,
			Content: req.Content,
			Topic:   req.Topic,
			Tags:    req.Tags,
			Images:  req.Images,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPostResponse(p, claims.UserID))
	}
}

// listPostsHandler godoc
// @Summary Listar publicaciones
// @Tags community
// @Produce json
// @Param q query string false "texto en título, contenido o tags"
// @Param topic query string false "tema o tag; all = todos"
// @Success 200 {array} postResponse
// @Router /community/posts [get]
func listPostsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		items, err := svc.ListPosts(r.Context(), ListFilter{
			Query: r.URL.Query().Get("q"),
			Topic: r.URL.Query().Get("topic"),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]postResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPostResponse(p, claims.UserID))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func addCommentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		var req textRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.AddComment(r.Context(), claims, chi.URLParam(r, "postID"), req.Text)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPostResponse(p, claims.UserID))
	}
}

func toggleLikeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		p, err := svc.ToggleLike(r.Context(), claims, chi.URLParam(r, "postID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPostResponse(p, claims.UserID))
	}
}

// askHandler godoc
// @Summary Consultar al veterinario
// @Tags community
// @Accept json
// @Produce json
// @Param payload body textRequest true "Consulta"
// @Success 201 {object} questionResponse
// @Router /community/vet-questions [post]
func askHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		var req textRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		q, err := svc.Ask(r.Context(), claims, req.Text, req.Image)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toQuestionResponse(q))
	}
}

func listQuestionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.RequireUser(w, r); !ok {
			return
		}

		items, err := svc.ListQuestions(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]questionResponse, 0, len(items))
		for _, q := range items {
			out = append(out, toQuestionResponse(q))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// replyHandler godoc
// @Summary Responder consulta
// @Description Solo roles admin o vet.
// @Tags community
// @Accept json
// @Produce json
// @Param questionID path string true "ID de la consulta"
// @Param payload body textRequest true "Respuesta"
// @Success 200 {object} questionResponse
// @Failure 403 {string} string "forbidden"
// @Router /community/vet-questions/{questionID}/reply [post]
func replyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		var req textRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		q, err := svc.Reply(r.Context(), claims, chi.URLParam(r, "questionID"), req.Text)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toQuestionResponse(q))
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrModerated):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toAuthor(a Author) authorResponse {
	return authorResponse{UserID: a.UserID, Name: a.Name, Role: a.Role}
}

func toPostResponse(p Post, viewerID string) postResponse {
	comments := make([]commentResponse, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, commentResponse{
			ID:        c.ID,
			Author:    toAuthor(c.Author),
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	return postResponse{
		ID:        p.ID,
		Author:    toAuthor(p.Author),
		Topic:     p.Topic,
		Title:     p.Title,
		Content:   p.Content,
		Tags:      nonNil(p.Tags),
		Images:    nonNil(p.Images),
		Comments:  comments,
		Likes:     len(p.Likes),
		LikedByMe: p.LikedBy(viewerID),
		CreatedAt: p.CreatedAt,
	}
}

func toQuestionResponse(q VetQuestion) questionResponse {
	out := questionResponse{
		ID:        q.ID,
		Author:    toAuthor(q.Author),
		Text:      q.Text,
		Image:     q.Image,
		CreatedAt: q.CreatedAt,
	}
	if q.Reply != nil {
		out.Reply = &replyResponse{
			Author:    toAuthor(q.Reply.Author),
			Text:      q.Reply.Text,
			CreatedAt: q.Reply.CreatedAt,
		}
	}
	return out
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
