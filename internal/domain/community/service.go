package community

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"smart-feeding/internal/domain/users"
	"smart-feeding/internal/platform/logger"
	"smart-feeding/internal/ports/auth"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("modified concurrently")
)

const maxRetries = 3

// Directory resuelve el nombre visible de un autor.
type Directory interface {
	GetByID(ctx context.Context, id string) (users.User, error)
}

type Service struct {
	posts     PostRepository
	questions QuestionRepository
	users     Directory
	log       logger.Logger
	now       func() time.Time
}

func NewService(posts PostRepository, questions QuestionRepository, dir Directory, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		posts:     posts,
		questions: questions,
		users:     dir,
		log:       log.With(map[string]any{"module": "community"}),
		now:       time.Now,
	}
}

type CreatePostInput struct {
	Title   string
	Content string
	Topic   string
	Tags    []string
	Images  []string
}

func (s *Service) CreatePost(ctx context.Context, c auth.Claims, in CreatePostInput) (Post, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return Post{}, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}

	topic := strings.TrimSpace(in.Topic)
	if topic == "" {
		topic = DefaultTopic
	}
	if !KnownTopic(topic) {
		return Post{}, fmt.Errorf("%w: unknown topic %q", ErrInvalidInput, topic)
	}

	if err := Moderate(title, content); err != nil {
		return Post{}, err
	}

	images := make([]string, 0, MaxImages)
	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" && len(images) < MaxImages {
			images = append(images, img)
		}
	}

	p := Post{
		ID:        uuid.NewString(),
		Author:    s.author(ctx, c),
		Topic:     topic,
		Title:     title,
		Content:   content,
		Tags:      cleanTags(in.Tags),
		Images:    images,
		Comments:  []Comment{},
		Likes:     []string{},
		CreatedAt: s.now(),
	}

	created, err := s.posts.Create(ctx, p)
	if err != nil {
		return Post{}, err
	}
	s.log.Info("post created", map[string]any{"post_id": created.ID, "topic": topic})
	return created, nil
}

// ListPosts devuelve las publicaciones más nuevas primero.
func (s *Service) ListPosts(ctx context.Context, f ListFilter) ([]Post, error) {
	all, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	topic := strings.TrimSpace(f.Topic)

	out := make([]Post, 0, len(all))
	for _, p := range all {
		if topic != "" && topic != "all" && p.Topic != topic && !slices.Contains(p.Tags, topic) {
			continue
		}
		if q != "" && !matchesQuery(p, q) {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Service) GetPost(ctx context.Context, id string) (Post, error) {
	if strings.TrimSpace(id) == "" {
		return Post{}, ErrInvalidInput
	}
	return s.posts.GetByID(ctx, id)
}

func (s *Service) AddComment(ctx context.Context, c auth.Claims, postID, text string) (Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Post{}, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	if err := Moderate(text); err != nil {
		return Post{}, err
	}

	comment := Comment{
		ID:        uuid.NewString(),
		Author:    s.author(ctx, c),
		Text:      text,
		CreatedAt: s.now(),
	}
	return s.mutatePost(ctx, postID, func(p *Post) {
		p.Comments = append(p.Comments, comment)
	})
}

// ToggleLike agrega o quita el like del usuario.
func (s *Service) ToggleLike(ctx context.Context, c auth.Claims, postID string) (Post, error) {
	return s.mutatePost(ctx, postID, func(p *Post) {
		likes := make([]string, 0, len(p.Likes)+1)
		found := false
		for _, id := range p.Likes {
			if id == c.UserID {
				found = true
				continue
			}
			likes = append(likes, id)
		}
		if !found {
			likes = append(likes, c.UserID)
		}
		p.Likes = likes
	})
}

func (s *Service) mutatePost(ctx context.Context, postID string, apply func(*Post)) (Post, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		p, err := s.GetPost(ctx, postID)
		if err != nil {
			return Post{}, err
		}
		apply(&p)

		updated, err := s.posts.Update(ctx, p)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, ErrConflict) {
			return Post{}, err
		}
		lastErr = err
	}
	return Post{}, lastErr
}

func (s *Service) Ask(ctx context.Context, c auth.Claims, text, image string) (VetQuestion, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return VetQuestion{}, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	if err := Moderate(text); err != nil {
		return VetQuestion{}, err
	}

	q := VetQuestion{
		ID:        uuid.NewString(),
		Author:    s.author(ctx, c),
		Text:      text,
		Image:     strings.TrimSpace(image),
		CreatedAt: s.now(),
	}
	created, err := s.questions.Create(ctx, q)
	if err != nil {
		return VetQuestion{}, err
	}
	s.log.Info("vet question asked", map[string]any{"question_id": created.ID})
	return created, nil
}

// ListQuestions: más nuevas primero.
func (s *Service) ListQuestions(ctx context.Context) ([]VetQuestion, error) {
	items, err := s.questions.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// Reply solo para admin o veterinario; una nueva respuesta reemplaza la anterior.
func (s *Service) Reply(ctx context.Context, c auth.Claims, questionID, text string) (VetQuestion, error) {
	if !c.IsStaff() {
		return VetQuestion{}, ErrForbidden
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return VetQuestion{}, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}

	reply := &Reply{Author: s.author(ctx, c), Text: text, CreatedAt: s.now()}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		q, err := s.questions.GetByID(ctx, questionID)
		if err != nil {
			return VetQuestion{}, err
		}
		q.Reply = reply

		updated, err := s.questions.Update(ctx, q)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, ErrConflict) {
			return VetQuestion{}, err
		}
		lastErr = err
	}
	return VetQuestion{}, lastErr
}

func KnownTopic(t string) bool {
	return slices.Contains(Topics, t)
}

// author usa el nombre registrado; en modo dev el usuario puede no existir.
func (s *Service) author(ctx context.Context, c auth.Claims) Author {
	a := Author{UserID: c.UserID, Name: "Usuario", Role: c.Role}
	if a.Role == "" {
		a.Role = auth.RoleUser
	}
	if s.users == nil {
		return a
	}
	if u, err := s.users.GetByID(ctx, c.UserID); err == nil && u.FullName != "" {
		a.Name = u.FullName
	}
	return a
}

func matchesQuery(p Post, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Content), q) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
