package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"smart-feeding/internal/domain/community"
	"smart-feeding/internal/domain/pets"
	"smart-feeding/internal/domain/quiz"
	"smart-feeding/internal/domain/records"
	"smart-feeding/internal/domain/users"
	"smart-feeding/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNoSink       = errors.New("backup sink not configured")
)

const (
	RecentUsersLimit    = 5
	RecentActivityLimit = 10
	Platform            = "Smart Feeding"
)

type UserSource interface {
	List(ctx context.Context) ([]users.User, error)
	Sessions(ctx context.Context) ([]users.Session, error)
}

type PetSource interface {
	List(ctx context.Context) ([]pets.Pet, error)
}

type QuizSource interface {
	List(ctx context.Context) ([]quiz.Result, error)
}

type RecordSource interface {
	Count(ctx context.Context) (int, error)
	History(ctx context.Context, petID string) ([]records.Record, error)
}

type CommunitySource interface {
	ListPosts(ctx context.Context, f community.ListFilter) ([]community.Post, error)
	ListQuestions(ctx context.Context) ([]community.VetQuestion, error)
}

// Sink recibe los respaldos; devuelve dónde quedó guardado.
type Sink interface {
	Write(ctx context.Context, name string, data []byte) (string, error)
}

type Options struct {
	// Community es opcional; sin él el snapshot no trae publicaciones.
	Community CommunitySource
	Sink      Sink
	Storage   string
	Version   string
	Log       logger.Logger
}

type Service struct {
	users     UserSource
	pets      PetSource
	quizzes   QuizSource
	records   RecordSource
	community CommunitySource
	sink      Sink
	storage   string
	version   string
	log       logger.Logger
	now       func() time.Time

	mu         sync.Mutex
	lastBackup *time.Time
}

func NewService(u UserSource, p PetSource, q QuizSource, rs RecordSource, opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		users:     u,
		pets:      p,
		quizzes:   q,
		records:   rs,
		community: opts.Community,
		sink:      opts.Sink,
		storage:   opts.Storage,
		version:   opts.Version,
		log:       log.With(map[string]any{"module": "admin"}),
		now:       time.Now,
	}
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	us, err := s.users.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	ps, err := s.pets.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	qs, err := s.quizzes.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	sessions, err := s.users.Sessions(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		TotalUsers:   len(us),
		TotalPets:    len(ps),
		TotalQuizzes: len(qs),
	}
	if s.records != nil {
		if st.TotalRecords, err = s.records.Count(ctx); err != nil {
			return Stats{}, err
		}
	}

	now := s.now()
	for _, sess := range sessions {
		if sameDay(sess.CreatedAt.In(now.Location()), now) {
			st.ActiveToday++
		}
	}
	return st, nil
}

// RecentUsers: los más nuevos primero.
func (s *Service) RecentUsers(ctx context.Context) ([]users.User, error) {
	us, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(us, func(i, j int) bool { return us[i].CreatedAt.After(us[j].CreatedAt) })
	if len(us) > RecentUsersLimit {
		us = us[:RecentUsersLimit]
	}
	return us, nil
}

// RecentActivity mezcla altas de usuarios y cuestionarios completados.
func (s *Service) RecentActivity(ctx context.Context) ([]Activity, error) {
	us, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	qs, err := s.quizzes.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(us))
	out := make([]Activity, 0, len(us)+len(qs))
	for _, u := range us {
		names[u.ID] = u.FullName
		out = append(out, Activity{
			Type:        ActivityUserRegistered,
			User:        u.FullName,
			Timestamp:   u.CreatedAt,
			Description: fmt.Sprintf("%s se registró en la plataforma", u.FullName),
		})
	}
	for _, q := range qs {
		name, ok := names[q.UserID]
		if !ok || name == "" {
			name = "Usuario"
		}
		out = append(out, Activity{
			Type:        ActivityQuizCompleted,
			User:        name,
			Timestamp:   q.CompletedAt,
			Description: fmt.Sprintf("%s completó un cuestionario", name),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > RecentActivityLimit {
		out = out[:RecentActivityLimit]
	}
	return out, nil
}

func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	us, err := s.users.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	ps, err := s.pets.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	qs, err := s.quizzes.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	sessions, err := s.users.Sessions(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Users:        make([]ExportUser, 0, len(us)),
		Pets:         make([]ExportPet, 0, len(ps)),
		QuizResults:  make([]ExportQuiz, 0, len(qs)),
		Sessions:     make([]ExportSession, 0, len(sessions)),
		Posts:        []ExportPost{},
		VetQuestions: []ExportQuestion{},
		ExportedAt:   s.now().UTC(),
	}
	for _, u := range us {
		snap.Users = append(snap.Users, ExportUser{
			ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role, CreatedAt: u.CreatedAt,
		})
	}
	for _, p := range ps {
		hist := []ExportRecord{}
		if s.records != nil {
			rs, err := s.records.History(ctx, p.ID)
			if err != nil {
				return Snapshot{}, fmt.Errorf("history of pet %s: %w", p.ID, err)
			}
			hist = exportRecords(rs)
		}
		snap.Pets = append(snap.Pets, ExportPet{
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
			SavedPlan:          p.SavedPlan,
			Records:            hist,
			CreatedAt:          p.CreatedAt,
		})
	}
	for _, q := range qs {
		snap.QuizResults = append(snap.QuizResults, ExportQuiz{
			ID:             q.ID,
			UserID:         q.UserID,
			PetID:          q.PetID,
			Answers:        q.Answers,
			Recommendation: q.Recommendation,
			CompletedAt:    q.CompletedAt,
		})
	}
	for _, sess := range sessions {
		snap.Sessions = append(snap.Sessions, ExportSession{ID: sess.ID, UserID: sess.UserID, CreatedAt: sess.CreatedAt})
	}

	if s.community != nil {
		posts, err := s.community.ListPosts(ctx, community.ListFilter{})
		if err != nil {
			return Snapshot{}, err
		}
		questions, err := s.community.ListQuestions(ctx)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Posts = exportPosts(posts)
		snap.VetQuestions = exportQuestions(questions)
	}
	return snap, nil
}

func (s *Service) Export(ctx context.Context, f Format) ([]byte, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Encode(snap, f)
}

// Backup escribe el snapshot en formato json en el sink configurado.
func (s *Service) Backup(ctx context.Context) (string, error) {
	if s.sink == nil {
		return "", ErrNoSink
	}
	data, err := s.Export(ctx, FormatJSON)
	if err != nil {
		return "", err
	}

	now := s.now()
	loc, err := s.sink.Write(ctx, BackupName(now.UTC(), FormatJSON), data)
	if err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}

	s.mu.Lock()
	s.lastBackup = &now
	s.mu.Unlock()

	s.log.Info("backup written", map[string]any{"location": loc, "bytes": len(data)})
	return loc, nil
}

func (s *Service) SystemInfo(ctx context.Context) (SystemInfo, error) {
	us, err := s.users.List(ctx)
	if err != nil {
		return SystemInfo{}, err
	}
	ps, err := s.pets.List(ctx)
	if err != nil {
		return SystemInfo{}, err
	}

	info := SystemInfo{
		Platform: Platform,
		Version:  s.version,
		Storage:  s.storage,
		Users:    len(us),
		Pets:     len(ps),
	}
	if st, ok := s.sink.(fmt.Stringer); ok {
		info.BackupSink = st.String()
	}

	s.mu.Lock()
	if s.lastBackup != nil {
		t := *s.lastBackup
		info.LastBackup = &t
	}
	s.mu.Unlock()
	return info, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
