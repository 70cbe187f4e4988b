package users

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"smart-feeding/internal/platform/logger"
	"smart-feeding/internal/ports/auth"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("user not found")
)

const MinPasswordLength = 6

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Options struct {
	// IsAdminEmail decide el rol admin al registrarse.
	IsAdminEmail func(email string) bool
	// PasswordCost de bcrypt; 0 = bcrypt.DefaultCost.
	PasswordCost int
	Log          logger.Logger
}

type Service struct {
	repo     Repository
	sessions SessionRepository
	issuer   auth.TokenIssuer
	isAdmin  func(string) bool
	cost     int
	log      logger.Logger
	now      func() time.Time
}

// NewService: issuer puede ser nil (modo dev, sin tokens).
func NewService(repo Repository, sessions SessionRepository, issuer auth.TokenIssuer, opts Options) *Service {
	s := &Service{
		repo:     repo,
		sessions: sessions,
		issuer:   issuer,
		isAdmin:  opts.IsAdminEmail,
		cost:     opts.PasswordCost,
		log:      opts.Log,
		now:      time.Now,
	}
	if s.isAdmin == nil {
		s.isAdmin = func(string) bool { return false }
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	s.log = s.log.With(map[string]any{"module": "users"})
	return s
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

// Register crea la cuenta e inicia sesión.
func (s *Service) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.FullName)

	if email == "" || name == "" || in.Password == "" {
		return AuthResult{}, ErrInvalidInput
	}
	if !emailRe.MatchString(email) {
		return AuthResult{}, ErrInvalidInput
	}
	if len(in.Password) < MinPasswordLength {
		return AuthResult{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return AuthResult{}, err
	}

	role := auth.RoleUser
	if s.isAdmin(email) {
		role = auth.RoleAdmin
	}

	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     name,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return AuthResult{}, err
	}

	s.log.Info("user registered", map[string]any{"user_id": u.ID, "role": u.Role})
	return s.startSession(ctx, u)
}

func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidInput
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.log.Warn("login failed", map[string]any{"user_id": u.ID})
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.startSession(ctx, u)
}

func (s *Service) startSession(ctx context.Context, u User) (AuthResult, error) {
	sess := Session{ID: uuid.NewString(), UserID: u.ID, CreatedAt: s.now()}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return AuthResult{}, err
	}

	res := AuthResult{User: u}
	if s.issuer == nil {
		return res, nil
	}
	tok, err := s.issuer.Issue(ctx, auth.Claims{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return AuthResult{}, err
	}
	res.Token = tok.Value
	res.ExpiresAt = tok.ExpiresAt
	return res, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	if strings.TrimSpace(id) == "" {
		return User{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Sessions(ctx context.Context) ([]Session, error) {
	return s.sessions.List(ctx)
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
