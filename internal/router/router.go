package router

import (
	"net/http"
	"slices"

	"smart-feeding/internal/adapters/storage/docstore"
	"smart-feeding/internal/adapters/storage/memory"
	"smart-feeding/internal/adapters/storage/repos"
	_ "smart-feeding/internal/docs"
	"smart-feeding/internal/domain/admin"
	"smart-feeding/internal/domain/community"
	"smart-feeding/internal/domain/pets"
	"smart-feeding/internal/domain/quiz"
	"smart-feeding/internal/domain/records"
	"smart-feeding/internal/domain/users"
	"smart-feeding/internal/middleware"
	"smart-feeding/internal/platform/logger"
	"smart-feeding/internal/platform/metrics"
	"smart-feeding/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Logger  logger.Logger
	Metrics *metrics.Metrics // nil = sin /metrics

	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	TokenIssuer  auth.TokenIssuer
	DevAuth      bool

	// Opcional: si no viene, in-memory.
	Backend docstore.Backend

	CORSAllowedOrigins []string
	IsAdminEmail       func(email string) bool

	BackupSink  admin.Sink
	StorageName string
	Version     string
}

// Services por módulo, expuestos para main (scheduler) y tests.
type Services struct {
	Users     *users.Service
	Pets      *pets.Service
	Records   *records.Service
	Quiz      *quiz.Service
	Community *community.Service
	Admin     *admin.Service
}

func NewServices(opts Options) *Services {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	backend := opts.Backend
	storage := opts.StorageName
	if backend == nil {
		backend = memory.NewStore()
		storage = "memory"
	}
	set := repos.New(backend)

	usersSvc := users.NewService(set.Users, set.Sessions, opts.TokenIssuer, users.Options{
		IsAdminEmail: opts.IsAdminEmail,
		Log:          log,
	})
	petsSvc := pets.NewService(set.Pets, log)
	recordsSvc := records.NewService(set.Records, petsSvc, log)
	petsSvc.OnDelete(recordsSvc)
	quizSvc := quiz.NewService(set.Quizzes, set.SavedPlans, petsSvc, opts.Metrics, log)
	communitySvc := community.NewService(set.Posts, set.Questions, usersSvc, log)
	adminSvc := admin.NewService(usersSvc, petsSvc, quizSvc, recordsSvc, admin.Options{
		Community: communitySvc,
		Sink:      opts.BackupSink,
		Storage:   storage,
		Version:   opts.Version,
		Log:       log,
	})

	return &Services{
		Users:     usersSvc,
		Pets:      petsSvc,
		Records:   recordsSvc,
		Quiz:      quizSvc,
		Community: communitySvc,
		Admin:     adminSvc,
	}
}

func NewRouter(opts Options) http.Handler {
	return Mount(opts, NewServices(opts))
}

// Mount arma el router con servicios ya creados.
func Mount(opts Options, svcs *Services) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier, opts.DevAuth))
	r.Use(middleware.AccessLog(log))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	if len(opts.CORSAllowedOrigins) > 0 {
		// Con "*" no se envían credenciales.
		wildcard := slices.Contains(opts.CORSAllowedOrigins, "*")
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-Match", "X-Debug-User-ID", "X-Debug-Role"},
			ExposedHeaders:   []string{"ETag"},
			AllowCredentials: !wildcard,
			MaxAge:           300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	users.RegisterRoutes(r, svcs.Users)
	pets.RegisterRoutes(r, svcs.Pets)
	records.RegisterRoutes(r, svcs.Records)
	quiz.RegisterRoutes(r, svcs.Quiz)
	community.RegisterRoutes(r, svcs.Community)
	admin.RegisterRoutes(r, svcs.Admin)

	return r
}
