// Package handler implements the HTTP API of the trip planner.
// All handlers are methods on Server. Methods are split into files by
// resource (session.go, state.go, meal.go, ...) but share the same Server.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/middleware"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/service"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/tripstore"
)

// Planner defines the operations the handlers depend on. *service.Planner
// implements it; handler tests inject a mock.
type Planner interface {
	Login(name string) (service.SessionInfo, error)
	Logout(name string)
	Session(user string) (service.SessionInfo, error)
	EnsureSession(name string) (service.SessionInfo, error)

	Snapshot(user string) (tripstore.Snapshot, error)
	Status(user string) (tripstore.Status, error)
	Refresh(ctx context.Context, user string) error

	SetRSVP(user, eventID string, people []string, status domain.RSVPStatus) error
	ToggleMeal(user, day string, slot domain.MealSlot, person string) (bool, error)
	SetMeals(user, day string, slot domain.MealSlot, people []string, enabled bool) error
	UpdateProfile(user, person string, patch domain.ProfilePatch) (domain.Profile, error)
	Costs(user string) (service.CostSummary, error)

	UnlockAdmin(user, pin string) error
	SaveEvent(ctx context.Context, user string, unlocked bool, draft service.EventDraft) (domain.Event, error)
	DeleteEvent(ctx context.Context, user string, unlocked bool, id string) error
	Export(user string) ([]domain.AttendanceRow, error)
}

// Pinger reports whether the database is reachable. *pgxpool.Pool implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies of every handler.
type Server struct {
	planner Planner
	cookies sessions.Store
	db      Pinger
	log     *slog.Logger
}

// NewServer constructs the Server. db may be nil, in which case /healthz
// does not check the database.
func NewServer(planner Planner, cookies sessions.Store, db Pinger, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{planner: planner, cookies: cookies, db: db, log: log}
}

// RouterConfig holds the settings of the middleware stack.
type RouterConfig struct {
	CORSOrigins  []string
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// NewRouter returns the complete HTTP handler.
// Middleware is applied in order: RequestID, RealIP, request logging,
// Recoverer, CORS, body size limit.
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	logger := cfg.Logger
	if logger == nil {
		logger = s.log
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Get("/healthz", s.GetHealth)

	r.Post("/session", s.Login)
	r.Get("/session", s.GetSession)
	r.Delete("/session", s.Logout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Get("/state", s.GetState)
		r.Post("/state/refresh", s.RefreshState)

		r.Put("/events/{id}/rsvps", s.SetRSVP)
		r.Post("/meals/{day}/{slot}/toggle", s.ToggleMeal)
		r.Put("/meals/{day}/{slot}", s.SetMeals)
		r.Patch("/profiles/{person}", s.UpdateProfile)
		r.Get("/costs", s.GetCosts)

		r.Post("/admin/unlock", s.UnlockAdmin)
		r.Post("/events", s.CreateEvent)
		r.Put("/events/{id}", s.UpdateEvent)
		r.Delete("/events/{id}", s.DeleteEvent)

		r.Get("/export", s.GetExport)
	})

	return r
}
