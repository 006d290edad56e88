package httpapi

import (
	"io"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"routinepet/internal/coach"
	"routinepet/internal/engine"
)

var localOrigin = regexp.MustCompile(`^http://(localhost|127\.0\.0\.1)(:\d+)?$`)

type Server struct {
	svc        *engine.Service
	coach      *coach.Coach
	logger     *slog.Logger
	adminToken string
}

type Options struct {
	Service    *engine.Service
	Coach      *coach.Coach
	Logger     *slog.Logger
	AdminToken string
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := opts.Coach
	if c == nil {
		c = coach.New(nil, logger)
	}
	return &Server{svc: opts.Service, coach: c, logger: logger, adminToken: opts.AdminToken}
}

// Handler returns the full middleware-wrapped API.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/pet/state", s.petState).Methods(http.MethodGet)
	api.HandleFunc("/routine", s.listRoutines).Methods(http.MethodGet)
	api.HandleFunc("/routine", s.createRoutine).Methods(http.MethodPost)
	api.HandleFunc("/routine/complete", s.completeRoutine).Methods(http.MethodPost)
	api.HandleFunc("/routine/{id:[0-9]+}", s.updateRoutine).Methods(http.MethodPut)
	api.HandleFunc("/routine/{id:[0-9]+}", s.deleteRoutine).Methods(http.MethodDelete)
	api.HandleFunc("/stats/weekly", s.weeklyStats).Methods(http.MethodGet)
	api.HandleFunc("/stats/streak", s.streak).Methods(http.MethodGet)
	api.HandleFunc("/coach/chat", s.coachChat).Methods(http.MethodPost)
	api.HandleFunc("/recommend/generate", s.recommend).Methods(http.MethodPost)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(RequireBearer(s.adminToken))
	admin.HandleFunc("/routines", s.listRoutines).Methods(http.MethodGet)
	admin.HandleFunc("/routines", s.createRoutine).Methods(http.MethodPost)
	admin.HandleFunc("/routines/{id:[0-9]+}", s.updateRoutine).Methods(http.MethodPut)
	admin.HandleFunc("/routines/{id:[0-9]+}", s.deleteRoutine).Methods(http.MethodDelete)
	admin.HandleFunc("/pet_state", s.patchPet).Methods(http.MethodPatch)
	admin.HandleFunc("/logs", s.adminLogs).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOriginValidator(localOrigin.MatchString),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Request-Id"}),
		handlers.ExposedHeaders([]string{"X-Request-Id"}),
		handlers.AllowCredentials(),
	)

	return Chain(r,
		WithRequestID,
		WithRecover(s.logger),
		WithAccessLog(s.logger),
		cors,
	)
}
