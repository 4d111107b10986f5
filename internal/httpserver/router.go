package httpserver

import (
	"net/http"
	"time"

	"github.com/anvlasov/bug-report-service/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(logger *zap.Logger, svc Service, gate *auth.Gate) http.Handler {
	h := &handler{
		svc:    svc,
		gate:   gate,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(zapRequestLogger(logger))

	r.Get("/health", h.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(gate.Middleware(rejectUnauthenticated))
			r.Post("/logout", h.handleLogout)
			r.Post("/password", h.handleChangePassword)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(gate.Middleware(rejectUnauthenticated))

		r.Route("/sprints", func(r chi.Router) {
			r.Post("/", h.handleSprintCreate)
			r.Get("/statistics", h.handleSprintStatistics)
			r.Get("/{name}", h.handleSprintGet)
			r.Get("/{name}/bugs", h.handleSprintBugs)
		})

		r.Route("/bugs", func(r chi.Router) {
			r.Post("/", h.handleBugReportCreate)
			r.Get("/", h.handleBugReportList)
			r.Get("/{number}", h.handleBugReportGet)
			r.Patch("/{number}", h.handleBugReportEdit)
			r.Post("/{number}/fix", h.handleBugReportFix)
			r.Post("/{number}/close", h.handleBugReportClose)
			r.Post("/{number}/subscribe", h.handleBugReportSubscribe)
		})
	})

	return r
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": timeNow().UTC().Format(time.RFC3339),
	})
}

func rejectUnauthenticated(w http.ResponseWriter, err error) {
	writeError(w, http.StatusUnauthorized, "AUTHENTICATION_FAILURE", err.Error())
}

func zapRequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info(
				"http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
