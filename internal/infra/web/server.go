package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"iptv-reseller-store/internal/usecase"
)

// Server exposes the storefront over HTTP. Identity and role gating come
// from the auth store's current principal; this node serves one operator
// session at a time.
type Server struct {
	auth    *usecase.AuthStore
	catalog *usecase.CatalogStore
	log     *zerolog.Logger
}

func NewServer(auth *usecase.AuthStore, catalog *usecase.CatalogStore, logger *zerolog.Logger) *Server {
	return &Server{
		auth:    auth,
		catalog: catalog,
		log:     logger,
	}
}

// Handler builds the full route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.registerHandler)
			r.Post("/login", s.loginHandler)
			r.Post("/logout", s.logoutHandler)
			r.Get("/session", s.sessionHandler)
		})

		r.Get("/plans", s.plansListHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/purchases", s.purchaseHandler)
			r.Get("/purchases", s.purchasesListHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth, s.requireAdmin)
			r.Post("/plans", s.planCreateHandler)
			r.Put("/plans/{id}", s.planUpdateHandler)
			r.Delete("/plans/{id}", s.planDeleteHandler)
			r.Post("/plans/{id}/codes", s.codesImportHandler)
			r.Post("/plans/{id}/codes/generate", s.codesGenerateHandler)
			r.Get("/codes", s.codesListHandler)
			r.Get("/users", s.usersListHandler)
		})
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Msg("http request")
	})
}

// requireAuth rejects requests when nobody is signed in on this node.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth.Current() == nil {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := s.auth.Current()
		if cur == nil || !cur.IsAdmin() {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
