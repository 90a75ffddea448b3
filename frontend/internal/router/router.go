package router

import (
	"net/http"

	"github.com/circle-dev/circle/frontend/internal/middleware"
	"github.com/circle-dev/circle/frontend/internal/session"
	"github.com/circle-dev/circle/frontend/internal/setup"
	mw "github.com/circle-dev/circle/shared/middleware"
	"github.com/circle-dev/circle/shared/middleware/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()
	h := deps.Handler

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(mw.SecurityHeadersWithCSP(deps.Public.SecureCookies, mw.FrontendCSP))

	// Probes and assets: no session
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(deps.Public.StaticPath))))

	csrfCfg := middleware.CSRFConfig{
		SecureCookies: deps.Public.SecureCookies,
		// the image plus the rest of the form
		MaxBodyBytes: deps.Public.MaxImageSizeBytes + 1<<20,
	}

	r.Group(func(r chi.Router) {
		r.Use(session.Middleware(deps.Sessions, deps.Public.SecureCookies))
		r.Use(middleware.GenerateCSRFToken(csrfCfg))
		r.Use(middleware.ValidateCSRFToken(csrfCfg))
		r.Use(deps.Identity.OptionalAuth())

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		})
		r.Get("/login", h.LoginGetHandler)
		r.Post("/login", h.LoginPostHandler)
		r.Post("/logout", h.LogoutHandler)

		r.Get("/threads", h.ThreadLookupHandler)
		r.Route("/threads/{thread}", func(r chi.Router) {
			r.Get("/", h.ThreadGetHandler)
			r.Post("/image", h.ImagePostHandler)
			r.Post("/image/discard", h.ImageDiscardHandler)
			r.With(mw.RateLimit(deps.ReplyLimiter, sessionIdentity)).Post("/replies", h.ReplyPostHandler)
			r.Post("/like", h.LikePostHandler)
		})

		r.Route("/api", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   deps.Public.CORSAllowedOrigins,
				AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders:   []string{"Content-Type", "X-CSRF-Token"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
			r.Get("/threads/{thread}/like", h.LikeAPIGetHandler)
			r.Post("/threads/{thread}/like", h.LikeAPIPostHandler)
		})
	})

	return r
}

// sessionIdentity keys rate limits by browser session.
func sessionIdentity(r *http.Request) (string, error) {
	if s := session.FromContext(r.Context()); s != nil {
		return s.ID, nil
	}
	return mw.GetIP(r)
}
