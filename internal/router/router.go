package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-todo-api/internal/config"
	"go-todo-api/internal/handler"
	"go-todo-api/internal/middleware"
)

type Handlers struct {
	Auth *handler.AuthHandler
	Todo *handler.TodoHandler
}

// New assembles the request gate and routes. Gate order matters:
// recovery wraps everything, security headers sit directly under it so
// every response carries them including the short-circuits written by
// later gates, query hygiene runs before routing, and the CSRF check
// sits after authentication on the state-changing todo routes.
func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, handlers Handlers, healthCheck func(context.Context) error) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Logging)
	r.Use(middleware.QueryHygiene)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if healthCheck != nil {
			if err := healthCheck(req.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unhealthy"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", handlers.Auth.Login)
			auth.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles("admin"), middleware.RequireCSRF).Post("/register", handlers.Auth.Register)
			auth.With(authMiddleware.RequireAuth, middleware.RequireCSRF).Post("/logout", handlers.Auth.Logout)
			auth.With(authMiddleware.RequireAuth).Get("/profile", handlers.Auth.Profile)
		})

		api.Route("/todos", func(todos chi.Router) {
			todos.Use(authMiddleware.RequireAuth)
			todos.Use(middleware.RequireCSRF)

			todos.Get("/", handlers.Todo.List)
			todos.Get("/{id}", handlers.Todo.Get)
			todos.Post("/", handlers.Todo.Create)
			todos.Put("/{id}", handlers.Todo.Update)
			todos.Delete("/{id}", handlers.Todo.Delete)
		})
	})

	return r
}
