package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/m0nesy/f1kz-be/internal/api/handlers"
	"github.com/m0nesy/f1kz-be/internal/auth"
	"github.com/m0nesy/f1kz-be/internal/services"
)

// Options carries the dependencies the router wires into handlers.
type Options struct {
	UserService services.UserServiceProvider
	NewsService services.NewsServiceProvider
	F1Client    handlers.F1Fetcher
	AIClient    handlers.AIGenerator
	JWTSecret   []byte
	CORSOrigins []string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(opts.UserService, opts.JWTSecret)
	userHandler := handlers.NewUserHandler(opts.UserService)
	f1Handler := handlers.NewF1Handler(opts.F1Client)
	aiHandler := handlers.NewAIHandler(opts.AIClient, opts.NewsService)
	healthHandler := handlers.NewHealthHandler()

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Get)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(auth.JWTMiddleware(opts.JWTSecret))
			r.Get("/me", userHandler.GetMe)
			r.Patch("/me", userHandler.UpdateMe)
		})

		r.Route("/f1api", f1Handler.Routes)
		r.Route("/f1", f1Handler.LegacyRoutes)

		r.Route("/ai", func(r chi.Router) {
			r.Post("/generate-news", aiHandler.GenerateNews)
			r.Post("/generate-image", aiHandler.GenerateImage)
		})

		r.Get("/news/latest", aiHandler.LatestNews)
	})

	// Everything else is a JSON 404, matching the error body shape used by
	// the handlers.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not found"}`))
	})

	return r
}
