package api

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/exercise-tracker/internal/api/handlers"
	"github.com/isdelr/exercise-tracker/internal/logger"
	"github.com/isdelr/exercise-tracker/internal/services"
	"github.com/isdelr/exercise-tracker/internal/websocket"
)

// Options controls the non-API parts of the router.
type Options struct {
	PublicDir      string
	ViewsDir       string
	AllowedOrigins []string
}

// Services bundles the stores the handlers depend on.
type Services struct {
	Users     services.UserServiceProvider
	Exercises services.ExerciseServiceProvider
	Events    services.EventServiceProvider
	Activity  *services.ActivityRecorder
}

// NewRouter creates and configures a new Chi router.
func NewRouter(opts Options, hub *websocket.Hub, svc Services) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger)
	r.Use(middleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(svc.Users, svc.Activity)
	exerciseHandler := handlers.NewExerciseHandler(svc.Users, svc.Exercises, svc.Activity)
	eventHandler := handlers.NewEventHandler(svc.Events)
	wsHandler := handlers.NewWebSocketHandler(hub, svc.Users)

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.GetAll)
			r.Post("/", userHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Post("/exercises", exerciseHandler.Create)
				r.Get("/logs", exerciseHandler.GetLog)
			})
		})

		r.Get("/events", eventHandler.GetRecent)

		r.Get("/ws", wsHandler.Serve)
		r.Get("/ws/users/{id}", wsHandler.Serve)
	})

	// Landing page and static assets
	index := filepath.Join(opts.ViewsDir, "index.html")
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, index)
	})
	r.Handle("/*", http.FileServer(http.Dir(opts.PublicDir)))

	return r
}
