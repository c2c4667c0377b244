package route

import (
	"net/http"

	"detectwidget/internal/controller"
	"detectwidget/internal/handler"
	"detectwidget/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes registers the widget pages, static files, the JSON API and the
// log endpoints. Everything except static files runs inside the session
// middleware so storage is scoped to the calling browser.
func SetupRoutes(env *handler.Env) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(env.Logger))

	// Static files
	r.Handle("/static/*", http.StripPrefix("/static/", handler.StaticHandler()))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/upload", http.StatusFound)
		})

		// Views
		r.Get("/upload", handler.PageHandler(env, controller.PageUpload))
		r.Post("/upload", handler.UploadHandler(env))
		r.Get("/result", handler.PageHandler(env, controller.PageResult))
		r.Get("/history", handler.PageHandler(env, controller.PageHistory))
		r.Post("/history/open", handler.OpenHistoryHandler(env))
		r.Post("/history/clear", handler.ClearHistoryHandler(env))
		r.Get("/ws", handler.ViewWebsocketHandler(env))

		// API endpoints
		r.Route("/api", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   env.Config.CORSOrigins,
				AllowedMethods:   []string{"GET", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Content-Type"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
			r.Get("/history", handler.HistoryAPIHandler(env))
			r.Get("/last", handler.LastResultAPIHandler(env))
		})
	})

	// Log endpoints, only with a configured token
	if env.Config.LogsToken != "" {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireToken(env.Config.LogsToken))
			r.Get("/logs/{level}", handler.ShowLogsHandler(env))
			r.Post("/logs/{level}/clear", handler.ClearLogsHandler(env))
		})
	}

	return r
}
