package handler

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"detectwidget/internal/config"
	"detectwidget/internal/controller"
	"detectwidget/internal/logger"
	"detectwidget/internal/middleware"
	"detectwidget/internal/repository/memory"
	"detectwidget/internal/repository/sqlite"
	"detectwidget/internal/service/storage"
	wsservice "detectwidget/internal/service/websocket"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Env holds what the handlers need to build per-request controllers.
type Env struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        *sqlite.DB
	Sessions  *memory.SessionRegistry
	Predictor controller.Submitter
	Hub       *wsservice.HubService // optional
	Formatter *controller.TimeFormatter

	templates map[controller.Page]*template.Template
}

// NewEnv parses the page templates and returns a ready Env.
func NewEnv(cfg *config.Config, logger *logger.Logger, db *sqlite.DB, sessions *memory.SessionRegistry,
	predictor controller.Submitter, hub *wsservice.HubService) (*Env, error) {
	templates := make(map[controller.Page]*template.Template)
	for _, page := range []controller.Page{controller.PageUpload, controller.PageResult, controller.PageHistory} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+string(page)+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &Env{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Sessions:  sessions,
		Predictor: predictor,
		Hub:       hub,
		Formatter: controller.NewTimeFormatter(cfg.Location(), cfg.TimeFormat),
		templates: templates,
	}, nil
}

// Store returns the result storage of the browser and session behind r.
func (e *Env) Store(r *http.Request) *storage.Service {
	durable := sqlite.NewKVRepository(e.DB, middleware.ClientID(r.Context()))
	session := e.Sessions.Get(middleware.SessionID(r.Context()))
	return storage.NewService(durable, session, e.Logger)
}

func (e *Env) deps(r *http.Request) controller.Deps {
	return controller.Deps{
		Store:     e.Store(r),
		Submitter: e.Predictor,
		Formatter: e.Formatter,
		Logger:    e.Logger,
	}
}

func (e *Env) render(w http.ResponseWriter, status int, view *pageView) {
	tmpl, ok := e.templates[view.data.Page]
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", view.data); err != nil {
		e.Logger.Error("Error rendering %s page: %v", view.data.Page, err)
	}
}

// StaticHandler serves the embedded CSS and script files.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
