package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"detectwidget/internal/logger"

	"github.com/go-chi/chi/v5"
)

// ShowLogsHandler serves the log file of the {level} URL parameter as text/plain.
func ShowLogsHandler(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, ok := logger.Levels[chi.URLParam(r, "level")]
		if !ok || env.Logger.Dir() == "" {
			http.NotFound(w, r)
			return
		}
		serveLogFile(w, r, env.Logger.Dir(), filename)
	}
}

// serveLogFile is a helper that sets headers and serves a log file if it exists.
func serveLogFile(w http.ResponseWriter, r *http.Request, logDir, filename string) {
	filePath := filepath.Join(logDir, filename)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Log file not found: " + filename))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	http.ServeFile(w, r, filePath)
}

// ClearLogsHandler truncates the log file of the {level} URL parameter.
func ClearLogsHandler(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, ok := logger.Levels[chi.URLParam(r, "level")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if err := env.Logger.CleanLogs(filename); err != nil {
			http.Error(w, "Unable to clear log", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
