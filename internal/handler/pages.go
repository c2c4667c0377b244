package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"detectwidget/internal/controller"
	"detectwidget/internal/middleware"
	"detectwidget/internal/model"
)

// PageHandler renders one of the widget views through its controller.
func PageHandler(env *Env, page controller.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := newPageView(page, nil, middleware.SessionID(r.Context()))

		ctrl, err := controller.New(page, env.deps(r), view.bindings())
		if err != nil {
			env.Logger.Error("Error building %s controller: %v", page, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		ctrl.Init()

		env.render(w, http.StatusOK, view)
	}
}

// UploadHandler handles POST /upload with a multipart "file" field. The
// optional "source" field tells a drop from a picker selection. A successful
// detection redirects to the result view; anything else re-renders the
// upload view with the alert or inline message.
func UploadHandler(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := newPageView(controller.PageUpload, env.Hub, middleware.SessionID(r.Context()))
		ctrl := controller.NewUploadController(view, env.deps(r))

		r.Body = http.MaxBytesReader(w, r.Body, env.Config.MaxUploadBytes())
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				view.SetStatus("The image is too large.")
				env.render(w, http.StatusRequestEntityTooLarge, view)
				return
			}
			env.Logger.Warning("Error parsing upload form: %v", err)
			view.Alert(controller.MsgSelectImage)
			env.render(w, http.StatusBadRequest, view)
			return
		}

		drop := r.FormValue("source") == "drop"

		file, header, err := r.FormFile("file")
		if err != nil {
			if drop {
				view.Alert(controller.MsgDropImage)
			} else {
				view.Alert(controller.MsgSelectImage)
			}
			env.render(w, http.StatusOK, view)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			env.Logger.Error("Error reading uploaded file %s: %v", header.Filename, err)
			http.Error(w, "Error reading file", http.StatusBadRequest)
			return
		}

		upload := model.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}

		if drop {
			ctrl.DropFile(r.Context(), upload)
		} else {
			ctrl.SelectFile(r.Context(), upload)
		}

		if view.navigate {
			http.Redirect(w, r, "/result", http.StatusSeeOther)
			return
		}
		env.render(w, http.StatusOK, view)
	}
}

// OpenHistoryHandler handles POST /history/open with an "idx" value: the
// entry becomes the session's last result and the result view opens.
func OpenHistoryHandler(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx, err := strconv.Atoi(r.FormValue("idx"))
		if err != nil {
			http.Error(w, "Invalid history index", http.StatusBadRequest)
			return
		}

		view := newPageView(controller.PageHistory, nil, middleware.SessionID(r.Context()))
		ctrl := controller.NewHistoryController(view, env.deps(r))

		if ctrl.Open(idx) && view.navigate {
			http.Redirect(w, r, "/result", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/history", http.StatusSeeOther)
	}
}

// ClearHistoryHandler handles POST /history/clear and re-renders the
// now empty history view.
func ClearHistoryHandler(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := newPageView(controller.PageHistory, nil, middleware.SessionID(r.Context()))
		ctrl := controller.NewHistoryController(view, env.deps(r))

		status := http.StatusOK
		if err := ctrl.Clear(); err != nil {
			status = http.StatusInternalServerError
		} else {
			env.Logger.Info("History cleared for client %s", middleware.ShortID(middleware.ClientID(r.Context())))
		}
		env.render(w, status, view)
	}
}
