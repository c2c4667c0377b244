// Package controller holds the page logic of the widget: one controller per
// view, each driven through a view interface and the Store and Submitter
// dependencies so the same logic runs behind HTML pages or test doubles.
package controller

import (
	"context"
	"fmt"

	"detectwidget/internal/dto"
	"detectwidget/internal/logger"
	"detectwidget/internal/model"
)

// Store is the result persistence used by every page.
type Store interface {
	LoadHistory() []model.DetectionResult
	SaveHistoryItem(item model.DetectionResult) error
	ClearHistory() error
	SetLastResult(item model.DetectionResult) error
	GetLastResult() (model.DetectionResult, bool)
}

// Submitter sends an image to the prediction service.
type Submitter interface {
	Submit(ctx context.Context, upload model.Upload) (model.DetectionResult, error)
}

// UploadView is what the upload page exposes to its controller.
type UploadView interface {
	Alert(message string)
	ShowPreview(dataURI string)
	SetStatus(message string)
	SetLoading(visible bool)
	NavigateToResult()
}

// ResultView is what the result page exposes to its controller.
type ResultView interface {
	ShowResult(card dto.ResultCard)
	ShowEmpty()
}

// HistoryView is what the history page exposes to its controller.
type HistoryView interface {
	ShowHistory(rows []dto.HistoryRow)
	ShowEmpty()
	NavigateToResult()
}

// Deps are shared by all controllers.
type Deps struct {
	Store     Store
	Submitter Submitter
	Formatter *TimeFormatter
	Logger    *logger.Logger
}

// Page identifies one of the widget views.
type Page string

const (
	PageUpload  Page = "upload"
	PageResult  Page = "result"
	PageHistory Page = "history"
)

// ParsePage validates a page identity.
func ParsePage(s string) (Page, error) {
	switch p := Page(s); p {
	case PageUpload, PageResult, PageHistory:
		return p, nil
	}
	return "", fmt.Errorf("unknown page %q", s)
}

// Controller is a page controller; Init runs once when the page loads.
type Controller interface {
	Init()
}

// Bindings carries the view of the page being built. Only the field matching
// the requested page is used.
type Bindings struct {
	Upload  UploadView
	Result  ResultView
	History HistoryView
}

// New builds the controller for page.
func New(page Page, deps Deps, views Bindings) (Controller, error) {
	switch page {
	case PageUpload:
		if views.Upload == nil {
			return nil, fmt.Errorf("page %s: missing upload view", page)
		}
		return NewUploadController(views.Upload, deps), nil
	case PageResult:
		if views.Result == nil {
			return nil, fmt.Errorf("page %s: missing result view", page)
		}
		return NewResultController(views.Result, deps), nil
	case PageHistory:
		if views.History == nil {
			return nil, fmt.Errorf("page %s: missing history view", page)
		}
		return NewHistoryController(views.History, deps), nil
	}
	return nil, fmt.Errorf("unknown page %q", page)
}
