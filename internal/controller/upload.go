package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"detectwidget/internal/logger"
	"detectwidget/internal/model"
	"detectwidget/internal/service/predict"
)

const (
	MsgSelectImage   = "Please select a valid image."
	MsgDropImage     = "Please drop a valid image."
	MsgConnectFailed = "Failed to connect to the server."
	MsgSaveFailed    = "Could not save the result."
	MsgBusy          = "An upload is already in progress."
)

// UploadState is the position of an upload page in its lifecycle.
type UploadState int

const (
	StateIdle UploadState = iota
	StatePreviewing
	StateSubmitting
	StateSucceeded
	StateFailed // idle again, with an error on display
)

func (s UploadState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreviewing:
		return "previewing"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("UploadState(%d)", int(s))
}

// UploadController runs the upload page: it gates files by type, previews
// them, submits them and hands successful results to the result page.
type UploadController struct {
	view      UploadView
	store     Store
	submitter Submitter
	logger    *logger.Logger
	state     UploadState
	mu        sync.Mutex
}

func NewUploadController(view UploadView, deps Deps) *UploadController {
	return &UploadController{
		view:      view,
		store:     deps.Store,
		submitter: deps.Submitter,
		logger:    deps.Logger,
	}
}

// Init resets the page to idle.
func (c *UploadController) Init() {
	c.setState(StateIdle)
	c.view.SetStatus("")
	c.view.SetLoading(false)
}

// State returns the current lifecycle state.
func (c *UploadController) State() UploadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SelectFile handles a file chosen with the file picker.
func (c *UploadController) SelectFile(ctx context.Context, upload model.Upload) {
	if !upload.IsImage() {
		c.view.Alert(MsgSelectImage)
		return
	}
	c.process(ctx, upload)
}

// DropFile handles a file dropped on the upload area.
func (c *UploadController) DropFile(ctx context.Context, upload model.Upload) {
	if !upload.IsImage() {
		c.view.Alert(MsgDropImage)
		return
	}
	c.process(ctx, upload)
}

func (c *UploadController) process(ctx context.Context, upload model.Upload) {
	if !c.begin() {
		c.view.SetStatus(MsgBusy)
		return
	}

	c.view.ShowPreview(upload.DataURI())
	c.view.SetStatus("")

	c.setState(StateSubmitting)
	c.view.SetLoading(true)
	result, err := c.submit(ctx, upload)
	c.view.SetLoading(false)

	if err != nil {
		c.fail(upload, err)
		return
	}

	if err := c.store.SaveHistoryItem(result); err != nil {
		c.logger.Error("Saving result for %s to history failed: %v", upload.Filename, err)
		c.view.SetStatus(MsgSaveFailed)
		c.setState(StateFailed)
		return
	}
	// A lost last-result slot falls back to the newest history entry.
	if err := c.store.SetLastResult(result); err != nil {
		c.logger.Warning("Saving last result for %s failed: %v", upload.Filename, err)
	}

	c.logger.Info("Detected %d objects in %s: %v", result.Count, upload.Filename, result.Labels)
	c.setState(StateSucceeded)
	c.view.NavigateToResult()
}

// begin moves to previewing unless a submission is already running.
func (c *UploadController) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StatePreviewing || c.state == StateSubmitting {
		return false
	}
	c.state = StatePreviewing
	return true
}

// submit calls the submitter, turning a panic into a transport failure.
func (c *UploadController) submit(ctx context.Context, upload model.Upload) (result model.DetectionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &predict.TransportError{Err: fmt.Errorf("submit panicked: %v", r)}
		}
	}()
	return c.submitter.Submit(ctx, upload)
}

func (c *UploadController) fail(upload model.Upload, err error) {
	var remote *predict.RemoteError
	if errors.As(err, &remote) {
		c.logger.Warning("Prediction rejected %s: %v", upload.Filename, err)
	} else {
		c.logger.Error("Prediction request for %s failed: %v", upload.Filename, err)
	}
	c.view.SetStatus(FailureMessage(err))
	c.setState(StateFailed)
}

func (c *UploadController) setState(state UploadState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

// FailureMessage is the inline text shown for a failed submission.
func FailureMessage(err error) string {
	var remote *predict.RemoteError
	if errors.As(err, &remote) {
		return "Error: " + remote.Message
	}
	return MsgConnectFailed
}
