package controller

import (
	"fmt"

	"detectwidget/internal/dto"
	"detectwidget/internal/model"
)

// Placeholder stands in for an empty label list.
const Placeholder = "—"

// ResultController shows the session's last result, falling back to the
// newest history entry.
type ResultController struct {
	view      ResultView
	store     Store
	formatter *TimeFormatter
}

func NewResultController(view ResultView, deps Deps) *ResultController {
	return &ResultController{
		view:      view,
		store:     deps.Store,
		formatter: deps.Formatter,
	}
}

// Init renders the result to display, or the empty state.
func (c *ResultController) Init() {
	item, ok := c.store.GetLastResult()
	if !ok {
		if history := c.store.LoadHistory(); len(history) > 0 {
			item, ok = history[0], true
		}
	}

	if !ok {
		c.view.ShowEmpty()
		return
	}
	c.view.ShowResult(BuildResultCard(item, c.formatter))
}

// BuildResultCard composes the caption and tags for item.
func BuildResultCard(item model.DetectionResult, formatter *TimeFormatter) dto.ResultCard {
	tags := []string{Placeholder}
	if len(item.Labels) > 0 {
		tags = append([]string(nil), item.Labels...)
	}

	return dto.ResultCard{
		Image:   item.Image,
		Caption: fmt.Sprintf("Detected: %d • %s", item.Count, formatter.Format(item.Timestamp)),
		Tags:    tags,
	}
}
