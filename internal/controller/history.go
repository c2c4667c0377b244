package controller

import (
	"strings"

	"detectwidget/internal/dto"
	"detectwidget/internal/logger"
)

// HistoryController lists stored results and reopens or clears them.
type HistoryController struct {
	view      HistoryView
	store     Store
	formatter *TimeFormatter
	logger    *logger.Logger
}

func NewHistoryController(view HistoryView, deps Deps) *HistoryController {
	return &HistoryController{
		view:      view,
		store:     deps.Store,
		formatter: deps.Formatter,
		logger:    deps.Logger,
	}
}

// Init renders the stored list.
func (c *HistoryController) Init() {
	c.render()
}

// Open copies entry idx into the last-result slot and moves to the result
// page. It reports false when idx does not name an entry.
func (c *HistoryController) Open(idx int) bool {
	items := c.store.LoadHistory()
	if idx < 0 || idx >= len(items) {
		return false
	}

	if err := c.store.SetLastResult(items[idx]); err != nil {
		c.logger.Error("Reopening history entry %d failed: %v", idx, err)
		return false
	}
	c.view.NavigateToResult()
	return true
}

// Clear empties the history and re-renders.
func (c *HistoryController) Clear() error {
	err := c.store.ClearHistory()
	if err != nil {
		c.logger.Error("Clearing history failed: %v", err)
	}
	c.render()
	return err
}

func (c *HistoryController) render() {
	items := c.store.LoadHistory()
	if len(items) == 0 {
		c.view.ShowEmpty()
		return
	}

	rows := make([]dto.HistoryRow, 0, len(items))
	for idx, item := range items {
		summary := Placeholder
		if len(item.Labels) > 0 {
			summary = strings.Join(item.Labels, ", ")
		}
		rows = append(rows, dto.HistoryRow{
			Index:     idx,
			Image:     item.Image,
			Summary:   summary,
			Timestamp: c.formatter.Format(item.Timestamp),
			Tags:      item.Labels,
		})
	}
	c.view.ShowHistory(rows)
}
