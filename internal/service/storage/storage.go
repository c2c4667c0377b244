package storage

import (
	"encoding/json"
	"fmt"

	"detectwidget/internal/logger"
	"detectwidget/internal/model"
	"detectwidget/internal/repository"
)

const (
	// HistoryKey holds the durable newest-first result list.
	HistoryKey = "vw_history"
	// LastKey holds the session-scoped last result.
	LastKey = "vw_last"
)

// Service keeps the result history in a durable store and the last result
// in a session store, both JSON-encoded. Unreadable data reads as empty.
type Service struct {
	durable repository.KeyValueStore
	session repository.KeyValueStore
	logger  *logger.Logger
}

// NewService creates a storage service over the durable and session stores.
func NewService(durable, session repository.KeyValueStore, logger *logger.Logger) *Service {
	return &Service{
		durable: durable,
		session: session,
		logger:  logger,
	}
}

// LoadHistory returns the stored results, newest first. Missing or malformed
// data yields an empty list.
func (s *Service) LoadHistory() []model.DetectionResult {
	raw, ok, err := s.durable.GetItem(HistoryKey)
	if err != nil {
		s.logger.Warning("Reading history failed, treating as empty: %v", err)
		return []model.DetectionResult{}
	}
	if !ok {
		return []model.DetectionResult{}
	}

	var items []model.DetectionResult
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Warning("Malformed history, treating as empty: %v", err)
		return []model.DetectionResult{}
	}
	if items == nil {
		return []model.DetectionResult{}
	}
	return items
}

// SaveHistoryItem puts item at the front of the history and writes the whole list back.
func (s *Service) SaveHistoryItem(item model.DetectionResult) error {
	items := s.LoadHistory()
	items = append([]model.DetectionResult{item}, items...)

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := s.durable.SetItem(HistoryKey, string(data)); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// ClearHistory deletes the stored history.
func (s *Service) ClearHistory() error {
	if err := s.durable.RemoveItem(HistoryKey); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// SetLastResult overwrites the session's last result.
func (s *Service) SetLastResult(item model.DetectionResult) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode last result: %w", err)
	}
	if err := s.session.SetItem(LastKey, string(data)); err != nil {
		return fmt.Errorf("failed to save last result: %w", err)
	}
	return nil
}

// GetLastResult returns the session's last result; malformed data reads as absent.
func (s *Service) GetLastResult() (model.DetectionResult, bool) {
	raw, ok, err := s.session.GetItem(LastKey)
	if err != nil {
		s.logger.Warning("Reading last result failed, treating as absent: %v", err)
		return model.DetectionResult{}, false
	}
	if !ok {
		return model.DetectionResult{}, false
	}

	var item *model.DetectionResult
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		s.logger.Warning("Malformed last result, treating as absent: %v", err)
		return model.DetectionResult{}, false
	}
	if item == nil {
		return model.DetectionResult{}, false
	}
	return *item, true
}
