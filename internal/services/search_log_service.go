package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/subway-routing/internal/models"
	"github.com/smarttransit/subway-routing/internal/utils"
)

const (
	DefaultPopularLimit = 10
	MaxPopularLimit     = 50
)

// ErrAnalyticsDisabled is returned when no database is configured
var ErrAnalyticsDisabled = errors.New("search analytics is disabled")

// SearchLogStore persists path searches
type SearchLogStore interface {
	LogSearch(log *models.SearchLog) error
	GetPopularSearches(limit int) ([]models.PopularSearch, error)
}

// PathSearch describes one answered path query
type PathSearch struct {
	From      string
	To        string
	Found     bool
	StopCount int
	Elapsed   time.Duration
	IPAddress string
	UserAgent string
}

// SearchLogService records path searches for analytics. A nil store
// disables it.
type SearchLogService struct {
	store  SearchLogStore
	logger *logrus.Logger
}

// NewSearchLogService creates a new search log service
func NewSearchLogService(store SearchLogStore, logger *logrus.Logger) *SearchLogService {
	return &SearchLogService{
		store:  store,
		logger: logger,
	}
}

// Enabled reports whether searches are being recorded
func (s *SearchLogService) Enabled() bool {
	return s.store != nil
}

// RecordPathSearch stores a path search. Failures are logged and never
// returned, so analytics can not fail a query.
func (s *SearchLogService) RecordPathSearch(search PathSearch) {
	if !s.Enabled() {
		return
	}

	log := &models.SearchLog{
		ID:             uuid.New(),
		FromInput:      search.From,
		ToInput:        search.To,
		Found:          search.Found,
		StopCount:      search.StopCount,
		ResponseTimeMs: search.Elapsed.Milliseconds(),
		CreatedAt:      time.Now(),
	}
	if search.IPAddress != "" {
		log.IPAddress = &search.IPAddress
	}
	if search.UserAgent != "" {
		deviceType := utils.ParseUserAgent(search.UserAgent).DeviceType
		log.DeviceType = &deviceType
	}

	if err := s.store.LogSearch(log); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"from": search.From,
			"to":   search.To,
		}).Warn("Failed to record path search")
	}
}

// GetPopularSearches returns the most searched station pairs. limit is
// clamped to [1, MaxPopularLimit]; zero or less means DefaultPopularLimit.
func (s *SearchLogService) GetPopularSearches(limit int) ([]models.PopularSearch, error) {
	if !s.Enabled() {
		return nil, ErrAnalyticsDisabled
	}

	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	if limit > MaxPopularLimit {
		limit = MaxPopularLimit
	}

	return s.store.GetPopularSearches(limit)
}
