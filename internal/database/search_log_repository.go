package database

import (
	"fmt"

	"github.com/smarttransit/subway-routing/internal/models"
)

// SearchLogRepository stores path searches for analytics
type SearchLogRepository struct {
	db DB
}

// NewSearchLogRepository creates a new search log repository
func NewSearchLogRepository(db DB) *SearchLogRepository {
	return &SearchLogRepository{db: db}
}

// LogSearch records a path search
func (r *SearchLogRepository) LogSearch(log *models.SearchLog) error {
	query := `
		INSERT INTO search_logs (
			id,
			from_input,
			to_input,
			found,
			stop_count,
			response_time_ms,
			ip_address,
			device_type,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(
		query,
		log.ID,
		log.FromInput,
		log.ToInput,
		log.Found,
		log.StopCount,
		log.ResponseTimeMs,
		log.IPAddress,
		log.DeviceType,
		log.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("error logging search: %w", err)
	}

	return nil
}

// GetPopularSearches returns the most frequent station pairs searched in the
// last 30 days. Inputs are grouped case-insensitively.
func (r *SearchLogRepository) GetPopularSearches(limit int) ([]models.PopularSearch, error) {
	query := `
		SELECT
			LOWER(from_input) as from_input,
			LOWER(to_input) as to_input,
			COUNT(*) as search_count
		FROM search_logs
		WHERE found = true
		  AND created_at > NOW() - INTERVAL '30 days'
		GROUP BY LOWER(from_input), LOWER(to_input)
		ORDER BY search_count DESC, from_input, to_input
		LIMIT $1
	`

	searches := []models.PopularSearch{}
	err := r.db.Select(&searches, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error getting popular searches: %w", err)
	}

	return searches, nil
}
