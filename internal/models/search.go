package models

import (
	"time"

	"github.com/google/uuid"
)

// SearchLog records a single path query for analytics
type SearchLog struct {
	ID             uuid.UUID `json:"id" db:"id"`
	FromInput      string    `json:"from_input" db:"from_input"`
	ToInput        string    `json:"to_input" db:"to_input"`
	Found          bool      `json:"found" db:"found"`
	StopCount      int       `json:"stop_count" db:"stop_count"`
	ResponseTimeMs int64     `json:"response_time_ms" db:"response_time_ms"`
	IPAddress      *string   `json:"ip_address,omitempty" db:"ip_address"`
	DeviceType     *string   `json:"device_type,omitempty" db:"device_type"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// PopularSearch is a frequently requested (from, to) pair
type PopularSearch struct {
	FromInput   string `json:"from" db:"from_input"`
	ToInput     string `json:"to" db:"to_input"`
	SearchCount int    `json:"search_count" db:"search_count"`
}

// PathQuery represents the query string of a path request
type PathQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}
