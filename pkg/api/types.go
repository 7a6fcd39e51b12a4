package api

import (
	"time"

	"github.com/spiralbewilder/mlk-archive-search/pkg/search"
)

// SearchResponse is the JSON envelope for /api/search. It embeds the
// service response (results, total, limit, offset, query, error) and adds
// the per-request ID used for log correlation.
type SearchResponse struct {
	RequestID string `json:"request_id"`
	*search.Response
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	FTS       bool      `json:"fts"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

type StatsResponse struct {
	Stats map[string]any `json:"stats"`
}
