package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/spiralbewilder/mlk-archive-search/pkg/search"
	"github.com/spiralbewilder/mlk-archive-search/pkg/version"
)

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()

	params, err := search.ParseParams(r.URL.Query(), s.defaultLimit, s.maxLimit)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid pagination", err.Error())
		return
	}

	if params.Query == "" {
		s.writeError(w, http.StatusBadRequest, "Missing query parameter", "Query parameter 'q' is required")
		return
	}
	if len(params.Query) < MinQueryLength {
		s.writeError(w, http.StatusBadRequest, "Query too short", "Query must be at least 2 characters")
		return
	}

	start := time.Now()
	resp, err := s.service.Search(params)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, search.ErrStoreUnreachable) {
			status = http.StatusServiceUnavailable
		}
		s.logger.Errorf("search %s failed: %v", requestID, err)
		// The envelope still echoes the query and pagination.
		s.writeJSON(w, status, SearchResponse{RequestID: requestID, Response: resp})
		return
	}

	s.logger.Debugf("search %s %q: %d/%d results in %v", requestID, params.Query, len(resp.Results), resp.Total, time.Since(start))
	s.writeJSON(w, http.StatusOK, SearchResponse{RequestID: requestID, Response: resp})
}

func (s *Server) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to get stats", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, StatsResponse{Stats: stats})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	hasFTS, err := s.store.HasFTS()
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "Database unavailable", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Database:  s.store.Path(),
		FTS:       hasFTS,
		Timestamp: time.Now(),
		Version:   version.APIVersion(),
	})
}
