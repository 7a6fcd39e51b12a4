// Package api exposes the search service over HTTP: a JSON search
// endpoint, stats and health probes, and CORS middleware. Status mapping
// lives here; the search service only reports its two fatal error kinds.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/spiralbewilder/mlk-archive-search/pkg/config"
	"github.com/spiralbewilder/mlk-archive-search/pkg/log"
	"github.com/spiralbewilder/mlk-archive-search/pkg/search"
	"github.com/spiralbewilder/mlk-archive-search/pkg/storage"
)

// MinQueryLength is the shortest accepted search query.
const MinQueryLength = 2

type Server struct {
	store        *storage.Store
	service      *search.Service
	defaultLimit int
	maxLimit     int
	logger       *log.Logger
}

func NewServer(store *storage.Store, cfg *config.Config) *Server {
	return &Server{
		store:        store,
		service:      search.NewService(store, cfg.ContextWords, cfg.PDFBaseURL, cfg.ArchiveURIPrefix),
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
		logger:       log.ForComponent("server"),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
