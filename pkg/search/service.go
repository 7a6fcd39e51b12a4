// Package search runs parsed boolean queries against the document store
// and assembles paginated, snippeted results. It prefers the FTS5 index
// and degrades transparently to a LIKE scan when the index is missing or
// rejects the translated expression.
package search

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spiralbewilder/mlk-archive-search/pkg/log"
	"github.com/spiralbewilder/mlk-archive-search/pkg/query"
	"github.com/spiralbewilder/mlk-archive-search/pkg/storage"
)

// Fatal search errors. Recoverable conditions (missing FTS index,
// malformed MATCH) never surface here; they are absorbed by the fallback.
var (
	// ErrQueryExecution reports that the fallback path itself failed.
	ErrQueryExecution = errors.New("search query execution failed")

	// ErrStoreUnreachable reports that the document store cannot be used
	// at all. Distinct from ErrQueryExecution so the HTTP layer can map it
	// to a retryable status.
	ErrStoreUnreachable = errors.New("document store unreachable")
)

// Params carries one search request.
type Params struct {
	// Query is the raw user query string.
	Query string

	// Limit is the maximum number of results per page.
	Limit int

	// Offset is the number of matches skipped before the page starts.
	Offset int
}

// Result is one matched document prepared for display.
type Result struct {
	ElementID string `json:"element_id"`
	RecordID  string `json:"record_id"`
	Filename  string `json:"filename"`

	// Snippet is a word window around the first matched term, or the
	// opening words of the document when no term occurs in the body.
	Snippet string `json:"snippet"`

	// HighlightedTerms are the query terms actually present in this
	// document's text, for caller-side highlighting.
	HighlightedTerms []string `json:"highlighted_terms"`

	// PDFURL links to the source document, or is empty when no filename
	// or source URL is known.
	PDFURL string `json:"pdf_url"`
}

// Response is the paginated envelope returned for every search, including
// failed ones: a fatal error yields empty results with Error set and the
// query and pagination still echoed.
type Response struct {
	Results []Result `json:"results"`

	// Total counts all matches independent of the pagination window.
	Total int `json:"total"`

	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Query  string `json:"query"`
	Error  string `json:"error,omitempty"`
}

// Service executes searches against a single document store. All state is
// per-request; a Service is safe for concurrent use.
type Service struct {
	store            *storage.Store
	contextWords     int
	pdfBaseURL       string
	archiveURIPrefix string
	logger           *log.Logger
}

// NewService creates a search service. contextWords is the snippet window
// size; pdfBaseURL and archiveURIPrefix drive PDF link derivation.
func NewService(store *storage.Store, contextWords int, pdfBaseURL, archiveURIPrefix string) *Service {
	return &Service{
		store:            store,
		contextWords:     contextWords,
		pdfBaseURL:       pdfBaseURL,
		archiveURIPrefix: archiveURIPrefix,
		logger:           log.ForComponent("search"),
	}
}

// Search parses the query, executes it with the two-path strategy and
// assembles the response. The returned error is non-nil only for fatal
// failures; the response envelope is always populated.
func (s *Service) Search(params Params) (*Response, error) {
	resp := &Response{
		Results: []Result{},
		Limit:   params.Limit,
		Offset:  params.Offset,
		Query:   params.Query,
	}

	expr := query.Parse(params.Query)
	if expr == nil {
		// Canonical empty match: nothing to run against the store.
		return resp, nil
	}

	docs, total, err := s.execute(expr, params.Limit, params.Offset)
	if err != nil {
		resp.Error = err.Error()
		return resp, err
	}

	resp.Total = total
	terms := query.Terms(expr)
	for _, doc := range docs {
		resp.Results = append(resp.Results, s.assembleResult(doc, terms))
	}

	return resp, nil
}

// strategy is one executable form of a translated query: a windowed fetch
// plus an unbounded count over the same predicate.
type strategy struct {
	name  string
	fetch func(limit, offset int) ([]storage.Document, error)
	count func() (int, error)
}

// execute tries the full-text strategy and falls back to the LIKE strategy
// when the index is unavailable or rejected the expression. Fallback is
// silent; a fallback failure is fatal.
func (s *Service) execute(expr query.Expr, limit, offset int) ([]storage.Document, int, error) {
	primary, secondary := s.strategies(expr)

	docs, total, err := runStrategy(primary, limit, offset)
	if err == nil {
		return docs, total, nil
	}

	if !errors.Is(err, storage.ErrFTSUnavailable) && !errors.Is(err, storage.ErrMalformedMatch) {
		return nil, 0, s.fatal(err)
	}

	s.logger.Debugf("full-text path unavailable (%v), using fallback", err)
	docs, total, err = runStrategy(secondary, limit, offset)
	if err != nil {
		return nil, 0, s.fatal(err)
	}
	return docs, total, nil
}

func (s *Service) strategies(expr query.Expr) (*strategy, *strategy) {
	match := query.FTSQuery(expr)
	clause, args := query.LikeQuery(expr)

	primary := &strategy{
		name: "fulltext",
		fetch: func(limit, offset int) ([]storage.Document, error) {
			return s.store.SearchMatch(match, limit, offset)
		},
		count: func() (int, error) {
			return s.store.CountMatch(match)
		},
	}
	secondary := &strategy{
		name: "fallback",
		fetch: func(limit, offset int) ([]storage.Document, error) {
			return s.store.SearchLike(clause, args, limit, offset)
		},
		count: func() (int, error) {
			return s.store.CountLike(clause, args)
		},
	}
	return primary, secondary
}

// runStrategy fetches one page and the unbounded total. A zero limit skips
// the fetch but still counts.
func runStrategy(st *strategy, limit, offset int) ([]storage.Document, int, error) {
	total, err := st.count()
	if err != nil {
		return nil, 0, fmt.Errorf("%s count: %w", st.name, err)
	}

	if limit == 0 {
		return nil, total, nil
	}

	docs, err := st.fetch(limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s fetch: %w", st.name, err)
	}
	return docs, total, nil
}

// fatal maps a storage error to one of the two fatal sentinels.
func (s *Service) fatal(err error) error {
	if storage.IsUnreachable(err) {
		s.logger.Errorf("store unreachable: %v", err)
		return fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
	}
	s.logger.Errorf("query execution failed: %v", err)
	return fmt.Errorf("%w: %v", ErrQueryExecution, err)
}

// assembleResult builds one Result from a stored document: snippet, the
// terms found in its text, and the derived PDF link. Rows are never
// dropped; a document with no body yields an empty snippet.
func (s *Service) assembleResult(doc storage.Document, terms []string) Result {
	snippet, matched := extractSnippet(doc.Text, terms, s.contextWords)
	return Result{
		ElementID:        doc.ElementID,
		RecordID:         doc.RecordID,
		Filename:         doc.Filename,
		Snippet:          snippet,
		HighlightedTerms: matched,
		PDFURL:           s.pdfURL(doc),
	}
}

// pdfURL derives the link to the source PDF. Archive-bucket s3:// URIs are
// rewritten to the public base URL; other source URLs pass through as-is;
// with no source URL the filename is appended to the base URL. Unknown
// documents get an empty link.
func (s *Service) pdfURL(doc storage.Document) string {
	if doc.SourceURL != "" {
		if s.archiveURIPrefix != "" && strings.HasPrefix(doc.SourceURL, s.archiveURIPrefix) {
			return s.pdfBaseURL + escapePath(strings.TrimPrefix(doc.SourceURL, s.archiveURIPrefix))
		}
		return doc.SourceURL
	}
	if doc.Filename != "" {
		return s.pdfBaseURL + escapePath(doc.Filename)
	}
	return ""
}

// escapePath percent-encodes each path segment, preserving separators.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// ParseParams parses HTTP query parameters into search Params, applying
// the configured default and maximum page size. Malformed or negative
// pagination values are an error so the HTTP layer can reject them.
func ParseParams(values url.Values, defaultLimit, maxLimit int) (Params, error) {
	params := Params{
		Query: strings.TrimSpace(values.Get("q")),
		Limit: defaultLimit,
	}

	if limitStr := values.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return params, fmt.Errorf("invalid limit %q", limitStr)
		}
		params.Limit = limit
	}
	if params.Limit > maxLimit {
		params.Limit = maxLimit
	}

	if offsetStr := values.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return params, fmt.Errorf("invalid offset %q", offsetStr)
		}
		params.Offset = offset
	}

	return params, nil
}
