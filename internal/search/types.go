// Package search provides the two evidence sources: a web search client with
// primary/secondary provider fallback and a best-effort forum story search.
// Neither source returns Go errors to its caller; failures are reported as
// data so the pipeline can always continue.
package search

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorKind classifies a failed provider call.
type ErrorKind string

// Error kinds reported by web search providers.
const (
	KindMissingConfig ErrorKind = "missing_config"
	KindRateLimit     ErrorKind = "rate_limit"
	KindAuthError     ErrorKind = "auth_error"
	KindAPIError      ErrorKind = "api_error"
)

// SearchError describes why a provider call produced no results.
type SearchError struct {
	Kind     ErrorKind `json:"kind"`
	Status   int       `json:"status,omitempty"`
	Provider string    `json:"provider,omitempty"`
	Message  string    `json:"message,omitempty"`
}

func (e *SearchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s search error (%s, status %d): %s", e.Provider, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s search error (%s): %s", e.Provider, e.Kind, e.Message)
}

// KindForStatus maps an upstream HTTP status to an error kind.
func KindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusTooManyRequests:
		return KindRateLimit
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthError
	default:
		return KindAPIError
	}
}

// Item is a single ranked web search result.
type Item struct {
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	Link        string `json:"link"`
	DisplayLink string `json:"displayLink,omitempty"`
}

// QueryResult groups the items returned for one query, in provider rank order.
type QueryResult struct {
	Query string `json:"query"`
	Items []Item `json:"items"`
}

// Diagnostics records how a single provider call went. It is returned with
// each response rather than kept in package state.
type Diagnostics struct {
	Provider    string        `json:"provider"`
	Query       string        `json:"query"`
	StatusCode  int           `json:"statusCode,omitempty"`
	Duration    time.Duration `json:"duration"`
	ResultCount int           `json:"resultCount"`
}

// Response is the outcome of one web search call. Err is nil on success.
type Response struct {
	Items       []Item
	Err         *SearchError
	Diagnostics Diagnostics
}

// QueryError pairs a failed query with its error.
type QueryError struct {
	Query string       `json:"query"`
	Err   *SearchError `json:"error"`
}

// Batch is the outcome of a multi-query search.
type Batch struct {
	Configured  bool
	Results     []QueryResult
	Errors      []QueryError
	Diagnostics []Diagnostics
}

// EmptyBatch is the typed fallback used when a batch cannot be run at all.
func EmptyBatch() Batch {
	return Batch{Configured: false, Results: []QueryResult{}, Errors: []QueryError{}}
}

// TotalItems counts the items across all query results.
func (b Batch) TotalItems() int {
	total := 0
	for _, r := range b.Results {
		total += len(r.Items)
	}
	return total
}

// ForumHit is a single forum story.
type ForumHit struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url,omitempty"`
	Points      int        `json:"points"`
	NumComments int        `json:"numComments"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}
