package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForumClient_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "resume screening ats", r.URL.Query().Get("query"))
		assert.Equal(t, "story", r.URL.Query().Get("tags"))
		assert.Equal(t, "10", r.URL.Query().Get("hitsPerPage"))
		_, _ = w.Write([]byte(`{
			"hits": [
				{"objectID": "1", "title": "Show HN: ATS for startups", "url": "https://example.com", "points": 120, "num_comments": 45, "created_at": "2026-09-01T10:00:00.000Z"},
				{"objectID": "2", "title": "Ask HN: Resume screening pain", "points": null, "num_comments": null, "created_at_i": 1700000000}
			]
		}`))
	}))
	defer server.Close()

	c := NewForumClient(server.URL, 0, server.Client(), false)
	hits := c.Search(context.Background(), []string{"resume", "screening", "ats"})

	require.Len(t, hits, 2)
	assert.Equal(t, "1", hits[0].ID)
	assert.Equal(t, 120, hits[0].Points)
	assert.Equal(t, 45, hits[0].NumComments)
	require.NotNil(t, hits[0].CreatedAt)
	assert.Equal(t, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC), *hits[0].CreatedAt)

	assert.Empty(t, hits[1].URL)
	assert.Zero(t, hits[1].Points)
	require.NotNil(t, hits[1].CreatedAt)
	assert.Equal(t, int64(1700000000), hits[1].CreatedAt.Unix())
}

func TestForumClient_CapsKeywordsAndLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "a1 b2 c3 d4 e5", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte(`{"hits":[{"objectID":"1","title":"one"},{"objectID":"2","title":"two"},{"objectID":"3","title":"three"}]}`))
	}))
	defer server.Close()

	c := NewForumClient(server.URL, 2, server.Client(), false)
	hits := c.Search(context.Background(), []string{"a1", "b2", "c3", "d4", "e5", "f6", "g7"})
	assert.Len(t, hits, 2)
}

func TestForumClient_FailuresCollapseToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"rate limited", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }},
		{"bad json", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("not json")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := NewForumClient(server.URL, 10, server.Client(), false)
			hits := c.Search(context.Background(), []string{"resume"})
			assert.NotNil(t, hits)
			assert.Empty(t, hits)
		})
	}
}

func TestForumClient_EmptyKeywords(t *testing.T) {
	c := NewForumClient("http://127.0.0.1:1", 10, nil, false)
	hits := c.Search(context.Background(), nil)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}
