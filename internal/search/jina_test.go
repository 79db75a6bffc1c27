package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJinaProvider_MissingConfig(t *testing.T) {
	p := NewJinaProvider("", "", nil)
	resp := p.Search(context.Background(), "resume builder", 10)
	require.NotNil(t, resp.Err)
	assert.Equal(t, KindMissingConfig, resp.Err.Kind)
}

func TestJinaProvider_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jina-key", r.Header.Get("Authorization"))
		assert.Equal(t, "resume builder", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{
			"code": 200,
			"data": [
				{"title": "Rezi", "url": "https://www.rezi.ai/", "description": "AI resume builder"},
				{"title": "Teal", "url": "https://www.tealhq.com/", "content": "Resume optimizer with job tracking"},
				{"title": "Third", "url": "https://example.com/", "description": "extra"}
			]
		}`))
	}))
	defer server.Close()

	p := NewJinaProvider("jina-key", server.URL+"/", server.Client())
	resp := p.Search(context.Background(), "resume builder", 2)
	require.Nil(t, resp.Err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "AI resume builder", resp.Items[0].Snippet)
	assert.Equal(t, "Resume optimizer with job tracking", resp.Items[1].Snippet)
	assert.Equal(t, "jina", resp.Diagnostics.Provider)
	assert.Equal(t, http.StatusOK, resp.Diagnostics.StatusCode)
}

func TestJinaProvider_StatusMapping(t *testing.T) {
	tests := []struct {
		status   int
		expected ErrorKind
	}{
		{http.StatusTooManyRequests, KindRateLimit},
		{http.StatusUnauthorized, KindAuthError},
		{http.StatusForbidden, KindAuthError},
		{http.StatusInternalServerError, KindAPIError},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))

		p := NewJinaProvider("jina-key", server.URL+"/", server.Client())
		resp := p.Search(context.Background(), "q", 10)
		require.NotNil(t, resp.Err)
		assert.Equal(t, tt.expected, resp.Err.Kind)
		assert.Equal(t, tt.status, resp.Err.Status)
		server.Close()
	}
}

func TestJinaProvider_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	baseURL := server.URL + "/"
	server.Close()

	p := NewJinaProvider("jina-key", baseURL, nil)
	resp := p.Search(context.Background(), "q", 10)
	require.NotNil(t, resp.Err)
	assert.Equal(t, KindAPIError, resp.Err.Kind)
	assert.Zero(t, resp.Err.Status)
}

func TestKindForStatus(t *testing.T) {
	assert.Equal(t, KindRateLimit, KindForStatus(429))
	assert.Equal(t, KindAuthError, KindForStatus(401))
	assert.Equal(t, KindAuthError, KindForStatus(403))
	assert.Equal(t, KindAPIError, KindForStatus(500))
	assert.Equal(t, KindAPIError, KindForStatus(404))
}
