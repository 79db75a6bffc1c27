package search

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/evidence-engine/internal/fetch"
)

// DefaultForumURL is the Hacker News Algolia search endpoint.
const DefaultForumURL = "https://hn.algolia.com/api/v1/search"

// ForumItemURL is the permalink pattern for a forum story id.
const ForumItemURL = "https://news.ycombinator.com/item?id="

// DefaultForumLimit is the number of stories requested.
const DefaultForumLimit = 10

// maxForumKeywords is the number of keywords joined into the forum query.
const maxForumKeywords = 5

// ForumClient searches a public, unauthenticated story index. It is best
// effort: every failure collapses to an empty hit list.
type ForumClient struct {
	baseURL string
	limit   int
	opts    *fetch.Options
	verbose bool
}

// NewForumClient creates a ForumClient. An empty baseURL uses DefaultForumURL.
func NewForumClient(baseURL string, limit int, client *http.Client, verbose bool) *ForumClient {
	if baseURL == "" {
		baseURL = DefaultForumURL
	}
	if limit <= 0 {
		limit = DefaultForumLimit
	}
	opts := fetch.DefaultOptions()
	opts.Client = client
	opts.Headers = map[string]string{"Accept": "application/json"}
	return &ForumClient{baseURL: baseURL, limit: limit, opts: opts, verbose: verbose}
}

type algoliaResponse struct {
	Hits []struct {
		ObjectID    string `json:"objectID"`
		Title       string `json:"title"`
		StoryTitle  string `json:"story_title"`
		URL         string `json:"url"`
		Points      *int   `json:"points"`
		NumComments *int   `json:"num_comments"`
		CreatedAt   string `json:"created_at"`
		CreatedAtI  int64  `json:"created_at_i"`
	} `json:"hits"`
}

// Search queries the index with up to five keywords and returns up to limit
// stories in upstream rank order. It never returns nil.
func (f *ForumClient) Search(ctx context.Context, kws []string) (hits []ForumHit) {
	hits = []ForumHit{}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[FORUM] Search panicked: %v", r)
			hits = []ForumHit{}
		}
	}()

	if len(kws) > maxForumKeywords {
		kws = kws[:maxForumKeywords]
	}
	query := strings.TrimSpace(strings.Join(kws, " "))
	if query == "" {
		return hits
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("tags", "story")
	params.Set("hitsPerPage", strconv.Itoa(f.limit))
	endpoint := fmt.Sprintf("%s?%s", f.baseURL, params.Encode())

	var body algoliaResponse
	if _, err := fetch.JSON(ctx, endpoint, f.opts, &body); err != nil {
		if f.verbose {
			log.Printf("[FORUM] Search for %q failed: %v", query, err)
		}
		return hits
	}

	for _, h := range body.Hits {
		if len(hits) >= f.limit {
			break
		}
		title := h.Title
		if title == "" {
			title = h.StoryTitle
		}
		hit := ForumHit{
			ID:        h.ObjectID,
			Title:     title,
			URL:       h.URL,
			CreatedAt: parseCreatedAt(h.CreatedAt, h.CreatedAtI),
		}
		if h.Points != nil {
			hit.Points = *h.Points
		}
		if h.NumComments != nil {
			hit.NumComments = *h.NumComments
		}
		hits = append(hits, hit)
	}

	if f.verbose {
		log.Printf("[FORUM] %q returned %d stories", query, len(hits))
	}
	return hits
}

func parseCreatedAt(s string, unix int64) *time.Time {
	if s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	if unix > 0 {
		t := time.Unix(unix, 0).UTC()
		return &t
	}
	return nil
}
