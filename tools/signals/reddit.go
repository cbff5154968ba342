package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"ideaforge/config"
	"ideaforge/utils"
)

// RedditProvider implements Provider for Reddit's public search API.
// No credentials are needed; Reddit only asks for a descriptive User-Agent.
type RedditProvider struct {
	config config.RedditConfig
	logger *log.Logger
	client *http.Client
}

// NewRedditProvider creates a new Reddit provider
func NewRedditProvider(cfg config.RedditConfig, timeout time.Duration) *RedditProvider {
	return &RedditProvider{
		config: cfg,
		logger: log.New(log.Writer(), "[REDDIT-PROVIDER] ", log.LstdFlags),
		client: &http.Client{Timeout: timeout},
	}
}

func (r *RedditProvider) Name() string { return NameReddit }

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				Subreddit   string  `json:"subreddit"`
				Score       float64 `json:"score"`
				NumComments float64 `json:"num_comments"`
				Permalink   string  `json:"permalink"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Search runs a subreddit search and returns a formatted post list.
// Options: subreddit (default "all"), limit.
func (r *RedditProvider) Search(ctx context.Context, query string, options map[string]interface{}) (string, error) {
	subreddit := strOption(options, OptSubreddit, "all")
	limit := intOption(options, OptLimit, r.config.Limit)

	r.logger.Printf("Searching r/%s for: %s", subreddit, query)

	u := fmt.Sprintf("%s/r/%s/search.json?q=%s&restrict_sr=on&sort=%s&t=%s&limit=%d",
		r.config.BaseURL, subreddit, utils.UrlQuery(query), r.config.Sort, r.config.TimeFilter, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", r.config.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reddit search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reddit returned status: %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return "", fmt.Errorf("reddit decode: %w", err)
	}

	posts := listing.Data.Children
	if len(posts) == 0 {
		return fmt.Sprintf("No posts found for query: %s", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d posts for query: %s\n", len(posts), query)
	for i, post := range posts {
		p := post.Data
		fmt.Fprintf(&b, "%d. [r/%s] %s (score: %.0f, comments: %.0f)\n", i+1, p.Subreddit, p.Title, p.Score, p.NumComments)
		if text := strings.TrimSpace(p.Selftext); text != "" {
			fmt.Fprintf(&b, "   %s\n", utils.Truncate(text, 300))
		}
	}
	return b.String(), nil
}
