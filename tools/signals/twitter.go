package signals

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ideaforge/config"
)

// TwitterProvider implements Provider for the Twitter v2 recent search API
type TwitterProvider struct {
	config config.TwitterConfig
	logger *log.Logger
	client *http.Client
}

// NewTwitterProvider creates a new Twitter provider
func NewTwitterProvider(cfg config.TwitterConfig, timeout time.Duration) *TwitterProvider {
	return &TwitterProvider{
		config: cfg,
		logger: log.New(log.Writer(), "[TWITTER-PROVIDER] ", log.LstdFlags),
		client: &http.Client{Timeout: timeout},
	}
}

func (t *TwitterProvider) Name() string { return NameTwitter }

// Search runs a recent tweet search and returns the response JSON as-is.
// Options: limit (max_results, 10..100 per the API).
func (t *TwitterProvider) Search(ctx context.Context, query string, options map[string]interface{}) (string, error) {
	maxResults := intOption(options, OptLimit, t.config.MaxResults)
	if maxResults < 10 {
		maxResults = 10 // API minimum
	}

	t.logger.Printf("Searching recent tweets for: %s", query)

	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("tweet.fields", "created_at,author_id,public_metrics,lang")
	params.Set("expansions", "author_id")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		t.config.BaseURL+"/2/tweets/search/recent?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+t.config.BearerToken)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("twitter search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("twitter returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("twitter read: %w", err)
	}
	return string(body), nil
}
