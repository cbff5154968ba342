package signals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"ideaforge/config"
)

// Product Hunt topics the posts query accepts. Anything else is mapped
// to "tech" rather than rejected.
var productHuntCategories = []string{"tech", "games", "books", "productivity", "design"}

// ProductHuntProvider implements Provider for the Product Hunt GraphQL API
type ProductHuntProvider struct {
	config config.ProductHuntConfig
	logger *log.Logger
	client *http.Client
}

// NewProductHuntProvider creates a new Product Hunt provider
func NewProductHuntProvider(cfg config.ProductHuntConfig, timeout time.Duration) *ProductHuntProvider {
	return &ProductHuntProvider{
		config: cfg,
		logger: log.New(log.Writer(), "[PRODUCTHUNT-PROVIDER] ", log.LstdFlags),
		client: &http.Client{Timeout: timeout},
	}
}

func (p *ProductHuntProvider) Name() string { return NameProductHunt }

type productHuntResponse struct {
	Data struct {
		Posts struct {
			Edges []struct {
				Node struct {
					Name       string  `json:"name"`
					Tagline    string  `json:"tagline"`
					VotesCount float64 `json:"votesCount"`
					CreatedAt  string  `json:"createdAt"`
					URL        string  `json:"url"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"posts"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Search returns the top-voted posts for a topic as a formatted list.
// The query is treated as the topic; options: category, limit.
func (p *ProductHuntProvider) Search(ctx context.Context, query string, options map[string]interface{}) (string, error) {
	category := normalizeCategory(strOption(options, OptCategory, query))
	first := intOption(options, OptLimit, p.config.First)

	p.logger.Printf("Fetching top %d Product Hunt posts for topic: %s", first, category)

	gql := fmt.Sprintf(`{ posts(first: %d, order: VOTES, topic: "%s") { edges { node { name tagline votesCount createdAt url } } } }`, first, category)
	payload, err := json.Marshal(map[string]string{"query": gql})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.Token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("producthunt search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("producthunt returned status: %d", resp.StatusCode)
	}

	var out productHuntResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("producthunt decode: %w", err)
	}
	if len(out.Errors) > 0 {
		return "", fmt.Errorf("producthunt graphql: %s", out.Errors[0].Message)
	}

	edges := out.Data.Posts.Edges
	if len(edges) == 0 {
		return fmt.Sprintf("No Product Hunt posts found for topic: %s", category), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Top %d Product Hunt posts for topic %s:\n", len(edges), category)
	for i, edge := range edges {
		n := edge.Node
		fmt.Fprintf(&b, "%d. %s - %s (votes: %.0f)\n", i+1, n.Name, n.Tagline, n.VotesCount)
	}
	return b.String(), nil
}

func normalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	for _, valid := range productHuntCategories {
		if c == valid {
			return c
		}
	}
	return "tech"
}
