package signals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"ideaforge/config"
	"ideaforge/utils"
)

// SerperProvider implements Provider for serper.dev Google search
type SerperProvider struct {
	config config.SerperConfig
	logger *log.Logger
	client *http.Client
}

// NewSerperProvider creates a new serper.dev provider
func NewSerperProvider(cfg config.SerperConfig, timeout time.Duration) *SerperProvider {
	return &SerperProvider{
		config: cfg,
		logger: log.New(log.Writer(), "[SERPER-PROVIDER] ", log.LstdFlags),
		client: &http.Client{Timeout: timeout},
	}
}

func (s *SerperProvider) Name() string { return NameSerper }

// Search POSTs a query to serper.dev and returns a compact JSON string of
// the organic results. Options: search_type (search, news, scholar), limit.
func (s *SerperProvider) Search(ctx context.Context, query string, options map[string]interface{}) (string, error) {
	searchType := strOption(options, OptType, "search")
	num := intOption(options, OptLimit, s.config.MaxResults)

	s.logger.Printf("Searching serper (%s) for: %s", searchType, query)

	payload, err := json.Marshal(map[string]any{"q": query, "num": num})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.config.BaseURL+"/"+searchType, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("X-API-KEY", s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("serper search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("serper returned status: %d", resp.StatusCode)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("serper decode: %w", err)
	}

	organic, _ := raw["organic"].([]any)
	results := make([]map[string]string, 0, len(organic))
	for i, item := range organic {
		if i >= num {
			break
		}
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		source := utils.Str(m["source"])
		if source == "" {
			source = utils.Str(m["domain"])
		}
		if source == "" {
			source = "unknown"
		}
		results = append(results, map[string]string{
			"title":   utils.Str(m["title"]),
			"snippet": utils.Str(m["snippet"]),
			"url":     utils.Str(m["link"]),
			"date":    utils.Str(m["date"]),
			"source":  source,
		})
	}

	out, err := json.Marshal(map[string]any{
		"query":         query,
		"search_type":   searchType,
		"total_results": len(results),
		"results":       results,
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
