package signals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ideaforge/config"
)

func testSignalsConfig() config.SignalsConfig {
	return config.SignalsConfig{
		Reddit: config.RedditConfig{
			BaseURL:    "https://www.reddit.com",
			UserAgent:  "ideaforge_test/0.1",
			TimeFilter: "month",
			Sort:       "new",
			Limit:      3,
		},
		OpenAlex: config.OpenAlexConfig{Enabled: true, BaseURL: "https://api.openalex.org", PerPage: 5},
		Timeout:  5 * time.Second,
	}
}

func TestRegistryConditionalConstruction(t *testing.T) {
	reg := NewRegistry(testSignalsConfig())

	if !reg.Has(NameReddit) {
		t.Fatal("expected reddit provider to always be constructed")
	}
	if !reg.Has(NameOpenAlex) {
		t.Fatal("expected openalex provider when enabled")
	}
	if reg.Has(NameGoogleTrends) {
		t.Fatal("expected no trends provider without an API key")
	}
	if reg.Has(NameSerper) {
		t.Fatal("expected no serper provider without an API key")
	}

	if _, err := reg.Get("bing_search"); !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestRegistryWithKeys(t *testing.T) {
	cfg := testSignalsConfig()
	cfg.GoogleTrends = config.TrendsConfig{APIKey: "k", BaseURL: "https://serpapi.com/search", Geo: "US", Timeframe: "now 7-d"}
	cfg.Serper = config.SerperConfig{APIKey: "k", BaseURL: "https://google.serper.dev", MaxResults: 10}
	cfg.Twitter = config.TwitterConfig{BearerToken: "tok", BaseURL: "https://api.twitter.com", MaxResults: 10}

	reg := NewRegistry(cfg)

	for _, name := range []string{NameGoogleTrends, NameSerper, NameTwitter, NameReddit, NameOpenAlex} {
		if !reg.Has(name) {
			t.Fatalf("expected provider %q to be constructed", name)
		}
	}
	if _, ok := reg.GoogleTrends(); !ok {
		t.Fatal("expected typed trends accessor to succeed")
	}
}

func TestSerperProviderSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.Header.Get("X-API-KEY"), "test-key"; got != want {
			t.Errorf("expected api key header %q, got %q", want, got)
		}
		if got, want := r.URL.Path, "/search"; got != want {
			t.Errorf("expected path %q, got %q", want, got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"organic": []map[string]any{
				{"title": "Shopify automation guide", "snippet": "How to automate", "link": "https://example.com/a", "source": "example"},
				{"title": "Second result", "snippet": "More", "link": "https://example.com/b"},
			},
		})
	}))
	defer srv.Close()

	p := NewSerperProvider(config.SerperConfig{APIKey: "test-key", BaseURL: srv.URL, MaxResults: 10}, 5*time.Second)
	out, err := p.Search(context.Background(), "e-commerce automation", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		Query        string              `json:"query"`
		SearchType   string              `json:"search_type"`
		TotalResults int                 `json:"total_results"`
		Results      []map[string]string `json:"results"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.TotalResults != 2 {
		t.Fatalf("expected 2 results, got %d", decoded.TotalResults)
	}
	if got, want := decoded.Results[0]["title"], "Shopify automation guide"; got != want {
		t.Fatalf("expected title %q, got %q", want, got)
	}
	if got, want := decoded.Results[1]["source"], "unknown"; got != want {
		t.Fatalf("expected missing source mapped to %q, got %q", want, got)
	}
}

func TestSerperProviderTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewSerperProvider(config.SerperConfig{APIKey: "k", BaseURL: srv.URL, MaxResults: 5}, 5*time.Second)
	if _, err := p.Search(context.Background(), "anything", nil); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestRedditProviderSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "ideaforge_test") {
			t.Errorf("expected custom user agent, got %q", ua)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"children": []map[string]any{
					{"data": map[string]any{"title": "Inventory sync is a nightmare", "selftext": "We spend hours", "subreddit": "ecommerce", "score": 42, "num_comments": 10}},
				},
			},
		})
	}))
	defer srv.Close()

	cfg := testSignalsConfig().Reddit
	cfg.BaseURL = srv.URL
	cfg.UserAgent = "ideaforge_test/0.1"
	p := NewRedditProvider(cfg, 5*time.Second)

	out, err := p.Search(context.Background(), "e-commerce problems", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "[r/ecommerce] Inventory sync is a nightmare") {
		t.Fatalf("expected formatted post line, got %q", out)
	}
}

func TestRedditProviderNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"children": []any{}}})
	}))
	defer srv.Close()

	cfg := testSignalsConfig().Reddit
	cfg.BaseURL = srv.URL
	p := NewRedditProvider(cfg, 5*time.Second)

	out, err := p.Search(context.Background(), "obscure query", nil)
	if err != nil {
		t.Fatalf("no data must not be an error, got %v", err)
	}
	if !strings.HasPrefix(out, "No posts found") {
		t.Fatalf("expected empty-result payload, got %q", out)
	}
}

func TestGoogleTrendsProviderGetTrend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("data_type") {
		case "TIMESERIES":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"interest_over_time": map[string]any{
					"timeline_data": []map[string]any{
						{"date": "Aug 18", "values": []map[string]any{{"query": "q", "extracted_value": 10}}},
						{"date": "Aug 25", "values": []map[string]any{{"query": "q", "extracted_value": 20}}},
					},
				},
			})
		case "RELATED_QUERIES":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"related_queries": map[string]any{
					"rising": []map[string]any{{"query": "ai checkout"}},
					"top":    []map[string]any{{"query": "shopify"}},
				},
			})
		default:
			t.Errorf("unexpected data_type %q", r.URL.Query().Get("data_type"))
		}
	}))
	defer srv.Close()

	p := NewGoogleTrendsProvider(config.TrendsConfig{APIKey: "k", BaseURL: srv.URL, Geo: "US", Timeframe: "now 7-d"}, 5*time.Second)
	out, err := p.GetTrend(context.Background(), "e-commerce automation", "US", "now 7-d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"Average Value: 15.0", "Percent Change: 100.0%", "Rising Related Queries: ai checkout", "Top Related Queries: shopify"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected payload to contain %q, got:\n%s", want, out)
		}
	}
}

func TestTwitterProviderRequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.Header.Get("Authorization"), "Bearer tok"; got != want {
			t.Errorf("expected auth header %q, got %q", want, got)
		}
		q := r.URL.Query()
		if got, want := q.Get("max_results"), "10"; got != want {
			t.Errorf("expected max_results clamped to %q, got %q", want, got)
		}
		if got, want := q.Get("expansions"), "author_id"; got != want {
			t.Errorf("expected expansions %q, got %q", want, got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer srv.Close()

	p := NewTwitterProvider(config.TwitterConfig{BearerToken: "tok", BaseURL: srv.URL, MaxResults: 3}, 5*time.Second)
	if _, err := p.Search(context.Background(), "e-commerce problems", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProductHuntCategoryNormalization(t *testing.T) {
	if got, want := normalizeCategory("E-commerce"), "tech"; got != want {
		t.Fatalf("expected unknown category mapped to %q, got %q", want, got)
	}
	if got, want := normalizeCategory("Design"), "design"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestOpenAlexProviderSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.URL.Path, "/works"; got != want {
			t.Errorf("expected path %q, got %q", want, got)
		}
		if got, want := r.URL.Query().Get("sort"), "cited_by_count:desc"; got != want {
			t.Errorf("expected sort %q, got %q", want, got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{
					"id": "W1", "title": "Automation in retail", "publication_date": "2024-01-02",
					"cited_by_count": 57,
					"authorships":    []map[string]any{{"author": map[string]any{"display_name": "J. Doe"}}},
				},
			},
		})
	}))
	defer srv.Close()

	p := NewOpenAlexProvider(config.OpenAlexConfig{Enabled: true, BaseURL: srv.URL, PerPage: 5}, 5*time.Second)
	out, err := p.Search(context.Background(), "e-commerce automation", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Automation in retail (2024-01-02, cited by 57)") {
		t.Fatalf("expected formatted work line, got %q", out)
	}
	if !strings.Contains(out, "Authors: J. Doe") {
		t.Fatalf("expected author line, got %q", out)
	}
}
