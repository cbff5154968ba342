package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ideaforge/config"
)

// GoogleTrendsProvider implements Provider for Google Trends via SerpAPI.
// Search returns a formatted text block (not raw JSON) so downstream
// parsing can pick out average interest, percent change and related
// queries with simple line scans.
type GoogleTrendsProvider struct {
	config config.TrendsConfig
	logger *log.Logger
	client *http.Client
}

// NewGoogleTrendsProvider creates a new Google Trends provider
func NewGoogleTrendsProvider(cfg config.TrendsConfig, timeout time.Duration) *GoogleTrendsProvider {
	return &GoogleTrendsProvider{
		config: cfg,
		logger: log.New(log.Writer(), "[TRENDS-PROVIDER] ", log.LstdFlags),
		client: &http.Client{Timeout: timeout},
	}
}

func (g *GoogleTrendsProvider) Name() string { return NameGoogleTrends }

// Search fetches the trend block for query. Options: geo, timeframe.
func (g *GoogleTrendsProvider) Search(ctx context.Context, query string, options map[string]interface{}) (string, error) {
	geo := strOption(options, OptGeo, g.config.Geo)
	timeframe := strOption(options, OptTimeframe, g.config.Timeframe)
	return g.GetTrend(ctx, query, geo, timeframe)
}

type serpapiResponse struct {
	InterestOverTime struct {
		TimelineData []struct {
			Date   string `json:"date"`
			Values []struct {
				Query          string  `json:"query"`
				ExtractedValue float64 `json:"extracted_value"`
			} `json:"values"`
		} `json:"timeline_data"`
	} `json:"interest_over_time"`
	RelatedQueries struct {
		Rising []relatedQuery `json:"rising"`
		Top    []relatedQuery `json:"top"`
	} `json:"related_queries"`
}

type relatedQuery struct {
	Query          string  `json:"query"`
	ExtractedValue float64 `json:"extracted_value"`
}

// GetTrend returns the formatted interest-over-time block for a query:
// average value, percent change across the window, and the related
// queries SerpAPI reports for it.
func (g *GoogleTrendsProvider) GetTrend(ctx context.Context, query, geo, timeframe string) (string, error) {
	g.logger.Printf("Fetching trend data for: %s", query)

	series, err := g.fetch(ctx, query, geo, timeframe, "TIMESERIES")
	if err != nil {
		return "", fmt.Errorf("trend timeseries for %q: %w", query, err)
	}
	related, err := g.fetch(ctx, query, geo, timeframe, "RELATED_QUERIES")
	if err != nil {
		return "", fmt.Errorf("related queries for %q: %w", query, err)
	}

	var values []float64
	for _, point := range series.InterestOverTime.TimelineData {
		for _, v := range point.Values {
			values = append(values, v.ExtractedValue)
		}
	}

	var avg, change float64
	if len(values) > 0 {
		var sum float64
		for _, v := range values {
			sum += v
		}
		avg = sum / float64(len(values))
		if first := values[0]; first > 0 {
			change = (values[len(values)-1] - first) / first * 100
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", query)
	fmt.Fprintf(&b, "Geo: %s | Timeframe: %s\n", geo, timeframe)
	fmt.Fprintf(&b, "Average Value: %.1f\n", avg)
	fmt.Fprintf(&b, "Percent Change: %.1f%%\n", change)
	if rising := queryNames(related.RelatedQueries.Rising); len(rising) > 0 {
		fmt.Fprintf(&b, "Rising Related Queries: %s\n", strings.Join(rising, ", "))
	}
	if top := queryNames(related.RelatedQueries.Top); len(top) > 0 {
		fmt.Fprintf(&b, "Top Related Queries: %s\n", strings.Join(top, ", "))
	}
	return b.String(), nil
}

// RisingTrends returns only the rising related queries for a keyword,
// formatted as a single "Rising Related Queries:" line.
func (g *GoogleTrendsProvider) RisingTrends(ctx context.Context, keyword string) (string, error) {
	g.logger.Printf("Fetching rising trends for: %s", keyword)

	related, err := g.fetch(ctx, keyword, g.config.Geo, g.config.Timeframe, "RELATED_QUERIES")
	if err != nil {
		return "", fmt.Errorf("rising trends for %q: %w", keyword, err)
	}
	rising := queryNames(related.RelatedQueries.Rising)
	if len(rising) == 0 {
		return fmt.Sprintf("Keyword: %s\nRising Related Queries: none\n", keyword), nil
	}
	return fmt.Sprintf("Keyword: %s\nRising Related Queries: %s\n", keyword, strings.Join(rising, ", ")), nil
}

func (g *GoogleTrendsProvider) fetch(ctx context.Context, query, geo, timeframe, dataType string) (*serpapiResponse, error) {
	params := url.Values{}
	params.Set("engine", "google_trends")
	params.Set("q", query)
	params.Set("data_type", dataType)
	params.Set("geo", geo)
	params.Set("date", timeframe)
	params.Set("api_key", g.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.config.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi returned status: %d", resp.StatusCode)
	}
	var out serpapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func queryNames(qs []relatedQuery) []string {
	names := make([]string, 0, len(qs))
	for _, q := range qs {
		if q.Query != "" {
			names = append(names, q.Query)
		}
	}
	return names
}
