package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ideaforge/config"
)

// OpenAlexProvider implements Provider for the OpenAlex scholarly works API.
// OpenAlex is open and unauthenticated, so the provider is always available
// unless disabled in config.
type OpenAlexProvider struct {
	config config.OpenAlexConfig
	logger *log.Logger
	client *http.Client
}

// NewOpenAlexProvider creates a new OpenAlex provider
func NewOpenAlexProvider(cfg config.OpenAlexConfig, timeout time.Duration) *OpenAlexProvider {
	return &OpenAlexProvider{
		config: cfg,
		logger: log.New(log.Writer(), "[OPENALEX-PROVIDER] ", log.LstdFlags),
		client: &http.Client{Timeout: timeout},
	}
}

func (o *OpenAlexProvider) Name() string { return NameOpenAlex }

type openAlexWorks struct {
	Results []struct {
		ID              string  `json:"id"`
		Title           string  `json:"title"`
		PublicationDate string  `json:"publication_date"`
		CitedByCount    float64 `json:"cited_by_count"`
		DOI             string  `json:"doi"`
		Authorships     []struct {
			Author struct {
				DisplayName string `json:"display_name"`
			} `json:"author"`
		} `json:"authorships"`
		PrimaryLocation struct {
			LandingPageURL string `json:"landing_page_url"`
		} `json:"primary_location"`
	} `json:"results"`
}

// Search returns the most-cited works matching the query as a formatted
// list. Options: limit (per-page).
func (o *OpenAlexProvider) Search(ctx context.Context, query string, options map[string]interface{}) (string, error) {
	perPage := intOption(options, OptLimit, o.config.PerPage)

	o.logger.Printf("Searching OpenAlex works for: %s", query)

	params := url.Values{}
	params.Set("search", query)
	params.Set("per-page", strconv.Itoa(perPage))
	params.Set("sort", "cited_by_count:desc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		o.config.BaseURL+"/works?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openalex search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openalex returned status: %d", resp.StatusCode)
	}

	var works openAlexWorks
	if err := json.NewDecoder(resp.Body).Decode(&works); err != nil {
		return "", fmt.Errorf("openalex decode: %w", err)
	}

	if len(works.Results) == 0 {
		return fmt.Sprintf("No scholarly works found for query: %s", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Top %d cited works for query: %s\n", len(works.Results), query)
	for i, w := range works.Results {
		authors := make([]string, 0, len(w.Authorships))
		for _, a := range w.Authorships {
			if a.Author.DisplayName != "" {
				authors = append(authors, a.Author.DisplayName)
			}
		}
		fmt.Fprintf(&b, "%d. %s (%s, cited by %.0f)\n", i+1, w.Title, w.PublicationDate, w.CitedByCount)
		if len(authors) > 0 {
			fmt.Fprintf(&b, "   Authors: %s\n", strings.Join(authors, ", "))
		}
	}
	return b.String(), nil
}
