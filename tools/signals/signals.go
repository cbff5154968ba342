package signals

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"ideaforge/config"
)

// Provider is implemented by every external research signal source. Search
// returns the raw payload (JSON or formatted text) as a string; stages treat
// it as opaque evidence for prompt composition. An empty result set is not an
// error: errors are reserved for transport, auth and decode problems.
type Provider interface {
	Search(ctx context.Context, query string, options map[string]interface{}) (string, error)
	Name() string
}

// Provider names as they appear in the pipeline's tools ledger.
const (
	NameGoogleTrends = "google_trends"
	NameReddit       = "reddit_search"
	NameTwitter      = "twitter_search"
	NameProductHunt  = "producthunt"
	NameOpenAlex     = "openalex"
	NameSerper       = "serper_search"
)

var ErrUnsupportedProvider = errors.New("unsupported signal provider")

// Registry holds the providers that could be constructed from config.
// Providers whose credentials are missing are simply absent.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds the provider set for the given config. Reddit and
// OpenAlex need no credentials; the rest are constructed only when their
// keys are present.
func NewRegistry(cfg config.SignalsConfig) *Registry {
	logger := log.New(log.Writer(), "[SIGNALS] ", log.LstdFlags)
	r := &Registry{providers: make(map[string]Provider)}

	r.Register(NewRedditProvider(cfg.Reddit, cfg.Timeout))
	if cfg.GoogleTrends.APIKey != "" {
		r.Register(NewGoogleTrendsProvider(cfg.GoogleTrends, cfg.Timeout))
	}
	if cfg.Twitter.BearerToken != "" {
		r.Register(NewTwitterProvider(cfg.Twitter, cfg.Timeout))
	}
	if cfg.ProductHunt.Token != "" {
		r.Register(NewProductHuntProvider(cfg.ProductHunt, cfg.Timeout))
	}
	if cfg.OpenAlex.Enabled {
		r.Register(NewOpenAlexProvider(cfg.OpenAlex, cfg.Timeout))
	}
	if cfg.Serper.APIKey != "" {
		r.Register(NewSerperProvider(cfg.Serper, cfg.Timeout))
	}

	logger.Printf("signal providers available: %v", r.Names())
	return r
}

// Register adds or replaces a provider under its own name.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get returns the named provider or ErrUnsupportedProvider.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, name)
	}
	return p, nil
}

// Has reports whether the named provider was constructed.
func (r *Registry) Has(name string) bool {
	_, ok := r.providers[name]
	return ok
}

// Names returns the constructed provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GoogleTrends returns the trends provider when configured. Stages use it
// directly for its typed trend lookups beyond the Provider surface.
func (r *Registry) GoogleTrends() (*GoogleTrendsProvider, bool) {
	p, ok := r.providers[NameGoogleTrends].(*GoogleTrendsProvider)
	return p, ok
}
