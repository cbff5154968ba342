package core

import (
	"fmt"
	"sort"
	"strings"
)

// Payload key prefixes shared by the gather and compose steps.
const (
	trendPrefix   = "trend: "
	redditPrefix  = "reddit: "
	twitterPrefix = "twitter: "
	paperPrefix   = "papers: "
	launchPrefix  = "launches: "
	webPrefix     = "web: "
)

// Hint keys a gather step may stash for compose and fallback.
const (
	hintResearchQuality = "research_quality"
	hintPainCandidates  = "pain_candidates"
	hintRisingQueries   = "rising_queries"
)

// Raw provider payloads are cut to this many bytes before they enter a
// prompt, to keep six stages inside the model's token budget.
const payloadLimit = 2000

// Evidence is what a stage's gather step collected before inference.
// Payloads hold raw provider output keyed by a "channel: query" label,
// Failures hold provider errors in human-readable form, and Hints carry
// anything the gather step derived for the compose or fallback steps.
//
// An empty Evidence is a valid gather result. Providers that find
// nothing contribute no payload and no failure.
type Evidence struct {
	Payloads map[string]string
	Failures []string
	Hints    map[string]any
}

func NewEvidence() *Evidence {
	return &Evidence{
		Payloads: map[string]string{},
		Hints:    map[string]any{},
	}
}

func (e *Evidence) AddPayload(key, payload string) {
	if strings.TrimSpace(payload) == "" {
		return
	}
	e.Payloads[key] = payload
}

// AddFailure records a provider error without aborting the stage.
func (e *Evidence) AddFailure(stage, query string, err error) {
	e.Failures = append(e.Failures, fmt.Sprintf("%s: query %q: %v", stage, query, err))
}

// Keys returns payload keys carrying the given prefix, sorted.
func (e *Evidence) Keys(prefix string) []string {
	out := make([]string, 0, len(e.Payloads))
	for key := range e.Payloads {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// Queries lists the queries behind the payloads under prefix, sorted.
func (e *Evidence) Queries(prefix string) []string {
	keys := e.Keys(prefix)
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, strings.TrimPrefix(key, prefix))
	}
	return out
}

// Section renders every payload under prefix as one prompt block, in
// key order so prompts are stable across runs. A channel with no data
// renders as an explicit marker instead of an empty block.
func (e *Evidence) Section(prefix string) string {
	keys := e.Keys(prefix)
	if len(keys) == 0 {
		return "No data collected."
	}
	blocks := make([]string, 0, len(keys))
	for _, key := range keys {
		blocks = append(blocks, e.Payloads[key])
	}
	return strings.Join(blocks, "\n\n")
}
