package signals

// Option keys accepted by provider Search calls. Unknown keys are ignored.
const (
	OptLimit     = "limit"
	OptGeo       = "geo"
	OptTimeframe = "timeframe"
	OptSubreddit = "subreddit"
	OptCategory  = "category"
	OptType      = "search_type"
)

func strOption(options map[string]interface{}, key, def string) string {
	if options == nil {
		return def
	}
	if v, ok := options[key].(string); ok && v != "" {
		return v
	}
	return def
}

func intOption(options map[string]interface{}, key string, def int) int {
	if options == nil {
		return def
	}
	switch v := options[key].(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return def
}
