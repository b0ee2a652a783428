package llm

// requestOptions is the provider-neutral subset of request parameters the
// judge sends with each call.
type requestOptions struct {
	Model       string
	MaxTokens   int
	Temperature *float64
}

// parseRequestOptions extracts the standard parameters from an options map,
// tolerating the loose typing that map[string]any implies. Unknown keys are
// ignored; providers with extra knobs read them directly.
func parseRequestOptions(opts map[string]any, defaultModel string) requestOptions {
	options := requestOptions{Model: defaultModel}

	if m, ok := opts["model"].(string); ok && m != "" {
		options.Model = m
	}

	switch v := opts["max_tokens"].(type) {
	case int:
		if v > 0 {
			options.MaxTokens = v
		}
	case float64:
		if v > 0 {
			options.MaxTokens = int(v)
		}
	}

	if t, ok := opts["temperature"].(float64); ok && t >= 0 && t <= 2 {
		options.Temperature = &t
	}

	return options
}
