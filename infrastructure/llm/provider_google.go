package llm

import (
	"context"
	"errors"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GoogleDefaultModel is used when no model is configured.
const GoogleDefaultModel = "gemini-2.0-flash"

func init() {
	RegisterProviderFactory("google", newGoogleProvider)
}

// googleProvider implements CoreLLM against the Google Gemini API.
type googleProvider struct {
	client *genai.Client
	model  string
}

func newGoogleProvider(config ClientConfig) (CoreLLM, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = GoogleDefaultModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &googleProvider{client: client, model: model}, nil
}

func (p *googleProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	options := parseRequestOptions(opts, p.model)

	genConfig := &genai.GenerateContentConfig{}
	if options.Temperature != nil {
		genConfig.Temperature = genai.Ptr(float32(*options.Temperature))
	}
	if options.MaxTokens > 0 {
		genConfig.MaxOutputTokens = int32(options.MaxTokens)
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := p.client.Models.GenerateContent(ctx, options.Model, contents, genConfig)
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return "", wrapProviderError("google", apiErr.Code, err)
		}
		return "", wrapProviderError("google", 0, err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (p *googleProvider) GetModel() string { return p.model }
