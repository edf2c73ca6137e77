package adapter

import (
	"context"

	"github.com/imasuvo/prompt-studio/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

type Gemini interface {
	GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

type GeminiClient struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

type GeminiOption func(*GeminiClient)

func WithTextModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.textModel = model
	}
}

func WithImageModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.imageModel = model
	}
}

// NewGemini creates a Gemini API client using an API key. A missing key is
// a configuration warning, not a startup failure: calls will fail with a
// clear error when actually invoked.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	if apiKey == "" {
		logging.From(ctx).Warn("GEMINI_API_KEY is not set, model requests will fail")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	g := &GeminiClient{
		client:     client,
		textModel:  "gemini-2.5-flash",
		imageModel: "imagen-3.0-generate-002",
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *GeminiClient) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.textModel, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content")
	}
	return resp, nil
}

func (g *GeminiClient) GenerateImages(ctx context.Context, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	resp, err := g.client.Models.GenerateImages(ctx, g.imageModel, prompt, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate images")
	}
	return resp, nil
}
