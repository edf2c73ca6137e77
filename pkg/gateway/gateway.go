package gateway

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/imasuvo/prompt-studio/pkg/adapter"
	"github.com/imasuvo/prompt-studio/pkg/model"
	"github.com/imasuvo/prompt-studio/pkg/utils/datauri"
	"github.com/imasuvo/prompt-studio/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Gateway is the boundary to the generative model provider. All provider
// failures are translated into the package error vocabulary here.
type Gateway interface {
	CompleteText(ctx context.Context, system, input string) (string, error)
	CompleteStructured(ctx context.Context, schema SchemaDescriptor, system, input string) ([]string, error)
	GenerateImage(ctx context.Context, prompt string, ratio model.AspectRatio) (string, error)
}

type Client struct {
	gemini    adapter.Gemini
	textCache *cache.Cache
	limiter   *rate.Limiter
}

type Option func(*Client)

// WithTextCacheTTL sets how long identical text completions are reused.
func WithTextCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.textCache = cache.New(ttl, 2*ttl)
	}
}

// WithImageInterval sets the minimum spacing between image requests.
func WithImageInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(interval), 2)
	}
}

func New(gemini adapter.Gemini, opts ...Option) *Client {
	c := &Client{
		gemini:    gemini,
		textCache: cache.New(15*time.Minute, 30*time.Minute),
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 2),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CompleteText generates a free-text completion from a system instruction
// and user input. Identical requests within the cache TTL are served from
// memory.
func (c *Client) CompleteText(ctx context.Context, system, input string) (string, error) {
	cacheKey := system + "\x00" + input
	if cached, ok := c.textCache.Get(cacheKey); ok {
		if text, ok := cached.(string); ok {
			logging.From(ctx).Debug("text completion served from cache")
			return text, nil
		}
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, ""),
	}
	contents := []*genai.Content{genai.NewContentFromText(input, genai.RoleUser)}

	resp, err := c.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return "", normalizeError(ctx, err, "generate text prompt")
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}

	c.textCache.SetDefault(cacheKey, text)
	return text, nil
}

// CompleteStructured generates a schema-constrained JSON completion and
// extracts the prompt strings it carries. Entries with an empty prompt
// field are dropped.
func (c *Client) CompleteStructured(ctx context.Context, schema SchemaDescriptor, system, input string) ([]string, error) {
	responseSchema, err := toGenaiSchema(schema.JSONSchema())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build response schema")
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, ""),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema,
	}
	contents := []*genai.Content{genai.NewContentFromText(input, genai.RoleUser)}

	resp, err := c.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return nil, normalizeError(ctx, err, "generate structured prompts")
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &parsed); err != nil {
		return nil, goerr.Wrap(ErrInvalidSchema, "response is not valid JSON", goerr.V("json", text))
	}

	collection, ok := parsed[schema.Collection].([]any)
	if !ok {
		return nil, goerr.Wrap(ErrInvalidSchema, "missing collection field "+schema.Collection, goerr.V("json", text))
	}

	prompts := make([]string, 0, len(collection))
	for _, entry := range collection {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if prompt, ok := obj[schema.Prompt].(string); ok && prompt != "" {
			prompts = append(prompts, prompt)
		}
	}

	return prompts, nil
}

// GenerateImage synthesizes a single image and returns it as an opaque
// embeddable payload reference (a base64 data URI).
func (c *Client) GenerateImage(ctx context.Context, prompt string, ratio model.AspectRatio) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", goerr.Wrap(err, "image request canceled while rate limited")
	}

	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
		AspectRatio:    string(ratio),
	}

	resp, err := c.gemini.GenerateImages(ctx, prompt, config)
	if err != nil {
		return "", normalizeError(ctx, err, "generate image")
	}

	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return "", goerr.Wrap(ErrNoImageProduced, "no image in response", goerr.V("prompt", prompt))
	}

	img := resp.GeneratedImages[0].Image
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	return datauri.Encode(img.ImageBytes, mimeType), nil
}

// responseText flattens the first candidate's text parts, classifying
// empty responses by their finish reason.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", goerr.Wrap(ErrEmptyResponse, "no candidates in response")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			text.WriteString(part.Text)
		}
	}

	if text.Len() == 0 {
		if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
			return "", goerr.Wrap(ErrSafetyBlocked, "completion refused", goerr.V("finish_reason", resp.Candidates[0].FinishReason))
		}
		return "", goerr.Wrap(ErrEmptyResponse, "no text in response")
	}

	return text.String(), nil
}
