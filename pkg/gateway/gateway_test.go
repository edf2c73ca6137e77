package gateway_test

import (
	"context"
	"errors"
	"testing"

	"github.com/imasuvo/prompt-studio/pkg/gateway"
	"github.com/imasuvo/prompt-studio/pkg/model"
	"github.com/imasuvo/prompt-studio/pkg/utils/datauri"
	"github.com/m-mizutani/gt"
	"google.golang.org/genai"
)

type mockGemini struct {
	contentFn    func(config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	imagesFn     func(prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
	contentCalls int
	imageCalls   int
	lastConfig   *genai.GenerateContentConfig
	lastPrompt   string
}

func (m *mockGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.contentCalls++
	m.lastConfig = config
	return m.contentFn(config)
}

func (m *mockGemini) GenerateImages(ctx context.Context, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	m.imageCalls++
	m.lastPrompt = prompt
	return m.imagesFn(prompt, config)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{{Text: text}},
				},
			},
		},
	}
}

func TestCompleteText(t *testing.T) {
	ctx := context.Background()
	mock := &mockGemini{
		contentFn: func(*genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse("An epic cinematic shot of a knight."), nil
		},
	}
	client := gateway.New(mock)

	text, err := client.CompleteText(ctx, "system", "a knight")
	gt.NoError(t, err)
	gt.Equal(t, text, "An epic cinematic shot of a knight.")
	gt.V(t, mock.lastConfig.SystemInstruction).NotNil()
}

func TestCompleteTextServedFromCache(t *testing.T) {
	ctx := context.Background()
	mock := &mockGemini{
		contentFn: func(*genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse("cached paragraph"), nil
		},
	}
	client := gateway.New(mock)

	_, err := client.CompleteText(ctx, "system", "same idea")
	gt.NoError(t, err)
	text, err := client.CompleteText(ctx, "system", "same idea")
	gt.NoError(t, err)
	gt.Equal(t, text, "cached paragraph")
	gt.Equal(t, mock.contentCalls, 1)

	// A different input misses the cache.
	_, err = client.CompleteText(ctx, "system", "another idea")
	gt.NoError(t, err)
	gt.Equal(t, mock.contentCalls, 2)
}

func TestCompleteTextEmptyResponse(t *testing.T) {
	ctx := context.Background()
	mock := &mockGemini{
		contentFn: func(*genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		},
	}
	client := gateway.New(mock)

	_, err := client.CompleteText(ctx, "system", "idea")
	gt.True(t, errors.Is(err, gateway.ErrEmptyResponse))
}

func TestCompleteTextSafetyBlocked(t *testing.T) {
	ctx := context.Background()
	mock := &mockGemini{
		contentFn: func(*genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{
						Content:      &genai.Content{},
						FinishReason: genai.FinishReasonSafety,
					},
				},
			}, nil
		},
	}
	client := gateway.New(mock)

	_, err := client.CompleteText(ctx, "system", "idea")
	gt.True(t, errors.Is(err, gateway.ErrSafetyBlocked))
	gt.S(t, err.Error()).Contains("adjust your prompt")
}

func TestQuotaFromAPIError(t *testing.T) {
	ctx := context.Background()
	mock := &mockGemini{
		contentFn: func(*genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, genai.APIError{
				Code:    429,
				Status:  "RESOURCE_EXHAUSTED",
				Message: "Quota exceeded for tier free",
			}
		},
	}
	client := gateway.New(mock)

	_, err := client.CompleteText(ctx, "system", "idea")
	gt.True(t, errors.Is(err, gateway.ErrQuotaExceeded))
	gt.S(t, err.Error()).Contains("Quota exceeded for tier free")
	gt.S(t, err.Error()).Contains("billing")
}

func TestQuotaFromRawErrorText(t *testing.T) {
	ctx := context.Background()
	rawErr := errors.New(`request failed with status 429 RESOURCE_EXHAUSTED: {"error":{"message":"Quota exceeded for tier free"}}`)
	mock := &mockGemini{
		imagesFn: func(string, *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
			return nil, rawErr
		},
	}
	client := gateway.New(mock)

	_, err := client.GenerateImage(ctx, "a lion", model.AspectSquare)
	gt.True(t, errors.Is(err, gateway.ErrQuotaExceeded))
	gt.S(t, err.Error()).Contains("Quota exceeded for tier free")
}

func TestUpstreamErrorHidesProviderDetail(t *testing.T) {
	ctx := context.Background()
	mock := &mockGemini{
		contentFn: func(*genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("dial tcp: connection refused to internal-host:443 with stack trace")
		},
	}
	client := gateway.New(mock)

	_, err := client.CompleteText(ctx, "system", "idea")
	gt.True(t, errors.Is(err, gateway.ErrUpstream))
	gt.S(t, err.Error()).NotContains("internal-host")
}

func TestCompleteStructured(t *testing.T) {
	ctx := context.Background()
	schema := gateway.SchemaDescriptor{
		Collection: "storyboard_prompts",
		Prompt:     "keyframe_prompt",
	}
	mock := &mockGemini{
		contentFn: func(*genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse(`{"storyboard_prompts":[
				{"keyframe_prompt":"knight draws sword"},
				{"keyframe_prompt":""},
				{"keyframe_prompt":"dragon breathes fire"}
			]}`), nil
		},
	}
	client := gateway.New(mock)

	prompts, err := client.CompleteStructured(ctx, schema, "system", "paragraph")
	gt.NoError(t, err)
	gt.V(t, prompts).Equal([]string{"knight draws sword", "dragon breathes fire"})

	gt.Equal(t, mock.lastConfig.ResponseMIMEType, "application/json")
	gt.V(t, mock.lastConfig.ResponseSchema).NotNil()
	gt.Equal(t, mock.lastConfig.ResponseSchema.Type, genai.TypeObject)
	gt.Map(t, mock.lastConfig.ResponseSchema.Properties).HasKey("storyboard_prompts")
}

func TestCompleteStructuredMissingCollection(t *testing.T) {
	ctx := context.Background()
	schema := gateway.SchemaDescriptor{Collection: "gif_keyframes", Prompt: "keyframe_prompt"}
	mock := &mockGemini{
		contentFn: func(*genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse(`{"something_else":[]}`), nil
		},
	}
	client := gateway.New(mock)

	_, err := client.CompleteStructured(ctx, schema, "system", "paragraph")
	gt.True(t, errors.Is(err, gateway.ErrInvalidSchema))
}

func TestCompleteStructuredCollectionNotArray(t *testing.T) {
	ctx := context.Background()
	schema := gateway.SchemaDescriptor{Collection: "gif_keyframes", Prompt: "keyframe_prompt"}
	mock := &mockGemini{
		contentFn: func(*genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse(`{"gif_keyframes":"not a list"}`), nil
		},
	}
	client := gateway.New(mock)

	_, err := client.CompleteStructured(ctx, schema, "system", "paragraph")
	gt.True(t, errors.Is(err, gateway.ErrInvalidSchema))
}

func TestCompleteStructuredEmptyCollection(t *testing.T) {
	ctx := context.Background()
	schema := gateway.SchemaDescriptor{Collection: "storyboard_prompts", Prompt: "keyframe_prompt"}
	mock := &mockGemini{
		contentFn: func(*genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse(`{"storyboard_prompts":[]}`), nil
		},
	}
	client := gateway.New(mock)

	prompts, err := client.CompleteStructured(ctx, schema, "system", "paragraph")
	gt.NoError(t, err)
	gt.A(t, prompts).Length(0)
}

func TestGenerateImage(t *testing.T) {
	ctx := context.Background()
	raw := []byte{0xff, 0xd8, 0xff}
	mock := &mockGemini{
		imagesFn: func(prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
			gt.Equal(t, config.AspectRatio, "9:16")
			gt.Equal(t, config.NumberOfImages, int32(1))
			return &genai.GenerateImagesResponse{
				GeneratedImages: []*genai.GeneratedImage{
					{Image: &genai.Image{ImageBytes: raw, MIMEType: "image/jpeg"}},
				},
			}, nil
		},
	}
	client := gateway.New(mock)

	url, err := client.GenerateImage(ctx, "a lion", model.AspectPortrait)
	gt.NoError(t, err)
	gt.S(t, url).Contains("data:image/jpeg;base64,")

	data, mimeType, err := datauri.Decode(url)
	gt.NoError(t, err)
	gt.Equal(t, mimeType, "image/jpeg")
	gt.Equal(t, data, raw)
	gt.Equal(t, mock.lastPrompt, "a lion")
}

func TestGenerateImageNoImageProduced(t *testing.T) {
	ctx := context.Background()
	mock := &mockGemini{
		imagesFn: func(string, *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
			return &genai.GenerateImagesResponse{}, nil
		},
	}
	client := gateway.New(mock)

	_, err := client.GenerateImage(ctx, "a lion", model.AspectSquare)
	gt.True(t, errors.Is(err, gateway.ErrNoImageProduced))
}

func TestSchemaDescriptorConversion(t *testing.T) {
	schema := gateway.SchemaDescriptor{
		Collection:            "gif_keyframes",
		CollectionDescription: "keyframe prompts",
		Prompt:                "keyframe_prompt",
		PromptDescription:     "one keyframe",
	}.JSONSchema()

	gt.Equal(t, schema.Type, "object")
	gt.Map(t, schema.Properties).HasKey("gif_keyframes")
	gt.Equal(t, schema.Properties["gif_keyframes"].Type, "array")
	gt.Equal(t, schema.Properties["gif_keyframes"].Items.Required[0], "keyframe_prompt")
	gt.Equal(t, len(schema.Required), 1)
}
