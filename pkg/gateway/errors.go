package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/imasuvo/prompt-studio/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// Uniform error vocabulary of the gateway. Callers classify with errors.Is;
// err.Error() is the user-facing message.
var (
	ErrEmptyResponse   = goerr.New("the model returned an empty response")
	ErrSafetyBlocked   = goerr.New("content was blocked due to safety reasons, please adjust your prompt")
	ErrQuotaExceeded   = goerr.New("API limit reached")
	ErrInvalidSchema   = goerr.New("invalid structure received from the model")
	ErrNoImageProduced = goerr.New("no image was generated, the model may have blocked the prompt for safety reasons")
	ErrUpstream        = goerr.New("the model request failed unexpectedly")
)

const quotaAdvice = "Please check your plan and billing details or try again later."

// normalizeError maps a raw provider failure onto the gateway vocabulary.
// Classification happens here once; raw provider detail goes to the
// diagnostic log only, except the extracted quota message.
func normalizeError(ctx context.Context, err error, op string) error {
	logging.From(ctx).Error("model request failed", "operation", op, "error", err)

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Status == "RESOURCE_EXHAUSTED" {
			detail := apiErr.Message
			if detail == "" {
				detail = "You have exceeded your current quota."
			}
			return goerr.Wrap(ErrQuotaExceeded, detail+" "+quotaAdvice, goerr.V("operation", op))
		}
		return goerr.Wrap(ErrUpstream, "failed to "+op, goerr.V("status", apiErr.Status))
	}

	// The SDK sometimes surfaces stringified payloads instead of APIError.
	raw := err.Error()
	if strings.Contains(raw, "429") || strings.Contains(raw, "RESOURCE_EXHAUSTED") {
		detail := quotaDetail(raw)
		return goerr.Wrap(ErrQuotaExceeded, detail+" "+quotaAdvice, goerr.V("operation", op))
	}

	return goerr.Wrap(ErrUpstream, "failed to "+op)
}

// quotaDetail extracts the provider-supplied message from an error payload
// shaped like {"error":{"message":"..."}} embedded in the error text.
func quotaDetail(raw string) string {
	const fallback = "You have exceeded your current quota."

	start := strings.Index(raw, "{")
	if start < 0 {
		return fallback
	}

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw[start:]), &payload); err != nil || payload.Error.Message == "" {
		return fallback
	}

	return payload.Error.Message
}
